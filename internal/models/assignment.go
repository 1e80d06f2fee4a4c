package models

import "time"

// Assignment represents a piece of work published by a teacher.
type Assignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Subject      string    `gorm:"size:255;not null;index" json:"subject"`
	Course       string    `gorm:"size:255;not null" json:"course"`
	DueDate      time.Time `gorm:"not null" json:"due_date"`
	FileURL      string    `gorm:"size:512;not null" json:"file_url"`
	AnswerKeyURL string    `gorm:"size:512" json:"answer_key_url"`
	CreatedByID  uint      `gorm:"not null;index" json:"created_by_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	CreatedBy    User      `gorm:"foreignKey:CreatedByID" json:"created_by"`
	Submissions  []Submission
}

// HasAnswerKey reports whether an answer key has been attached.
func (a Assignment) HasAnswerKey() bool {
	return a.AnswerKeyURL != ""
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
