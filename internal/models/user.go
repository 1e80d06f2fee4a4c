package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role values accepted for a user account.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// User represents a registered account, either a student or a teacher.
type User struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	Role          string                      `gorm:"size:16;not null;index" json:"role"`
	Name          string                      `gorm:"size:255;not null" json:"name"`
	Email         string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  string                      `gorm:"size:255;not null" json:"-"`
	Subjects      datatypes.JSONSlice[string] `json:"subjects"`
	Department    string                      `gorm:"size:255" json:"department"`
	Course        string                      `gorm:"size:255" json:"course"`
	ProfilePicURL string                      `gorm:"size:512" json:"profile_pic_url"`
	PhoneNumber   string                      `gorm:"size:32" json:"phone_number"`
	Address       string                      `gorm:"size:512" json:"address"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// IsTeacher reports whether the account has the teacher role.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}
