package models

import "time"

// Submission status lifecycle: pending -> checked -> {flagged | evaluated},
// with late reachable from pending once the due date passes.
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusChecked   = "checked"
	SubmissionStatusFlagged   = "flagged"
	SubmissionStatusEvaluated = "evaluated"
	SubmissionStatusLate      = "late"
)

// Submission represents one student's file handed in for an assignment.
// One active submission exists per (assignment, student) pair; a resubmission
// supersedes the previous row.
type Submission struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	AssignmentID    uint               `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID       uint               `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"student_id"`
	FileURL         string             `gorm:"size:512;not null" json:"file_url"`
	Status          string             `gorm:"size:16;not null;default:pending" json:"status"`
	Grade           *float64           `json:"grade"`
	PlagiarismScore *float64           `json:"plagiarism_score"`
	Feedback        string             `gorm:"type:text" json:"feedback"`
	CheckedAt       *time.Time         `json:"checked_at"`
	EvaluatedAt     *time.Time         `json:"evaluated_at"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Assignment      Assignment         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student         User               `gorm:"foreignKey:StudentID" json:"student"`
	Matches         []SubmissionMatch  `gorm:"constraint:OnDelete:CASCADE" json:"matches"`
	Results         []SubmissionResult `gorm:"constraint:OnDelete:CASCADE" json:"results"`
}

// SubmissionMatch records one plagiarism pairing against another student.
// Rows are replaced wholesale on every check run, never accumulated.
type SubmissionMatch struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	SubmissionID     uint    `gorm:"not null;index" json:"submission_id"`
	MatchedStudentID uint    `gorm:"not null" json:"matched_student_id"`
	Similarity       float64 `gorm:"not null" json:"similarity"`
	MatchedStudent   User    `gorm:"foreignKey:MatchedStudentID" json:"matched_student"`
}

// SubmissionResult holds one per-question evaluation row returned by the
// grading service. Scores are on a 0-5 scale.
type SubmissionResult struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	SubmissionID    uint    `gorm:"not null;index" json:"submission_id"`
	Question        int     `gorm:"not null" json:"question"`
	Score           float64 `gorm:"not null" json:"score"`
	Similarity      float64 `json:"similarity"`
	Topic           string  `gorm:"size:255" json:"topic"`
	StudentAnswer   string  `gorm:"type:text" json:"student_answer"`
	ReferenceAnswer string  `gorm:"type:text" json:"reference_answer"`
}

// IsChecked reports whether the submission passed through the plagiarism
// aggregator without being flagged.
func (s Submission) IsChecked() bool {
	return s.Status == SubmissionStatusChecked
}

// IsEvaluated reports whether the submission carries a final grade.
func (s Submission) IsEvaluated() bool {
	return s.Status == SubmissionStatusEvaluated
}
