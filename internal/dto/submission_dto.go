package dto

import (
	"time"

	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for a student submission.
type SubmissionCreateRequest struct {
	AssignmentID uint `form:"assignment_id" validate:"required,gt=0"`
}

// MatchResponse serializes one plagiarism pairing.
type MatchResponse struct {
	Student    UserLite `json:"student"`
	Similarity float64  `json:"similarity"`
}

// QuestionResultResponse serializes one per-question evaluation row.
type QuestionResultResponse struct {
	Question        int     `json:"question"`
	Score           float64 `json:"score"`
	Similarity      float64 `json:"similarity"`
	Topic           string  `json:"topic"`
	StudentAnswer   string  `json:"student_answer"`
	ReferenceAnswer string  `json:"reference_answer"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID              uint                     `json:"id"`
	AssignmentID    uint                     `json:"assignment_id"`
	StudentID       uint                     `json:"student_id"`
	FileURL         string                   `json:"file_url"`
	Status          string                   `json:"status"`
	Grade           *float64                 `json:"grade"`
	PlagiarismScore *float64                 `json:"plagiarism_score"`
	Feedback        string                   `json:"feedback"`
	CheckedAt       *time.Time               `json:"checked_at"`
	EvaluatedAt     *time.Time               `json:"evaluated_at"`
	MatchedWith     []MatchResponse          `json:"matched_with"`
	Results         []QuestionResultResponse `json:"results"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	Student         UserLite                 `json:"student"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:              model.ID,
		AssignmentID:    model.AssignmentID,
		StudentID:       model.StudentID,
		FileURL:         model.FileURL,
		Status:          model.Status,
		Grade:           model.Grade,
		PlagiarismScore: model.PlagiarismScore,
		Feedback:        model.Feedback,
		CheckedAt:       model.CheckedAt,
		EvaluatedAt:     model.EvaluatedAt,
		MatchedWith:     make([]MatchResponse, 0, len(model.Matches)),
		Results:         make([]QuestionResultResponse, 0, len(model.Results)),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}

	if model.Student.ID != 0 {
		response.Student = NewUserLite(model.Student)
	}

	for _, match := range model.Matches {
		response.MatchedWith = append(response.MatchedWith, MatchResponse{
			Student:    NewUserLite(match.MatchedStudent),
			Similarity: match.Similarity,
		})
	}

	for _, result := range model.Results {
		response.Results = append(response.Results, QuestionResultResponse{
			Question:        result.Question,
			Score:           result.Score,
			Similarity:      result.Similarity,
			Topic:           result.Topic,
			StudentAnswer:   result.StudentAnswer,
			ReferenceAnswer: result.ReferenceAnswer,
		})
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
