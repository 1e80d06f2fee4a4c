package dto

import (
	"time"

	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
)

// AssignmentCreateRequest describes the multipart payload for assignment upload.
type AssignmentCreateRequest struct {
	Title       string `form:"title" validate:"required,min=3"`
	Description string `form:"description"`
	Subject     string `form:"subject" validate:"required"`
	Course      string `form:"course" validate:"required"`
	DueDate     string `form:"due_date" validate:"required"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Subject      string    `json:"subject"`
	Course       string    `json:"course"`
	DueDate      time.Time `json:"due_date"`
	FileURL      string    `json:"file_url"`
	AnswerKeyURL string    `json:"answer_key_url,omitempty"`
	CreatedBy    UserLite  `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentAssignmentEntry is one row of the student assignment feed, combining
// the assignment with the student's own submission state.
type StudentAssignmentEntry struct {
	Assignment AssignmentResponse `json:"assignment"`
	Status     string             `json:"status"`
	Score      *float64           `json:"score"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		Subject:      model.Subject,
		Course:       model.Course,
		DueDate:      model.DueDate,
		FileURL:      model.FileURL,
		AnswerKeyURL: model.AnswerKeyURL,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}

	if model.CreatedBy.ID != 0 {
		response.CreatedBy = NewUserLite(model.CreatedBy)
	}

	return response
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
