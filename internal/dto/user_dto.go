package dto

import "github.com/Prajjwal888/Smart-Check-AI/internal/models"

// UserResponse serializes a user profile without credential fields.
type UserResponse struct {
	ID            uint     `json:"id"`
	Role          string   `json:"role"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Subjects      []string `json:"subjects"`
	Department    string   `json:"department"`
	Course        string   `json:"course"`
	ProfilePicURL string   `json:"profile_pic_url"`
	PhoneNumber   string   `json:"phone_number"`
	Address       string   `json:"address"`
}

// UserLite summarizes a user for embedding in other responses.
type UserLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:            model.ID,
		Role:          model.Role,
		Name:          model.Name,
		Email:         model.Email,
		Subjects:      model.Subjects,
		Department:    model.Department,
		Course:        model.Course,
		ProfilePicURL: model.ProfilePicURL,
		PhoneNumber:   model.PhoneNumber,
		Address:       model.Address,
	}
}

// NewUserLite converts a User model into its embedded summary form.
func NewUserLite(model models.User) UserLite {
	return UserLite{
		ID:    model.ID,
		Name:  model.Name,
		Email: model.Email,
	}
}
