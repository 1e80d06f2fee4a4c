package dto

// LoginRequest carries the credentials submitted to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=student teacher"`
}

// LoginResponse returns the signed bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}
