package dto

// EvaluationResponse reports how many submissions a run graded.
type EvaluationResponse struct {
	Message   string `json:"message"`
	Evaluated int    `json:"evaluated"`
}
