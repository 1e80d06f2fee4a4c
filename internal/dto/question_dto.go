package dto

// QuestionGenerateRequest forwards a question set specification to the model.
type QuestionGenerateRequest struct {
	Topic         string   `json:"topic" validate:"required,min=2"`
	Difficulty    string   `json:"difficulty" validate:"required,oneof=easy medium hard"`
	QuestionTypes []string `json:"question_types" validate:"required,min=1,dive,required"`
	NumQuestions  int      `json:"num_questions" validate:"required,gt=0,lte=25"`
}

// QuestionResponse is one generated question.
type QuestionResponse struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Hint string `json:"hint"`
}
