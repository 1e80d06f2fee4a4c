package ai

import "context"

// QuestionSpec describes the question set a teacher wants generated.
type QuestionSpec struct {
	Topic      string
	Difficulty string
	Types      []string
	Count      int
}

// GeneratedQuestion is one parsed question block from the model response.
type GeneratedQuestion struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Hint string `json:"hint"`
}

// QuestionGenerator describes a model capable of producing practice questions.
type QuestionGenerator interface {
	Generate(ctx context.Context, spec QuestionSpec) ([]GeneratedQuestion, error)
}
