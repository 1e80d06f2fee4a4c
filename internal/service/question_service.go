package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/Prajjwal888/Smart-Check-AI/internal/dto"
	"github.com/Prajjwal888/Smart-Check-AI/pkg/ai"
)

// QuestionService proxies question generation to the AI model.
type QuestionService interface {
	Generate(ctx context.Context, payload dto.QuestionGenerateRequest) ([]dto.QuestionResponse, error)
}

type questionService struct {
	generator ai.QuestionGenerator
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewQuestionService constructs a QuestionService instance.
func NewQuestionService(generator ai.QuestionGenerator, validate *validator.Validate, logger zerolog.Logger) QuestionService {
	return &questionService{
		generator: generator,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "question_service").Logger(),
	}
}

// Generate forwards the specification to the model and sanitizes the parsed
// questions before returning them. Model output is untrusted markup.
func (s *questionService) Generate(ctx context.Context, payload dto.QuestionGenerateRequest) ([]dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	if s.generator == nil {
		return nil, fmt.Errorf("question generation is not configured")
	}

	questions, err := s.generator.Generate(ctx, ai.QuestionSpec{
		Topic:      payload.Topic,
		Difficulty: payload.Difficulty,
		Types:      payload.QuestionTypes,
		Count:      payload.NumQuestions,
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	responses := make([]dto.QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, dto.QuestionResponse{
			Type: s.sanitizer.Sanitize(question.Type),
			Text: s.sanitizer.Sanitize(question.Text),
			Hint: s.sanitizer.Sanitize(question.Hint),
		})
	}

	s.logger.Info().Int("questions", len(responses)).Str("topic", payload.Topic).Msg("questions generated")

	return responses, nil
}
