package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	questionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "smartcheck",
		Subsystem: "ai",
		Name:      "question_generation_duration_seconds",
		Help:      "Duration of question generation requests",
	}, []string{"model"})

	questionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartcheck",
		Subsystem: "ai",
		Name:      "question_generation_failures_total",
		Help:      "Number of question generation failures",
	}, []string{"model"})
)

var (
	typePattern     = regexp.MustCompile(`\*\*Type\*\*:\s*(.*)`)
	questionPattern = regexp.MustCompile(`(?s)\*\*Question\*\*:\s*(.*)`)
	hintPattern     = regexp.MustCompile(`(?s)\*\*Hint\*\*:\s*(.*)`)
)

// OpenAIConfig defines configuration options for the OpenAI question generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGenerator implements QuestionGenerator against the OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a new generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/Prajjwal888/Smart-Check-AI/pkg/ai"),
		logger: logger.With().Str("component", "question_generator").Logger(),
	}, nil
}

// Generate asks the model for a question set and parses the markdown response.
func (g *OpenAIGenerator) Generate(parent context.Context, spec QuestionSpec) ([]GeneratedQuestion, error) {
	ctx, span := g.tracer.Start(parent, "openai.generate_questions", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.String("topic", spec.Topic),
		attribute.Int("count", spec.Count),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: generatorSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGenerationPrompt(spec),
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	questionDuration.WithLabelValues(g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		questionFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("openai generate questions: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		questionFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	questions := ParseQuestionMarkdown(resp.Choices[0].Message.Content)
	if len(questions) == 0 {
		err := fmt.Errorf("model response contained no parseable questions")
		questionFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("questions", len(questions)))

	return questions, nil
}

// ParseQuestionMarkdown splits the model output into question blocks on "---"
// separators and extracts the Type/Question/Hint fields from each block.
// Blocks missing any of the three fields are skipped.
func ParseQuestionMarkdown(content string) []GeneratedQuestion {
	blocks := strings.Split(content, "---")
	questions := make([]GeneratedQuestion, 0, len(blocks))

	for _, block := range blocks {
		typeMatch := typePattern.FindStringSubmatch(block)
		questionMatch := questionPattern.FindStringSubmatch(block)
		hintMatch := hintPattern.FindStringSubmatch(block)

		if typeMatch == nil || questionMatch == nil || hintMatch == nil {
			continue
		}

		questions = append(questions, GeneratedQuestion{
			Type: strings.TrimSpace(typeMatch[1]),
			Text: firstLine(questionMatch[1]),
			Hint: firstLine(hintMatch[1]),
		})
	}

	return questions
}

func firstLine(value string) string {
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}

func generatorSystemPrompt() string {
	return "You are an exam question writer. Write each question as a markdown block containing **Type**:, **Question**: " +
		"and **Hint**: lines, separating consecutive blocks with a line holding only ---."
}

func buildGenerationPrompt(spec QuestionSpec) string {
	builder := strings.Builder{}
	builder.WriteString("# Topic\n")
	builder.WriteString(spec.Topic)
	builder.WriteString("\n\n## Difficulty\n")
	builder.WriteString(spec.Difficulty)
	if len(spec.Types) > 0 {
		builder.WriteString("\n\n## Question Types\n")
		builder.WriteString(strings.Join(spec.Types, ", "))
	}
	builder.WriteString(fmt.Sprintf("\n\nWrite %d questions.", spec.Count))
	return builder.String()
}
