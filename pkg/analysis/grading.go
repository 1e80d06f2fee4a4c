package analysis

import (
	"context"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const gradingResponseSchema = `{
	"type": "object",
	"required": ["results"],
	"properties": {
		"results": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["question", "score"],
				"properties": {
					"question": {"type": "integer", "minimum": 1},
					"score": {"type": "number", "minimum": 0, "maximum": 5},
					"similarity": {"type": "number"},
					"topic": {"type": "string"},
					"student_answer": {"type": "string"},
					"reference_answer": {"type": "string"}
				}
			}
		}
	}
}`

// GradingClient talks to the external answer evaluation service.
type GradingClient struct {
	client *client
}

// NewGradingClient builds a grading client from the provided configuration.
func NewGradingClient(cfg Config) (*GradingClient, error) {
	schema, err := jsonschema.CompileString("grading_response.json", gradingResponseSchema)
	if err != nil {
		return nil, err
	}

	c, err := newClient("grading", cfg, schema)
	if err != nil {
		return nil, err
	}

	return &GradingClient{client: c}, nil
}

// Evaluate submits the qualifying file URLs together with the answer key.
// The upstream contract returns one flat result list for the whole batch.
func (g *GradingClient) Evaluate(ctx context.Context, fileURLs []string, answerKeyURL string) (GradingResponse, error) {
	payload := struct {
		FileURLs  []string `json:"file_urls"`
		AnswerKey string   `json:"answer_key"`
	}{
		FileURLs:  fileURLs,
		AnswerKey: answerKeyURL,
	}

	var response GradingResponse
	if err := g.client.post(ctx, "/evaluate", payload, &response); err != nil {
		return GradingResponse{}, err
	}

	g.client.logger.Debug().
		Int("files", len(fileURLs)).
		Int("questions", len(response.Results)).
		Msg("evaluation completed")

	return response, nil
}
