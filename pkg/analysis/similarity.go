package analysis

import (
	"context"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const similarityResponseSchema = `{
	"type": "object",
	"required": ["results"],
	"properties": {
		"results": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["file1_index", "file2_index", "similarity_score", "is_plagiarised"],
				"properties": {
					"file1_index": {"type": "integer", "minimum": 0},
					"file2_index": {"type": "integer", "minimum": 0},
					"similarity_score": {"type": "number", "minimum": 0, "maximum": 1},
					"is_plagiarised": {"type": "boolean"}
				}
			}
		}
	}
}`

// SimilarityClient talks to the external plagiarism comparison service.
type SimilarityClient struct {
	client *client
}

// NewSimilarityClient builds a similarity client from the provided configuration.
func NewSimilarityClient(cfg Config) (*SimilarityClient, error) {
	schema, err := jsonschema.CompileString("similarity_response.json", similarityResponseSchema)
	if err != nil {
		return nil, err
	}

	c, err := newClient("similarity", cfg, schema)
	if err != nil {
		return nil, err
	}

	return &SimilarityClient{client: c}, nil
}

// Check submits the full file URL list for pairwise comparison. The service
// is called exactly once per aggregator run; the threshold travels as a 0-100
// percentage.
func (s *SimilarityClient) Check(ctx context.Context, fileURLs []string, threshold float64) (SimilarityResponse, error) {
	payload := struct {
		FileURLs  []string `json:"file_urls"`
		Threshold float64  `json:"threshold"`
	}{
		FileURLs:  fileURLs,
		Threshold: threshold,
	}

	var response SimilarityResponse
	if err := s.client.post(ctx, "/checkPlagiarism", payload, &response); err != nil {
		return SimilarityResponse{}, err
	}

	s.client.logger.Debug().
		Int("files", len(fileURLs)).
		Int("pairs", len(response.Results)).
		Msg("similarity check completed")

	return response, nil
}
