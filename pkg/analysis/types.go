package analysis

import (
	"context"
	"fmt"
)

// PairResult is one pairwise comparison returned by the similarity service.
// Indexes are positional into the submitted file URL list; similarity is on
// a 0..1 scale.
type PairResult struct {
	File1Index      int     `json:"file1_index"`
	File2Index      int     `json:"file2_index"`
	SimilarityScore float64 `json:"similarity_score"`
	IsPlagiarised   bool    `json:"is_plagiarised"`
}

// SimilarityResponse is the full payload of a plagiarism check call.
type SimilarityResponse struct {
	Results []PairResult `json:"results"`
}

// QuestionResult is one per-question grading row. Score is on a 0-5 scale.
type QuestionResult struct {
	Question        int     `json:"question"`
	Score           float64 `json:"score"`
	Similarity      float64 `json:"similarity"`
	Topic           string  `json:"topic"`
	StudentAnswer   string  `json:"student_answer"`
	ReferenceAnswer string  `json:"reference_answer"`
}

// GradingResponse is the full payload of an evaluation call. The upstream
// service returns one flat result list for the whole batch.
type GradingResponse struct {
	Results []QuestionResult `json:"results"`
}

// PerformanceRow is one graded question for one student, the unit of input
// to the class performance report service.
type PerformanceRow struct {
	StudentName     string  `json:"student_name"`
	Score           float64 `json:"score"`
	Topic           string  `json:"topic"`
	StudentAnswer   string  `json:"student_answer"`
	ReferenceAnswer string  `json:"reference_answer"`
}

// UpstreamError reports a non-success response from an analysis service,
// preferring the service's own detail message when one was provided.
type UpstreamError struct {
	Service    string
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s service: %s", e.Service, e.Detail)
	}
	return fmt.Sprintf("%s service returned status %d", e.Service, e.StatusCode)
}

// SimilarityChecker compares a batch of files pairwise.
type SimilarityChecker interface {
	Check(ctx context.Context, fileURLs []string, threshold float64) (SimilarityResponse, error)
}

// Grader evaluates a batch of files against an answer key.
type Grader interface {
	Evaluate(ctx context.Context, fileURLs []string, answerKeyURL string) (GradingResponse, error)
}

// Reporter renders a class performance report from graded rows.
type Reporter interface {
	GenerateClassReport(ctx context.Context, rows []PerformanceRow) (string, error)
}
