package analysis

import (
	"bytes"
	"context"
	"fmt"
)

// ReportClient talks to the external class performance report service.
type ReportClient struct {
	client *client
}

// NewReportClient builds a report client from the provided configuration.
func NewReportClient(cfg Config) (*ReportClient, error) {
	c, err := newClient("report", cfg, nil)
	if err != nil {
		return nil, err
	}

	return &ReportClient{client: c}, nil
}

// GenerateClassReport submits the graded rows and returns the rendered
// report. The upstream responds with a standalone HTML document, not JSON.
func (r *ReportClient) GenerateClassReport(ctx context.Context, rows []PerformanceRow) (string, error) {
	payload := struct {
		Rows []PerformanceRow `json:"rows"`
	}{
		Rows: rows,
	}

	raw, err := r.client.do(ctx, "/generateClassReport", payload)
	if err != nil {
		return "", err
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return "", fmt.Errorf("report service returned an empty report")
	}

	r.client.logger.Debug().
		Int("rows", len(rows)).
		Msg("class report generated")

	return string(raw), nil
}
