package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	analysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "smartcheck",
		Subsystem: "analysis",
		Name:      "request_duration_seconds",
		Help:      "Duration of analysis service requests",
	}, []string{"service"})

	analysisFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartcheck",
		Subsystem: "analysis",
		Name:      "request_failures_total",
		Help:      "Number of failed analysis service requests",
	}, []string{"service"})
)

// Config defines the connection settings shared by the analysis clients.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

type client struct {
	service string
	baseURL string
	http    *http.Client
	schema  *jsonschema.Schema
	tracer  trace.Tracer
	logger  zerolog.Logger
}

func newClient(service string, cfg Config, schema *jsonschema.Schema) (*client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s service url is required", service)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &client{
		service: service,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		schema:  schema,
		tracer:  otel.Tracer("github.com/Prajjwal888/Smart-Check-AI/pkg/analysis"),
		logger:  logger.With().Str("component", service+"_client").Logger(),
	}, nil
}

// do executes one JSON POST against the service and returns the raw response
// body. Non-2xx responses surface as *UpstreamError carrying the upstream's
// own detail message.
func (c *client) do(parent context.Context, path string, payload interface{}) ([]byte, error) {
	ctx, span := c.tracer.Start(parent, c.service+".request", trace.WithAttributes(
		attribute.String("analysis.service", c.service),
		attribute.String("analysis.path", path),
	))
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", c.service, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.service, err)
	}
	request.Header.Set("Content-Type", "application/json")

	start := time.Now()
	response, err := c.http.Do(request)
	analysisDuration.WithLabelValues(c.service).Observe(time.Since(start).Seconds())
	if err != nil {
		analysisFailures.WithLabelValues(c.service).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s request: %w", c.service, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		analysisFailures.WithLabelValues(c.service).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return nil, fmt.Errorf("read %s response: %w", c.service, err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		analysisFailures.WithLabelValues(c.service).Inc()
		upstream := &UpstreamError{
			Service:    c.service,
			StatusCode: response.StatusCode,
			Detail:     extractDetail(raw),
		}
		span.RecordError(upstream)
		span.SetStatus(codes.Error, "upstream error")
		return nil, upstream
	}

	return raw, nil
}

func (c *client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	raw, err := c.do(ctx, path, payload)
	if err != nil {
		return err
	}

	if c.schema != nil {
		var document interface{}
		if err := json.Unmarshal(raw, &document); err != nil {
			analysisFailures.WithLabelValues(c.service).Inc()
			return fmt.Errorf("decode %s response: %w", c.service, err)
		}
		if err := c.schema.Validate(document); err != nil {
			analysisFailures.WithLabelValues(c.service).Inc()
			return fmt.Errorf("unexpected %s response shape: %w", c.service, err)
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		analysisFailures.WithLabelValues(c.service).Inc()
		return fmt.Errorf("decode %s response: %w", c.service, err)
	}

	return nil
}

// extractDetail pulls the upstream's own error message out of an error body.
// FastAPI style services use "detail"; others use "error" or "message".
func extractDetail(raw []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}

	for _, candidate := range []string{payload.Detail, payload.Error, payload.Message} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}
