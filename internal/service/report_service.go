package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
	"github.com/Prajjwal888/Smart-Check-AI/internal/observability"
	"github.com/Prajjwal888/Smart-Check-AI/internal/repository"
	"github.com/Prajjwal888/Smart-Check-AI/pkg/analysis"
)

// ErrNothingToReport indicates no submission for the assignment has been
// evaluated yet.
var ErrNothingToReport = errors.New("no evaluated submissions to report on")

// ReportService renders the class performance report for one assignment.
type ReportService interface {
	ClassReport(ctx context.Context, assignmentID uint) (string, error)
}

type reportService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	reporter    analysis.Reporter
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewReportService constructs the report proxy.
func NewReportService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, reporter analysis.Reporter, logger zerolog.Logger) ReportService {
	return &reportService{
		submissions: subRepo,
		assignments: assignmentRepo,
		reporter:    reporter,
		logger:      logger.With().Str("component", "report_service").Logger(),
		tracer:      otel.Tracer("github.com/Prajjwal888/Smart-Check-AI/internal/service/report"),
	}
}

// ClassReport collects the per-question results of every evaluated submission
// and forwards them to the report service, returning the rendered HTML
// verbatim. The report reads grades already persisted; it never mutates
// submission state.
func (s *reportService) ClassReport(ctx context.Context, assignmentID uint) (string, error) {
	ctx, span := s.tracer.Start(ctx, "report.generate", trace.WithAttributes(
		attribute.Int64("assignment_id", int64(assignmentID)),
	))
	defer span.End()

	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAssignmentNotFound
		}
		return "", err
	}

	submissions, err := s.submissions.ListByAssignmentAndStatus(ctx, assignmentID, models.SubmissionStatusEvaluated)
	if err != nil {
		return "", err
	}

	rows := make([]analysis.PerformanceRow, 0, len(submissions))
	for _, submission := range submissions {
		for _, result := range submission.Results {
			rows = append(rows, analysis.PerformanceRow{
				StudentName:     submission.Student.Name,
				Score:           result.Score,
				Topic:           result.Topic,
				StudentAnswer:   result.StudentAnswer,
				ReferenceAnswer: result.ReferenceAnswer,
			})
		}
	}

	if len(rows) == 0 {
		span.SetStatus(codes.Error, "nothing to report")
		return "", ErrNothingToReport
	}

	report, err := s.reporter.GenerateClassReport(ctx, rows)
	if err != nil {
		observability.ClassReports().WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "report call failed")
		return "", fmt.Errorf("class report: %w", err)
	}

	observability.ClassReports().WithLabelValues("completed").Inc()
	span.SetAttributes(attribute.Int("rows", len(rows)))
	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Int("submissions", len(submissions)).
		Int("rows", len(rows)).
		Msg("class report generated")

	return report, nil
}
