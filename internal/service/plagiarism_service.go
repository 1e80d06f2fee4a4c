package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Prajjwal888/Smart-Check-AI/internal/dto"
	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
	"github.com/Prajjwal888/Smart-Check-AI/internal/observability"
	"github.com/Prajjwal888/Smart-Check-AI/internal/repository"
	"github.com/Prajjwal888/Smart-Check-AI/pkg/analysis"
)

// ErrNotEnoughSubmissions indicates a plagiarism check needs at least two submissions.
var ErrNotEnoughSubmissions = errors.New("not enough submissions to check plagiarism")

// PlagiarismService runs the plagiarism aggregation pipeline for one assignment.
type PlagiarismService interface {
	Check(ctx context.Context, assignmentID uint) (dto.PlagiarismReport, error)
}

// Concurrent Check calls for the same assignment race: both read the same
// pre-check submission set and both bulk writes apply, last-write-wins per
// submission row. No lock is held; a manual re-trigger is always safe because
// the write is an idempotent overwrite.
type plagiarismService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	checker     analysis.SimilarityChecker
	events      EventPublisher
	threshold   float64
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewPlagiarismService constructs the plagiarism aggregator. The threshold is
// a 0-100 percentage; scores at or above it flag the submission.
func NewPlagiarismService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, checker analysis.SimilarityChecker, events EventPublisher, threshold float64, logger zerolog.Logger) PlagiarismService {
	return &plagiarismService{
		submissions: subRepo,
		assignments: assignmentRepo,
		checker:     checker,
		events:      events,
		threshold:   threshold,
		logger:      logger.With().Str("component", "plagiarism_service").Logger(),
		tracer:      otel.Tracer("github.com/Prajjwal888/Smart-Check-AI/internal/service/plagiarism"),
		now:         time.Now,
	}
}

func (s *plagiarismService) Check(ctx context.Context, assignmentID uint) (dto.PlagiarismReport, error) {
	ctx, span := s.tracer.Start(ctx, "plagiarism.check", trace.WithAttributes(
		attribute.Int64("assignment_id", int64(assignmentID)),
	))
	defer span.End()

	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PlagiarismReport{}, ErrAssignmentNotFound
		}
		return dto.PlagiarismReport{}, err
	}

	submissions, err := s.submissions.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return dto.PlagiarismReport{}, err
	}

	if len(submissions) < 2 {
		span.SetStatus(codes.Error, "not enough submissions")
		return dto.PlagiarismReport{}, ErrNotEnoughSubmissions
	}

	// The external service correlates results by array position. Freeze the
	// index -> submission mapping before the call so a reordered read cannot
	// misattribute scores.
	fileURLs := make([]string, len(submissions))
	for i, submission := range submissions {
		fileURLs[i] = submission.FileURL
	}

	response, err := s.checker.Check(ctx, fileURLs, s.threshold)
	if err != nil {
		observability.PlagiarismChecks().WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "similarity call failed")
		return dto.PlagiarismReport{}, fmt.Errorf("plagiarism check: %w", err)
	}

	updates := s.fold(submissions, response.Results)

	if err := s.submissions.BulkApplyPlagiarism(ctx, updates); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bulk update failed")
		return dto.PlagiarismReport{}, err
	}

	for i, update := range updates {
		s.publishOutcome(ctx, submissions[i], update)
	}

	checked, err := s.submissions.ListByAssignmentOrdered(ctx, assignmentID)
	if err != nil {
		return dto.PlagiarismReport{}, err
	}

	report := buildReport(checked)
	span.SetAttributes(
		attribute.Int("submissions", report.Stats.Total),
		attribute.Int("flagged", report.Stats.Flagged),
		attribute.Float64("highest_similarity", report.Stats.HighestSimilarity),
	)

	observability.PlagiarismChecks().WithLabelValues("completed").Inc()
	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Int("submissions", report.Stats.Total).
		Int("flagged", report.Stats.Flagged).
		Msg("plagiarism check completed")

	return report, nil
}

// fold reduces pairwise results into one aggregate update per submission
// index. The max score tracks every pair a submission participated in, not
// only flagged ones, so the displayed score is the single highest pairwise
// similarity even when it sits under the flag threshold. Match entries are
// gated on both the upstream flag and the percentage threshold: a pair can be
// marked plagiarised upstream yet land marginally under the threshold after
// percentage conversion.
func (s *plagiarismService) fold(submissions []models.Submission, pairs []analysis.PairResult) []repository.PlagiarismUpdate {
	maxScore := make([]float64, len(submissions))
	matches := make([][]models.SubmissionMatch, len(submissions))

	for _, pair := range pairs {
		i, j := pair.File1Index, pair.File2Index
		if i < 0 || j < 0 || i >= len(submissions) || j >= len(submissions) || i == j {
			s.logger.Warn().
				Int("file1_index", i).
				Int("file2_index", j).
				Msg("discarding pair with out-of-range indices")
			continue
		}

		percentage := roundScore(pair.SimilarityScore * 100)

		if percentage > maxScore[i] {
			maxScore[i] = percentage
		}
		if percentage > maxScore[j] {
			maxScore[j] = percentage
		}

		if pair.IsPlagiarised && percentage >= s.threshold {
			matches[i] = append(matches[i], models.SubmissionMatch{
				MatchedStudentID: submissions[j].StudentID,
				Similarity:       percentage,
			})
			matches[j] = append(matches[j], models.SubmissionMatch{
				MatchedStudentID: submissions[i].StudentID,
				Similarity:       percentage,
			})
		}
	}

	now := s.now()
	updates := make([]repository.PlagiarismUpdate, len(submissions))
	for i, submission := range submissions {
		status := models.SubmissionStatusChecked
		if maxScore[i] >= s.threshold {
			status = models.SubmissionStatusFlagged
		}

		updates[i] = repository.PlagiarismUpdate{
			SubmissionID: submission.ID,
			Status:       status,
			Score:        maxScore[i],
			CheckedAt:    now,
			Matches:      matches[i],
		}
	}

	return updates
}

func (s *plagiarismService) publishOutcome(ctx context.Context, submission models.Submission, update repository.PlagiarismUpdate) {
	if s.events == nil {
		return
	}

	eventType := EventSubmissionChecked
	if update.Status == models.SubmissionStatusFlagged {
		eventType = EventSubmissionFlagged
	}

	score := update.Score
	s.events.Publish(ctx, SubmissionEvent{
		Type:         eventType,
		SubmissionID: submission.ID,
		AssignmentID: submission.AssignmentID,
		StudentID:    submission.StudentID,
		Score:        &score,
		OccurredAt:   update.CheckedAt,
	})
}

func buildReport(submissions []models.Submission) dto.PlagiarismReport {
	report := dto.PlagiarismReport{
		Submissions: dto.NewSubmissionResponseSlice(submissions),
		Stats:       dto.PlagiarismStats{Total: len(submissions)},
	}

	for _, submission := range submissions {
		if submission.Status == models.SubmissionStatusFlagged {
			report.Stats.Flagged++
		}
		if submission.PlagiarismScore != nil && *submission.PlagiarismScore > report.Stats.HighestSimilarity {
			report.Stats.HighestSimilarity = *submission.PlagiarismScore
		}
	}

	return report
}

func roundScore(value float64) float64 {
	return math.Round(value*100) / 100
}
