package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Prajjwal888/Smart-Check-AI/internal/config"
	"github.com/Prajjwal888/Smart-Check-AI/internal/dto"
	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
	"github.com/Prajjwal888/Smart-Check-AI/internal/observability"
	"github.com/Prajjwal888/Smart-Check-AI/internal/repository"
	"github.com/Prajjwal888/Smart-Check-AI/pkg/analysis"
)

// ErrAnswerKeyMissing indicates evaluation was requested before an answer key was attached.
var ErrAnswerKeyMissing = errors.New("assignment has no answer key")

// ErrNothingToEvaluate indicates no submission is in the checked state.
var ErrNothingToEvaluate = errors.New("no checked submissions to evaluate")

// EvaluationService runs the grading aggregation pipeline for one assignment.
type EvaluationService interface {
	Evaluate(ctx context.Context, assignmentID uint) (dto.EvaluationResponse, error)
}

// Persistence is per-submission and sequential: a failure partway through
// leaves earlier submissions evaluated and later ones untouched. Re-running
// the endpoint only selects submissions still in checked, so the operation is
// idempotent at the granularity of individual submissions.
type evaluationService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	grader      analysis.Grader
	events      EventPublisher
	strategy    string
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewEvaluationService constructs the evaluation aggregator. The strategy
// selects how the upstream's flat result list maps onto submissions; see
// config.EvaluationResultStrategy.
func NewEvaluationService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, grader analysis.Grader, events EventPublisher, strategy string, logger zerolog.Logger) EvaluationService {
	if strategy == "" {
		strategy = config.EvaluationStrategyShared
	}

	return &evaluationService{
		submissions: subRepo,
		assignments: assignmentRepo,
		grader:      grader,
		events:      events,
		strategy:    strategy,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		tracer:      otel.Tracer("github.com/Prajjwal888/Smart-Check-AI/internal/service/evaluation"),
		now:         time.Now,
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, assignmentID uint) (dto.EvaluationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation.run", trace.WithAttributes(
		attribute.Int64("assignment_id", int64(assignmentID)),
	))
	defer span.End()

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, ErrAssignmentNotFound
		}
		return dto.EvaluationResponse{}, err
	}

	if !assignment.HasAnswerKey() {
		span.SetStatus(codes.Error, "answer key missing")
		return dto.EvaluationResponse{}, ErrAnswerKeyMissing
	}

	// Only checked submissions qualify: pending ones have not been screened,
	// flagged ones must not be silently graded and evaluated ones are done.
	submissions, err := s.submissions.ListByAssignmentAndStatus(ctx, assignmentID, models.SubmissionStatusChecked)
	if err != nil {
		return dto.EvaluationResponse{}, err
	}

	if len(submissions) == 0 {
		span.SetStatus(codes.Error, "nothing to evaluate")
		return dto.EvaluationResponse{}, ErrNothingToEvaluate
	}

	fileURLs := make([]string, len(submissions))
	for i, submission := range submissions {
		fileURLs[i] = submission.FileURL
	}

	response, err := s.grader.Evaluate(ctx, fileURLs, assignment.AnswerKeyURL)
	if err != nil {
		observability.Evaluations().WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "grading call failed")
		return dto.EvaluationResponse{}, fmt.Errorf("evaluation: %w", err)
	}

	if len(response.Results) == 0 {
		err := fmt.Errorf("grading service returned no results")
		span.RecordError(err)
		return dto.EvaluationResponse{}, err
	}

	evaluated := 0
	for i := range submissions {
		submission := submissions[i]

		rows := s.resultsFor(i, len(submissions), response.Results)
		if len(rows) == 0 {
			s.logger.Warn().
				Uint("submission_id", submission.ID).
				Msg("no result rows for submission, skipping")
			continue
		}

		grade := gradeFromScores(rows)
		evaluatedAt := s.now()

		submission.Grade = &grade
		submission.Feedback = buildFeedback(rows)
		submission.Status = models.SubmissionStatusEvaluated
		submission.EvaluatedAt = &evaluatedAt

		if err := s.submissions.ApplyEvaluation(ctx, &submission, rows); err != nil {
			// Accepted at-least-once semantics: earlier submissions stay
			// evaluated, this and later ones remain checked for a re-run.
			span.RecordError(err)
			span.SetStatus(codes.Error, "partial evaluation")
			s.logger.Error().Err(err).
				Uint("submission_id", submission.ID).
				Int("evaluated", evaluated).
				Msg("evaluation aborted mid-loop")
			return dto.EvaluationResponse{}, fmt.Errorf("persist evaluation for submission %d: %w", submission.ID, err)
		}

		evaluated++
		s.publishEvaluated(ctx, submission, grade, evaluatedAt)
	}

	observability.Evaluations().WithLabelValues("completed").Inc()
	span.SetAttributes(attribute.Int("evaluated", evaluated))
	s.logger.Info().
		Uint("assignment_id", assignmentID).
		Int("evaluated", evaluated).
		Msg("evaluation completed")

	return dto.EvaluationResponse{
		Message:   "evaluation completed",
		Evaluated: evaluated,
	}, nil
}

// resultsFor maps the upstream's flat result list onto submission i of n.
// The shared strategy broadcasts the same rows to every submission, matching
// the observed upstream contract. The per-index strategy splits the rows into
// n equal blocks by file index and falls back to broadcast when the row count
// does not divide evenly.
func (s *evaluationService) resultsFor(i, n int, results []analysis.QuestionResult) []models.SubmissionResult {
	rows := results

	if s.strategy == config.EvaluationStrategyPerIndex {
		if len(results)%n == 0 {
			per := len(results) / n
			rows = results[i*per : (i+1)*per]
		} else {
			s.logger.Warn().
				Int("results", len(results)).
				Int("submissions", n).
				Msg("result count not divisible by submission count, broadcasting")
		}
	}

	converted := make([]models.SubmissionResult, 0, len(rows))
	for _, row := range rows {
		converted = append(converted, models.SubmissionResult{
			Question:        row.Question,
			Score:           row.Score,
			Similarity:      row.Similarity,
			Topic:           row.Topic,
			StudentAnswer:   row.StudentAnswer,
			ReferenceAnswer: row.ReferenceAnswer,
		})
	}

	return converted
}

// gradeFromScores averages the 0-5 question scores and scales by 20 into a
// 0-100 grade, rounded to the nearest integer.
func gradeFromScores(rows []models.SubmissionResult) float64 {
	total := 0.0
	for _, row := range rows {
		total += row.Score
	}

	return math.Round(total / float64(len(rows)) * 20)
}

// buildFeedback renders "Q{n}: {topic} ({score}/5)" per question, joined with
// semicolons.
func buildFeedback(rows []models.SubmissionResult) string {
	parts := make([]string, 0, len(rows))
	for _, row := range rows {
		score := strconv.FormatFloat(row.Score, 'f', -1, 64)
		parts = append(parts, fmt.Sprintf("Q%d: %s (%s/5)", row.Question, row.Topic, score))
	}

	return strings.Join(parts, "; ")
}

func (s *evaluationService) publishEvaluated(ctx context.Context, submission models.Submission, grade float64, at time.Time) {
	if s.events == nil {
		return
	}

	s.events.Publish(ctx, SubmissionEvent{
		Type:         EventSubmissionEvaluated,
		SubmissionID: submission.ID,
		AssignmentID: submission.AssignmentID,
		StudentID:    submission.StudentID,
		Score:        &grade,
		OccurredAt:   at,
	})
}
