package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Prajjwal888/Smart-Check-AI/internal/dto"
	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
	"github.com/Prajjwal888/Smart-Check-AI/internal/observability"
	"github.com/Prajjwal888/Smart-Check-AI/internal/repository"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionService orchestrates submission workflows for students and the
// teacher-side listing views.
type SubmissionService interface {
	Submit(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	ListForAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error)
	RecentForTeacher(ctx context.Context, teacherID uint, limit int) ([]dto.SubmissionResponse, error)
	StudentFeed(ctx context.Context, studentID uint) ([]dto.StudentAssignmentEntry, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	uploader    FileUploader
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. The cache
// client may be nil; the feed then always reads through to the database.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, validate *validator.Validate, uploader FileUploader, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		validator:   validate,
		uploader:    uploader,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit relays the file to storage first and only then creates the row, so
// a submission record never points at a missing file. A resubmission
// supersedes the student's previous row for the same assignment.
func (s *submissionService) Submit(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if file == nil {
		return dto.SubmissionResponse{}, ErrFileRequired
	}

	if _, err := s.assignments.GetByID(ctx, payload.AssignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if err := validateFileType(file); err != nil {
		return dto.SubmissionResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	fileURL, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to upload file: %w", err)
	}

	observability.Uploads().WithLabelValues("submission").Inc()

	submission := models.Submission{
		AssignmentID: payload.AssignmentID,
		StudentID:    studentID,
		FileURL:      fileURL,
		Status:       models.SubmissionStatusPending,
	}

	if err := s.submissions.ReplaceForStudent(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.invalidateFeed(ctx, studentID)

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", created.ID).
		Uint("assignment_id", created.AssignmentID).
		Uint("student_id", studentID).
		Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) ListForAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error) {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	submissions, err := s.submissions.ListByAssignmentOrdered(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) RecentForTeacher(ctx context.Context, teacherID uint, limit int) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListRecentForTeacher(ctx, teacherID, limit)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// StudentFeed lists every assignment together with the student's own
// submission state and score. Pending submissions whose assignment is past
// due are transitioned to late on the way out. The feed is cached per
// student and invalidated on submit.
func (s *submissionService) StudentFeed(ctx context.Context, studentID uint) ([]dto.StudentAssignmentEntry, error) {
	cacheKey := feedCacheKey(studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var entries []dto.StudentAssignmentEntry
			if unmarshalErr := json.Unmarshal([]byte(cached), &entries); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("feed cache hit")
				return entries, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read feed cache")
		}
	}

	assignments, err := s.assignments.List(ctx, repository.AssignmentFilter{})
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	byAssignment := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		byAssignment[submission.AssignmentID] = submission
	}

	now := s.now()
	entries := make([]dto.StudentAssignmentEntry, 0, len(assignments))
	for _, assignment := range assignments {
		entry := dto.StudentAssignmentEntry{
			Assignment: dto.NewAssignmentResponse(assignment),
			Status:     "not_submitted",
		}

		if submission, ok := byAssignment[assignment.ID]; ok {
			entry.Status = submission.Status
			entry.Score = submission.Grade

			if submission.Status == models.SubmissionStatusPending && assignment.IsPastDue(now) {
				if err := s.submissions.MarkLate(ctx, submission.ID); err != nil {
					s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to mark submission late")
				} else {
					entry.Status = models.SubmissionStatusLate
				}
			}
		}

		entries = append(entries, entry)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write feed cache")
			}
		}
	}

	return entries, nil
}

func (s *submissionService) invalidateFeed(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, feedCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate feed cache")
	}
}

func feedCacheKey(studentID uint) string {
	return fmt.Sprintf("feed:student:%d", studentID)
}
