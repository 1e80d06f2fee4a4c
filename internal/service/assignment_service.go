package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Prajjwal888/Smart-Check-AI/internal/dto"
	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
	"github.com/Prajjwal888/Smart-Check-AI/internal/observability"
	"github.com/Prajjwal888/Smart-Check-AI/internal/repository"
)

// ErrAssignmentNotFound indicates an assignment could not be found.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrNotAssignmentOwner indicates a teacher tried to modify someone else's assignment.
var ErrNotAssignmentOwner = errors.New("assignment belongs to another teacher")

// ErrFileRequired indicates a multipart request arrived without its file part.
var ErrFileRequired = errors.New("file is required")

// ErrUnsupportedFileType indicates the uploaded file failed content sniffing.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ErrInvalidDueDate indicates the due date was not a valid RFC 3339 timestamp.
var ErrInvalidDueDate = errors.New("invalid due date, expected RFC 3339")

// FileUploader relays a file buffer to external object storage and returns
// the durable URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// AssignmentService orchestrates assignment workflows for teachers.
type AssignmentService interface {
	Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error)
	AttachAnswerKey(ctx context.Context, teacherID, assignmentID uint, file *multipart.FileHeader) (dto.AssignmentResponse, error)
	List(ctx context.Context, teacherID uint, subject string) ([]dto.AssignmentResponse, error)
	GetByID(ctx context.Context, id uint) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	uploader    FileUploader
	logger      zerolog.Logger
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignmentRepo repository.AssignmentRepository, validate *validator.Validate, uploader FileUploader, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignmentRepo,
		validator:   validate,
		uploader:    uploader,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

// Create uploads the assignment file first and only then persists the record,
// so an assignment row never exists without a backing file.
func (s *assignmentService) Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if file == nil {
		return dto.AssignmentResponse{}, ErrFileRequired
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, ErrInvalidDueDate
	}

	fileURL, err := s.relay(ctx, file)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		Title:       payload.Title,
		Description: payload.Description,
		Subject:     payload.Subject,
		Course:      payload.Course,
		DueDate:     dueDate,
		FileURL:     fileURL,
		CreatedByID: teacherID,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	created, err := s.assignments.GetByID(ctx, assignment.ID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", created.ID).Uint("teacher_id", teacherID).Msg("assignment created")

	return dto.NewAssignmentResponse(created), nil
}

// AttachAnswerKey relays the answer key to storage and records its URL on the
// assignment. Only the owning teacher may attach a key.
func (s *assignmentService) AttachAnswerKey(ctx context.Context, teacherID, assignmentID uint, file *multipart.FileHeader) (dto.AssignmentResponse, error) {
	if file == nil {
		return dto.AssignmentResponse{}, ErrFileRequired
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if assignment.CreatedByID != teacherID {
		return dto.AssignmentResponse{}, ErrNotAssignmentOwner
	}

	keyURL, err := s.relay(ctx, file)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment.AnswerKeyURL = keyURL
	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("answer key attached")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) List(ctx context.Context, teacherID uint, subject string) ([]dto.AssignmentResponse, error) {
	filter := repository.AssignmentFilter{CreatedByID: &teacherID}
	if subject != "" {
		filter.Subject = &subject
	}

	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) relay(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := validateFileType(file); err != nil {
		return "", err
	}

	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	url, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	observability.Uploads().WithLabelValues("assignment").Inc()

	return url, nil
}

func validateFileType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{"application/pdf", "application/zip", "application/x-zip-compressed", "text/plain"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedFileType, mime.String())
}
