package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Prajjwal888/Smart-Check-AI/internal/dto"
	"github.com/Prajjwal888/Smart-Check-AI/internal/service"
	"github.com/Prajjwal888/Smart-Check-AI/internal/utils"
)

const defaultRecentLimit = 10

// SubmissionHandler wires submission HTTP routes for both roles.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// RegisterTeacher attaches the teacher-side listing endpoints.
func (h *SubmissionHandler) RegisterTeacher(router fiber.Router) {
	router.Get("/assignments/:id/submissions", h.listForAssignment)
	router.Get("/submissions/recent", h.recent)
}

// RegisterStudent attaches the student-side submission endpoints.
func (h *SubmissionHandler) RegisterStudent(router fiber.Router) {
	router.Post("/submissions", h.submit)
	router.Get("/assignments", h.feed)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	assignmentID, err := strconv.ParseUint(c.FormValue("assignment_id"), 10, 64)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment_id")
	}

	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	payload := dto.SubmissionCreateRequest{AssignmentID: uint(assignmentID)}

	submission, err := h.service.Submit(c.Context(), userIDFromContext(c), payload, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case errors.Is(err, service.ErrFileRequired),
			errors.Is(err, service.ErrUnsupportedFileType):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", submission)
}

func (h *SubmissionHandler) listForAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.ListForAssignment(c.Context(), assignmentID)
	if err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) recent(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if limit == 0 {
		limit = defaultRecentLimit
	}

	submissions, err := h.service.RecentForTeacher(c.Context(), userIDFromContext(c), limit)
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "recent submissions retrieved", submissions)
}

func (h *SubmissionHandler) feed(c *fiber.Ctx) error {
	entries, err := h.service.StudentFeed(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", entries)
}

func (h *SubmissionHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
