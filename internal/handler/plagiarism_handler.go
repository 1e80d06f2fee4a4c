package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Prajjwal888/Smart-Check-AI/internal/service"
	"github.com/Prajjwal888/Smart-Check-AI/internal/utils"
	"github.com/Prajjwal888/Smart-Check-AI/pkg/analysis"
)

// PlagiarismHandler triggers the plagiarism aggregation pipeline.
type PlagiarismHandler struct {
	service service.PlagiarismService
	logger  zerolog.Logger
}

// NewPlagiarismHandler constructs the handler.
func NewPlagiarismHandler(service service.PlagiarismService, logger zerolog.Logger) *PlagiarismHandler {
	return &PlagiarismHandler{
		service: service,
		logger:  logger.With().Str("component", "plagiarism_handler").Logger(),
	}
}

// Register attaches the plagiarism check endpoint to the router group.
func (h *PlagiarismHandler) Register(router fiber.Router) {
	router.Post("/assignments/:id/check-plagiarism", h.check)
}

func (h *PlagiarismHandler) check(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.service.Check(c.Context(), assignmentID)
	if err != nil {
		var upstream *analysis.UpstreamError
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case errors.Is(err, service.ErrNotEnoughSubmissions):
			return utils.SendError(c, fiber.StatusBadRequest, "at least two submissions are required")
		case errors.As(err, &upstream):
			requestLogger(h.logger, c).Error().Err(err).Msg("similarity service failed")
			return utils.SendError(c, fiber.StatusBadGateway, upstream.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccess(c, "plagiarism check completed", report)
}

func (h *PlagiarismHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
