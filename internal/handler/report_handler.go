package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Prajjwal888/Smart-Check-AI/internal/service"
	"github.com/Prajjwal888/Smart-Check-AI/internal/utils"
	"github.com/Prajjwal888/Smart-Check-AI/pkg/analysis"
)

// ReportHandler serves the class performance report.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches the report endpoint to the router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Post("/assignments/:id/report", h.generate)
}

func (h *ReportHandler) generate(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.service.ClassReport(c.Context(), assignmentID)
	if err != nil {
		var upstream *analysis.UpstreamError
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case errors.Is(err, service.ErrNothingToReport):
			return utils.SendError(c, fiber.StatusBadRequest, "no evaluated submissions to report on")
		case errors.As(err, &upstream):
			requestLogger(h.logger, c).Error().Err(err).Msg("report service failed")
			return utils.SendError(c, fiber.StatusBadGateway, upstream.Error())
		default:
			return h.internalError(c, err)
		}
	}

	// The report is a standalone HTML document rendered upstream; it is
	// returned verbatim instead of wrapped in the JSON envelope.
	c.Type("html", "utf-8")
	return c.SendString(report)
}

func (h *ReportHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
