package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Prajjwal888/Smart-Check-AI/internal/service"
	"github.com/Prajjwal888/Smart-Check-AI/internal/utils"
	"github.com/Prajjwal888/Smart-Check-AI/pkg/analysis"
)

// EvaluationHandler triggers the grading aggregation pipeline.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches the evaluation endpoint to the router group.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/assignments/:id/evaluate", h.evaluate)
}

func (h *EvaluationHandler) evaluate(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.Evaluate(c.Context(), assignmentID)
	if err != nil {
		var upstream *analysis.UpstreamError
		switch {
		case errors.Is(err, service.ErrAssignmentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		case errors.Is(err, service.ErrAnswerKeyMissing):
			return utils.SendError(c, fiber.StatusBadRequest, "assignment has no answer key")
		case errors.Is(err, service.ErrNothingToEvaluate):
			return utils.SendError(c, fiber.StatusBadRequest, "no checked submissions to evaluate")
		case errors.As(err, &upstream):
			requestLogger(h.logger, c).Error().Err(err).Msg("grading service failed")
			return utils.SendError(c, fiber.StatusBadGateway, upstream.Error())
		default:
			return h.internalError(c, err)
		}
	}

	return utils.SendSuccess(c, result.Message, result)
}

func (h *EvaluationHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
