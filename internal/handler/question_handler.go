package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Prajjwal888/Smart-Check-AI/internal/dto"
	"github.com/Prajjwal888/Smart-Check-AI/internal/service"
	"github.com/Prajjwal888/Smart-Check-AI/internal/utils"
)

// QuestionHandler wires the AI question generation endpoint.
type QuestionHandler struct {
	service service.QuestionService
	logger  zerolog.Logger
}

// NewQuestionHandler constructs the handler.
func NewQuestionHandler(service service.QuestionService, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		service: service,
		logger:  logger.With().Str("component", "question_handler").Logger(),
	}
}

// Register attaches the question generation endpoint to the router group.
func (h *QuestionHandler) Register(router fiber.Router) {
	router.Post("/questions/generate", h.generate)
}

func (h *QuestionHandler) generate(c *fiber.Ctx) error {
	var payload dto.QuestionGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	questions, err := h.service.Generate(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("question generation failed")
		return utils.SendError(c, fiber.StatusBadGateway, "question generation failed")
	}

	return utils.SendSuccess(c, "questions generated", questions)
}
