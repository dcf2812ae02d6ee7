package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codecoach/codecoach-api/internal/dto"
	"github.com/codecoach/codecoach-api/internal/service"
	"github.com/codecoach/codecoach-api/internal/utils"
)

// TutorHandler manages AI conversation endpoints.
type TutorHandler struct {
	service service.TutorService
	logger  zerolog.Logger
}

// NewTutorHandler builds a tutor handler instance.
func NewTutorHandler(tutorService service.TutorService, logger zerolog.Logger) *TutorHandler {
	return &TutorHandler{
		service: tutorService,
		logger:  logger.With().Str("component", "tutor_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The chat route
// takes an extra rate limiter since every call reaches a paid upstream.
func (h *TutorHandler) Register(router fiber.Router, chatLimiter fiber.Handler) {
	if chatLimiter != nil {
		router.Post("/ChatGPT", chatLimiter, h.chat)
	} else {
		router.Post("/ChatGPT", h.chat)
	}
	router.Get("", h.list)
}

func (h *TutorHandler) chat(c *fiber.Ctx) error {
	var payload dto.TutorChatRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.SendMessage(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "tutor reply", response)
}

func (h *TutorHandler) list(c *fiber.Ctx) error {
	response, err := h.service.Conversations(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "conversations retrieved", response)
}

func (h *TutorHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrNoActiveAPIKey):
		return utils.SendError(c, fiber.StatusPreconditionFailed, "no active api key configured")
	case errors.Is(err, service.ErrTutorUnauthorized):
		return utils.SendError(c, fiber.StatusUnauthorized, "api key was rejected by the provider")
	case errors.Is(err, service.ErrTutorUpstream):
		return utils.SendError(c, fiber.StatusBadGateway, "tutor request failed")
	case errors.Is(err, service.ErrConversationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "conversation not found")
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem not found")
	case errors.Is(err, service.ErrEmptyMessage):
		return utils.SendError(c, fiber.StatusBadRequest, "message is empty")
	case errors.Is(err, utils.ErrDecode):
		return utils.SendError(c, fiber.StatusBadRequest, "message is not valid base64")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
