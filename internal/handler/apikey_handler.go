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

// APIKeyHandler manages stored credential endpoints.
type APIKeyHandler struct {
	service service.APIKeyService
	logger  zerolog.Logger
}

// NewAPIKeyHandler builds an API key handler instance.
func NewAPIKeyHandler(apiKeyService service.APIKeyService, logger zerolog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		service: apiKeyService,
		logger:  logger.With().Str("component", "apikey_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *APIKeyHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.remove)
	router.Post("/:id/activate", h.activate)
}

func (h *APIKeyHandler) list(c *fiber.Ctx) error {
	keys, err := h.service.List(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "api keys retrieved", keys)
}

func (h *APIKeyHandler) create(c *fiber.Ctx) error {
	var payload dto.APIKeyCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	key, err := h.service.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "api key stored", key)
}

func (h *APIKeyHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid key id")
	}

	var payload dto.APIKeyUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	key, err := h.service.Update(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "api key updated", key)
}

func (h *APIKeyHandler) remove(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid key id")
	}

	if err := h.service.Delete(c.UserContext(), userIDFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "api key deleted", nil)
}

func (h *APIKeyHandler) activate(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid key id")
	}

	if err := h.service.SetActive(c.UserContext(), userIDFromContext(c), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "api key activated", nil)
}

func (h *APIKeyHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAPIKeyNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "api key not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
