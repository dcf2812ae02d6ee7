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

// ProblemHandler manages problem catalog endpoints.
type ProblemHandler struct {
	service   service.ProblemService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProblemHandler builds a problem handler instance.
func NewProblemHandler(problemService service.ProblemService, validate *validator.Validate, logger zerolog.Logger) *ProblemHandler {
	return &ProblemHandler{
		service:   problemService,
		validator: validate,
		logger:    logger.With().Str("component", "problem_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ProblemHandler) Register(router fiber.Router) {
	router.Post("/problem-details", h.details)
	router.Get("/problems", h.list)
	router.Get("/languages", h.languages)
}

func (h *ProblemHandler) details(c *fiber.Ctx) error {
	var payload dto.ProblemDetailsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	response, err := h.service.Details(c.UserContext(), payload.ProblemID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem details", response)
}

func (h *ProblemHandler) list(c *fiber.Ctx) error {
	response, err := h.service.List(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problems retrieved", response)
}

func (h *ProblemHandler) languages(c *fiber.Ctx) error {
	response, err := h.service.Languages(c.UserContext())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "judge languages", response)
}

func (h *ProblemHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem not found")
	case errors.Is(err, service.ErrJudgeUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "judge is unavailable")
	case errors.Is(err, service.ErrJudgeUpstream):
		return utils.SendError(c, fiber.StatusBadGateway, "judge request failed")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
