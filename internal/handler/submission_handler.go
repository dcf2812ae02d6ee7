package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codecoach/codecoach-api/internal/dto"
	"github.com/codecoach/codecoach-api/internal/service"
	"github.com/codecoach/codecoach-api/internal/utils"
)

// SubmissionHandler manages code submission and result polling endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(submissionService service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: submissionService,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("/SubmitCode", h.submit)
	router.Get("/Result/:token", h.result)
	router.Get("/History/:problemId", h.history)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitCodeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Submit(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "submission dispatched", response)
}

func (h *SubmissionHandler) result(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Params("token"))
	if token == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "token is required")
	}

	response, err := h.service.Result(c.UserContext(), userIDFromContext(c), token)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission result", response)
}

func (h *SubmissionHandler) history(c *fiber.Ctx) error {
	problemID, err := parseUintParam(c, "problemId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid problem id")
	}

	response, err := h.service.History(c.UserContext(), userIDFromContext(c), problemID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission history", response)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrInvalidLanguage):
		return utils.SendError(c, fiber.StatusBadRequest, "language is not available for this problem")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, utils.ErrDecode):
		return utils.SendError(c, fiber.StatusBadRequest, "submitted code is not valid base64")
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
