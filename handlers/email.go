package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/verify/services/logging"
	"github.com/tech-arch1tect/verify/services/mail"
	"go.uber.org/zap"
)

type EmailHandler struct {
	mailService *mail.Service
	logger      *logging.Service
}

func NewEmailHandler(mailService *mail.Service, logger *logging.Service) *EmailHandler {
	return &EmailHandler{
		mailService: mailService,
		logger:      logger,
	}
}

func (h *EmailHandler) SendWelcome(c echo.Context) error {
	var req WelcomeEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ValidationProblemResponse{
			Title:  "Invalid request.",
			Errors: map[string][]string{"": {"Request body is required."}},
		})
	}

	if err := validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ValidationProblemResponse{
			Title:  "Invalid request.",
			Errors: validationErrors(err),
		})
	}

	if strings.TrimSpace(req.TextBody) == "" && strings.TrimSpace(req.HTMLBody) == "" {
		return c.JSON(http.StatusBadRequest, ValidationProblemResponse{
			Title:  "Invalid request.",
			Errors: map[string][]string{"TextBody": {"A text or HTML body is required."}},
		})
	}

	err := h.mailService.SendMessage(c.Request().Context(), req.Email, req.Subject, req.TextBody, req.HTMLBody)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		h.logger.Warn("unable to send welcome email", zap.String("email", req.Email), zap.Error(err))
		return c.JSON(http.StatusBadGateway, ProblemResponse{
			Title:  "Failed to send welcome email.",
			Detail: err.Error(),
		})
	}

	return c.NoContent(http.StatusAccepted)
}
