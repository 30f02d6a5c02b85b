package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mileusna/useragent"
	"github.com/tech-arch1tect/verify/services/logging"
	"github.com/tech-arch1tect/verify/services/otp"
	"go.uber.org/zap"
)

type OtpHandler struct {
	service *otp.Service
	logger  *logging.Service
}

func NewOtpHandler(service *otp.Service, logger *logging.Service) *OtpHandler {
	return &OtpHandler{
		service: service,
		logger:  logger,
	}
}

func (h *OtpHandler) Send(c echo.Context) error {
	var req SendOtpRequest
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

	requestIP := c.RealIP()
	rawAgent := c.Request().UserAgent()

	ua := useragent.Parse(rawAgent)
	h.logger.Debug("otp send requested",
		zap.String("email", req.Email),
		zap.String("browser", ua.Name),
		zap.String("os", ua.OS),
		zap.Bool("bot", ua.Bot))

	expiresAt, err := h.service.SendOtp(c.Request().Context(), req.Email, requestIP, rawAgent)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return err
		case otp.IsRateLimited(err):
			h.logger.Warn("otp daily quota exceeded", zap.String("email", req.Email), zap.Error(err))
			return c.JSON(http.StatusTooManyRequests, ProblemResponse{
				Title:  "OTP request limit reached.",
				Detail: err.Error(),
			})
		case errors.Is(err, otp.ErrDeliveryFailed):
			h.logger.Warn("unable to send otp email", zap.String("email", req.Email), zap.Error(err))
			return c.JSON(http.StatusBadGateway, ProblemResponse{
				Title:  "Failed to send OTP email.",
				Detail: err.Error(),
			})
		default:
			h.logger.Error("unexpected failure while sending otp email", zap.String("email", req.Email), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ProblemResponse{
				Title: "Unexpected error while sending OTP.",
			})
		}
	}

	c.Response().Header().Set(echo.HeaderLocation, "/otp/verify")
	return c.JSON(http.StatusAccepted, OtpSendResponse{
		Email:     req.Email,
		ExpiresAt: expiresAt,
	})
}

func (h *OtpHandler) Verify(c echo.Context) error {
	var req VerifyOtpRequest
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

	if !isSixDigitCode(req.Code) {
		return c.JSON(http.StatusBadRequest, ValidationProblemResponse{
			Title:  "Invalid request.",
			Errors: map[string][]string{"Code": {"OTP code must be a 6-digit number."}},
		})
	}

	result, err := h.service.VerifyOtp(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		h.logger.Error("unexpected failure while verifying otp", zap.String("email", req.Email), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ProblemResponse{
			Title: "Unexpected error while verifying OTP.",
		})
	}

	if result.Valid {
		return c.JSON(http.StatusOK, OtpVerifyResponse{
			Email:    req.Email,
			Verified: true,
		})
	}

	return c.JSON(http.StatusBadRequest, OtpVerifyResponse{
		Email:    req.Email,
		Verified: false,
		Error:    result.Reason,
	})
}
