package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type SendOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type WelcomeEmailRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Subject  string `json:"subject" validate:"required"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body"`
}

type OtpSendResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type OtpVerifyResponse struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
}

type ProblemResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

type ValidationProblemResponse struct {
	Title  string              `json:"title"`
	Errors map[string][]string `json:"errors"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validationErrors(err error) map[string][]string {
	errs := make(map[string][]string)

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		errs[""] = []string{"Request body is invalid."}
		return errs
	}

	for _, fe := range fieldErrors {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			errs[field] = append(errs[field], field+" is required.")
		case "email":
			errs[field] = append(errs[field], "Email format is invalid.")
		default:
			errs[field] = append(errs[field], field+" is invalid.")
		}
	}

	return errs
}

// isSixDigitCode reports whether the trimmed code is exactly six decimal
// digits. Request-shape concern; the engine only ever sees trimmed codes.
func isSixDigitCode(code string) bool {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != 6 {
		return false
	}
	for _, c := range trimmed {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
