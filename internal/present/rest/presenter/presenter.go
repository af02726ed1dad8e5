package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicsignal/petitiond/internal/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

// Error maps a domain error to its HTTP representation. Every response
// carries a stable machine-checkable code; internal detail never reaches the
// client.
func Error(c echo.Context, err error) error {
	status, code := classify(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("path", c.Request().URL.Path),
			slog.String("error", err.Error()),
		)
		message = "internal server error"
		if code == "dependency_failure" {
			message = "a downstream service is unavailable"
		}
	}

	return c.JSON(status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, domain.ErrCaptchaFailed):
		return http.StatusBadRequest, "captcha_failed"
	case errors.Is(err, domain.ErrAuthenticationRequired):
		return http.StatusUnauthorized, "authentication_required"
	case errors.Is(err, domain.ErrAuthorizationDenied):
		return http.StatusForbidden, "authorization_denied"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrDuplicateSignature):
		return http.StatusConflict, "duplicate_signature"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrPetitionClosed):
		return http.StatusConflict, "petition_closed"
	case errors.Is(err, domain.ErrDependency):
		return http.StatusBadGateway, "dependency_failure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func BadRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{Code: "validation_error", Message: err.Error()}})
}
