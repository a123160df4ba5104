// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/accountd/accountd/internal/middleware"
	"github.com/accountd/accountd/internal/services/account"
	"github.com/accountd/accountd/internal/services/bearer"
	"github.com/accountd/accountd/internal/validate"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the error envelope of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorHandler is the echo.HTTPErrorHandler of the API.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, body := errorResponse(err)
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request_failed", "error", err, "path", c.Request().URL.Path)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, body)
	}
	if werr != nil {
		slog.Error("failed to write error response", "error", werr)
	}
}

func errorResponse(err error) (int, ErrorResponse) {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest, ErrorResponse{Message: verr.Message, Error: verr.Field}
	}
	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		return herr.Code, ErrorResponse{Message: fmt.Sprint(herr.Message)}
	}

	switch {
	case errors.Is(err, middleware.ErrNoToken),
		errors.Is(err, bearer.ErrTokenInvalid),
		errors.Is(err, bearer.ErrUserNotFound),
		errors.Is(err, bearer.ErrSecurityTokenMismatch):
		return http.StatusUnauthorized, ErrorResponse{Message: "failed to authenticate token", Error: err.Error()}
	case errors.Is(err, account.ErrAccountInactive),
		errors.Is(err, account.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Message: err.Error()}
	case errors.Is(err, account.ErrAccountNotFound):
		return http.StatusNotFound, ErrorResponse{Message: err.Error()}
	case errors.Is(err, account.ErrDuplicateAccount):
		return http.StatusConflict, ErrorResponse{Message: err.Error()}
	case errors.Is(err, account.ErrMissingToken),
		errors.Is(err, account.ErrBadCredentials),
		errors.Is(err, account.ErrCurrentPasswordIncorrect),
		errors.Is(err, account.ErrPasswordPolicy):
		return http.StatusBadRequest, ErrorResponse{Message: err.Error()}
	}

	return http.StatusInternalServerError, ErrorResponse{Message: "internal server error", Error: err.Error()}
}
