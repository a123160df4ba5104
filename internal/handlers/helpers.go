// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"github.com/accountd/accountd/internal/auth"
	"github.com/accountd/accountd/internal/validate"
	"github.com/labstack/echo/v4"
)

// bind decodes the request into v. Malformed bodies are validation errors.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return &validate.Error{Field: "body", Message: "invalid request body"}
	}
	return nil
}

// principal returns the authenticated caller. Routes using it are behind
// the Authenticate middleware.
func principal(c echo.Context) *auth.Principal {
	return auth.GetPrincipal(c.Request().Context())
}
