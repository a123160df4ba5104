// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers exposes the account service as a JSON API.
package handlers

import (
	"net/http"
	"time"

	"github.com/accountd/accountd/internal/services/account"
	"github.com/accountd/accountd/internal/services/session"
	"github.com/labstack/echo/v4"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	accounts *account.Service
	sessions *session.Manager
	version  string
	started  time.Time
}

// New creates a new Handlers instance. sessions may be nil, in which case
// no session cookie is issued.
func New(accounts *account.Service, sessions *session.Manager, version string) *Handlers {
	return &Handlers{
		accounts: accounts,
		sessions: sessions,
		version:  version,
		started:  time.Now(),
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Version reports the running build. Responses are never cached.
func (h *Handlers) Version(c echo.Context) error {
	hdr := c.Response().Header()
	hdr.Set("Cache-Control", "private, no-cache, no-store, must-revalidate")
	hdr.Set("Expires", "-1")
	hdr.Set("Pragma", "no-cache")
	return c.JSON(http.StatusOK, map[string]any{
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

func message(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"message": msg})
}
