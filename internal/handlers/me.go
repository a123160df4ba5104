// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/accountd/accountd/internal/models"
	"github.com/accountd/accountd/internal/services/account"
	"github.com/labstack/echo/v4"
)

// GetMe returns the caller's profile.
func (h *Handlers) GetMe(c echo.Context) error {
	me, err := h.accounts.GetMe(c.Request().Context(), principal(c).AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, me)
}

// PatchMe edits the caller's profile.
func (h *Handlers) PatchMe(c echo.Context) error {
	var req account.PatchMeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	me, err := h.accounts.PatchMe(c.Request().Context(), principal(c).AccountID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, me)
}

type settingsRequest struct {
	Settings models.Settings `json:"settings"`
}

// UpdateSettings replaces the caller's settings.
func (h *Handlers) UpdateSettings(c echo.Context) error {
	var req settingsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	me, err := h.accounts.UpdateSettings(c.Request().Context(), principal(c).AccountID, req.Settings)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, me)
}

// UpdatePassword changes the caller's password.
func (h *Handlers) UpdatePassword(c echo.Context) error {
	var req account.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ChangePassword(c.Request().Context(), principal(c).AccountID, req); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Password updated")
}
