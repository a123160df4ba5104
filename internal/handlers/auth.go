// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/accountd/accountd/internal/middleware"
	"github.com/accountd/accountd/internal/services/account"
	"github.com/labstack/echo/v4"
)

// Authenticate logs a user in. On /authenticate/admin only admins may log in.
func (h *Handlers) Authenticate(c echo.Context) error {
	var req account.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.accounts.Authenticate(c.Request().Context(), req, c.Param("admin") == "admin")
	if err != nil {
		return err
	}

	if h.sessions != nil {
		cookie, err := h.sessions.Create(res.Account.ID, res.Token)
		if err != nil {
			slog.Error("failed to create session cookie", "error", err, "account_id", res.Account.ID)
		} else {
			c.SetCookie(cookie)
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"token": res.Token})
}

// Register creates an inactive account and sends the activation mail.
func (h *Handlers) Register(c echo.Context) error {
	var req account.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	acc, err := h.accounts.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, acc)
}

// Activate activates the account behind the posted token.
func (h *Handlers) Activate(c echo.Context) error {
	var req account.ActivateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if _, err := h.accounts.Activate(c.Request().Context(), req.Token); err != nil {
		return err
	}
	return message(c, http.StatusOK, "User successfully activated")
}

// ForgotPassword sends a password reset link.
func (h *Handlers) ForgotPassword(c echo.Context) error {
	var req account.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ForgotPassword(c.Request().Context(), req); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Reset password email sent")
}

// ResetPassword sets a new password using a reset token.
func (h *Handlers) ResetPassword(c echo.Context) error {
	var req account.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if _, err := h.accounts.ResetPassword(c.Request().Context(), req); err != nil {
		return err
	}
	return message(c, http.StatusOK, "Password has been reset")
}

// Logout clears the session cookie. Bearer tokens stay valid until they
// expire or the security token rotates.
func (h *Handlers) Logout(c echo.Context) error {
	if h.sessions != nil {
		c.SetCookie(h.sessions.Clear())
	}
	return message(c, http.StatusOK, "Logged out")
}

// VerifyToken reports the account id of a valid token.
func (h *Handlers) VerifyToken(c echo.Context) error {
	tok := middleware.TokenFromRequest(c, h.sessions)
	if tok == "" {
		return message(c, http.StatusNotFound, "You don't have a valid token")
	}

	res, err := h.accounts.Codec().Decode(c.Request().Context(), tok)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"id": res.Account.ID})
}
