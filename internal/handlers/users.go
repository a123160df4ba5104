// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/accountd/accountd/internal/services/account"
	"github.com/labstack/echo/v4"
)

// ListUsers returns a page of accounts.
func (h *Handlers) ListUsers(c echo.Context) error {
	var p account.ListParams
	if err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		BindError(); err != nil {
		return &account.ValidationError{Field: "page", Message: "page and limit must be numbers"}
	}

	page, err := h.accounts.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ListAdmins returns the active admins.
func (h *Handlers) ListAdmins(c echo.Context) error {
	admins, err := h.accounts.ListAdmins(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, admins)
}

// CreateUser creates an account on behalf of an admin.
func (h *Handlers) CreateUser(c echo.Context) error {
	var req account.CreateAccountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	acc, err := h.accounts.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, acc)
}

// GetUser returns one account.
func (h *Handlers) GetUser(c echo.Context) error {
	acc, err := h.accounts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

// PatchUser edits an account.
func (h *Handlers) PatchUser(c echo.Context) error {
	var req account.PatchAccountRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	acc, err := h.accounts.Patch(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}

// DeleteUser removes an account.
func (h *Handlers) DeleteUser(c echo.Context) error {
	if err := h.accounts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return message(c, http.StatusOK, "User deleted successfully")
}
