// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account

import "github.com/accountd/accountd/internal/models"

// MinPasswordLength is the registration password policy.
const MinPasswordLength = 12

// RegisterRequest is the public sign-up form.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	FirstName    string `json:"firstname" validate:"required"`
	LastName     string `json:"lastname" validate:"required"`
	Company      string `json:"company"`
	Password     string `json:"password" validate:"required,min=12"`
	ConfPassword string `json:"conf_password" validate:"required,eqfield=Password"`
}

// LoginRequest carries username and password.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ActivateRequest carries the activation bearer token.
type ActivateRequest struct {
	Token string `json:"token" query:"token"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfNewPassword string `json:"conf_new_password" validate:"required,eqfield=NewPassword"`
}

// ChangePasswordRequest is the authenticated password change.
type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password"`
	Password     string `json:"password"`
	ConfPassword string `json:"conf_password"`
}

// CreateAccountRequest is the admin creation form. Only the password
// confirmation is enforced.
type CreateAccountRequest struct {
	Email        string          `json:"email" validate:"required"`
	FirstName    string          `json:"firstname"`
	LastName     string          `json:"lastname"`
	Company      string          `json:"company"`
	Password     string          `json:"password" validate:"required"`
	ConfPassword string          `json:"conf_password" validate:"required,eqfield=Password"`
	Active       bool            `json:"active"`
	IsAdmin      bool            `json:"isAdmin"`
	Settings     models.Settings `json:"user_settings"`
}

// PatchAccountRequest is the admin edit. Nil fields are left unchanged;
// id, username and tokens cannot be set.
type PatchAccountRequest struct {
	Email        *string         `json:"email" validate:"omitnil,email"`
	FirstName    *string         `json:"firstname"`
	LastName     *string         `json:"lastname"`
	Company      *string         `json:"company"`
	Active       *bool           `json:"active"`
	IsAdmin      *bool           `json:"is_admin"`
	Settings     models.Settings `json:"user_settings"`
	Password     string          `json:"password"`
	ConfPassword string          `json:"conf_password"`
}

// PatchMeRequest is the self-service profile edit. active, is_admin and
// registration_date are not part of it and therefore read-only.
type PatchMeRequest struct {
	Email     *string         `json:"email" validate:"omitnil,email"`
	FirstName *string         `json:"firstname"`
	LastName  *string         `json:"lastname"`
	Company   *string         `json:"company"`
	Settings  models.Settings `json:"user_settings"`
}

// ListParams selects a page of the admin account listing.
type ListParams struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Page is one page of the admin account listing.
type Page struct {
	List  []models.Account `json:"list"`
	Count int64            `json:"count"`
	Pages int64            `json:"pages"`
	Limit int              `json:"limit"`
	Page  int              `json:"page"`
}
