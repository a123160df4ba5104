// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/accountd/accountd/internal/models"
	"github.com/accountd/accountd/internal/repository"
)

// minChangedPasswordLength applies to the authenticated password change.
const minChangedPasswordLength = 8

// Register creates an inactive account with one seeded security token and
// sends the activation mail.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := s.validator.Validate(req); err != nil {
		return nil, passwordPolicy(err)
	}

	hash, err := s.hashPassword(ctx, "password", req.Password)
	if err != nil {
		return nil, err
	}
	acc := &models.Account{
		Username:     req.Email,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Company:      req.Company,
		PasswordHash: hash,
	}
	rec, err := s.tokens.Issue(ctx, acc)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}

	slog.Info("register_success", "account_id", acc.ID, "email", acc.Email)
	s.notify(ctx, mailActivation, acc, rec.Token)
	return acc.Public(), nil
}

// Activate flips the account behind an activation token to active and
// consumes the embedded security token.
func (s *Service) Activate(ctx context.Context, signed string) (*models.Account, error) {
	if signed == "" {
		return nil, ErrMissingToken
	}
	res, err := s.codec.Decode(ctx, signed)
	if err != nil {
		return nil, err
	}

	acc := res.Account
	acc.Active = true
	acc.Tokens = s.tokens.MarkUsed(acc, res.SecurityToken)
	if err := s.save(ctx, acc); err != nil {
		return nil, err
	}
	slog.Info("activation_success", "account_id", acc.ID)
	return acc.Public(), nil
}

// LoginResult is a successful authentication.
type LoginResult struct {
	Token   string
	Account *models.Account
}

// Authenticate checks credentials and returns a session bearer token. With
// adminOnly set, non-admin accounts are refused. Inactive accounts get the
// activation mail again.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest, adminOnly bool) (*LoginResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	acc, err := s.store.FindOne(ctx, repository.Filter{Username: strings.TrimSpace(req.Username)})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.CompareDummy(ctx, req.Password)
			slog.Warn("login_failed", "reason", "unknown_user")
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !s.hasher.Verify(ctx, req.Password, acc.PasswordHash) {
		slog.Warn("login_failed", "reason", "bad_password", "account_id", acc.ID)
		return nil, ErrBadCredentials
	}
	if adminOnly && !acc.IsAdmin {
		slog.Warn("login_failed", "reason", "not_admin", "account_id", acc.ID)
		return nil, ErrForbidden
	}
	if !acc.Active {
		s.notify(ctx, mailActivation, acc, "")
		return nil, ErrAccountInactive
	}

	now := s.tokens.Now()
	acc.LastLogin = &now
	signed, err := s.codec.EncodeSession(ctx, acc)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, acc); err != nil {
		return nil, err
	}

	slog.Info("login_success", "account_id", acc.ID, "admin", acc.IsAdmin)
	return &LoginResult{Token: signed, Account: acc.Public()}, nil
}

// ForgotPassword rotates the security token of the account with the given
// email and sends a reset link bound to the new token.
func (s *Service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	acc, err := s.store.FindOne(ctx, repository.Filter{Email: req.Email})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to load account: %w", err)
	}
	rec, err := s.tokens.Issue(ctx, acc)
	if err != nil {
		return err
	}

	slog.Info("password_reset_requested", "account_id", acc.ID)
	s.notify(ctx, mailReset, acc, rec.Token)
	return nil
}

// ResetPassword sets a new password for the account behind a reset token
// and consumes the embedded security token.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*models.Account, error) {
	if req.Token == "" {
		return nil, ErrMissingToken
	}
	res, err := s.codec.Decode(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, passwordPolicy(err)
	}

	hash, err := s.hashPassword(ctx, "new_password", req.NewPassword)
	if err != nil {
		return nil, err
	}
	acc := res.Account
	acc.PasswordHash = hash
	acc.Tokens = s.tokens.MarkUsed(acc, res.SecurityToken)
	if err := s.save(ctx, acc); err != nil {
		return nil, err
	}
	slog.Info("password_reset_success", "account_id", acc.ID)
	return acc.Public(), nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id string, req ChangePasswordRequest) error {
	acc, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(ctx, req.OldPassword, acc.PasswordHash) {
		return ErrCurrentPasswordIncorrect
	}
	if req.Password != req.ConfPassword || len(req.Password) < minChangedPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("passwords must match and be at least %d characters long", minChangedPasswordLength),
			Err:     ErrPasswordPolicy,
		}
	}

	hash, err := s.hashPassword(ctx, "password", req.Password)
	if err != nil {
		return err
	}
	acc.PasswordHash = hash
	if err := s.save(ctx, acc); err != nil {
		return err
	}
	slog.Info("password_changed", "account_id", acc.ID)
	return nil
}

// passwordPolicy tags validation failures on password fields with
// ErrPasswordPolicy.
func passwordPolicy(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) && strings.Contains(verr.Field, "password") {
		verr.Err = ErrPasswordPolicy
	}
	return err
}
