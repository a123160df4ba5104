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

const (
	defaultPageLimit = 20
	defaultPage      = 1
)

// List returns one page of accounts sorted by email, without tokens.
func (s *Service) List(ctx context.Context, p ListParams) (*Page, error) {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Page <= 0 {
		p.Page = defaultPage
	}

	count, err := s.store.Count(ctx, repository.Filter{})
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	list, err := s.store.Find(ctx, repository.Filter{}, repository.FindOptions{
		Limit:      p.Limit,
		Skip:       (p.Page - 1) * p.Limit,
		OmitTokens: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if list == nil {
		list = []models.Account{}
	}

	limit := int64(p.Limit)
	return &Page{
		List:  list,
		Count: count,
		Pages: (count + limit - 1) / limit,
		Limit: p.Limit,
		Page:  p.Page,
	}, nil
}

// ListAdmins returns the active admin accounts.
func (s *Service) ListAdmins(ctx context.Context) ([]models.Account, error) {
	list, err := s.store.Find(ctx, repository.Filter{
		Active:  repository.Bool(true),
		IsAdmin: repository.Bool(true),
	}, repository.FindOptions{OmitTokens: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	if list == nil {
		list = []models.Account{}
	}
	return list, nil
}

// Get returns the public view of an account.
func (s *Service) Get(ctx context.Context, id string) (*models.Account, error) {
	acc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return acc.Public(), nil
}

// Create stores an account on behalf of an admin. No security token is
// seeded and no mail is sent.
func (s *Service) Create(ctx context.Context, req CreateAccountRequest) (*models.Account, error) {
	req.Email = strings.TrimSpace(req.Email)
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
		Active:       req.Active,
		IsAdmin:      req.IsAdmin,
		Settings:     req.Settings,
	}
	if err := s.save(ctx, acc); err != nil {
		return nil, err
	}
	slog.Info("account_created", "account_id", acc.ID, "admin", acc.IsAdmin)
	return acc.Public(), nil
}

// Patch applies an admin edit. A non-empty password must match its
// confirmation; an empty one leaves the password unchanged.
func (s *Service) Patch(ctx context.Context, id string, req PatchAccountRequest) (*models.Account, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Password != "" && req.Password != req.ConfPassword {
		return nil, &ValidationError{Field: "conf_password", Message: "passwords do not match", Err: ErrPasswordPolicy}
	}

	acc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	setString(&acc.Email, req.Email)
	setString(&acc.FirstName, req.FirstName)
	setString(&acc.LastName, req.LastName)
	setString(&acc.Company, req.Company)
	if req.Active != nil {
		acc.Active = *req.Active
	}
	if req.IsAdmin != nil {
		acc.IsAdmin = *req.IsAdmin
	}
	if req.Settings != nil {
		acc.Settings = req.Settings
	}
	if req.Password != "" {
		hash, err := s.hashPassword(ctx, "password", req.Password)
		if err != nil {
			return nil, err
		}
		acc.PasswordHash = hash
	}

	if err := s.save(ctx, acc); err != nil {
		return nil, err
	}
	slog.Info("account_updated", "account_id", acc.ID)
	return acc.Public(), nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	slog.Info("account_deleted", "account_id", id)
	return nil
}

// RequireAdmin returns ErrForbidden unless id names an admin account.
func (s *Service) RequireAdmin(ctx context.Context, id string) error {
	acc, err := s.load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrForbidden
		}
		return err
	}
	if !acc.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// EnsureAdmin makes sure an active admin with the given email exists and
// sets its password. It reports whether the account was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, plaintext string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || plaintext == "" {
		return false, &ValidationError{Field: "email", Message: "email and password are required"}
	}
	hash, err := s.hashPassword(ctx, "password", plaintext)
	if err != nil {
		return false, err
	}

	acc, err := s.store.FindOne(ctx, repository.Filter{Username: email})
	created := false
	switch {
	case errors.Is(err, repository.ErrNotFound):
		acc = &models.Account{
			Username:  email,
			Email:     email,
			FirstName: "Admin",
			LastName:  "Admin",
		}
		created = true
	case err != nil:
		return false, fmt.Errorf("failed to load account: %w", err)
	}

	acc.PasswordHash = hash
	acc.Active = true
	acc.IsAdmin = true
	if err := s.save(ctx, acc); err != nil {
		return false, err
	}
	slog.Info("admin_ensured", "account_id", acc.ID, "created", created)
	return created, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
