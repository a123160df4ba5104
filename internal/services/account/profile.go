// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account

import (
	"context"
	"log/slog"

	"github.com/accountd/accountd/internal/models"
)

// GetMe returns the self-service profile.
func (s *Service) GetMe(ctx context.Context, id string) (map[string]any, error) {
	acc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return acc.Profile(), nil
}

// PatchMe updates the caller's own profile fields.
func (s *Service) PatchMe(ctx context.Context, id string, req PatchMeRequest) (map[string]any, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	acc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	setString(&acc.Email, req.Email)
	setString(&acc.FirstName, req.FirstName)
	setString(&acc.LastName, req.LastName)
	setString(&acc.Company, req.Company)
	if req.Settings != nil {
		acc.Settings = req.Settings
	}
	if err := s.save(ctx, acc); err != nil {
		return nil, err
	}
	slog.Info("profile_updated", "account_id", acc.ID)
	return acc.Profile(), nil
}

// UpdateSettings replaces the caller's settings bag.
func (s *Service) UpdateSettings(ctx context.Context, id string, settings models.Settings) (map[string]any, error) {
	acc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	acc.Settings = settings
	if err := s.save(ctx, acc); err != nil {
		return nil, err
	}
	return acc.Profile(), nil
}
