// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"errors"

	"github.com/accountd/accountd/internal/models"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a save violates the username unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// Filter selects accounts. Zero values are ignored.
type Filter struct {
	Username string
	Email    string
	Active   *bool
	IsAdmin  *bool
}

// FindOptions controls listing. Results are always sorted by email ascending.
type FindOptions struct {
	Limit      int
	Skip       int
	OmitTokens bool
}

// AccountStore is the document repository the services depend on. Save
// replaces the whole document, tokens included; concurrent saves of the
// same account are last-write-wins.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindOne(ctx context.Context, f Filter) (*models.Account, error)
	Find(ctx context.Context, f Filter, opts FindOptions) ([]models.Account, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Save(ctx context.Context, acc *models.Account) error
	// Delete returns ErrNotFound when id does not exist.
	Delete(ctx context.Context, id string) error
}

// Bool returns a pointer to b, for Filter fields.
func Bool(b bool) *bool {
	return &b
}
