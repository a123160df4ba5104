// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/accountd/accountd/internal/models"
	"github.com/accountd/accountd/internal/repository"
)

// errNoCurrentToken is only reachable if a freshly issued token is not
// current, e.g. with a clock that jumps past its expiry.
var errNoCurrentToken = errors.New("no current security token after rotation")

// Manager operates on an account's token collection and persists the
// account after every issuance.
type Manager struct {
	store  repository.AccountStore
	secret string
	now    func() time.Time
	seq    atomic.Uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager signing tokens with secret.
func NewManager(store repository.AccountStore, secret string, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		secret: secret,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Now returns the manager's notion of the current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Current returns the account's current token, rotating when none is
// valid. The lookup runs at most twice.
func (m *Manager) Current(ctx context.Context, acc *models.Account) (models.TokenRecord, error) {
	for range 2 {
		if rec, ok := acc.CurrentToken(m.now()); ok {
			return *rec, nil
		}
		if _, err := m.Issue(ctx, acc); err != nil {
			return models.TokenRecord{}, err
		}
	}
	return models.TokenRecord{}, errNoCurrentToken
}

// Issue invalidates all existing tokens, appends a fresh one and saves
// the account.
func (m *Manager) Issue(ctx context.Context, acc *models.Account) (models.TokenRecord, error) {
	now := m.now()
	rec := acc.AppendToken(m.generate(now), now)
	if err := m.store.Save(ctx, acc); err != nil {
		return models.TokenRecord{}, fmt.Errorf("failed to save issued token: %w", err)
	}
	return rec, nil
}

// MarkUsed flags value as used on acc. The caller persists the account.
func (m *Manager) MarkUsed(acc *models.Account, value string) models.Tokens {
	return acc.MarkTokenUsed(value)
}

func (m *Manager) generate(now time.Time) string {
	salt := strconv.FormatInt(now.UnixNano(), 10) + "." + strconv.FormatUint(m.seq.Add(1), 10)
	return Generate(m.secret, salt)
}
