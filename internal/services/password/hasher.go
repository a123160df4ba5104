// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package password hashes and verifies account credentials with bcrypt.
package password

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// MaxLength is the longest plaintext bcrypt accepts, in bytes.
const MaxLength = 72

// ErrTooLong is returned by Hash for plaintext longer than MaxLength bytes.
var ErrTooLong = fmt.Errorf("password must not be longer than %d bytes", MaxLength)

// Hasher bounds how many bcrypt operations run at once so hashing bursts
// cannot starve request handling.
type Hasher struct {
	cost  int
	sem   *semaphore.Weighted
	dummy []byte
}

// NewHasher creates a Hasher. A cost outside bcrypt's range falls back to
// bcrypt.DefaultCost; a concurrency of zero or less means GOMAXPROCS.
func NewHasher(cost, concurrency int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	// same cost as real hashes so CompareDummy takes as long as Verify
	dummy, _ := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	return &Hasher{
		cost:  cost,
		sem:   semaphore.NewWeighted(int64(concurrency)),
		dummy: dummy,
	}
}

// Hash returns a salted bcrypt hash of plaintext.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > MaxLength {
		return "", ErrTooLong
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes and
// cancelled contexts yield false.
func (h *Hasher) Verify(ctx context.Context, plaintext, hash string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// CompareDummy runs a full bcrypt comparison against a fixed hash and
// always reports false. Logins for unknown users call it so they take as
// long as logins with a wrong password.
func (h *Hasher) CompareDummy(ctx context.Context, plaintext string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
	return false
}
