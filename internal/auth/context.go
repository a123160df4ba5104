// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides authentication context helpers.
package auth

import (
	"context"
)

type principalKey struct{}

// Principal is the caller identified by a verified bearer token.
type Principal struct {
	AccountID     string
	Username      string
	SecurityToken string
	IsAdmin       bool // from the token claims; may be stale
	Token         string
}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipal returns the authenticated caller, or nil if not authenticated.
func GetPrincipal(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey{}).(*Principal); ok {
		return p
	}
	return nil
}

// IsAuthenticated returns true if the context has an authenticated caller.
func IsAuthenticated(ctx context.Context) bool {
	return GetPrincipal(ctx) != nil
}
