// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package bearer signs and verifies the short-lived bearer tokens handed to
// clients. Every bearer token embeds the account's current security token,
// so rotating the security token revokes all bearer tokens issued before.
package bearer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/accountd/accountd/internal/models"
	"github.com/accountd/accountd/internal/repository"
	"github.com/accountd/accountd/internal/services/token"
	"github.com/golang-jwt/jwt/v5"
)

// Lifetime is the validity of a bearer token.
const Lifetime = 24 * time.Hour

var (
	ErrTokenInvalid          = errors.New("token invalid")
	ErrTokenExpired          = fmt.Errorf("%w: expired", ErrTokenInvalid)
	ErrUserNotFound          = errors.New("user not found")
	ErrSecurityTokenMismatch = errors.New("security token mismatch")
)

// Claims is the bearer token payload. Email is base64 encoded.
type Claims struct {
	Email         string `json:"email"`
	SecurityToken string `json:"securityToken"`
	ID            string `json:"id"`
	Username      string `json:"username,omitempty"`
	IsAdmin       bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

// Result is a successfully decoded token.
type Result struct {
	Account       *models.Account
	SecurityToken string
	Claims        *Claims
}

// Codec encodes and decodes bearer tokens with HS256.
type Codec struct {
	secret []byte
	store  repository.AccountStore
	tokens *token.Manager
}

// NewCodec creates a Codec. The secret is copied and never changes.
func NewCodec(secret string, store repository.AccountStore, tokens *token.Manager) *Codec {
	return &Codec{
		secret: []byte(secret),
		store:  store,
		tokens: tokens,
	}
}

// Encode signs a token for acc bound to securityToken. An empty
// securityToken means the account's current token, rotating if needed.
func (c *Codec) Encode(ctx context.Context, acc *models.Account, securityToken string) (string, error) {
	claims, err := c.claims(ctx, acc, securityToken)
	if err != nil {
		return "", err
	}
	return c.sign(claims)
}

// EncodeSession signs a login token. It additionally carries the username
// and admin flag so admin checks can skip a store lookup.
func (c *Codec) EncodeSession(ctx context.Context, acc *models.Account) (string, error) {
	claims, err := c.claims(ctx, acc, "")
	if err != nil {
		return "", err
	}
	claims.Username = acc.Username
	claims.IsAdmin = acc.IsAdmin
	return c.sign(claims)
}

// Decode verifies signed and resolves it to its account. The embedded
// security token must be the account's current one. Decode never writes.
func (c *Codec) Decode(ctx context.Context, signed string) (*Result, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.tokens.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.ID == "" {
		return nil, ErrTokenInvalid
	}

	acc, err := c.store.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load token account: %w", err)
	}

	current, ok := acc.CurrentToken(c.tokens.Now())
	if !ok {
		return nil, ErrSecurityTokenMismatch
	}
	email, err := base64.StdEncoding.DecodeString(claims.Email)
	if err != nil || string(email) != acc.Email {
		return nil, ErrSecurityTokenMismatch
	}
	if claims.SecurityToken != current.Token {
		return nil, ErrSecurityTokenMismatch
	}

	return &Result{
		Account:       acc,
		SecurityToken: claims.SecurityToken,
		Claims:        claims,
	}, nil
}

func (c *Codec) claims(ctx context.Context, acc *models.Account, securityToken string) (*Claims, error) {
	if securityToken == "" {
		rec, err := c.tokens.Current(ctx, acc)
		if err != nil {
			return nil, err
		}
		securityToken = rec.Token
	}
	now := c.tokens.Now()
	return &Claims{
		Email:         base64.StdEncoding.EncodeToString([]byte(acc.Email)),
		SecurityToken: securityToken,
		ID:            acc.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(Lifetime)),
		},
	}, nil
}

func (c *Codec) sign(claims *Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
