// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session stores the login bearer token in a signed cookie for
// browser clients.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/accountd/accountd/internal/config"
	"github.com/gorilla/securecookie"
)

const keyLength = 32

// Data is the cookie payload.
type Data struct {
	AccountID string    `json:"account_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager encodes and decodes session cookies.
type Manager struct {
	sc     *securecookie.SecureCookie
	name   string
	maxAge int
	secure bool
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager. An empty hash key is replaced by a random
// one, which invalidates all cookies on restart.
func NewManager(cfg *config.SessionConfig, secure bool, opts ...Option) (*Manager, error) {
	hashKey, err := decodeKey(cfg.HashKey, "hash")
	if err != nil {
		return nil, err
	}
	if hashKey == nil {
		slog.Warn("session_hash_key_generated", "hint", "set session.hash_key to keep sessions across restarts")
		hashKey = make([]byte, keyLength)
		if _, err := rand.Read(hashKey); err != nil {
			return nil, fmt.Errorf("failed to generate session hash key: %w", err)
		}
	}
	blockKey, err := decodeKey(cfg.BlockKey, "block")
	if err != nil {
		return nil, err
	}

	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(cfg.MaxAge)
	sc.SetSerializer(securecookie.JSONEncoder{})

	m := &Manager{
		sc:     sc,
		name:   cfg.CookieName,
		maxAge: cfg.MaxAge,
		secure: secure,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func decodeKey(s, kind string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid session %s key: %w", kind, err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("invalid session %s key: must be %d bytes, got %d", kind, keyLength, len(key))
	}
	return key, nil
}

// Create returns a cookie holding the bearer token of accountID.
func (m *Manager) Create(accountID, token string) (*http.Cookie, error) {
	data := Data{
		AccountID: accountID,
		Token:     token,
		ExpiresAt: m.now().Add(time.Duration(m.maxAge) * time.Second),
	}
	encoded, err := m.sc.Encode(m.name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return m.cookie(encoded, m.maxAge), nil
}

// Parse returns the session of req, or nil when there is none or it does
// not verify.
func (m *Manager) Parse(req *http.Request) (*Data, error) {
	c, err := req.Cookie(m.name)
	if err != nil {
		return nil, nil //nolint:nilerr // missing cookie is not an error
	}
	var data Data
	if err := m.sc.Decode(m.name, c.Value, &data); err != nil {
		return nil, nil //nolint:nilerr // invalid cookie is treated as absent
	}
	if m.now().After(data.ExpiresAt) {
		return nil, nil
	}
	return &data, nil
}

// Clear returns a cookie that removes the session.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie("", -1)
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
