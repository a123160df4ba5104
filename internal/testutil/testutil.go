// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/accountd/accountd/internal/database"
	"github.com/accountd/accountd/internal/models"
	"github.com/accountd/accountd/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password of accounts created by NewTestAccount.
const TestPassword = "longenough123"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestAccount stores an inactive account with TestPassword and no tokens.
func NewTestAccount(t *testing.T, repo repository.AccountStore, email string) *models.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)
	acc := &models.Account{
		Username:     email,
		Email:        email,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hash),
	}
	require.NoError(t, repo.Save(context.Background(), acc))
	return acc
}

// NewActiveAccount is NewTestAccount with the account activated and,
// optionally, promoted to admin.
func NewActiveAccount(t *testing.T, repo repository.AccountStore, email string, admin bool) *models.Account {
	t.Helper()
	acc := NewTestAccount(t, repo, email)
	acc.Active = true
	acc.IsAdmin = admin
	require.NoError(t, repo.Save(context.Background(), acc))
	return acc
}

// SentMail is one message captured by RecordingMailer.
type SentMail struct {
	Kind  string
	Email string
	Token string
}

// RecordingMailer captures outgoing mail instead of delivering it.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []SentMail
	Err  error
}

// SendActivationEmail records an activation mail.
func (m *RecordingMailer) SendActivationEmail(_ context.Context, acc *models.Account, token string) error {
	return m.record("activation", acc, token)
}

// SendResetEmail records a reset mail.
func (m *RecordingMailer) SendResetEmail(_ context.Context, acc *models.Account, token string) error {
	return m.record("reset", acc, token)
}

func (m *RecordingMailer) record(kind string, acc *models.Account, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{Kind: kind, Email: acc.Email, Token: token})
	return m.Err
}

// Sent returns a copy of the captured mail.
func (m *RecordingMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}

// Last returns the most recent mail of kind, or false.
func (m *RecordingMailer) Last(kind string) (SentMail, bool) {
	sent := m.Sent()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].Kind == kind {
			return sent[i], true
		}
	}
	return SentMail{}, false
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewEchoContextWithHeaders creates an Echo context with custom headers.
func NewEchoContextWithHeaders(e *echo.Echo, method, path string, body io.Reader, headers map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
