// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/accountd/accountd/internal/auth"
	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/middleware"
	"github.com/accountd/accountd/internal/models"
	"github.com/accountd/accountd/internal/services/bearer"
	"github.com/accountd/accountd/internal/services/session"
	"github.com/accountd/accountd/internal/services/token"
	"github.com/accountd/accountd/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newSessions(t *testing.T) *session.Manager {
	t.Helper()
	mgr, err := session.NewManager(&config.SessionConfig{CookieName: "_session", MaxAge: 3600, HashKey: hashKey}, false)
	require.NoError(t, err)
	return mgr
}

func TestTokenFromRequest(t *testing.T) {
	e := echo.New()
	sessions := newSessions(t)
	cookie, err := sessions.Create("acc-1", "from-cookie")
	require.NoError(t, err)

	tests := []struct {
		name  string
		build func() *http.Request
		want  string
	}{
		{"bearer header", func() *http.Request {
			c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, map[string]string{"Authorization": "Bearer abc"})
			return c.Request()
		}, "abc"},
		{"raw header", func() *http.Request {
			c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, map[string]string{"Authorization": "abc"})
			return c.Request()
		}, "abc"},
		{"json body", func() *http.Request {
			c, _ := testutil.NewEchoContext(e, http.MethodPost, "/", strings.NewReader(`{"token":"xyz"}`))
			return c.Request()
		}, "xyz"},
		{"form body", func() *http.Request {
			form := url.Values{"token": {"frm"}}
			c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodPost, "/", strings.NewReader(form.Encode()),
				map[string]string{echo.HeaderContentType: echo.MIMEApplicationForm})
			return c.Request()
		}, "frm"},
		{"query", func() *http.Request {
			c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/?token=qry", nil, nil)
			return c.Request()
		}, "qry"},
		{"session cookie", func() *http.Request {
			c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, nil)
			c.Request().AddCookie(cookie)
			return c.Request()
		}, "from-cookie"},
		{"none", func() *http.Request {
			c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/", nil, nil)
			return c.Request()
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(tt.build(), nil)
			assert.Equal(t, tt.want, middleware.TokenFromRequest(c, sessions))
		})
	}
}

func TestTokenFromRequest_RestoresJSONBody(t *testing.T) {
	e := echo.New()
	c, _ := testutil.NewEchoContext(e, http.MethodPost, "/", strings.NewReader(`{"token":"xyz","name":"n"}`))

	assert.Equal(t, "xyz", middleware.TokenFromRequest(c, nil))

	body, err := io.ReadAll(c.Request().Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"xyz","name":"n"}`, string(body))
}

type authFixture struct {
	codec *bearer.Codec
	acc   *models.Account
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	tokens := token.NewManager(repo, "secret")
	return &authFixture{
		codec: bearer.NewCodec("secret", repo, tokens),
		acc:   testutil.NewActiveAccount(t, repo, "user@b.com", false),
	}
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	signed, err := f.codec.EncodeSession(context.Background(), f.acc)
	require.NoError(t, err)
	e := echo.New()
	c, rec := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + signed})

	var got *auth.Principal
	h := middleware.Authenticate(f.codec, nil)(func(c echo.Context) error {
		got = auth.GetPrincipal(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, f.acc.ID, got.AccountID)
	assert.Equal(t, signed, got.Token)
}

func TestAuthenticate_NoToken(t *testing.T) {
	f := newAuthFixture(t)
	e := echo.New()
	c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/me", nil, nil)

	err := middleware.Authenticate(f.codec, nil)(func(echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})(c)

	assert.ErrorIs(t, err, middleware.ErrNoToken)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	f := newAuthFixture(t)
	e := echo.New()
	c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/me", nil, map[string]string{"Authorization": "garbage"})

	err := middleware.Authenticate(f.codec, nil)(func(echo.Context) error { return nil })(c)

	assert.ErrorIs(t, err, bearer.ErrTokenInvalid)
}

type fakeChecker struct {
	err   error
	calls int
}

func (f *fakeChecker) RequireAdmin(context.Context, string) error {
	f.calls++
	return f.err
}

func runRequireAdmin(t *testing.T, checker *fakeChecker, p *auth.Principal) error {
	t.Helper()
	e := echo.New()
	c, _ := testutil.NewEchoContextWithHeaders(e, http.MethodGet, "/users", nil, nil)
	if p != nil {
		c.SetRequest(c.Request().WithContext(auth.WithPrincipal(c.Request().Context(), p)))
	}
	return middleware.RequireAdmin(checker)(func(echo.Context) error { return nil })(c)
}

func TestRequireAdmin(t *testing.T) {
	t.Run("claim short-circuits", func(t *testing.T) {
		checker := &fakeChecker{err: assert.AnError}
		err := runRequireAdmin(t, checker, &auth.Principal{AccountID: "a", IsAdmin: true})
		assert.NoError(t, err)
		assert.Zero(t, checker.calls)
	})

	t.Run("store confirms", func(t *testing.T) {
		checker := &fakeChecker{}
		err := runRequireAdmin(t, checker, &auth.Principal{AccountID: "a"})
		assert.NoError(t, err)
		assert.Equal(t, 1, checker.calls)
	})

	t.Run("store refuses", func(t *testing.T) {
		checker := &fakeChecker{err: assert.AnError}
		err := runRequireAdmin(t, checker, &auth.Principal{AccountID: "a"})
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		err := runRequireAdmin(t, &fakeChecker{}, nil)
		assert.ErrorIs(t, err, middleware.ErrNoToken)
	})
}
