// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/accountd/accountd/internal/auth"
	"github.com/accountd/accountd/internal/services/bearer"
	"github.com/accountd/accountd/internal/services/session"
	"github.com/labstack/echo/v4"
)

// ErrNoToken is returned when a protected route is called without a token.
var ErrNoToken = errors.New("token not provided")

// TokenDecoder verifies bearer tokens.
type TokenDecoder interface {
	Decode(ctx context.Context, signed string) (*bearer.Result, error)
}

// AdminChecker confirms admin status against the store.
type AdminChecker interface {
	RequireAdmin(ctx context.Context, id string) error
}

// TokenFromRequest returns the bearer token of c: the Authorization header
// (with or without "Bearer "), a "token" body field, a "token" query
// parameter, and finally the session cookie.
func TokenFromRequest(c echo.Context, sessions *session.Manager) string {
	req := c.Request()
	if h := strings.TrimSpace(req.Header.Get(echo.HeaderAuthorization)); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return h
	}
	if tok := bodyToken(c); tok != "" {
		return tok
	}
	if tok := c.QueryParam("token"); tok != "" {
		return tok
	}
	if sessions != nil {
		if data, _ := sessions.Parse(req); data != nil {
			return data.Token
		}
	}
	return ""
}

// bodyToken reads a "token" field from a JSON or form body. A JSON body
// is restored so handlers can bind it again.
func bodyToken(c echo.Context) string {
	req := c.Request()
	ct := req.Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ct, echo.MIMEApplicationJSON):
		if req.Body == nil || req.Body == http.NoBody {
			return ""
		}
		raw, err := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil || len(raw) == 0 {
			return ""
		}
		var body struct {
			Token string `json:"token"`
		}
		if json.Unmarshal(raw, &body) != nil {
			return ""
		}
		return body.Token
	case strings.HasPrefix(ct, echo.MIMEApplicationForm), strings.HasPrefix(ct, echo.MIMEMultipartForm):
		return c.FormValue("token")
	}
	return ""
}

// Authenticate rejects requests without a valid bearer token and stores
// the caller in the request context.
func Authenticate(dec TokenDecoder, sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok := TokenFromRequest(c, sessions)
			if tok == "" {
				return ErrNoToken
			}
			res, err := dec.Decode(c.Request().Context(), tok)
			if err != nil {
				return err
			}

			p := &auth.Principal{
				AccountID:     res.Account.ID,
				Username:      res.Account.Username,
				SecurityToken: res.SecurityToken,
				IsAdmin:       res.Claims.IsAdmin,
				Token:         tok,
			}
			ctx := auth.WithPrincipal(c.Request().Context(), p)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequireAdmin lets admins through. The token's admin claim is trusted;
// without it the account is checked in the store.
func RequireAdmin(checker AdminChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := auth.GetPrincipal(c.Request().Context())
			if p == nil {
				return ErrNoToken
			}
			if !p.IsAdmin {
				if err := checker.RequireAdmin(c.Request().Context(), p.AccountID); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}
