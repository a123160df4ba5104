// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/accountd/accountd/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func serve(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequestLogger(t *testing.T) {
	buf := captureLogs(t)
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	serve(e, "/ok")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "/ok", entry["uri"])
	assert.EqualValues(t, http.StatusNoContent, entry["status"])
}

func TestRequestLogger_ServerError(t *testing.T) {
	buf := captureLogs(t)
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.GET("/boom", func(echo.Context) error { return errors.New("boom") })

	serve(e, "/boom")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestRequestLogger_SkipsHealth(t *testing.T) {
	buf := captureLogs(t)
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.GET("/api/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	serve(e, "/api/health")

	assert.Empty(t, buf.String())
}
