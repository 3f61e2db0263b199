// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"codeberg.org/vinayvp/portfolio/internal/config"
	"codeberg.org/vinayvp/portfolio/internal/testutil"
)

const adminEmail = "admin@example.com"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Host:        "localhost",
			Port:        8080,
			BaseURL:     "http://localhost:8080",
			MaxBodySize: 1,
		},
		Store: config.StoreConfig{Backend: "file", Dir: t.TempDir()},
		Session: config.SessionConfig{
			CookieName: "admin_session",
			MaxAge:     3600,
			HashKey:    testutil.HashKey,
		},
		Auth:    config.AuthConfig{AdminEmail: adminEmail, MagicLinkExpiry: 15, SessionTTL: 60},
		Contact: config.ContactConfig{Recipient: "owner@example.com", RateLimit: 5, RateWindow: 60},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func serve(app *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string, cookies ...*http.Cookie) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func signIn(t *testing.T, app *App) *http.Cookie {
	t.Helper()
	link, err := app.Auth.IssueToken(context.Background(), adminEmail)
	require.NoError(t, err)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/admin/verify?token="+link.RawToken, nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin?status=authenticated", rec.Header().Get("Location"))

	cookie := testutil.CookieFrom(rec, "admin_session")
	require.NotNil(t, cookie)
	return cookie
}

func TestHealthRoute(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestTrailingSlashRedirect(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/api/content/?x=1", nil))

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/api/content?x=1", rec.Header().Get("Location"))
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"not-found"`)
}

func TestRequestMagicLinkRoute(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	form := url.Values{"email": {adminEmail}}
	req := httptest.NewRequest(http.MethodPost, "/admin/magic-link", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := serve(app, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?status=magic-link-sent", rec.Header().Get("Location"))
}

func TestAdminFlow(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	cookie := signIn(t, app)

	// Admin entry point sees the session.
	rec := serve(app, jsonRequest(http.MethodGet, "/admin", "", cookie))
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, true, status["authenticated"])
	assert.Equal(t, adminEmail, status["email"])

	// Editing works with the cookie.
	rec = serve(app, jsonRequest(http.MethodPut, "/api/admin/content/projects",
		`[{"name":"Portfolio","description":"This site"}]`, cookie))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"projects-updated"`)

	rec = serve(app, jsonRequest(http.MethodGet, "/api/content", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Portfolio"`)

	// Logout ends the session server side.
	rec = serve(app, jsonRequest(http.MethodPost, "/admin/logout", "", cookie))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?status=signed-out", rec.Header().Get("Location"))

	rec = serve(app, jsonRequest(http.MethodPut, "/api/admin/profile", `{"name":"x"}`, cookie))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"session-expired"}`, rec.Body.String())
}

func TestAdminRoutesRequireSession(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := serve(app, jsonRequest(http.MethodPut, "/api/admin/content/projects", `[]`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"session-expired"}`, rec.Body.String())
}

func TestAdminRoutesRejectFormerAdmin(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)
	cookie := signIn(t, app)

	// Same storage, different admin.
	cfg.Auth.AdminEmail = "new-admin@example.com"
	next := newTestApp(t, cfg)

	rec := serve(next, jsonRequest(http.MethodPut, "/api/admin/profile", `{"name":"x"}`, cookie))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorised-email"}`, rec.Body.String())
}

func TestTamperedCookieIsCleared(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := serve(app, jsonRequest(http.MethodGet, "/admin", "",
		&http.Cookie{Name: "admin_session", Value: "forged"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)
	cleared := testutil.CookieFrom(rec, "admin_session")
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestContactRoute(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := serve(app, jsonRequest(http.MethodPost, "/api/contact",
		`{"fullName":"Jane","email":"jane@example.com","message":"Hello"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":`)
}

func TestSQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "sqlite"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "portfolio.db")
	app := newTestApp(t, cfg)

	cookie := signIn(t, app)
	rec := serve(app, jsonRequest(http.MethodGet, "/admin", "", cookie))

	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Backend = "redis"

	_, err := New(cfg)

	assert.ErrorContains(t, err, "unknown store backend")
}

func TestNew_InvalidSessionKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.HashKey = "short"

	_, err := New(cfg)

	assert.ErrorContains(t, err, "session cookie")
}

func TestSweepCommand(t *testing.T) {
	dir := t.TempDir()
	cmd := &cli.Command{
		Name:   "sweep",
		Flags:  config.Flags(),
		Action: Sweep,
	}

	err := cmd.Run(context.Background(), []string{"sweep",
		"--config", filepath.Join(dir, "missing.toml"),
		"--store-dir", dir,
		"--session-hash-key", testutil.HashKey,
	})
	require.NoError(t, err)

	body, err := os.ReadFile(filepath.Join(dir, "auth.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"tokens":[],"sessions":[]}`, string(body))
}

func TestBodyLimit(t *testing.T) {
	assert.Equal(t, "1M", bodyLimit(0))
	assert.Equal(t, "4M", bodyLimit(4))
}

func TestSecureConfig(t *testing.T) {
	cfg := testConfig(t)
	assert.Zero(t, secureConfig(cfg).HSTSMaxAge)

	cfg.Server.BaseURL = "https://example.com"
	assert.Equal(t, 31536000, secureConfig(cfg).HSTSMaxAge)
}
