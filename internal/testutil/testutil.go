// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"

	"codeberg.org/vinayvp/portfolio/internal/database"
	"codeberg.org/vinayvp/portfolio/internal/services/email"
)

// HashKey is a valid 32-byte hex-encoded session key for tests.
const HashKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// NewTestDB creates an in-memory SQLite database for tests.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// SentLink is a magic link captured by Mailer.
type SentLink struct {
	To     string
	URL    string
	Expiry time.Duration
}

// SentContact is a contact message captured by Mailer.
type SentContact struct {
	To      string
	Message email.ContactMessage
}

// Mailer records outgoing mail instead of sending it. Set Err to make
// every send fail.
type Mailer struct {
	Err      error
	links    []SentLink
	contacts []SentContact
	mu       sync.Mutex
}

// SendMagicLink records a magic link.
func (m *Mailer) SendMagicLink(_ context.Context, to, link string, expiry time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.links = append(m.links, SentLink{To: to, URL: link, Expiry: expiry})
	return nil
}

// SendContact records a contact message.
func (m *Mailer) SendContact(_ context.Context, to string, msg email.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.contacts = append(m.contacts, SentContact{To: to, Message: msg})
	return nil
}

// Links returns the recorded magic links.
func (m *Mailer) Links() []SentLink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentLink(nil), m.links...)
}

// Contacts returns the recorded contact messages.
func (m *Mailer) Contacts() []SentContact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentContact(nil), m.contacts...)
}

// LastLink returns the most recent magic link URL, failing the test if none was sent.
func (m *Mailer) LastLink(t *testing.T) string {
	t.Helper()
	links := m.Links()
	require.NotEmpty(t, links, "no magic link sent")
	return links[len(links)-1].URL
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

// CookieFrom returns the named cookie set on the response, or nil.
func CookieFrom(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
