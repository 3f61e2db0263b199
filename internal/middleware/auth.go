// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"codeberg.org/vinayvp/portfolio/internal/auth"
	"codeberg.org/vinayvp/portfolio/internal/authstore"
	"codeberg.org/vinayvp/portfolio/internal/services/session"
)

// Reason codes reported by RequireAdmin.
const (
	ReasonSessionExpired    = "session-expired"
	ReasonUnauthorisedEmail = "unauthorised-email"
)

// SessionLookup resolves raw session ids.
type SessionLookup interface {
	GetSession(ctx context.Context, rawID string) (*authstore.Session, error)
}

// AdminGate decides whether a session belongs to the admin.
type AdminGate interface {
	IsAdmin(session *authstore.Session) bool
}

// LoadSession reads the session cookie and puts the live session into the
// request context. Stale cookies are cleared.
func LoadSession(sessions SessionLookup, cookies *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			_, cookieErr := req.Cookie(cookies.Name())

			data, err := cookies.Parse(req)
			if err != nil || data == nil {
				if cookieErr == nil {
					c.SetCookie(cookies.Clear())
				}
				return next(c)
			}

			sess, err := sessions.GetSession(req.Context(), data.SessionID)
			if err != nil {
				slog.ErrorContext(req.Context(), "session_lookup_failed", "error", err)
				return next(c)
			}
			if sess == nil {
				c.SetCookie(cookies.Clear())
				return next(c)
			}

			c.SetRequest(req.WithContext(auth.WithSession(req.Context(), sess, data.SessionID)))
			return next(c)
		}
	}
}

// RequireAdmin rejects requests without an admin session. API paths get a
// JSON error, everything else is redirected to the admin entry point.
func RequireAdmin(gate AdminGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := auth.GetSession(c.Request().Context())
			if sess == nil {
				return deny(c, http.StatusUnauthorized, ReasonSessionExpired)
			}
			if !gate.IsAdmin(sess) {
				slog.WarnContext(c.Request().Context(), "admin_access_denied", "email", sess.Email)
				return deny(c, http.StatusForbidden, ReasonUnauthorisedEmail)
			}
			return next(c)
		}
	}
}

func deny(c echo.Context, status int, reason string) error {
	if IsAPIRequest(c.Request()) {
		return c.JSON(status, map[string]string{"error": reason})
	}
	return c.Redirect(http.StatusSeeOther, AdminURL("error", reason))
}

// IsAPIRequest reports whether r targets the JSON API.
func IsAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// AdminURL builds "/admin?<key>=<code>".
func AdminURL(key, code string) string {
	return "/admin?" + url.Values{key: {code}}.Encode()
}
