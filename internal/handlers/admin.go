// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	ctxauth "codeberg.org/vinayvp/portfolio/internal/auth"
	"codeberg.org/vinayvp/portfolio/internal/authstore"
	"codeberg.org/vinayvp/portfolio/internal/cms"
	"codeberg.org/vinayvp/portfolio/internal/services/auth"
)

// Status and reason codes of the admin flow.
const (
	StatusMagicLinkSent = "magic-link-sent"
	StatusAuthenticated = "authenticated"
	StatusSignedOut     = "signed-out"

	ReasonMissingToken       = "missing-token"
	ReasonInvalidToken       = "invalid-or-expired-token"
	ReasonUnauthorisedEmail  = "unauthorised-email"
	ReasonMissingAdminEmail  = "missing-admin-email"
	ReasonInvalidEmail       = "invalid-email"
	ReasonStorageUnavailable = "storage-unavailable"
	ReasonDeliveryFailed     = "delivery-failed"
)

// AdminStatus is the JSON view of the admin entry point.
type AdminStatus struct {
	Content       *cms.Content `json:"content,omitempty"`
	Email         string       `json:"email,omitempty"`
	Status        string       `json:"status,omitempty"`
	Error         string       `json:"error,omitempty"`
	Message       string       `json:"message,omitempty"`
	Authenticated bool         `json:"authenticated"`
}

// Admin reports whether the caller is signed in, echoing the status or
// error code of the previous step. Signed-in admins also get the content.
func (h *Handlers) Admin(c echo.Context) error {
	ctx := c.Request().Context()
	out := AdminStatus{
		Status: c.QueryParam("status"),
		Error:  c.QueryParam("error"),
	}

	sess := ctxauth.GetSession(ctx)
	if sess != nil && !h.auth.IsAdmin(sess) {
		out.Error = ReasonUnauthorisedEmail
	}
	if sess != nil && h.auth.IsAdmin(sess) {
		content, err := h.content.Content(ctx)
		if err != nil {
			return err
		}
		out.Authenticated = true
		out.Email = sess.Email
		out.Content = content
	}

	switch {
	case out.Error != "":
		out.Message = reasonMessage(ctx, out.Error)
	case out.Status != "":
		out.Message = statusMessage(ctx, out.Status)
	}

	return c.JSON(http.StatusOK, out)
}

// RequestMagicLink mails a sign-in link to the admin.
func (h *Handlers) RequestMagicLink(c echo.Context) error {
	ctx := c.Request().Context()
	email := auth.NormalizeEmail(c.FormValue("email"))

	admin := h.auth.AdminEmail()
	if admin == "" {
		slog.ErrorContext(ctx, "admin email is not configured")
		return redirectAdmin(c, "error", ReasonMissingAdminEmail)
	}
	if email == "" || email != admin {
		slog.WarnContext(ctx, "magic_link_rejected", "email", email)
		return redirectAdmin(c, "error", ReasonInvalidEmail)
	}

	if err := h.auth.ClearExpired(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to clear expired auth records", "error", err)
		return redirectAdmin(c, "error", ReasonStorageUnavailable)
	}

	_, err := h.auth.SendMagicLink(ctx, email)
	if errors.Is(err, auth.ErrDelivery) {
		// The token stays valid; only the email is lost.
		slog.ErrorContext(ctx, "magic_link_delivery_failed", "email", email, "error", err)
		return redirectAdmin(c, "error", ReasonDeliveryFailed)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue magic link", "error", err)
		return redirectAdmin(c, "error", ReasonStorageUnavailable)
	}

	return redirectAdmin(c, "status", StatusMagicLinkSent)
}

// Verify consumes a magic-link token and starts a session.
func (h *Handlers) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	raw := c.QueryParam("token")
	if raw == "" {
		return redirectAdmin(c, "error", ReasonMissingToken)
	}

	token, err := h.auth.ConsumeToken(ctx, raw)
	if err != nil {
		slog.ErrorContext(ctx, "failed to consume magic link", "error", err)
		return redirectAdmin(c, "error", ReasonStorageUnavailable)
	}
	if token == nil {
		return redirectAdmin(c, "error", ReasonInvalidToken)
	}

	if !h.auth.IsAdmin(&authstore.Session{Email: token.Email}) {
		slog.WarnContext(ctx, "magic_link_unauthorised", "email", token.Email)
		return redirectAdmin(c, "error", ReasonUnauthorisedEmail)
	}

	sessionID, err := h.auth.CreateDefaultSession(ctx, token.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create session", "error", err)
		return redirectAdmin(c, "error", ReasonStorageUnavailable)
	}

	cookie, err := h.cookies.Create(sessionID)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	slog.InfoContext(ctx, "session_created", "email", token.Email)
	return redirectAdmin(c, "status", StatusAuthenticated)
}

// Logout ends the current session.
func (h *Handlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	rawID := ctxauth.GetSessionID(ctx)
	if rawID == "" {
		if data, _ := h.cookies.Parse(c.Request()); data != nil {
			rawID = data.SessionID
		}
	}

	if rawID != "" {
		if err := h.auth.DeleteSession(ctx, rawID); err != nil {
			slog.ErrorContext(ctx, "failed to delete session", "error", err)
		}
	}

	c.SetCookie(h.cookies.Clear())
	return redirectAdmin(c, "status", StatusSignedOut)
}
