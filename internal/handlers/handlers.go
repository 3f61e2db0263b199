// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers implements the HTTP endpoints.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"codeberg.org/vinayvp/portfolio/internal/cms"
	"codeberg.org/vinayvp/portfolio/internal/services/auth"
	"codeberg.org/vinayvp/portfolio/internal/services/contact"
	"codeberg.org/vinayvp/portfolio/internal/services/session"
	"codeberg.org/vinayvp/portfolio/internal/sse"
)

// Deps are the services the handlers need.
type Deps struct {
	Auth    *auth.Service
	Cookies *session.Manager
	Content *cms.Storage
	Contact *contact.Service
	Limiter *contact.Limiter
	// Events receives content change notifications. A private hub is
	// created when nil.
	Events *sse.Hub
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	auth    *auth.Service
	cookies *session.Manager
	content *cms.Storage
	contact *contact.Service
	limiter *contact.Limiter
	events  *sse.Hub
}

// New creates a new Handlers instance.
func New(d Deps) *Handlers {
	if d.Events == nil {
		d.Events = sse.NewHub()
	}
	return &Handlers{
		auth:    d.Auth,
		cookies: d.Cookies,
		content: d.Content,
		contact: d.Contact,
		limiter: d.Limiter,
		events:  d.Events,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
