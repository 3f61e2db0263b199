// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"codeberg.org/vinayvp/portfolio/internal/i18n"
	"codeberg.org/vinayvp/portfolio/internal/services/contact"
)

// ContactResponse is the JSON body of the contact endpoint.
type ContactResponse struct {
	Errors  contact.ValidationError `json:"errors,omitempty"`
	ID      string                  `json:"id,omitempty"`
	Message string                  `json:"message"`
}

// Contact accepts a contact form submission.
func (h *Handlers) Contact(c echo.Context) error {
	ctx := c.Request().Context()
	reply := func(status int, messageID string) error {
		return c.JSON(status, ContactResponse{Message: i18n.T(ctx, messageID)})
	}

	if !strings.Contains(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return reply(http.StatusUnsupportedMediaType, "contact_unsupported_media")
	}

	var sub contact.Submission
	if err := json.NewDecoder(c.Request().Body).Decode(&sub); err != nil {
		return reply(http.StatusBadRequest, "contact_bad_json")
	}

	if err := sub.Validate(); err != nil {
		var verr contact.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusUnprocessableEntity, ContactResponse{
				Message: i18n.T(ctx, "contact_invalid"),
				Errors:  verr,
			})
		}
		return err
	}

	if !h.limiter.Allow(c.RealIP()) {
		return reply(http.StatusTooManyRequests, "contact_rate_limited")
	}

	rec, err := h.contact.Submit(ctx, sub)
	if err != nil {
		slog.ErrorContext(ctx, "contact submission failed", "error", err)
		return reply(http.StatusInternalServerError, "contact_failed")
	}

	return c.JSON(http.StatusOK, ContactResponse{
		ID:      rec.ID,
		Message: i18n.T(ctx, "contact_sent"),
	})
}
