// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"codeberg.org/vinayvp/portfolio/internal/i18n"
	"codeberg.org/vinayvp/portfolio/internal/middleware"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ErrorHandler renders errors returned by handlers as JSON.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request_failed",
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"error", err,
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, ErrorResponse{
			Error:   strings.ToLower(strings.ReplaceAll(http.StatusText(code), " ", "-")),
			Message: message,
		})
	}
	if writeErr != nil {
		slog.Error("failed to write error response", "error", writeErr)
	}
}

// jsonError writes a reason code with its localized message.
func jsonError(c echo.Context, status int, reason string) error {
	return c.JSON(status, ErrorResponse{
		Error:   reason,
		Message: reasonMessage(c.Request().Context(), reason),
	})
}

// redirectAdmin sends the browser back to the admin entry point with a
// status or error code.
func redirectAdmin(c echo.Context, key, code string) error {
	return c.Redirect(http.StatusSeeOther, middleware.AdminURL(key, code))
}

func statusMessage(ctx context.Context, code string) string {
	if section, ok := strings.CutSuffix(code, "-updated"); ok && section != "profile" {
		return i18n.TData(ctx, "status_section_updated", map[string]any{"Section": sectionTitle(section)})
	}
	return i18n.Code(ctx, "status", code)
}

func reasonMessage(ctx context.Context, code string) string {
	if section, ok := strings.CutSuffix(code, "-invalid"); ok {
		return i18n.TData(ctx, "reason_section_invalid", map[string]any{"Section": sectionTitle(section)})
	}
	return i18n.Code(ctx, "reason", code)
}

func sectionTitle(section string) string {
	title := strings.ReplaceAll(section, "-", " ")
	if title == "" {
		return title
	}
	return strings.ToUpper(title[:1]) + title[1:]
}
