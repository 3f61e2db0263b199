// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"codeberg.org/vinayvp/portfolio/internal/config"
	"codeberg.org/vinayvp/portfolio/internal/middleware"
	"codeberg.org/vinayvp/portfolio/internal/services/session"
)

func setupMiddleware(e *echo.Echo, cfg *config.Config, sessions middleware.SessionLookup, cookies *session.Manager) {
	e.Pre(middleware.StripTrailingSlash())

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(slog.Default()))
	e.Use(echomw.SecureWithConfig(secureConfig(cfg)))
	e.Use(echomw.GzipWithConfig(echomw.GzipConfig{
		// Event streams are flushed per message.
		Skipper: func(c echo.Context) bool { return c.Path() == "/api/events" },
	}))
	e.Use(echomw.BodyLimit(bodyLimit(cfg.Server.MaxBodySize)))
	e.Use(middleware.Locale())
	e.Use(middleware.LoadSession(sessions, cookies))
}

// secureConfig enables HSTS only when the site is served over HTTPS.
func secureConfig(cfg *config.Config) echomw.SecureConfig {
	sc := echomw.DefaultSecureConfig
	sc.ReferrerPolicy = "strict-origin-when-cross-origin"
	if cfg.CookieSecure() {
		sc.HSTSMaxAge = 31536000
	}
	return sc
}

// bodyLimit formats the configured limit in megabytes for echo.
func bodyLimit(mb int) string {
	if mb <= 0 {
		mb = 1
	}
	return fmt.Sprintf("%dM", mb)
}
