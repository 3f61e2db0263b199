// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"codeberg.org/vinayvp/portfolio/internal/authstore"
	"codeberg.org/vinayvp/portfolio/internal/cms"
	"codeberg.org/vinayvp/portfolio/internal/config"
	"codeberg.org/vinayvp/portfolio/internal/database"
	"codeberg.org/vinayvp/portfolio/internal/docstore"
	"codeberg.org/vinayvp/portfolio/internal/handlers"
	"codeberg.org/vinayvp/portfolio/internal/i18n"
	"codeberg.org/vinayvp/portfolio/internal/middleware"
	"codeberg.org/vinayvp/portfolio/internal/services/auth"
	"codeberg.org/vinayvp/portfolio/internal/services/contact"
	"codeberg.org/vinayvp/portfolio/internal/services/email"
	"codeberg.org/vinayvp/portfolio/internal/services/session"
)

// sweepInterval is how often expired tokens and sessions are purged while
// the server runs.
const sweepInterval = time.Hour

// App is the wired application.
type App struct {
	Echo    *echo.Echo
	Auth    *auth.Service
	Content *cms.Storage
	closers []func() error
}

// Close releases the storage backend.
func (a *App) Close() error {
	var errs []error
	for _, fn := range a.closers {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"store", cfg.Store.Backend,
	)

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	app, err := New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	if cfg.Auth.AdminEmail == "" {
		slog.Warn("admin email is not configured, sign-in is disabled")
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepLoop(sweepCtx, app.Auth, sweepInterval)

	return startWithGracefulShutdown(app.Echo, cfg)
}

// Sweep removes expired magic-link tokens and sessions once.
func Sweep(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	backend, closeFn, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeFn(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	svc := auth.NewService(authstore.New(backend), nil, &cfg.Auth, cfg.Server.BaseURL)
	if err := svc.ClearExpired(ctx); err != nil {
		return fmt.Errorf("failed to clear expired auth records: %w", err)
	}
	slog.Info("expired auth records cleared")
	return nil
}

// New wires storage, services, middleware and routes.
func New(cfg *config.Config) (*App, error) {
	backend, closeFn, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	app := &App{closers: []func() error{closeFn}}

	var mailer interface {
		auth.Mailer
		contact.Mailer
	}
	if cfg.SMTP.Enabled() {
		smtp, mailErr := email.NewService(&cfg.SMTP)
		if mailErr != nil {
			_ = app.Close()
			return nil, fmt.Errorf("failed to configure smtp: %w", mailErr)
		}
		mailer = smtp
	} else {
		slog.Warn("smtp is not configured, magic links are written to the log")
		mailer = email.NewLogMailer(slog.Default())
	}

	cookies, err := session.NewManager(&cfg.Session, cfg.CookieSecure())
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to configure session cookie: %w", err)
	}

	app.Auth = auth.NewService(authstore.New(backend), mailer, &cfg.Auth, cfg.Server.BaseURL)
	app.Content = cms.NewStorage(backend)

	if cfg.Contact.Recipient == "" {
		slog.Warn("contact recipient is not configured, contact form is disabled")
	}

	h := handlers.New(handlers.Deps{
		Auth:    app.Auth,
		Cookies: cookies,
		Content: app.Content,
		Contact: contact.NewService(backend, mailer, cfg.Contact.Recipient),
		Limiter: contact.NewLimiter(cfg.Contact.RateLimit, time.Duration(cfg.Contact.RateWindow)*time.Second),
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	setupMiddleware(e, cfg, app.Auth, cookies)
	setupRoutes(e, h, app.Auth)

	app.Echo = e
	return app, nil
}

// openBackend opens the configured document backend.
func openBackend(cfg *config.Config) (docstore.Backend, func() error, error) {
	kind, err := docstore.ParseKind(cfg.Store.Backend)
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case docstore.KindSQLite:
		db, err := database.Open(cfg.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return docstore.NewSQLBackend(db), db.Close, nil
	default:
		return docstore.NewFileBackend(cfg.Store.Dir), func() error { return nil }, nil
	}
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers, gate *auth.Service) {
	e.GET("/health", h.Health)

	// Admin entry point and magic-link flow
	e.GET("/admin", h.Admin)
	e.POST("/admin/magic-link", h.RequestMagicLink)
	e.GET(auth.VerifyPath, h.Verify)
	e.POST("/admin/logout", h.Logout)

	// Public content
	api := e.Group("/api")
	api.GET("/content", h.Content)
	api.GET("/blogs", h.Blogs)
	api.GET("/blogs/:slug", h.Blog)
	api.GET("/tags", h.Tags)
	api.GET("/events", h.Events)
	api.POST("/contact", h.Contact)

	// Content editing
	admin := api.Group("/admin", middleware.RequireAdmin(gate))
	admin.PUT("/profile", h.UpdateProfile)
	admin.PUT("/content/:section", h.ReplaceSection)
}

// sweepLoop clears expired auth records until ctx is done.
func sweepLoop(ctx context.Context, svc *auth.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.ClearExpired(ctx); err != nil {
				slog.Error("failed to clear expired auth records", "error", err)
			}
		}
	}
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	// Setup TLS
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	// Channel for server errors
	errChan := make(chan error, 2)

	// HTTP challenge server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case TLSModeOff:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeACME:
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case TLSModeManual:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
