// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/vinayvp/portfolio/internal/config"
	"golang.org/x/crypto/acme/autocert"
)

// TLSMode represents the resolved TLS mode.
type TLSMode string

const (
	TLSModeOff    TLSMode = "off"
	TLSModeACME   TLSMode = "acme"
	TLSModeManual TLSMode = "manual"
)

// certExpiryWarning is how close to NotAfter a manual certificate must be
// before startup logs a warning.
const certExpiryWarning = 30 * 24 * time.Hour

// TLSResult contains the resolved TLS configuration.
type TLSResult struct {
	TLSConfig   *tls.Config
	CertManager *autocert.Manager // nil unless ACME mode
	HTTPHandler http.Handler      // ACME only
	Mode        TLSMode
}

// SetupTLS resolves the TLS mode and builds the listener configuration for it.
func SetupTLS(cfg *config.Config) (*TLSResult, error) {
	mode := resolveTLSMode(cfg)

	switch mode {
	case TLSModeOff:
		slog.Info("tls disabled", "base_url", cfg.Server.BaseURL)
		return &TLSResult{Mode: TLSModeOff}, nil
	case TLSModeACME:
		if err := acmePreflight(cfg); err != nil {
			return nil, fmt.Errorf("acme tls: %w", err)
		}
		return newACMEResult(cfg)
	case TLSModeManual:
		mc, err := loadManualCert(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("manual tls: %w", err)
		}
		slog.Info("tls enabled",
			"mode", mode,
			"cert", cfg.TLS.CertFile,
			"sha256", mc.Fingerprint,
			"not_after", mc.NotAfter,
		)
		if mc.expiresWithin(time.Now(), certExpiryWarning) {
			slog.Warn("certificate expires soon",
				"cert", cfg.TLS.CertFile,
				"not_after", mc.NotAfter,
			)
		}
		return &TLSResult{Mode: TLSModeManual, TLSConfig: createTLSConfig(&mc.Cert)}, nil
	default:
		return nil, fmt.Errorf("unknown TLS mode: %s", mode)
	}
}

// resolveTLSMode honours an explicit mode and otherwise picks one from the
// host and the certificate sources on hand.
func resolveTLSMode(cfg *config.Config) TLSMode {
	switch explicit := strings.ToLower(cfg.TLS.Mode); explicit {
	case string(TLSModeOff), string(TLSModeACME), string(TLSModeManual):
		return TLSMode(explicit)
	case "auto", "":
	default:
		slog.Warn("unknown tls mode, resolving automatically", "mode", explicit)
	}

	switch {
	case config.IsLocalhost(cfg.Server.Host):
		return TLSModeOff
	case cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "":
		return TLSModeManual
	}

	if err := acmePreflight(cfg); err != nil {
		// A public host with nothing to terminate TLS is expected to sit
		// behind a proxy that does.
		slog.Warn("no certificate source, serving plain http", "host", cfg.Server.Host, "reason", err)
		return TLSModeOff
	}
	return TLSModeACME
}

// acmePreflight returns why Let's Encrypt cannot issue for this host, or nil.
func acmePreflight(cfg *config.Config) error {
	host := cfg.Server.Host
	switch {
	case cfg.TLS.Email == "":
		return errors.New("requires TLS_EMAIL to be set")
	case config.IsLocalhost(host):
		return fmt.Errorf("host %q is local", host)
	case net.ParseIP(host) != nil:
		return fmt.Errorf("host %q is an IP address", host)
	}

	// HTTP-01 answers on :80 and the site itself is served on :443.
	for _, port := range []int{80, 443} {
		if !portFree(port) {
			return fmt.Errorf("port %d is in use", port)
		}
	}
	return nil
}

func portFree(port int) bool {
	ln, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

func newACMEResult(cfg *config.Config) (*TLSResult, error) {
	if cfg.Server.Port != 443 {
		slog.Warn("acme serves on :443, ignoring configured port", "port", cfg.Server.Port)
	}

	cacheDir := filepath.Join(cfg.TLS.CertDir, "acme")
	if err := os.MkdirAll(cacheDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create acme cache: %w", err)
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Email:      cfg.TLS.Email,
		Cache:      autocert.DirCache(cacheDir),
		HostPolicy: autocert.HostWhitelist(cfg.Server.Host),
	}
	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	slog.Info("tls enabled", "mode", TLSModeACME, "host", cfg.Server.Host, "cache", cacheDir)

	return &TLSResult{
		Mode:        TLSModeACME,
		TLSConfig:   tlsConfig,
		CertManager: manager,
		HTTPHandler: manager.HTTPHandler(nil),
	}, nil
}

// manualCert is an operator-supplied key pair with its parsed leaf details.
type manualCert struct {
	Cert        tls.Certificate
	Fingerprint string
	NotAfter    time.Time
}

// loadManualCert reads and parses a PEM key pair from disk.
func loadManualCert(certFile, keyFile string) (*manualCert, error) {
	if certFile == "" || keyFile == "" {
		return nil, errors.New("requires both cert-file and key-file")
	}
	for _, f := range []struct{ kind, path string }{{"certificate", certFile}, {"key", keyFile}} {
		if _, err := os.Stat(f.path); err != nil {
			return nil, fmt.Errorf("%s file not found: %w", f.kind, err)
		}
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load key pair: %w", err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}
	cert.Leaf = leaf

	sum := sha256.Sum256(leaf.Raw)
	hexParts := make([]string, len(sum))
	for i, b := range sum {
		hexParts[i] = fmt.Sprintf("%02X", b)
	}

	return &manualCert{
		Cert:        cert,
		Fingerprint: strings.Join(hexParts, ":"),
		NotAfter:    leaf.NotAfter,
	}, nil
}

func (m *manualCert) expiresWithin(now time.Time, window time.Duration) bool {
	return m.NotAfter.Sub(now) < window
}

func createTLSConfig(cert *tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS12,
	}
}
