// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements passwordless admin authentication: magic-link
// issuance and consumption, server-side sessions and the admin gate.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"codeberg.org/vinayvp/portfolio/internal/authstore"
	"codeberg.org/vinayvp/portfolio/internal/config"
)

const (
	// DefaultMagicLinkExpiry is used when the configuration leaves it at zero.
	DefaultMagicLinkExpiry = 15 * time.Minute
	// DefaultSessionTTL is used when the configuration leaves it at zero.
	DefaultSessionTTL = 24 * time.Hour
	// secretBytes is the entropy of raw tokens and session ids.
	secretBytes = 32
)

var (
	// ErrDelivery wraps mailer failures. The magic link stays valid.
	ErrDelivery = errors.New("magic link delivery failed")
	// ErrEmailRequired is returned when a token is requested for an empty email.
	ErrEmailRequired = errors.New("email is required")
)

// Mailer delivers magic links.
type Mailer interface {
	SendMagicLink(ctx context.Context, to, link string, expiry time.Duration) error
}

// Service owns the auth document. All operations are serialized through mu
// so concurrent requests cannot lose each other's updates.
type Service struct {
	store      authstore.Store
	mailer     Mailer
	now        func() time.Time
	baseURL    string
	adminEmail string
	linkExpiry time.Duration
	sessionTTL time.Duration
	mu         sync.Mutex
}

// NewService creates an auth service.
func NewService(store authstore.Store, mailer Mailer, cfg *config.AuthConfig, baseURL string) *Service {
	s := &Service{
		store:      store,
		mailer:     mailer,
		now:        time.Now,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		adminEmail: NormalizeEmail(cfg.AdminEmail),
		linkExpiry: time.Duration(cfg.MagicLinkExpiry) * time.Minute,
		sessionTTL: time.Duration(cfg.SessionTTL) * time.Minute,
	}
	if s.linkExpiry <= 0 {
		s.linkExpiry = DefaultMagicLinkExpiry
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = DefaultSessionTTL
	}
	return s
}

// SetClock replaces the time source. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AdminEmail returns the configured admin email, lowercased. Empty when unset.
func (s *Service) AdminEmail() string {
	return s.adminEmail
}

// MagicLinkExpiry returns how long issued links stay valid.
func (s *Service) MagicLinkExpiry() time.Duration {
	return s.linkExpiry
}

// SessionTTL returns the default session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// NormalizeEmail trims and lowercases an email for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// update runs fn on the current document and persists the result.
// Callers must hold s.mu.
func (s *Service) update(ctx context.Context, fn func(doc *authstore.Document)) error {
	doc, err := s.store.ReadDocument(ctx)
	if err != nil {
		return err
	}
	fn(doc)
	return s.store.WriteDocument(ctx, doc)
}
