// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"codeberg.org/vinayvp/portfolio/internal/authstore"
)

// VerifyPath is the route that consumes magic-link tokens.
const VerifyPath = "/admin/verify"

// MagicLink is a freshly issued link. RawToken is never persisted.
type MagicLink struct {
	ExpiresAt time.Time
	RawToken  string
	URL       string
	Email     string
}

// IssueToken creates a magic-link token for email, replacing any outstanding
// token for the same email.
func (s *Service) IssueToken(ctx context.Context, email string) (*MagicLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.issueToken(ctx, email)
}

func (s *Service) issueToken(ctx context.Context, email string) (*MagicLink, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}

	raw, err := newSecret()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.linkExpiry)

	err = s.update(ctx, func(doc *authstore.Document) {
		kept := doc.Tokens[:0]
		for _, t := range doc.Tokens {
			if !strings.EqualFold(t.Email, email) {
				kept = append(kept, t)
			}
		}
		doc.Tokens = append(kept, authstore.MagicLinkToken{
			TokenHash: HashValue(raw),
			Email:     email,
			ExpiresAt: expiresAt,
		})
	})
	if err != nil {
		return nil, err
	}

	return &MagicLink{
		RawToken:  raw,
		URL:       s.verificationURL(raw),
		Email:     email,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) verificationURL(raw string) string {
	return s.baseURL + VerifyPath + "?" + url.Values{"token": {raw}}.Encode()
}

// SendMagicLink issues a token and hands the link to the mailer.
//
// A delivery failure does not revoke the token: the link is returned along
// with an error wrapping ErrDelivery so the caller can log it.
func (s *Service) SendMagicLink(ctx context.Context, email string) (*MagicLink, error) {
	link, err := s.IssueToken(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendMagicLink(ctx, link.Email, link.URL, s.linkExpiry); err != nil {
		return link, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	slog.Info("magic_link_sent", "email", link.Email, "expires_at", link.ExpiresAt)
	return link, nil
}

// ConsumeToken looks up rawToken and removes it from the store whatever the
// outcome. It returns nil when the token is unknown or expired.
func (s *Service) ConsumeToken(ctx context.Context, rawToken string) (*authstore.MagicLinkToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := HashValue(rawToken)
	now := s.now()

	var found *authstore.MagicLinkToken
	err := s.update(ctx, func(doc *authstore.Document) {
		kept := doc.Tokens[:0]
		for _, t := range doc.Tokens {
			if t.TokenHash != hash {
				kept = append(kept, t)
				continue
			}
			if found == nil {
				match := t
				found = &match
			}
		}
		doc.Tokens = kept
	})
	if err != nil {
		return nil, err
	}

	if found == nil || found.Expired(now) {
		return nil, nil
	}
	return found, nil
}
