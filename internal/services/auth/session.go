// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"time"

	"codeberg.org/vinayvp/portfolio/internal/authstore"
)

// CreateSession starts a session for email lasting ttl and returns the raw
// session id. Expired sessions of any email are dropped on the way.
func (s *Service) CreateSession(ctx context.Context, email string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := newSecret()
	if err != nil {
		return "", err
	}
	now := s.now()

	err = s.update(ctx, func(doc *authstore.Document) {
		kept := doc.Sessions[:0]
		for _, sess := range doc.Sessions {
			if !sess.Expired(now) {
				kept = append(kept, sess)
			}
		}
		doc.Sessions = append(kept, authstore.Session{
			SessionIDHash: HashValue(raw),
			Email:         email,
			ExpiresAt:     now.Add(ttl),
		})
	})
	if err != nil {
		return "", err
	}

	return raw, nil
}

// CreateDefaultSession starts a session with the configured TTL.
func (s *Service) CreateDefaultSession(ctx context.Context, email string) (string, error) {
	return s.CreateSession(ctx, email, s.sessionTTL)
}

// GetSession returns the live session for rawID, or nil. An expired session
// is deleted when found.
func (s *Service) GetSession(ctx context.Context, rawID string) (*authstore.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.ReadDocument(ctx)
	if err != nil {
		return nil, err
	}

	hash := HashValue(rawID)
	for _, sess := range doc.Sessions {
		if sess.SessionIDHash != hash {
			continue
		}
		if sess.Expired(s.now()) {
			if err := s.deleteSession(ctx, hash); err != nil {
				return nil, err
			}
			return nil, nil
		}
		found := sess
		return &found, nil
	}

	return nil, nil
}

// DeleteSession removes the session for rawID. Unknown ids are ignored.
func (s *Service) DeleteSession(ctx context.Context, rawID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteSession(ctx, HashValue(rawID))
}

func (s *Service) deleteSession(ctx context.Context, hash string) error {
	return s.update(ctx, func(doc *authstore.Document) {
		kept := doc.Sessions[:0]
		for _, sess := range doc.Sessions {
			if sess.SessionIDHash != hash {
				kept = append(kept, sess)
			}
		}
		doc.Sessions = kept
	})
}
