// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"log/slog"

	"codeberg.org/vinayvp/portfolio/internal/authstore"
)

// ClearExpired drops every expired token and session.
func (s *Service) ClearExpired(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var tokens, sessions int

	err := s.update(ctx, func(doc *authstore.Document) {
		keptTokens := doc.Tokens[:0]
		for _, t := range doc.Tokens {
			if t.Expired(now) {
				tokens++
				continue
			}
			keptTokens = append(keptTokens, t)
		}
		doc.Tokens = keptTokens

		keptSessions := doc.Sessions[:0]
		for _, sess := range doc.Sessions {
			if sess.Expired(now) {
				sessions++
				continue
			}
			keptSessions = append(keptSessions, sess)
		}
		doc.Sessions = keptSessions
	})
	if err != nil {
		return err
	}

	if tokens > 0 || sessions > 0 {
		slog.Debug("auth_sweep", "tokens_removed", tokens, "sessions_removed", sessions)
	}
	return nil
}
