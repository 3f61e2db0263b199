// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides authentication context helpers.
package auth

import (
	"context"

	"codeberg.org/vinayvp/portfolio/internal/authstore"
	"codeberg.org/vinayvp/portfolio/internal/ctxkeys"
)

// WithSession stores the live session and its raw id in ctx.
func WithSession(ctx context.Context, sess *authstore.Session, rawID string) context.Context {
	ctx = context.WithValue(ctx, ctxkeys.Session{}, sess)
	return context.WithValue(ctx, ctxkeys.SessionID{}, rawID)
}

// GetSession returns the session from the context, or nil if not authenticated.
func GetSession(ctx context.Context) *authstore.Session {
	if sess, ok := ctx.Value(ctxkeys.Session{}).(*authstore.Session); ok {
		return sess
	}
	return nil
}

// GetSessionID returns the raw session id from the context.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkeys.SessionID{}).(string)
	return id
}

// IsAuthenticated returns true if the context has a live session.
func IsAuthenticated(ctx context.Context) bool {
	return GetSession(ctx) != nil
}
