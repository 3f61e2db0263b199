// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ctxkeys defines typed context keys used across packages.
package ctxkeys

// Session is the context key for the authenticated admin session.
type Session struct{}

// SessionID is the context key for the raw session id read from the cookie.
type SessionID struct{}
