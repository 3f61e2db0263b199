// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package authstore persists outstanding magic-link tokens and admin sessions
// as a single document.
package authstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codeberg.org/vinayvp/portfolio/internal/docstore"
)

// DocumentName is the name the auth document is stored under.
const DocumentName = "auth"

// ErrStorageUnavailable is returned when the document cannot be read or written.
var ErrStorageUnavailable = errors.New("auth storage unavailable")

// MagicLinkToken is an outstanding magic link. Only the digest of the raw token is kept.
type MagicLinkToken struct {
	TokenHash string    `json:"tokenHash"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the token is no longer usable at now.
func (t MagicLinkToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Session is an authenticated admin session. Only the digest of the raw id is kept.
type Session struct {
	SessionIDHash string    `json:"sessionIdHash"`
	Email         string    `json:"email"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Document is the persisted aggregate.
type Document struct {
	Tokens   []MagicLinkToken `json:"tokens"`
	Sessions []Session        `json:"sessions"`
}

// Store reads and writes the whole document.
type Store interface {
	ReadDocument(ctx context.Context) (*Document, error)
	WriteDocument(ctx context.Context, doc *Document) error
}

// DocumentStore is a Store backed by a docstore.Backend.
type DocumentStore struct {
	backend docstore.Backend
}

// New creates a DocumentStore on the given backend.
func New(backend docstore.Backend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// NewMemory creates a DocumentStore kept in memory.
func NewMemory() *DocumentStore {
	return New(docstore.NewMemoryBackend())
}

// ReadDocument returns the current document, creating an empty one on first use.
func (s *DocumentStore) ReadDocument(ctx context.Context) (*Document, error) {
	body, err := s.backend.Load(ctx, DocumentName)
	if errors.Is(err, docstore.ErrNotFound) {
		doc := &Document{}
		if err := s.WriteDocument(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding auth document: %w", ErrStorageUnavailable, err)
	}
	return &doc, nil
}

// WriteDocument overwrites the persisted document.
func (s *DocumentStore) WriteDocument(ctx context.Context, doc *Document) error {
	out := *doc
	// Keep the on-disk shape stable: [] rather than null.
	if out.Tokens == nil {
		out.Tokens = []MagicLinkToken{}
	}
	if out.Sessions == nil {
		out.Sessions = []Session{}
	}

	body, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding auth document: %w", ErrStorageUnavailable, err)
	}
	if err := s.backend.Save(ctx, DocumentName, body); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}
