// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package docstore persists small named JSON documents that are always read
// and written as a whole.
package docstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Load when the document does not exist yet.
var ErrNotFound = errors.New("document not found")

// Backend loads and saves whole documents by name.
// Save must be atomic: readers see either the old or the new body, never a mix.
type Backend interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, body []byte) error
}

// Kind names a configured backend.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
)

// ParseKind validates a backend name from configuration.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFile, "":
		return KindFile, nil
	case KindSQLite:
		return KindSQLite, nil
	default:
		return "", fmt.Errorf("unknown store backend %q (want file or sqlite)", s)
	}
}
