// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vinovest/sqlx"
)

// SQLBackend stores documents as rows of the documents table.
type SQLBackend struct {
	db *sqlx.DB
}

// NewSQLBackend creates a backend on an opened (and migrated) database.
func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

// Load reads the named document.
func (b *SQLBackend) Load(ctx context.Context, name string) ([]byte, error) {
	var body string
	err := b.db.GetContext(ctx, &body, `SELECT body FROM documents WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	return []byte(body), nil
}

// Save upserts the named document in a single statement.
func (b *SQLBackend) Save(ctx context.Context, name string, body []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, string(body))
	if err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	return nil
}
