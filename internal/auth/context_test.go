// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/vinayvp/portfolio/internal/auth"
	"codeberg.org/vinayvp/portfolio/internal/authstore"
)

func TestGetSession(t *testing.T) {
	sess := &authstore.Session{Email: "admin@example.com"}
	ctx := auth.WithSession(context.Background(), sess, "raw-id")

	assert.Equal(t, sess, auth.GetSession(ctx))
	assert.Equal(t, "raw-id", auth.GetSessionID(ctx))
	assert.True(t, auth.IsAuthenticated(ctx))
}

func TestGetSession_Empty(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, auth.GetSession(ctx))
	assert.Empty(t, auth.GetSessionID(ctx))
	assert.False(t, auth.IsAuthenticated(ctx))
}
