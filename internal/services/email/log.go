// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"log/slog"
	"time"
)

// LogMailer stands in for SMTP in development. It logs what would have
// been sent.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer writing to logger, or slog.Default when nil.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// SendMagicLink logs the link.
func (m *LogMailer) SendMagicLink(ctx context.Context, to, link string, expiry time.Duration) error {
	m.logger.WarnContext(ctx, "magic_link_not_sent",
		"reason", "smtp not configured",
		"to", to,
		"url", link,
		"expiry", expiry,
	)
	return nil
}

// SendContact logs the submission.
func (m *LogMailer) SendContact(ctx context.Context, to string, c ContactMessage) error {
	m.logger.WarnContext(ctx, "contact_not_sent",
		"reason", "smtp not configured",
		"to", to,
		"from", c.Email,
		"name", c.Name,
	)
	return nil
}
