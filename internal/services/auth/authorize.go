// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"strings"

	"codeberg.org/vinayvp/portfolio/internal/authstore"
)

// Authorize reports whether session belongs to allowedEmail, ignoring case.
// An empty allowedEmail denies everyone.
func Authorize(session *authstore.Session, allowedEmail string) bool {
	allowed := strings.TrimSpace(allowedEmail)
	if session == nil || allowed == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(session.Email), allowed)
}

// IsAdmin applies Authorize with the configured admin email.
func (s *Service) IsAdmin(session *authstore.Session) bool {
	return Authorize(session, s.adminEmail)
}
