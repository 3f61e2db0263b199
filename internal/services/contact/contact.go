// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package contact handles the public contact form.
package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeberg.org/vinayvp/portfolio/internal/docstore"
	"codeberg.org/vinayvp/portfolio/internal/services/email"
)

// DocumentName is the name the submission inbox is stored under.
const DocumentName = "contacts"

// ErrNotConfigured is returned when no recipient is configured.
var ErrNotConfigured = errors.New("contact form is not configured")

// Submission is the contact form payload.
type Submission struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Organization string `json:"organization,omitempty"`
	Message      string `json:"message"`
}

// ValidationError maps field names to messages.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid contact submission: " + strings.Join(fields, ", ")
}

// Normalize trims every field.
func (s *Submission) Normalize() {
	s.FullName = strings.TrimSpace(s.FullName)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Organization = strings.TrimSpace(s.Organization)
	s.Message = strings.TrimSpace(s.Message)
}

// Validate normalizes s and checks the required fields.
func (s *Submission) Validate() error {
	s.Normalize()

	errs := ValidationError{}
	if s.FullName == "" {
		errs["fullName"] = "Full name is required."
	}
	switch {
	case s.Email == "":
		errs["email"] = "Email is required."
	case !ValidEmail(s.Email):
		errs["email"] = "Invalid email address."
	}
	if s.Message == "" {
		errs["message"] = "Message is required."
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidEmail reports whether v is a bare address with a dotted domain.
func ValidEmail(v string) bool {
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return false
	}
	at := strings.LastIndex(v, "@")
	domain := v[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}

// Mailer forwards submissions.
type Mailer interface {
	SendContact(ctx context.Context, to string, msg email.ContactMessage) error
}

// Record is a stored submission.
type Record struct {
	SubmittedAt time.Time `json:"submittedAt"`
	ID          string    `json:"id"`
	Submission
}

// Service records submissions and forwards them to the site owner.
type Service struct {
	backend   docstore.Backend
	mailer    Mailer
	now       func() time.Time
	recipient string
	mu        sync.Mutex
}

// NewService creates a contact service. An empty recipient disables Submit.
func NewService(backend docstore.Backend, mailer Mailer, recipient string) *Service {
	return &Service{
		backend:   backend,
		mailer:    mailer,
		now:       time.Now,
		recipient: strings.TrimSpace(recipient),
	}
}

// Configured reports whether submissions can be delivered.
func (s *Service) Configured() bool {
	return s.recipient != ""
}

// Submit stores sub in the inbox and mails it to the recipient. sub must
// already be validated.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Record, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	rec := Record{
		ID:          uuid.NewString(),
		SubmittedAt: s.now().UTC(),
		Submission:  sub,
	}

	if err := s.record(ctx, rec); err != nil {
		return nil, err
	}

	err := s.mailer.SendContact(ctx, s.recipient, email.ContactMessage{
		Name:         sub.FullName,
		Email:        sub.Email,
		Phone:        sub.Phone,
		Organization: sub.Organization,
		Message:      sub.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("forwarding contact submission %s: %w", rec.ID, err)
	}

	slog.InfoContext(ctx, "contact_submitted", "id", rec.ID, "email", sub.Email)
	return &rec, nil
}

// Records returns every stored submission, oldest first.
func (s *Service) Records(ctx context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *Service) record(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return err
	}
	records = append(records, rec)

	body, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding contact inbox: %w", err)
	}
	if err := s.backend.Save(ctx, DocumentName, body); err != nil {
		return fmt.Errorf("saving contact inbox: %w", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context) ([]Record, error) {
	body, err := s.backend.Load(ctx, DocumentName)
	if errors.Is(err, docstore.ErrNotFound) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading contact inbox: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decoding contact inbox: %w", err)
	}
	return records, nil
}
