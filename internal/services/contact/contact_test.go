// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package contact_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/vinayvp/portfolio/internal/docstore"
	"codeberg.org/vinayvp/portfolio/internal/services/contact"
	"codeberg.org/vinayvp/portfolio/internal/services/email"
)

type fakeMailer struct {
	to   []string
	msgs []email.ContactMessage
	err  error
}

func (m *fakeMailer) SendContact(_ context.Context, to string, msg email.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.msgs = append(m.msgs, msg)
	return nil
}

func validSubmission() contact.Submission {
	return contact.Submission{
		FullName:     "  Jane Doe ",
		Email:        "jane@example.com ",
		Phone:        " ",
		Organization: "Acme",
		Message:      "Hello!\nLet's talk.",
	}
}

func TestValidate(t *testing.T) {
	sub := validSubmission()

	require.NoError(t, sub.Validate())
	assert.Equal(t, "Jane Doe", sub.FullName)
	assert.Equal(t, "jane@example.com", sub.Email)
	assert.Empty(t, sub.Phone)
}

func TestValidate_MissingFields(t *testing.T) {
	sub := contact.Submission{FullName: " ", Message: ""}

	err := sub.Validate()

	var verr contact.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Full name is required.", verr["fullName"])
	assert.Equal(t, "Email is required.", verr["email"])
	assert.Equal(t, "Message is required.", verr["message"])
	assert.Equal(t, "invalid contact submission: email, fullName, message", err.Error())
}

func TestValidate_InvalidEmail(t *testing.T) {
	sub := validSubmission()
	sub.Email = "jane@localhost"

	var verr contact.ValidationError
	require.ErrorAs(t, sub.Validate(), &verr)
	assert.Equal(t, "Invalid email address.", verr["email"])
	assert.Len(t, verr, 1)
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"jane@example.com", true},
		{"jane.doe+tag@mail.example.co.uk", true},
		{"jane@localhost", false},
		{"jane@example.", false},
		{"Jane <jane@example.com>", false},
		{"not-an-email", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, contact.ValidEmail(tt.email))
		})
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	backend := docstore.NewMemoryBackend()
	mailer := &fakeMailer{}
	svc := contact.NewService(backend, mailer, "owner@example.com")

	sub := validSubmission()
	require.NoError(t, sub.Validate())

	rec, err := svc.Submit(ctx, sub)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.SubmittedAt.IsZero())

	require.Len(t, mailer.msgs, 1)
	assert.Equal(t, []string{"owner@example.com"}, mailer.to)
	assert.Equal(t, "Jane Doe", mailer.msgs[0].Name)
	assert.Equal(t, "jane@example.com", mailer.msgs[0].Email)
	assert.Equal(t, "Acme", mailer.msgs[0].Organization)

	records, err := svc.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, "Jane Doe", records[0].FullName)
}

func TestSubmit_AppendsToInbox(t *testing.T) {
	ctx := context.Background()
	svc := contact.NewService(docstore.NewMemoryBackend(), &fakeMailer{}, "owner@example.com")

	for range 3 {
		_, err := svc.Submit(ctx, validSubmission())
		require.NoError(t, err)
	}

	records, err := svc.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.NotEqual(t, records[0].ID, records[1].ID)
}

func TestSubmit_NotConfigured(t *testing.T) {
	svc := contact.NewService(docstore.NewMemoryBackend(), &fakeMailer{}, " ")

	assert.False(t, svc.Configured())
	_, err := svc.Submit(context.Background(), validSubmission())
	assert.ErrorIs(t, err, contact.ErrNotConfigured)
}

func TestSubmit_MailerFailure(t *testing.T) {
	mailErr := errors.New("smtp down")
	svc := contact.NewService(docstore.NewMemoryBackend(), &fakeMailer{err: mailErr}, "owner@example.com")

	_, err := svc.Submit(context.Background(), validSubmission())
	assert.ErrorIs(t, err, mailErr)
}

func TestSubmit_StorageFailure(t *testing.T) {
	backend := docstore.NewMemoryBackend()
	backend.FailSave = errors.New("disk full")
	mailer := &fakeMailer{}
	svc := contact.NewService(backend, mailer, "owner@example.com")

	_, err := svc.Submit(context.Background(), validSubmission())
	require.Error(t, err)
	assert.Empty(t, mailer.msgs)
}

func TestRecords_Empty(t *testing.T) {
	svc := contact.NewService(docstore.NewMemoryBackend(), &fakeMailer{}, "owner@example.com")

	records, err := svc.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := contact.NewLimiter(2, time.Minute)
	l.SetClock(func() time.Time { return now })

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))

	// Other clients have their own window.
	assert.True(t, l.Allow("5.6.7.8"))

	now = now.Add(time.Minute + time.Second)
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestLimiter_Defaults(t *testing.T) {
	l := contact.NewLimiter(0, 0)

	for range contact.DefaultRateLimit {
		assert.True(t, l.Allow("client"))
	}
	assert.False(t, l.Allow("client"))
}
