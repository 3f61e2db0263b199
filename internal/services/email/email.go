// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"codeberg.org/vinayvp/portfolio/internal/config"
	"codeberg.org/vinayvp/portfolio/internal/i18n"
)

// ContactMessage is a contact form submission forwarded by email.
type ContactMessage struct {
	Name         string
	Email        string
	Phone        string
	Organization string
	Message      string
}

// Service sends email via SMTP.
type Service struct {
	cfg *config.SMTPConfig
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("SMTP from address is required")
	}

	return &Service{cfg: cfg}, nil
}

// SendMagicLink mails a sign-in link that is valid for expiry.
func (s *Service) SendMagicLink(ctx context.Context, to, link string, expiry time.Duration) error {
	msg, err := s.MagicLinkMessage(ctx, to, link, expiry)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

// MagicLinkMessage builds the sign-in email without sending it.
func (s *Service) MagicLinkMessage(ctx context.Context, to, link string, expiry time.Duration) (*mail.Msg, error) {
	subject := i18n.T(ctx, "magic_link_subject")
	body := i18n.TData(ctx, "magic_link_body", map[string]any{
		"URL":     link,
		"Minutes": int(expiry.Minutes()),
	})

	return s.newMessage(to, subject, body)
}

// SendContact forwards a contact submission to the given recipient. Replies
// go to the submitter.
func (s *Service) SendContact(ctx context.Context, to string, c ContactMessage) error {
	msg, err := s.ContactMessage(ctx, to, c)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

// ContactMessage builds the contact email without sending it.
func (s *Service) ContactMessage(ctx context.Context, to string, c ContactMessage) (*mail.Msg, error) {
	data := map[string]any{
		"Name":         c.Name,
		"Email":        c.Email,
		"Phone":        orDash(c.Phone),
		"Organization": orDash(c.Organization),
		"Message":      c.Message,
	}

	msg, err := s.newMessage(to, i18n.TData(ctx, "contact_subject", data), i18n.TData(ctx, "contact_body", data))
	if err != nil {
		return nil, err
	}
	if err := msg.ReplyTo(c.Email); err != nil {
		return nil, fmt.Errorf("setting reply-to address: %w", err)
	}
	return msg, nil
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func (s *Service) newMessage(to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return msg, nil
}

// send delivers msg via SMTP using go-mail.
func (s *Service) send(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
