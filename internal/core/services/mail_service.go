package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"it-asset-management/internal/core/domain"
	"it-asset-management/internal/pkg/mailer"
)

// MailService exposes the administrator e-mail utilities
type MailService struct {
	mailer Mailer
}

// NewMailService creates a new mail service
func NewMailService(m Mailer) *MailService {
	return &MailService{mailer: m}
}

// SendEmailInput represents a custom e-mail
type SendEmailInput struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SendCustom sends a plain-text message, rendered as escaped HTML
func (s *MailService) SendCustom(ctx context.Context, input *SendEmailInput) error {
	if input.To == "" || input.Subject == "" || input.Message == "" {
		return fmt.Errorf("%w: to, subject and message are required", domain.ErrBadRequest)
	}
	if err := validateEmail(input.To); err != nil {
		return err
	}

	body := "<p>" + strings.ReplaceAll(html.EscapeString(input.Message), "\n", "<br>") + "</p>"
	if err := s.send(ctx, mailer.Message{To: input.To, Subject: input.Subject, HTML: body}); err != nil {
		return err
	}

	log.Printf("📧 Custom email sent to %s", input.To)
	return nil
}

// SendTest mails the configured SMTP account to itself
func (s *MailService) SendTest(ctx context.Context) error {
	to := s.mailer.DefaultRecipient()
	err := s.send(ctx, mailer.Message{
		To:      to,
		Subject: "Test Email from IT Asset Management",
		HTML:    "<p>This is a test email. SMTP is configured correctly.</p>",
	})
	if err != nil {
		return err
	}

	log.Printf("📧 Test email sent to %s", to)
	return nil
}

func (s *MailService) send(ctx context.Context, msg mailer.Message) error {
	if !s.mailer.Enabled() {
		return domain.ErrMailNotConfigured
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, mailer.ErrDisabled) {
			return domain.ErrMailNotConfigured
		}
		return fmt.Errorf("%w: %s", domain.ErrUpstream, err.Error())
	}
	return nil
}
