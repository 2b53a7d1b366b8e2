// Package mailer delivers HTML e-mail over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"gopkg.in/gomail.v2"
)

// ErrDisabled is returned when SMTP credentials are missing
var ErrDisabled = errors.New("SMTP credentials not configured")

// Config holds SMTP settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// Attachment is an in-memory file attached to a message
type Attachment struct {
	Filename string
	Data     []byte
}

// Message is a single outgoing e-mail
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer sends messages through an SMTP relay
type Mailer struct {
	cfg  Config
	dial func() (gomail.SendCloser, error)
}

// New creates a Mailer that dials the configured relay per message
func New(cfg Config) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewWithDialer(cfg, dialer.Dial)
}

// NewWithDialer creates a Mailer that opens a session with dial per message
func NewWithDialer(cfg Config, dial func() (gomail.SendCloser, error)) *Mailer {
	return &Mailer{cfg: cfg, dial: dial}
}

// NewWithSender creates a Mailer that hands messages to s
func NewWithSender(cfg Config, s gomail.Sender) *Mailer {
	return NewWithDialer(cfg, func() (gomail.SendCloser, error) {
		return nopCloser{s}, nil
	})
}

type nopCloser struct {
	gomail.Sender
}

func (nopCloser) Close() error { return nil }

// Enabled reports whether SMTP credentials are present
func (m *Mailer) Enabled() bool {
	return m.cfg.Username != "" && m.cfg.Password != ""
}

// DefaultRecipient is the configured SMTP account, used for test mails
func (m *Mailer) DefaultRecipient() string {
	return m.cfg.Username
}

// Send delivers msg, giving up when ctx is done
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if !m.Enabled() {
		return ErrDisabled
	}

	gm := m.build(msg)

	done := make(chan error, 1)
	go func() {
		err := m.deliver(ctx, gm)
		if err == nil && ctx.Err() != nil {
			log.Printf("⚠️ E-mail to %s delivered after the caller gave up", msg.To)
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

// deliver dials the relay and sends gm. A session that only opens after
// ctx is done is closed without sending, since the caller has already
// reported a failure.
func (m *Mailer) deliver(ctx context.Context, gm *gomail.Message) error {
	s, err := m.dial()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := ctx.Err(); err != nil {
		return err
	}
	return gomail.Send(s, gm)
}

func (m *Mailer) build(msg Message) *gomail.Message {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}
	name := m.cfg.FromName
	if name == "" {
		name = "IT Asset Management"
	}

	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", from, name)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	for _, a := range msg.Attachments {
		data := a.Data
		gm.Attach(a.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	return gm
}
