package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"frecks-web/config"
)

// Message is the hand-off shape for the sending collaborator.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Render turns a request into a deliverable message.
func Render(from string, req Request) (Message, error) {
	var body bytes.Buffer
	if err := req.render(&body); err != nil {
		return Message{}, fmt.Errorf("failed to execute %s email template: %w", req.Type(), err)
	}
	return Message{
		From:    from,
		To:      req.Recipient(),
		Subject: req.Subject(),
		HTML:    body.String(),
	}, nil
}

// SMTPSender sends email through an SMTP relay (Brevo by default).
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

// IsConfigured checks if the sender has valid SMTP configuration
func (s *SMTPSender) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.IsConfigured() {
		return fmt.Errorf("smtp sender is not configured")
	}

	raw := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		headerSafe(msg.From),
		headerSafe(msg.To),
		headerSafe(msg.Subject),
		msg.HTML,
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, msg.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// headerSafe strips CR/LF so user-supplied values cannot inject headers.
func headerSafe(v string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(v)
}
