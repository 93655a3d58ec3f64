// Package notify delivers call summary reports by email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a fully rendered email, ready for transport.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a rendered message. The webhook handler treats the
// transport as an external collaborator behind this interface.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender delivers messages through the SendGrid v3 mail API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
	to     *mail.Email
}

// NewSendGridSenderFromEnv builds the sender from environment variables.
// SENDGRID_API_KEY, NOTIFY_FROM_EMAIL and NOTIFY_TO_EMAIL are required.
func NewSendGridSenderFromEnv() (*SendGridSender, error) {
	apiKey := strings.TrimSpace(os.Getenv("SENDGRID_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("SENDGRID_API_KEY is required for email delivery")
	}

	fromEmail := strings.TrimSpace(os.Getenv("NOTIFY_FROM_EMAIL"))
	toEmail := strings.TrimSpace(os.Getenv("NOTIFY_TO_EMAIL"))
	if fromEmail == "" || toEmail == "" {
		return nil, errors.New("NOTIFY_FROM_EMAIL and NOTIFY_TO_EMAIL are required for email delivery")
	}

	fromName := strings.TrimSpace(os.Getenv("NOTIFY_FROM_NAME"))
	if fromName == "" {
		fromName = "Priya"
	}
	toName := strings.TrimSpace(os.Getenv("NOTIFY_TO_NAME"))

	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
		to:     mail.NewEmail(toName, toEmail),
	}, nil
}

// Send delivers the message. A non-2xx SendGrid response is an error.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	message := mail.NewSingleEmail(s.from, msg.Subject, s.to, msg.Text, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}

	log.Printf("Email dispatched via SendGrid (status %d)", resp.StatusCode)
	return nil
}
