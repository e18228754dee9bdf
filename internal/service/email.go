package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional mail through Resend. Without an API key
// (or in development) messages are only logged.
type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email, name string) error {
	subject, body := welcomeEmailTemplate(name, s.appURL, s.appName)
	return s.send(ctx, "welcome", email, subject, body)
}

func (s *EmailService) SendAccountDeletedEmail(ctx context.Context, email, name string) error {
	subject, body := accountDeletedEmailTemplate(name, s.appName)
	return s.send(ctx, "account_deleted", email, subject, body)
}

func (s *EmailService) SendPasswordChangedEmail(ctx context.Context, email, name string) error {
	subject, body := passwordChangedEmailTemplate(name, s.appName)
	return s.send(ctx, "password_changed", email, subject, body)
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body string) error {
	if s.client == nil {
		slog.Info("email sent (log mode)", "type", kind, "to", to, "subject", subject)
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	slog.Info("email sent", "type", kind, "to", to)
	return nil
}
