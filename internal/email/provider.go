// Package email provides the transactional email provider interface and the
// Resend implementation. Email failures are logged and never block a
// workflow action.
package email

import "context"

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
}

type Email struct {
	To      string
	Subject string
	Text    string
}

// NoopProvider is used when no email provider is configured.
type NoopProvider struct{}

func (NoopProvider) SendEmail(context.Context, *Email) error { return nil }
