package adapter

import "context"

// Mailer sends transactional email.
type Mailer interface {
	SendEmail(ctx context.Context, to []string, subject, html string, cc ...string) error
}

// WhatsAppSender sends templated WhatsApp messages to verified numbers.
type WhatsAppSender interface {
	SendTemplate(ctx context.Context, phones []string, template string, vars map[string]string) error
}

// AudienceSync tags contacts in the marketing audience (Mailchimp-shaped).
type AudienceSync interface {
	TagContact(ctx context.Context, email, tag string) error
}
