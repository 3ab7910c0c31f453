package ports

import "context"

// Mailer delivers a rendered HTML email. Implementations send
// synchronously; a failed send is returned to the caller rather than
// swallowed, since the recipient otherwise has no way to complete the
// flow that triggered the mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// TemplateRenderer renders a named HTML template with {{key}} placeholders
// substituted from data.
type TemplateRenderer interface {
	Render(name string, data map[string]string) (string, error)
}

// ImageStore persists decoded image bytes and returns a public URL for
// the stored object.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}
