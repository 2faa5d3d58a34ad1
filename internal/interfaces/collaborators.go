package interfaces

import "context"

// ImageStore is the external object-store collaborator that hosts uploaded
// images and serves them by public URL.
type ImageStore interface {
	// Upload stores the object under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// MailSender delivers notification emails. Delivery failure is never fatal to
// the workflow that triggered it; callers log and report it separately.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}
