package ports

import "context"

// OutreachSender delivers a single outreach email. Implementations wrap the
// configured mail transport; a failed send must return an error so the
// attempt can be recorded as failed rather than silently dropped.
type OutreachSender interface {
	SendOutreachEmail(ctx context.Context, to, subject, htmlBody string) error
}
