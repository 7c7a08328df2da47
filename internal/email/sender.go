package email

import (
	"context"
	"fmt"

	"shoreline_portal_backend/platform/config"
)

type Sender interface {
	SendOutreachEmail(ctx context.Context, toEmail, subject, htmlContent string) error
	SendPartnerWelcomeEmail(ctx context.Context, toEmail, partnerName, city string) error
}

type NoopSender struct{}

func (NoopSender) SendOutreachEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

func (NoopSender) SendPartnerWelcomeEmail(ctx context.Context, toEmail, partnerName, city string) error {
	return nil
}

// NewSender builds the configured delivery backend. When email is disabled the
// NoopSender is returned so callers never need a nil check.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	switch cfg.GetEmailProvider() {
	case "smtp":
		return NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		), nil
	case "brevo", "":
		return NewBrevoSender(cfg), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
}
