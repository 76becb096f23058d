package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mananladha/expense-tracker/internal/config"
)

// Mail backend conformance checks.
var (
	_ EmailSender = (*SMTPMailer)(nil)
	_ EmailSender = (*GmailMailer)(nil)
	_ SMSSender   = (*TwilioSMS)(nil)
)

// NewMailer selects and builds the email transport named by the
// configuration.
func NewMailer(ctx context.Context, cfg *config.Config) (EmailSender, error) {
	switch cfg.MailBackend {
	case "smtp":
		slog.Info("Using SMTP mail backend", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword), nil

	case "gmail":
		slog.Info("Using Gmail API mail backend")
		mailer, err := NewGmailFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create gmail mailer: %w", err)
		}
		return mailer, nil

	default:
		return nil, fmt.Errorf("unknown mail backend: %s", cfg.MailBackend)
	}
}
