package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	goption "google.golang.org/api/option"

	"github.com/mananladha/expense-tracker/internal/report"
)

// GmailMailer sends report email through the Gmail API instead of raw
// SMTP, for deployments that authenticate with Google service
// credentials rather than an app password.
type GmailMailer struct {
	svc  *gmail.Service
	from string
}

// NewGmailFromEnv builds a Gmail client from environment credentials.
// Uses GOOGLE_CREDENTIALS_JSON, GOOGLE_APPLICATION_CREDENTIALS, or
// Application Default Credentials, in that order. EMAIL_USER is the
// sending address.
func NewGmailFromEnv(ctx context.Context) (*GmailMailer, error) {
	from := strings.TrimSpace(os.Getenv("EMAIL_USER"))
	if from == "" {
		return nil, fmt.Errorf("missing EMAIL_USER for gmail backend")
	}

	var opts []goption.ClientOption
	if js := strings.TrimSpace(os.Getenv("GOOGLE_CREDENTIALS_JSON")); js != "" {
		opts = append(opts, goption.WithCredentialsJSON([]byte(js)))
	} else if f := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); f != "" {
		opts = append(opts, goption.WithCredentialsFile(f))
	}
	opts = append(opts, goption.WithScopes(gmail.GmailSendScope))

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}

	return &GmailMailer{svc: svc, from: from}, nil
}

func (m *GmailMailer) Configured() bool {
	return m != nil && m.svc != nil && m.from != ""
}

func (m *GmailMailer) Send(ctx context.Context, recipients, reportText string, sum report.Summary) (Outcome, error) {
	if !m.Configured() {
		return Outcome{Success: false, Error: "email not configured"}, nil
	}
	if recipients == "" {
		return Outcome{Success: false, Error: "no email recipients provided"}, nil
	}

	raw := buildMIMEMessage(m.from, recipients, emailSubject(sum), reportText, report.RenderHTML(reportText, sum))
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString([]byte(raw))}

	sent, err := m.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return Outcome{Success: false, Error: err.Error()}, nil
	}
	return Outcome{Success: true, MessageID: sent.Id}, nil
}

// buildMIMEMessage assembles a multipart/alternative RFC 822 message
// with plain-text and HTML bodies.
func buildMIMEMessage(from, to, subject, plainText, html string) string {
	const boundary = "report-boundary-7f3a"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(plainText)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.String()
}
