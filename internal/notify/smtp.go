package notify

import (
	"context"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/mananladha/expense-tracker/internal/report"
)

// SMTPMailer sends report email over plain SMTP (Gmail app-password
// style credentials).
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password}
}

func (m *SMTPMailer) Configured() bool {
	return m != nil && m.username != "" && m.password != ""
}

func (m *SMTPMailer) Send(ctx context.Context, recipients, reportText string, sum report.Summary) (Outcome, error) {
	if !m.Configured() {
		return Outcome{Success: false, Error: "email not configured"}, nil
	}
	if recipients == "" {
		return Outcome{Success: false, Error: "no email recipients provided"}, nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.username)
	msg.SetHeader("To", splitRecipients(recipients)...)
	msg.SetHeader("Subject", emailSubject(sum))
	msg.SetBody("text/plain", reportText)
	msg.AddAlternative("text/html", report.RenderHTML(reportText, sum))

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := dialer.DialAndSend(msg); err != nil {
		return Outcome{Success: false, Error: err.Error()}, nil
	}
	return Outcome{Success: true}, nil
}

func splitRecipients(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
