// Package notify delivers generated reports over email and SMS with
// independent per-channel outcomes: one channel failing never affects
// the other, and transport problems surface as structured results, not
// errors.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/mananladha/expense-tracker/internal/report"
)

const (
	MethodSMS   Method = "sms"
	MethodEmail Method = "email"
	MethodBoth  Method = "both"

	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// Method selects which delivery channels to attempt.
type Method string

func (m Method) Valid() bool {
	switch m {
	case MethodSMS, MethodEmail, MethodBoth:
		return true
	default:
		return false
	}
}

func (m Method) wantsSMS() bool   { return m == MethodSMS || m == MethodBoth }
func (m Method) wantsEmail() bool { return m == MethodEmail || m == MethodBoth }

// Outcome is the result of one channel attempt.
type Outcome struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Results holds the per-channel outcomes of one dispatch. A channel that
// was not requested is absent, which is distinct from a failed attempt.
type Results struct {
	SMS   *Outcome `json:"sms,omitempty"`
	Email *Outcome `json:"email,omitempty"`
}

// Recipients resolves delivery targets for one dispatch.
type Recipients struct {
	Emails []string
	Phone  string
}

// EmailList joins the non-empty addresses into the comma-separated list
// the email transport expects.
func (r Recipients) EmailList() string {
	var nonEmpty []string
	for _, addr := range r.Emails {
		if s := strings.TrimSpace(addr); s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// Transport adapters. Implementations report their own transport
// failures through the returned Outcome where they can; the dispatcher
// additionally converts any returned error into a failure outcome, so
// no adapter problem escapes a dispatch call.
type (
	EmailSender interface {
		// Send delivers the plain-text report with an HTML alternative
		// rendered from the summary to a comma-separated recipient list.
		Send(ctx context.Context, recipients, reportText string, sum report.Summary) (Outcome, error)
		Configured() bool
	}

	SMSSender interface {
		// Send delivers a pre-truncated short-form text.
		Send(ctx context.Context, phone, text string) (Outcome, error)
		Configured() bool
	}

	// DeliveryRecorder receives the outcome of every channel attempt.
	DeliveryRecorder interface {
		RecordDelivery(ctx context.Context, sum report.Summary, channel string, out Outcome)
	}
)

func emailSubject(sum report.Summary) string {
	return fmt.Sprintf("💰 Expense Report - %s to %s", sum.StartDate, sum.EndDate)
}
