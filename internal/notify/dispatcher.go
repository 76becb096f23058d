package notify

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	applog "github.com/mananladha/expense-tracker/internal/log"
	"github.com/mananladha/expense-tracker/internal/report"
)

// Dispatcher fans a generated report out to the requested channels. The
// two channels run concurrently and share nothing but the read-only
// report content.
type Dispatcher struct {
	email    EmailSender
	sms      SMSSender
	recorder DeliveryRecorder // optional
}

func NewDispatcher(email EmailSender, sms SMSSender, recorder DeliveryRecorder) *Dispatcher {
	return &Dispatcher{email: email, sms: sms, recorder: recorder}
}

// Dispatch attempts delivery on every channel the method selects and
// returns one outcome per attempted channel. Preconditions (transport
// unconfigured, no recipient) and transport failures all become failure
// outcomes; Dispatch itself never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, bundle *report.Bundle, method Method, rcpt Recipients) Results {
	var results Results

	g, gctx := errgroup.WithContext(ctx)

	if method.wantsSMS() {
		g.Go(func() error {
			out := d.sendSMS(gctx, bundle, rcpt.Phone)
			results.SMS = &out
			d.record(gctx, bundle.Summary, ChannelSMS, out)
			return nil
		})
	}

	if method.wantsEmail() {
		g.Go(func() error {
			out := d.sendEmail(gctx, bundle, rcpt.EmailList())
			results.Email = &out
			d.record(gctx, bundle.Summary, ChannelEmail, out)
			return nil
		})
	}

	// Channel funcs never return errors; failures live in the outcomes.
	_ = g.Wait()

	slog.InfoContext(ctx, "Report dispatch finished",
		applog.FieldUserID, bundle.Summary.UserID,
		"method", string(method),
		"sms_attempted", results.SMS != nil,
		"email_attempted", results.Email != nil)

	return results
}

func (d *Dispatcher) sendEmail(ctx context.Context, bundle *report.Bundle, recipients string) Outcome {
	if d.email == nil || !d.email.Configured() {
		return Outcome{Success: false, Error: "email not configured"}
	}
	if recipients == "" {
		return Outcome{Success: false, Error: "email recipient not configured"}
	}

	out, err := d.email.Send(ctx, recipients, bundle.Report, bundle.Summary)
	if err != nil {
		slog.ErrorContext(ctx, "Email delivery failed",
			applog.FieldUserID, bundle.Summary.UserID, applog.FieldError, err)
		return Outcome{Success: false, Error: err.Error()}
	}
	return out
}

func (d *Dispatcher) sendSMS(ctx context.Context, bundle *report.Bundle, phone string) Outcome {
	if d.sms == nil || !d.sms.Configured() {
		return Outcome{Success: false, Error: "sms not configured"}
	}
	if phone == "" {
		return Outcome{Success: false, Error: "sms recipient not configured"}
	}

	out, err := d.sms.Send(ctx, phone, report.ShortSummary(bundle.Summary))
	if err != nil {
		slog.ErrorContext(ctx, "SMS delivery failed",
			applog.FieldUserID, bundle.Summary.UserID, applog.FieldError, err)
		return Outcome{Success: false, Error: err.Error()}
	}
	return out
}

func (d *Dispatcher) record(ctx context.Context, sum report.Summary, channel string, out Outcome) {
	if d.recorder == nil {
		return
	}
	d.recorder.RecordDelivery(ctx, sum, channel, out)
}
