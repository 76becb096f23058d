package events

import (
	"context"
	"log/slog"
	"time"

	applog "github.com/mananladha/expense-tracker/internal/log"
	"github.com/mananladha/expense-tracker/internal/notify"
	"github.com/mananladha/expense-tracker/internal/report"
)

// Recorder feeds dispatch outcomes into the audit stream. Publish
// failures are logged and swallowed.
type Recorder struct {
	pub *Publisher
}

var _ notify.DeliveryRecorder = (*Recorder)(nil)

func NewRecorder(pub *Publisher) *Recorder {
	return &Recorder{pub: pub}
}

func (r *Recorder) RecordDelivery(ctx context.Context, sum report.Summary, channel string, out notify.Outcome) {
	if r == nil || r.pub == nil {
		return
	}

	msg := &ReportDeliveryMessage{
		UserID:    sum.UserID,
		StartDate: sum.StartDate,
		EndDate:   sum.EndDate,
		Channel:   channel,
		Success:   out.Success,
		Error:     out.Error,
		MessageID: out.MessageID,
		Timestamp: time.Now(),
	}
	if err := r.pub.PublishReportDelivery(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Failed to publish delivery event",
			applog.FieldUserID, sum.UserID, applog.FieldChannel, channel, applog.FieldError, err)
	}
}
