// Package scheduler runs the nightly report job: generate the daily
// report for every user and push it out over every channel.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/mananladha/expense-tracker/internal/core"
	applog "github.com/mananladha/expense-tracker/internal/log"
	"github.com/mananladha/expense-tracker/internal/notify"
	"github.com/mananladha/expense-tracker/internal/report"
)

// UserDirectory is the slice of storage the scheduler needs.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]core.User, error)
	GetUser(ctx context.Context, id int64) (*core.User, error)
}

type ReportGenerator interface {
	GenerateInterval(ctx context.Context, userID int64, interval report.Interval) (*report.Bundle, error)
}

type ReportDispatcher interface {
	Dispatch(ctx context.Context, bundle *report.Bundle, method notify.Method, rcpt notify.Recipients) notify.Results
}

// Fallbacks are the recipients used for users who have not configured
// their own delivery settings.
type Fallbacks struct {
	Emails []string
	Phone  string
}

type Scheduler struct {
	cron       *cron.Cron
	schedule   string
	users      UserDirectory
	generator  ReportGenerator
	dispatcher ReportDispatcher
	fallbacks  Fallbacks
}

func New(schedule string, users UserDirectory, generator ReportGenerator, dispatcher ReportDispatcher, fallbacks Fallbacks) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		schedule:   schedule,
		users:      users,
		generator:  generator,
		dispatcher: dispatcher,
		fallbacks:  fallbacks,
	}
}

// Start registers the cron entry and begins running it in the
// background.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("register report schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	slog.Info("Report scheduler started", applog.FieldSchedule, s.schedule)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Report scheduler stopped")
}

// RunOnce sends the scheduled report to every user. One user failing
// never stops the sweep.
func (s *Scheduler) RunOnce(ctx context.Context) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled run failed to list users", applog.FieldError, err)
		return
	}

	slog.InfoContext(ctx, "Scheduled report run starting", "users", len(users))

	sent := 0
	for _, user := range users {
		if _, err := s.sendTo(ctx, user); err != nil {
			slog.ErrorContext(ctx, "Scheduled report failed",
				applog.FieldUserID, user.ID, applog.FieldError, err)
			continue
		}
		sent++
	}

	slog.InfoContext(ctx, "Scheduled report run complete",
		"users", len(users), "sent", sent)
}

// SendScheduledReport generates and dispatches the daily report for one
// user, using the same recipient resolution as the nightly sweep.
func (s *Scheduler) SendScheduledReport(ctx context.Context, userID int64) (notify.Results, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return notify.Results{}, fmt.Errorf("fetch user %d: %w", userID, err)
	}
	return s.sendTo(ctx, *user)
}

func (s *Scheduler) sendTo(ctx context.Context, user core.User) (notify.Results, error) {
	bundle, err := s.generator.GenerateInterval(ctx, user.ID, report.IntervalDaily)
	if err != nil {
		return notify.Results{}, fmt.Errorf("generate report: %w", err)
	}

	results := s.dispatcher.Dispatch(ctx, bundle, notify.MethodBoth, s.recipientsFor(user))
	return results, nil
}

// recipientsFor prefers the user's own delivery settings and falls back
// to the globally configured recipients.
func (s *Scheduler) recipientsFor(user core.User) notify.Recipients {
	rcpt := notify.Recipients{
		Emails: []string{user.ReportEmail, user.ReportEmail2},
		Phone:  user.ReportPhone,
	}
	if user.ReportEmail == "" && user.ReportEmail2 == "" {
		rcpt.Emails = s.fallbacks.Emails
	}
	if rcpt.Phone == "" {
		rcpt.Phone = s.fallbacks.Phone
	}
	return rcpt
}
