package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mananladha/expense-tracker/internal/config"
	"github.com/mananladha/expense-tracker/internal/events"
	applog "github.com/mananladha/expense-tracker/internal/log"
	"github.com/mananladha/expense-tracker/internal/notify"
	"github.com/mananladha/expense-tracker/internal/report"
	"github.com/mananladha/expense-tracker/internal/scheduler"
	"github.com/mananladha/expense-tracker/internal/storage"
)

// report-worker runs only the scheduled-report loop, for deployments
// that scale the API server separately.
func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentScheduler,
	})
	applog.SetDefault(logger)

	logger.Info("Starting report-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo, cleanup, err := storage.NewRepository(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", applog.FieldError, err)
		os.Exit(1)
	}
	defer cleanup()

	mailer, err := notify.NewMailer(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize mail backend", applog.FieldError, err)
		os.Exit(1)
	}
	sms := notify.NewTwilioSMS(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)

	var recorder notify.DeliveryRecorder
	if cfg.AMQPURL != "" {
		publisher, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP publisher, delivery events disabled", applog.FieldError, err)
		} else {
			defer publisher.Close()
			recorder = events.NewRecorder(publisher)
		}
	}

	generator := report.NewGenerator(repo, repo)
	dispatcher := notify.NewDispatcher(mailer, sms, recorder)

	sched := scheduler.New(cfg.ReportSchedule, repo, generator, dispatcher, scheduler.Fallbacks{
		Emails: cfg.FallbackEmails(),
		Phone:  cfg.RecipientPhone,
	})
	if err := sched.Start(); err != nil {
		logger.Error("Failed to start report scheduler", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Report scheduler running", applog.FieldSchedule, cfg.ReportSchedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())

	sched.Stop()
	logger.Info("Report-worker shutdown complete")
}
