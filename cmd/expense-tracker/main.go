package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mananladha/expense-tracker/internal/auth"
	"github.com/mananladha/expense-tracker/internal/config"
	"github.com/mananladha/expense-tracker/internal/events"
	apphttp "github.com/mananladha/expense-tracker/internal/http"
	applog "github.com/mananladha/expense-tracker/internal/log"
	"github.com/mananladha/expense-tracker/internal/notify"
	"github.com/mananladha/expense-tracker/internal/report"
	"github.com/mananladha/expense-tracker/internal/scheduler"
	"github.com/mananladha/expense-tracker/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	logger.Info("Starting expense-tracker")

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

	// Delivery audit events are optional; without a broker the reports
	// still go out.
	var recorder notify.DeliveryRecorder
	if cfg.AMQPURL != "" {
		publisher, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP publisher, delivery events disabled", applog.FieldError, err)
		} else {
			defer publisher.Close()
			recorder = events.NewRecorder(publisher)
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - delivery events will not be published")
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
	defer sched.Stop()

	tokens := auth.NewManager(cfg.JWTSecret)
	srv := apphttp.NewServer(":"+cfg.Port, logger, repo, tokens, generator, dispatcher)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting expense-tracker server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		applog.FieldSchedule, cfg.ReportSchedule)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
