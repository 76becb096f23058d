// Package http exposes the JSON API: auth, transactions, settings, and
// report generation and delivery.
package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/mananladha/expense-tracker/internal/auth"
	applog "github.com/mananladha/expense-tracker/internal/log"
	"github.com/mananladha/expense-tracker/internal/notify"
	"github.com/mananladha/expense-tracker/internal/report"
	"github.com/mananladha/expense-tracker/internal/storage"
)

type ReportGenerator interface {
	Generate(ctx context.Context, userID int64, startDate, endDate string) (*report.Bundle, error)
}

type ReportDispatcher interface {
	Dispatch(ctx context.Context, bundle *report.Bundle, method notify.Method, rcpt notify.Recipients) notify.Results
}

type Server struct {
	http.Server

	repo       storage.Repository
	tokens     *auth.Manager
	generator  ReportGenerator
	dispatcher ReportDispatcher

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, logger *applog.Logger, repo storage.Repository, tokens *auth.Manager, generator ReportGenerator, dispatcher ReportDispatcher) *Server {
	mux := http.NewServeMux()

	s := &Server{
		repo:        repo,
		tokens:      tokens,
		generator:   generator,
		dispatcher:  dispatcher,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	protected := func(h http.HandlerFunc) http.Handler {
		return s.tokens.Middleware(h)
	}
	mux.Handle("GET /api/transactions", protected(s.handleListTransactions))
	mux.Handle("POST /api/transactions", protected(s.handleCreateTransaction))
	mux.Handle("GET /api/transactions/filter", protected(s.handleFilterTransactions))
	mux.Handle("DELETE /api/transactions/{id}", protected(s.handleDeleteTransaction))
	mux.Handle("GET /api/settings", protected(s.handleGetSettings))
	mux.Handle("PUT /api/settings", protected(s.handleUpdateSettings))
	mux.Handle("POST /api/reports/generate", protected(s.handleGenerateReport))
	mux.Handle("POST /api/reports/send", protected(s.handleSendReport))

	handler := s.withSecurity(mux)
	handler = applog.RequestLogger(logger)(handler)
	handler = applog.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}

	return s
}

// withSecurity adds security headers and rate-limits mutating requests.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
