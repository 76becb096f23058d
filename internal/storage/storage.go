// Package storage provides the persistence layer: user accounts with
// their payment modes and delivery settings, and the transaction log
// the reports are built from.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mananladha/expense-tracker/internal/config"
	"github.com/mananladha/expense-tracker/internal/core"
	applog "github.com/mananladha/expense-tracker/internal/log"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// UserSettings is the mutable per-user report configuration. Payment
// modes are normalized here at the storage boundary: every stored mode
// carries both an id and a display name.
type UserSettings struct {
	Name         string
	ReportEmail  string
	ReportEmail2 string
	ReportPhone  string
	PaymentModes []core.PaymentMode
}

// TransactionFilter narrows a transaction listing. Zero values mean
// "no constraint".
type TransactionFilter struct {
	Type  core.TransactionType
	Mode  string
	Start *core.Date
	End   *core.Date
}

// Repository is the full persistence surface. Both backends satisfy
// the read ports the report generator consumes.
type Repository interface {
	// Users
	CreateUser(ctx context.Context, user *core.User, passwordHash string) (int64, error)
	GetUser(ctx context.Context, id int64) (*core.User, error)
	GetUserByUsername(ctx context.Context, username string) (*core.User, string, error)
	ListUsers(ctx context.Context) ([]core.User, error)
	UpdateUserSettings(ctx context.Context, userID int64, settings UserSettings) error

	// Transactions
	CreateTransaction(ctx context.Context, tx *core.Transaction) (int64, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
	ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]core.Transaction, error)
	ListTransactionsInRange(ctx context.Context, userID int64, start, end core.Date) ([]core.Transaction, error)

	Close() error
}

// NewRepository builds the repository named by the configuration and
// returns it with a cleanup function.
func NewRepository(cfg *config.Config) (Repository, func(), error) {
	switch cfg.DataBackend {
	case "memory":
		slog.Info("Using in-memory storage backend")
		repo := NewMemoryRepository()
		return repo, func() {}, nil

	case "sqlite":
		slog.Info("Using SQLite storage backend", "path", cfg.SQLiteDBPath)
		repo, err := NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create sqlite repository: %w", err)
		}
		cleanup := func() {
			if err := repo.Close(); err != nil {
				slog.Error("Failed to close sqlite repository", applog.FieldError, err)
			}
		}
		return repo, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown data backend: %s", cfg.DataBackend)
	}
}
