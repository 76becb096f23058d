package report

import (
	"context"

	"github.com/mananladha/expense-tracker/internal/core"
)

// Ports for the data the generator reads. Storage implements both.
type (
	// TransactionReader returns a user's transactions inside an
	// inclusive date range, ordered by date descending.
	TransactionReader interface {
		ListTransactionsInRange(ctx context.Context, userID int64, start, end core.Date) ([]core.Transaction, error)
	}

	UserReader interface {
		GetUser(ctx context.Context, userID int64) (*core.User, error)
	}
)
