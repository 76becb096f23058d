package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mananladha/expense-tracker/internal/core"
	applog "github.com/mananladha/expense-tracker/internal/log"
)

// nowFunc is replaced in tests to pin the clock.
var nowFunc = time.Now

// Generator orchestrates one report run: resolve the date range, query
// transactions, aggregate balances and render the report text.
type Generator struct {
	txs   TransactionReader
	users UserReader

	// Overlapping runs for the same user and range (a scheduled firing
	// racing an on-demand request) coalesce onto a single generation.
	group singleflight.Group
}

func NewGenerator(txs TransactionReader, users UserReader) *Generator {
	return &Generator{txs: txs, users: users}
}

// Generate builds the report bundle for a user over an inclusive
// [startDate, endDate] range given as YYYY-MM-DD strings. It returns a
// ValidationError for a missing or malformed range and a DataError when
// storage fails or the user cannot be found.
func (g *Generator) Generate(ctx context.Context, userID int64, startDate, endDate string) (*Bundle, error) {
	if startDate == "" || endDate == "" {
		return nil, &ValidationError{Msg: "start and end dates are required"}
	}
	start, err := core.ParseDate(startDate)
	if err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid start date %q", startDate)}
	}
	end, err := core.ParseDate(endDate)
	if err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid end date %q", endDate)}
	}

	key := fmt.Sprintf("%d:%s:%s", userID, start, end)
	v, err, shared := g.group.Do(key, func() (any, error) {
		return g.generate(ctx, userID, start, end)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.DebugContext(ctx, "Report generation coalesced with concurrent run",
			applog.FieldUserID, userID, applog.FieldStartDate, start.String(), applog.FieldEndDate, end.String())
	}
	return v.(*Bundle), nil
}

func (g *Generator) generate(ctx context.Context, userID int64, start, end core.Date) (*Bundle, error) {
	user, err := g.users.GetUser(ctx, userID)
	if err != nil {
		return nil, &DataError{Op: "fetch user", Err: err}
	}

	txs, err := g.txs.ListTransactionsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, &DataError{Op: "query transactions", Err: err}
	}

	sum := Summary{
		UserID:            userID,
		StartDate:         start.String(),
		EndDate:           end.String(),
		AggregationResult: core.Aggregate(txs, user.PaymentModes),
		Modes:             user.PaymentModes,
	}
	// Delivery treats a summary without its date range as a fatal
	// validation failure, so refuse to hand one out.
	if sum.StartDate == "" || sum.EndDate == "" {
		return nil, &DataError{Op: "build summary", Err: errors.New("summary missing date range")}
	}

	bundle := &Bundle{
		Report:  RenderText(user.Name, txs, sum),
		Summary: sum,
	}

	slog.InfoContext(ctx, "Report generated",
		applog.FieldUserID, userID,
		applog.FieldStartDate, sum.StartDate,
		applog.FieldEndDate, sum.EndDate,
		applog.FieldTxCount, sum.TransactionCount)

	return bundle, nil
}

// GenerateInterval resolves a relative interval keyword against now and
// generates the corresponding report.
func (g *Generator) GenerateInterval(ctx context.Context, userID int64, interval Interval) (*Bundle, error) {
	start, end := ResolveInterval(nowFunc(), interval)
	return g.Generate(ctx, userID, start.String(), end.String())
}
