package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mananladha/expense-tracker/internal/core"
)

type fakeStore struct {
	user    *core.User
	userErr error
	txs     []core.Transaction
	txErr   error

	listCalls []struct{ start, end core.Date }
}

func (f *fakeStore) GetUser(ctx context.Context, userID int64) (*core.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *fakeStore) ListTransactionsInRange(ctx context.Context, userID int64, start, end core.Date) ([]core.Transaction, error) {
	f.listCalls = append(f.listCalls, struct{ start, end core.Date }{start, end})
	if f.txErr != nil {
		return nil, f.txErr
	}
	var out []core.Transaction
	for _, tx := range f.txs {
		if tx.Date.Within(start, end) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func testUser() *core.User {
	return &core.User{
		ID:           1,
		Name:         "Manan",
		PaymentModes: []core.PaymentMode{{ID: "cash", Name: "Cash"}, {ID: "mode1", Name: "ICICI"}},
	}
}

func TestGenerator_Generate(t *testing.T) {
	store := &fakeStore{
		user: testUser(),
		txs: []core.Transaction{
			{UserID: 1, Type: core.Credit, Amount: core.Money{Cents: 10000}, Mode: "cash", ModeName: "Cash", Item: "refund", Date: core.NewDate(2025, 1, 10)},
			{UserID: 1, Type: core.Debit, Amount: core.Money{Cents: 3000}, Mode: "mode1", ModeName: "ICICI", Item: "fuel", Date: core.NewDate(2025, 1, 12)},
		},
	}
	gen := NewGenerator(store, store)

	bundle, err := gen.Generate(context.Background(), 1, "2025-01-01", "2025-01-31")
	require.NoError(t, err)

	assert.Equal(t, "2025-01-01", bundle.Summary.StartDate)
	assert.Equal(t, "2025-01-31", bundle.Summary.EndDate)
	assert.Equal(t, int64(1), bundle.Summary.UserID)
	assert.Equal(t, int64(10000), bundle.Summary.TotalCredit.Cents)
	assert.Equal(t, int64(-3000), bundle.Summary.Accounts["mode1"].Cents)
	assert.Contains(t, bundle.Report, "User: Manan")
	assert.Contains(t, bundle.Report, "fuel")
}

func TestGenerator_DateBoundariesInclusive(t *testing.T) {
	store := &fakeStore{
		user: testUser(),
		txs: []core.Transaction{
			{Type: core.Credit, Amount: core.Money{Cents: 100}, Mode: "cash", Item: "on start", Date: core.NewDate(2025, 1, 10)},
			{Type: core.Credit, Amount: core.Money{Cents: 100}, Mode: "cash", Item: "on end", Date: core.NewDate(2025, 1, 20)},
			{Type: core.Credit, Amount: core.Money{Cents: 100}, Mode: "cash", Item: "day before", Date: core.NewDate(2025, 1, 9)},
			{Type: core.Credit, Amount: core.Money{Cents: 100}, Mode: "cash", Item: "day after", Date: core.NewDate(2025, 1, 21)},
		},
	}
	gen := NewGenerator(store, store)

	bundle, err := gen.Generate(context.Background(), 1, "2025-01-10", "2025-01-20")
	require.NoError(t, err)

	assert.Equal(t, 2, bundle.Summary.TransactionCount)
	assert.Contains(t, bundle.Report, "on start")
	assert.Contains(t, bundle.Report, "on end")
	assert.NotContains(t, bundle.Report, "day before")
	assert.NotContains(t, bundle.Report, "day after")
}

func TestGenerator_EmptyRange(t *testing.T) {
	store := &fakeStore{user: testUser()}
	gen := NewGenerator(store, store)

	bundle, err := gen.Generate(context.Background(), 1, "2025-06-01", "2025-06-30")
	require.NoError(t, err)

	assert.Equal(t, 0, bundle.Summary.TransactionCount)
	assert.Equal(t, int64(0), bundle.Summary.Net.Cents)
	assert.Equal(t, "2025-06-01", bundle.Summary.StartDate)
	assert.Contains(t, bundle.Report, "📝 TRANSACTIONS (0):")
}

func TestGenerator_ValidationErrors(t *testing.T) {
	gen := NewGenerator(&fakeStore{}, &fakeStore{})

	tests := []struct {
		name       string
		start, end string
	}{
		{"missing start", "", "2025-01-31"},
		{"missing end", "2025-01-01", ""},
		{"malformed start", "01/01/2025", "2025-01-31"},
		{"malformed end", "2025-01-01", "yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.Generate(context.Background(), 1, tt.start, tt.end)
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "want ValidationError, got %T", err)
		})
	}
}

func TestGenerator_DataErrors(t *testing.T) {
	t.Run("user lookup fails", func(t *testing.T) {
		store := &fakeStore{userErr: errors.New("user not found")}
		gen := NewGenerator(store, store)

		_, err := gen.Generate(context.Background(), 42, "2025-01-01", "2025-01-31")
		require.Error(t, err)
		assert.True(t, IsDataError(err))
		assert.Empty(t, store.listCalls, "query must not run after a failed user fetch")
	})

	t.Run("transaction query fails", func(t *testing.T) {
		store := &fakeStore{user: testUser(), txErr: errors.New("db gone")}
		gen := NewGenerator(store, store)

		_, err := gen.Generate(context.Background(), 1, "2025-01-01", "2025-01-31")
		require.Error(t, err)
		assert.True(t, IsDataError(err))
	})
}

func TestGenerator_SummaryAlwaysDated(t *testing.T) {
	store := &fakeStore{user: testUser()}
	gen := NewGenerator(store, store)

	bundle, err := gen.Generate(context.Background(), 1, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	require.NotEmpty(t, bundle.Summary.StartDate)
	require.NotEmpty(t, bundle.Summary.EndDate)
}

func TestGenerator_GenerateInterval(t *testing.T) {
	restore := nowFunc
	nowFunc = func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = restore }()

	store := &fakeStore{
		user: testUser(),
		txs: []core.Transaction{
			{Type: core.Debit, Amount: core.Money{Cents: 500}, Mode: "cash", Item: "today", Date: core.NewDate(2025, 1, 15)},
			{Type: core.Debit, Amount: core.Money{Cents: 500}, Mode: "cash", Item: "last week", Date: core.NewDate(2025, 1, 8)},
		},
	}
	gen := NewGenerator(store, store)

	bundle, err := gen.GenerateInterval(context.Background(), 1, IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", bundle.Summary.StartDate)
	assert.Equal(t, "2025-01-15", bundle.Summary.EndDate)
	assert.Equal(t, 1, bundle.Summary.TransactionCount)
}
