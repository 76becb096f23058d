package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/mananladha/expense-tracker/internal/core"
)

type memoryUser struct {
	user core.User
	hash string
}

// MemoryRepository keeps everything in process memory. Used for tests
// and for running without a database file.
type MemoryRepository struct {
	mu           sync.Mutex
	users        map[int64]*memoryUser
	transactions map[int64]core.Transaction
	nextUserID   int64
	nextTxID     int64
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:        make(map[int64]*memoryUser),
		transactions: make(map[int64]core.Transaction),
		nextUserID:   1,
		nextTxID:     1,
	}
}

func (r *MemoryRepository) Close() error { return nil }

func (r *MemoryRepository) CreateUser(_ context.Context, user *core.User, passwordHash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.user.Username == user.Username {
			return 0, ErrUsernameTaken
		}
	}

	stored := *user
	stored.ID = r.nextUserID
	r.nextUserID++
	if len(stored.PaymentModes) == 0 {
		stored.PaymentModes = core.DefaultPaymentModes()
	}

	r.users[stored.ID] = &memoryUser{user: stored, hash: passwordHash}
	return stored.ID, nil
}

func (r *MemoryRepository) GetUser(_ context.Context, id int64) (*core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneUser(u.user)
	return &out, nil
}

func (r *MemoryRepository) GetUserByUsername(_ context.Context, username string) (*core.User, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.user.Username == username {
			out := cloneUser(u.user)
			return &out, u.hash, nil
		}
	}
	return nil, "", ErrNotFound
}

func (r *MemoryRepository) ListUsers(_ context.Context) ([]core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]core.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u.user))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) UpdateUserSettings(_ context.Context, userID int64, settings UserSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.user.Name = settings.Name
	u.user.ReportEmail = settings.ReportEmail
	u.user.ReportEmail2 = settings.ReportEmail2
	u.user.ReportPhone = settings.ReportPhone
	if settings.PaymentModes != nil {
		u.user.PaymentModes = append([]core.PaymentMode(nil), settings.PaymentModes...)
	}
	return nil
}

func (r *MemoryRepository) CreateTransaction(_ context.Context, t *core.Transaction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *t
	stored.ID = r.nextTxID
	r.nextTxID++

	if u, ok := r.users[stored.UserID]; ok {
		stored.ModeName = resolveModeName(u.user.PaymentModes, stored.Mode)
	}
	if stored.ModeName == "" {
		stored.ModeName = stored.Mode
	}

	r.transactions[stored.ID] = stored
	return stored.ID, nil
}

func (r *MemoryRepository) DeleteTransaction(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.transactions[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(r.transactions, id)
	return nil
}

func (r *MemoryRepository) ListTransactions(_ context.Context, userID int64, filter TransactionFilter) ([]core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []core.Transaction
	for _, t := range r.transactions {
		if t.UserID != userID {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Mode != "" && t.Mode != filter.Mode {
			continue
		}
		if filter.Start != nil && t.Date.Before(filter.Start.Time) {
			continue
		}
		if filter.End != nil && t.Date.After(filter.End.Time) {
			continue
		}
		out = append(out, t)
	}

	// Newest first, matching the SQLite ordering.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) ListTransactionsInRange(ctx context.Context, userID int64, start, end core.Date) ([]core.Transaction, error) {
	return r.ListTransactions(ctx, userID, TransactionFilter{Start: &start, End: &end})
}

func cloneUser(u core.User) core.User {
	out := u
	out.PaymentModes = append([]core.PaymentMode(nil), u.PaymentModes...)
	return out
}

func resolveModeName(modes []core.PaymentMode, modeID string) string {
	for _, m := range modes {
		if m.ID == modeID {
			return m.Name
		}
	}
	return ""
}
