package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mananladha/expense-tracker/internal/core"
	applog "github.com/mananladha/expense-tracker/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// SQLite enforces foreign keys per connection, off by default.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, user *core.User, passwordHash string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, username, password_hash, report_email, report_email2, report_phone)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.Name, user.Username, passwordHash,
		user.ReportEmail, user.ReportEmail2, user.ReportPhone)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user id: %w", err)
	}

	modes := user.PaymentModes
	if len(modes) == 0 {
		modes = core.DefaultPaymentModes()
	}
	if err := insertModes(ctx, tx, id, modes); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "User created", applog.FieldUserID, id, "username", user.Username)
	return id, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (*core.User, error) {
	user, _, err := r.scanUser(ctx, "id = ?", id)
	return user, err
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*core.User, string, error) {
	return r.scanUser(ctx, "username = ?", username)
}

func (r *SQLiteRepository) scanUser(ctx context.Context, where string, arg any) (*core.User, string, error) {
	var (
		user core.User
		hash string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, username, password_hash, report_email, report_email2, report_phone
		 FROM users WHERE `+where, arg).
		Scan(&user.ID, &user.Name, &user.Username, &hash,
			&user.ReportEmail, &user.ReportEmail2, &user.ReportPhone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("query user: %w", err)
	}

	modes, err := r.modesFor(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	user.PaymentModes = modes

	return &user, hash, nil
}

func (r *SQLiteRepository) modesFor(ctx context.Context, userID int64) ([]core.PaymentMode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT mode_id, name FROM payment_modes WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query payment modes: %w", err)
	}
	defer rows.Close()

	var modes []core.PaymentMode
	for rows.Next() {
		var m core.PaymentMode
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan payment mode: %w", err)
		}
		modes = append(modes, m)
	}
	return modes, rows.Err()
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, username, report_email, report_email2, report_phone
		 FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Username,
			&u.ReportEmail, &u.ReportEmail2, &u.ReportPhone); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range users {
		modes, err := r.modesFor(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].PaymentModes = modes
	}
	return users, nil
}

func (r *SQLiteRepository) UpdateUserSettings(ctx context.Context, userID int64, settings UserSettings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET name = ?, report_email = ?, report_email2 = ?, report_phone = ? WHERE id = ?`,
		settings.Name, settings.ReportEmail, settings.ReportEmail2, settings.ReportPhone, userID)
	if err != nil {
		return fmt.Errorf("update user settings: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if settings.PaymentModes != nil {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM payment_modes WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clear payment modes: %w", err)
		}
		if err := insertModes(ctx, tx, userID, settings.PaymentModes); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "User settings updated", applog.FieldUserID, userID)
	return nil
}

func insertModes(ctx context.Context, tx *sql.Tx, userID int64, modes []core.PaymentMode) error {
	for i, m := range modes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payment_modes (user_id, mode_id, name, position) VALUES (?, ?, ?, ?)`,
			userID, m.ID, m.Name, i); err != nil {
			return fmt.Errorf("insert payment mode %q: %w", m.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t *core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, type, amount_cents, mode, item, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, string(t.Type), t.Amount.Cents, t.Mode, t.Item, t.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		applog.FieldUserID, t.UserID,
		"type", string(t.Type),
		applog.FieldAmountCents, t.Amount.Cents,
		"date", t.Date.String())

	return id, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// transactionSelect resolves the display name of each payment mode at
// read time; transactions referencing a mode the user has since removed
// fall back to the raw mode id.
const transactionSelect = `
	SELECT t.id, t.user_id, t.type, t.amount_cents, t.mode,
	       COALESCE(pm.name, t.mode) AS mode_name, t.item, t.date
	FROM transactions t
	LEFT JOIN payment_modes pm ON pm.user_id = t.user_id AND pm.mode_id = t.mode`

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]core.Transaction, error) {
	where := []string{"t.user_id = ?"}
	args := []any{userID}

	if filter.Type != "" {
		where = append(where, "t.type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Mode != "" {
		where = append(where, "t.mode = ?")
		args = append(args, filter.Mode)
	}
	if filter.Start != nil {
		where = append(where, "t.date >= ?")
		args = append(args, filter.Start.String())
	}
	if filter.End != nil {
		where = append(where, "t.date <= ?")
		args = append(args, filter.End.String())
	}

	query := transactionSelect +
		" WHERE " + strings.Join(where, " AND ") +
		" ORDER BY t.date DESC, t.id DESC"

	return r.queryTransactions(ctx, query, args...)
}

func (r *SQLiteRepository) ListTransactionsInRange(ctx context.Context, userID int64, start, end core.Date) ([]core.Transaction, error) {
	return r.ListTransactions(ctx, userID, TransactionFilter{Start: &start, End: &end})
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t       core.Transaction
			txType  string
			rawDate string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &txType, &t.Amount.Cents,
			&t.Mode, &t.ModeName, &t.Item, &rawDate); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TransactionType(txType)
		date, err := core.ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", rawDate, err)
		}
		t.Date = date
		out = append(out, t)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
