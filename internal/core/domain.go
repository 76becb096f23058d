package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Credit TransactionType = "credit"
	Debit  TransactionType = "debit"
)

const (
	// MaxPaymentModes bounds the number of modes a user may configure.
	MaxPaymentModes = 5
	// MaxModeNameLength bounds the display name of a payment mode.
	MaxModeNameLength = 50
)

type (
	TransactionType string

	// Date is a calendar date with no time-of-day or zone component.
	// Transactions are recorded against dates, not instants.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// PaymentMode is a named account a transaction is recorded against.
	PaymentMode struct {
		ID   string
		Name string
	}

	Transaction struct {
		ID       int64
		UserID   int64
		Type     TransactionType
		Amount   Money
		Mode     string // payment-mode id
		ModeName string // display label, denormalized at creation time
		Item     string
		Date     Date
	}

	User struct {
		ID           int64
		Name         string
		Username     string
		ReportEmail  string
		ReportEmail2 string
		ReportPhone  string
		PaymentModes []PaymentMode
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrEmptyItem       = errors.New("empty item")
	ErrEmptyMode       = errors.New("empty payment mode")
	ErrNoPaymentModes  = errors.New("at least one payment mode is required")
	ErrTooManyModes    = errors.New("too many payment modes")
	ErrModeNameTooLong = errors.New("payment mode name too long")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Within reports whether d falls in [start, end], bounds inclusive.
func (d Date) Within(start, end Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

func (t TransactionType) Validate() error {
	switch t {
	case Credit, Debit:
		return nil
	default:
		return ErrInvalidType
	}
}

// Sign is +1 for credits and -1 for debits.
func (t TransactionType) Sign() int64 {
	if t == Credit {
		return 1
	}
	return -1
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (tx Transaction) Validate() error {
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Mode) == "" {
		return ErrEmptyMode
	}
	if strings.TrimSpace(tx.Item) == "" {
		return ErrEmptyItem
	}
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (p PaymentMode) Validate() error {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
		return ErrEmptyMode
	}
	if len(p.Name) > MaxModeNameLength {
		return ErrModeNameTooLong
	}
	return nil
}

// ValidateModes checks a user's full payment-mode set.
func ValidateModes(modes []PaymentMode) error {
	if len(modes) == 0 {
		return ErrNoPaymentModes
	}
	if len(modes) > MaxPaymentModes {
		return ErrTooManyModes
	}
	for _, m := range modes {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultPaymentModes is the mode set assigned to a freshly registered user.
func DefaultPaymentModes() []PaymentMode {
	return []PaymentMode{
		{ID: "cash", Name: "Cash"},
		{ID: "mode1", Name: "ICICI"},
		{ID: "mode2", Name: "BOB"},
	}
}
