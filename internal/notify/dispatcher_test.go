package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mananladha/expense-tracker/internal/core"
	applog "github.com/mananladha/expense-tracker/internal/log"
	"github.com/mananladha/expense-tracker/internal/report"
)

type fakeEmail struct {
	configured bool
	out        Outcome
	err        error

	calls      int
	recipients string
}

func (f *fakeEmail) Send(_ context.Context, recipients, _ string, _ report.Summary) (Outcome, error) {
	f.calls++
	f.recipients = recipients
	return f.out, f.err
}

func (f *fakeEmail) Configured() bool { return f.configured }

type fakeSMS struct {
	configured bool
	out        Outcome
	err        error

	calls int
	phone string
	text  string
}

func (f *fakeSMS) Send(_ context.Context, phone, text string) (Outcome, error) {
	f.calls++
	f.phone = phone
	f.text = text
	return f.out, f.err
}

func (f *fakeSMS) Configured() bool { return f.configured }

// fakeRecorder is called from both channel goroutines, so it locks.
type fakeRecorder struct {
	mu       sync.Mutex
	channels []string
	outcomes []Outcome
}

func (f *fakeRecorder) RecordDelivery(_ context.Context, _ report.Summary, channel string, out Outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channel)
	f.outcomes = append(f.outcomes, out)
}

func (f *fakeRecorder) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.channels...)
}

func testBundle() *report.Bundle {
	return &report.Bundle{
		Report: "report text",
		Summary: report.Summary{
			UserID:    7,
			StartDate: "2025-01-01",
			EndDate:   "2025-01-31",
			AggregationResult: core.AggregationResult{
				TotalCredit:      core.Money{Cents: 10000},
				TotalDebit:       core.Money{Cents: 2500},
				Net:              core.Money{Cents: 7500},
				Accounts:         map[string]core.Money{"cash": {Cents: 7500}},
				TransactionCount: 2,
			},
		},
	}
}

func testRecipients() Recipients {
	return Recipients{Emails: []string{"a@example.com"}, Phone: "+15550001111"}
}

func TestDispatch_BothChannelsSucceed(t *testing.T) {
	email := &fakeEmail{configured: true, out: Outcome{Success: true}}
	sms := &fakeSMS{configured: true, out: Outcome{Success: true, MessageID: "SM123"}}
	d := NewDispatcher(email, sms, nil)

	results := d.Dispatch(context.Background(), testBundle(), MethodBoth, testRecipients())

	require.NotNil(t, results.Email)
	require.NotNil(t, results.SMS)
	assert.True(t, results.Email.Success)
	assert.True(t, results.SMS.Success)
	assert.Equal(t, "SM123", results.SMS.MessageID)
	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 1, sms.calls)
	assert.Equal(t, "a@example.com", email.recipients)
	assert.Equal(t, "+15550001111", sms.phone)
}

func TestDispatch_ChannelFailureIsIsolated(t *testing.T) {
	email := &fakeEmail{configured: true, out: Outcome{Success: false, Error: "smtp: connection refused"}}
	sms := &fakeSMS{configured: true, out: Outcome{Success: true}}
	d := NewDispatcher(email, sms, nil)

	results := d.Dispatch(context.Background(), testBundle(), MethodBoth, testRecipients())

	require.NotNil(t, results.Email)
	require.NotNil(t, results.SMS)
	assert.False(t, results.Email.Success)
	assert.Equal(t, "smtp: connection refused", results.Email.Error)
	assert.True(t, results.SMS.Success, "email failure must not affect sms outcome")
	assert.Equal(t, 1, sms.calls)
}

func TestDispatch_AdapterErrorBecomesFailureOutcome(t *testing.T) {
	email := &fakeEmail{configured: true, err: errors.New("dial tcp: timeout")}
	sms := &fakeSMS{configured: true, out: Outcome{Success: true}}
	d := NewDispatcher(email, sms, nil)

	results := d.Dispatch(context.Background(), testBundle(), MethodBoth, testRecipients())

	require.NotNil(t, results.Email)
	assert.False(t, results.Email.Success)
	assert.Equal(t, "dial tcp: timeout", results.Email.Error)
	require.NotNil(t, results.SMS)
	assert.True(t, results.SMS.Success)
}

func TestDispatch_UnconfiguredChannels(t *testing.T) {
	email := &fakeEmail{configured: false}
	sms := &fakeSMS{configured: false}
	d := NewDispatcher(email, sms, nil)

	results := d.Dispatch(context.Background(), testBundle(), MethodBoth, testRecipients())

	require.NotNil(t, results.Email)
	require.NotNil(t, results.SMS)
	assert.Equal(t, "email not configured", results.Email.Error)
	assert.Equal(t, "sms not configured", results.SMS.Error)
	assert.Zero(t, email.calls, "unconfigured email adapter must not be invoked")
	assert.Zero(t, sms.calls, "unconfigured sms adapter must not be invoked")
}

func TestDispatch_MissingRecipients(t *testing.T) {
	email := &fakeEmail{configured: true, out: Outcome{Success: true}}
	sms := &fakeSMS{configured: true, out: Outcome{Success: true}}
	d := NewDispatcher(email, sms, nil)

	results := d.Dispatch(context.Background(), testBundle(), MethodBoth, Recipients{})

	require.NotNil(t, results.Email)
	require.NotNil(t, results.SMS)
	assert.Equal(t, "email recipient not configured", results.Email.Error)
	assert.Equal(t, "sms recipient not configured", results.SMS.Error)
	assert.Zero(t, email.calls)
	assert.Zero(t, sms.calls)
}

func TestDispatch_MethodSelectsChannels(t *testing.T) {
	tests := []struct {
		name      string
		method    Method
		wantSMS   bool
		wantEmail bool
	}{
		{"sms only", MethodSMS, true, false},
		{"email only", MethodEmail, false, true},
		{"both", MethodBoth, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email := &fakeEmail{configured: true, out: Outcome{Success: true}}
			sms := &fakeSMS{configured: true, out: Outcome{Success: true}}
			d := NewDispatcher(email, sms, nil)

			results := d.Dispatch(context.Background(), testBundle(), tt.method, testRecipients())

			assert.Equal(t, tt.wantSMS, results.SMS != nil)
			assert.Equal(t, tt.wantEmail, results.Email != nil)
		})
	}
}

func TestDispatch_SMSUsesShortSummary(t *testing.T) {
	bundle := testBundle()
	sms := &fakeSMS{configured: true, out: Outcome{Success: true}}
	d := NewDispatcher(nil, sms, nil)

	d.Dispatch(context.Background(), bundle, MethodSMS, testRecipients())

	assert.Equal(t, report.ShortSummary(bundle.Summary), sms.text)
	assert.LessOrEqual(t, len([]rune(sms.text)), report.ShortSummaryMaxLength)
}

func TestDispatch_RecordsEveryAttempt(t *testing.T) {
	email := &fakeEmail{configured: true, out: Outcome{Success: true}}
	sms := &fakeSMS{configured: false}
	rec := &fakeRecorder{}
	d := NewDispatcher(email, sms, rec)

	d.Dispatch(context.Background(), testBundle(), MethodBoth, testRecipients())

	channels := rec.recorded()
	require.Len(t, channels, 2)
	assert.ElementsMatch(t, []string{ChannelSMS, ChannelEmail}, channels)
}

func TestDispatch_LogsStandardFieldKeys(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	email := &fakeEmail{configured: true, out: Outcome{Success: true}}
	d := NewDispatcher(email, &fakeSMS{}, nil)

	d.Dispatch(context.Background(), testBundle(), MethodEmail, testRecipients())

	assert.Contains(t, buf.String(), applog.FieldUserID+"=7")
}

func TestMethod_Valid(t *testing.T) {
	assert.True(t, MethodSMS.Valid())
	assert.True(t, MethodEmail.Valid())
	assert.True(t, MethodBoth.Valid())
	assert.False(t, Method("push").Valid())
	assert.False(t, Method("").Valid())
}

func TestRecipients_EmailList(t *testing.T) {
	tests := []struct {
		name   string
		emails []string
		want   string
	}{
		{"two addresses", []string{"a@example.com", "b@example.com"}, "a@example.com, b@example.com"},
		{"skips empties", []string{"a@example.com", "", "  "}, "a@example.com"},
		{"none", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Recipients{Emails: tt.emails}
			assert.Equal(t, tt.want, r.EmailList())
		})
	}
}
