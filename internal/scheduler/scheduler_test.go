package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mananladha/expense-tracker/internal/core"
	"github.com/mananladha/expense-tracker/internal/notify"
	"github.com/mananladha/expense-tracker/internal/report"
)

type fakeDirectory struct {
	users   []core.User
	listErr error
}

func (f *fakeDirectory) ListUsers(_ context.Context) ([]core.User, error) {
	return f.users, f.listErr
}

func (f *fakeDirectory) GetUser(_ context.Context, id int64) (*core.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			out := u
			return &out, nil
		}
	}
	return nil, errors.New("not found")
}

type fakeGenerator struct {
	failFor map[int64]error
	calls   []int64
}

func (f *fakeGenerator) GenerateInterval(_ context.Context, userID int64, _ report.Interval) (*report.Bundle, error) {
	f.calls = append(f.calls, userID)
	if err, ok := f.failFor[userID]; ok {
		return nil, err
	}
	return &report.Bundle{
		Report:  "report",
		Summary: report.Summary{UserID: userID, StartDate: "2025-01-01", EndDate: "2025-01-01"},
	}, nil
}

type dispatchCall struct {
	userID int64
	method notify.Method
	rcpt   notify.Recipients
}

type fakeDispatcher struct {
	calls []dispatchCall
}

func (f *fakeDispatcher) Dispatch(_ context.Context, bundle *report.Bundle, method notify.Method, rcpt notify.Recipients) notify.Results {
	f.calls = append(f.calls, dispatchCall{userID: bundle.Summary.UserID, method: method, rcpt: rcpt})
	return notify.Results{
		SMS:   &notify.Outcome{Success: true},
		Email: &notify.Outcome{Success: true},
	}
}

func TestRunOnce_SendsToEveryUser(t *testing.T) {
	dir := &fakeDirectory{users: []core.User{{ID: 1}, {ID: 2}, {ID: 3}}}
	gen := &fakeGenerator{}
	disp := &fakeDispatcher{}

	s := New("0 23 * * *", dir, gen, disp, Fallbacks{})
	s.RunOnce(context.Background())

	assert.Equal(t, []int64{1, 2, 3}, gen.calls)
	require.Len(t, disp.calls, 3)
	for _, call := range disp.calls {
		assert.Equal(t, notify.MethodBoth, call.method)
	}
}

func TestRunOnce_ContinuesPastFailures(t *testing.T) {
	dir := &fakeDirectory{users: []core.User{{ID: 1}, {ID: 2}, {ID: 3}}}
	gen := &fakeGenerator{failFor: map[int64]error{2: errors.New("no such user")}}
	disp := &fakeDispatcher{}

	s := New("0 23 * * *", dir, gen, disp, Fallbacks{})
	s.RunOnce(context.Background())

	assert.Equal(t, []int64{1, 2, 3}, gen.calls, "failure for one user must not stop the sweep")
	require.Len(t, disp.calls, 2)
	assert.Equal(t, int64(1), disp.calls[0].userID)
	assert.Equal(t, int64(3), disp.calls[1].userID)
}

func TestRecipientResolution(t *testing.T) {
	fallbacks := Fallbacks{
		Emails: []string{"fallback@example.com", "fallback2@example.com"},
		Phone:  "+15550009999",
	}

	tests := []struct {
		name       string
		user       core.User
		wantEmails []string
		wantPhone  string
	}{
		{
			name: "user settings win",
			user: core.User{
				ID:          1,
				ReportEmail: "me@example.com",
				ReportPhone: "+15550001111",
			},
			wantEmails: []string{"me@example.com", ""},
			wantPhone:  "+15550001111",
		},
		{
			name:       "fallbacks fill everything",
			user:       core.User{ID: 1},
			wantEmails: fallbacks.Emails,
			wantPhone:  "+15550009999",
		},
		{
			name: "per-channel fallback",
			user: core.User{
				ID:          1,
				ReportEmail: "me@example.com",
			},
			wantEmails: []string{"me@example.com", ""},
			wantPhone:  "+15550009999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := &fakeDirectory{users: []core.User{tt.user}}
			disp := &fakeDispatcher{}
			s := New("0 23 * * *", dir, &fakeGenerator{}, disp, fallbacks)

			_, err := s.SendScheduledReport(context.Background(), tt.user.ID)
			require.NoError(t, err)

			require.Len(t, disp.calls, 1)
			assert.Equal(t, tt.wantEmails, disp.calls[0].rcpt.Emails)
			assert.Equal(t, tt.wantPhone, disp.calls[0].rcpt.Phone)
		})
	}
}

func TestSendScheduledReport_UnknownUser(t *testing.T) {
	s := New("0 23 * * *", &fakeDirectory{}, &fakeGenerator{}, &fakeDispatcher{}, Fallbacks{})

	_, err := s.SendScheduledReport(context.Background(), 99)
	assert.Error(t, err)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	s := New("not a schedule", &fakeDirectory{}, &fakeGenerator{}, &fakeDispatcher{}, Fallbacks{})

	err := s.Start()
	assert.Error(t, err)
}
