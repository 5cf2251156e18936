// AngelaMos | 2026
// service_test.go

package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a32fred/Qr-Code-Generation/internal/account"
	"github.com/a32fred/Qr-Code-Generation/internal/core"
	"github.com/a32fred/Qr-Code-Generation/internal/plan"
)

type stubUsage struct {
	used int64
	err  error
}

func (s stubUsage) CurrentUsage(context.Context, string) (int64, error) {
	return s.used, s.err
}

func newTestService(usage UsageReader) *Service {
	svc := NewService(usage)
	svc.now = func() time.Time {
		return time.Date(2026, time.December, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestReport(t *testing.T) {
	svc := newTestService(stubUsage{used: 42})

	report, err := svc.Report(context.Background(), &account.Account{
		ID:   "acct-1",
		Plan: plan.Free,
	})
	require.NoError(t, err)

	assert.Equal(t, "free", report.Plan)
	assert.Equal(t, int64(42), report.Usage)
	assert.Equal(t, int64(100), report.Limit)
	assert.Equal(t, int64(58), report.Remaining)
	assert.Equal(t, "2026-12", report.Window)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), report.ResetDate)
}

func TestReportRemainingNeverNegative(t *testing.T) {
	svc := newTestService(stubUsage{used: 103})

	report, err := svc.Report(context.Background(), &account.Account{
		ID:   "acct-1",
		Plan: plan.Free,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(103), report.Usage)
	assert.Zero(t, report.Remaining)
}

func TestReportUnknownPlanUsesDefault(t *testing.T) {
	svc := newTestService(stubUsage{})

	report, err := svc.Report(context.Background(), &account.Account{
		ID:   "acct-1",
		Plan: plan.Tier("enterprise"),
	})
	require.NoError(t, err)
	assert.Equal(t, "free", report.Plan)
	assert.Equal(t, int64(100), report.Limit)
}

func TestReportPropagatesStoreError(t *testing.T) {
	storeErr := core.StoreError("read usage", errors.New("connection refused"))
	svc := newTestService(stubUsage{err: storeErr})

	_, err := svc.Report(context.Background(), &account.Account{ID: "acct-1", Plan: plan.Pro})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStoreUnavailable)
}
