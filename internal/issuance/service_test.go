// AngelaMos | 2026
// service_test.go

package issuance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a32fred/Qr-Code-Generation/internal/account"
	"github.com/a32fred/Qr-Code-Generation/internal/artifact"
	"github.com/a32fred/Qr-Code-Generation/internal/config"
	"github.com/a32fred/Qr-Code-Generation/internal/core"
	"github.com/a32fred/Qr-Code-Generation/internal/plan"
	"github.com/a32fred/Qr-Code-Generation/internal/quota"
	"github.com/a32fred/Qr-Code-Generation/internal/render"
)

const testCredential = "qr_test"

type stubAccounts struct {
	accounts map[string]*account.Account
	err      error
}

func (s *stubAccounts) Resolve(_ context.Context, credential string) (*account.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	acct, ok := s.accounts[credential]
	if !ok {
		return nil, fmt.Errorf("resolve account: %w", core.ErrUnauthorized)
	}
	return acct, nil
}

type memoryUsage struct {
	mu           sync.Mutex
	counts       map[string]int64
	readErr      error
	incrementErr error
	increments   atomic.Int32
}

func newMemoryUsage() *memoryUsage {
	return &memoryUsage{counts: make(map[string]int64)}
}

func (m *memoryUsage) CurrentUsage(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return 0, m.readErr
	}
	return m.counts[id], nil
}

func (m *memoryUsage) Increment(ctx context.Context, id string) (int64, error) {
	m.increments.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrementErr != nil {
		return 0, m.incrementErr
	}
	if err := ctx.Err(); err != nil {
		return 0, core.StoreError("increment usage", err)
	}
	m.counts[id]++
	return m.counts[id], nil
}

type stubRenderer struct {
	err      error
	calls    atomic.Int32
	lastTier plan.Tier
	mu       sync.Mutex
}

func (s *stubRenderer) Render(
	_ context.Context,
	payload string,
	_ render.Options,
	tier plan.Tier,
) ([]byte, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.lastTier = tier
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return []byte("png:" + payload), nil
}

type memoryArtifacts struct {
	mu          sync.Mutex
	artifacts   map[string]*artifact.Artifact
	err         error
	afterCreate func()
}

func newMemoryArtifacts() *memoryArtifacts {
	return &memoryArtifacts{artifacts: make(map[string]*artifact.Artifact)}
}

func (m *memoryArtifacts) Create(_ context.Context, a *artifact.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.artifacts[a.ID]; ok {
		return core.ErrDuplicateKey
	}
	m.artifacts[a.ID] = a
	if m.afterCreate != nil {
		m.afterCreate()
	}
	return nil
}

type fixture struct {
	svc       *Service
	accounts  *stubAccounts
	usage     *memoryUsage
	renderer  *stubRenderer
	artifacts *memoryArtifacts
	metrics   *core.Metrics
}

func newFixture(tier plan.Tier) *fixture {
	f := &fixture{
		accounts: &stubAccounts{accounts: map[string]*account.Account{
			testCredential: {ID: "acct-1", Plan: tier},
		}},
		usage:     newMemoryUsage(),
		renderer:  &stubRenderer{},
		artifacts: newMemoryArtifacts(),
		metrics:   core.NewMetrics("test"),
	}

	f.svc = NewService(Deps{
		Accounts:  f.accounts,
		Usage:     f.usage,
		Renderer:  f.renderer,
		Artifacts: f.artifacts,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:   f.metrics,
	}, Config{
		BaseURL:    "https://qr.example.com/",
		UpgradeURL: "https://qr.example.com/upgrade",
	})

	return f
}

func TestIssueSuccess(t *testing.T) {
	f := newFixture(plan.Pro)

	res, err := f.svc.Issue(context.Background(), testCredential, Request{Payload: "hello"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, []byte("png:hello"), res.Image)
	assert.Equal(t, "https://qr.example.com/qr/"+res.ID, res.ViewURL)
	assert.Equal(t, "https://qr.example.com/analytics/"+res.ID, res.AnalyticsURL)
	assert.Equal(t, int64(1), res.Usage)
	assert.Equal(t, int64(10000), res.Limit)

	assert.Equal(t, plan.Pro, f.renderer.lastTier)
	stored := f.artifacts.artifacts[res.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "acct-1", stored.AccountID)
	assert.Equal(t, "hello", stored.Payload)
	assert.Equal(t, int64(1), f.usage.counts["acct-1"])
}

func TestIssueIDsAreUnique(t *testing.T) {
	f := newFixture(plan.Business)
	seen := make(map[string]bool)

	for range 50 {
		res, err := f.svc.Issue(context.Background(), testCredential, Request{Payload: "x"})
		require.NoError(t, err)
		assert.False(t, seen[res.ID], "duplicate id %s", res.ID)
		seen[res.ID] = true
	}
}

func TestIssueUnknownCredential(t *testing.T) {
	f := newFixture(plan.Free)

	_, err := f.svc.Issue(context.Background(), "qr_unknown", Request{Payload: "hello"})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.Zero(t, f.renderer.calls.Load())
	assert.Empty(t, f.artifacts.artifacts)
}

func TestIssueAtLimitWritesNothing(t *testing.T) {
	f := newFixture(plan.Free)
	f.usage.counts["acct-1"] = 100

	_, err := f.svc.Issue(context.Background(), testCredential, Request{Payload: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrQuotaExceeded)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, int64(100), appErr.Details["usage"])
	assert.Equal(t, int64(100), appErr.Details["limit"])
	assert.Equal(t, "https://qr.example.com/upgrade", appErr.Details["upgrade_url"])

	assert.Zero(t, f.renderer.calls.Load())
	assert.Empty(t, f.artifacts.artifacts)
	assert.Zero(t, f.usage.increments.Load())
	assert.Equal(t, int64(100), f.usage.counts["acct-1"])
}

func TestIssueUnknownPlanUsesDefaultLimit(t *testing.T) {
	f := newFixture(plan.Tier("enterprise"))
	f.usage.counts["acct-1"] = 100

	_, err := f.svc.Issue(context.Background(), testCredential, Request{Payload: "hello"})
	assert.ErrorIs(t, err, core.ErrQuotaExceeded)
}

func TestIssueRenderFailure(t *testing.T) {
	f := newFixture(plan.Free)
	f.renderer.err = fmt.Errorf("%w: content too long", core.ErrRenderFailed)

	_, err := f.svc.Issue(context.Background(), testCredential, Request{Payload: "hello"})
	assert.ErrorIs(t, err, core.ErrRenderFailed)
	assert.Empty(t, f.artifacts.artifacts)
	assert.Zero(t, f.usage.increments.Load())
}

func TestIssuePersistFailure(t *testing.T) {
	f := newFixture(plan.Free)
	f.artifacts.err = errors.New("connection reset")

	_, err := f.svc.Issue(context.Background(), testCredential, Request{Payload: "hello"})
	assert.ErrorIs(t, err, core.ErrPersistFailed)
	assert.Zero(t, f.usage.increments.Load())
	assert.Zero(t, f.usage.counts["acct-1"])
}

func TestIssueConsumeFailureStillSucceeds(t *testing.T) {
	f := newFixture(plan.Free)
	f.usage.counts["acct-1"] = 5
	f.usage.incrementErr = core.StoreError("increment usage", errors.New("connection refused"))

	res, err := f.svc.Issue(context.Background(), testCredential, Request{Payload: "hello"})
	require.NoError(t, err)

	assert.Contains(t, f.artifacts.artifacts, res.ID)
	assert.Equal(t, int64(6), res.Usage)
	assert.Equal(t, int64(5), f.usage.counts["acct-1"])
}

func TestIssueChargesQuotaWhenCallerLeavesAfterPersist(t *testing.T) {
	f := newFixture(plan.Free)
	f.usage.counts["acct-1"] = 7

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.artifacts.afterCreate = cancel

	res, err := f.svc.Issue(ctx, testCredential, Request{Payload: "hello"})
	require.NoError(t, err)

	assert.Contains(t, f.artifacts.artifacts, res.ID)
	assert.Equal(t, int64(8), res.Usage)
	assert.Equal(t, int64(8), f.usage.counts["acct-1"])
}

func TestIssueChargesRedisQuotaWhenCallerLeavesAfterPersist(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	counter := quota.NewCounter(client, config.QuotaConfig{
		KeyPrefix: "usage",
		WindowTTL: 768 * time.Hour,
	}, time.Second)

	f := newFixture(plan.Free)
	f.svc.usage = counter

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.artifacts.afterCreate = cancel

	res, err := f.svc.Issue(ctx, testCredential, Request{Payload: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Usage)

	used, err := counter.CurrentUsage(context.Background(), "acct-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), used)
}

func TestIssueQuotaReadFailure(t *testing.T) {
	f := newFixture(plan.Free)
	f.usage.readErr = core.StoreError("read usage", context.DeadlineExceeded)

	_, err := f.svc.Issue(context.Background(), testCredential, Request{Payload: "hello"})
	assert.ErrorIs(t, err, core.ErrTimeout)
	assert.Zero(t, f.renderer.calls.Load())
}

// Check and consume are separate calls, so parallel requests that all read
// usage = limit-1 can all pass. The overshoot is bounded by the number of
// requests in flight.
func TestIssueSoftLimitOvershootIsBounded(t *testing.T) {
	f := newFixture(plan.Free)
	f.usage.counts["acct-1"] = 99

	const parallel = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	var successes atomic.Int32

	for range parallel {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Issue(context.Background(), testCredential, Request{Payload: "x"})
			if err == nil {
				successes.Add(1)
				return
			}
			assert.ErrorIs(t, err, core.ErrQuotaExceeded)
		}()
	}
	close(start)
	wg.Wait()

	got := successes.Load()
	assert.GreaterOrEqual(t, got, int32(1))
	assert.LessOrEqual(t, got, int32(parallel))
	assert.Equal(t, int64(99)+int64(got), f.usage.counts["acct-1"])
	assert.Len(t, f.artifacts.artifacts, int(got))
}
