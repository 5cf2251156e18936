// AngelaMos | 2026
// service.go

package artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/a32fred/Qr-Code-Generation/internal/core"
)

type Service struct {
	repo    Repository
	timeout time.Duration
	metrics *core.Metrics
	now     func() time.Time
}

func NewService(
	repo Repository,
	timeout time.Duration,
	metrics *core.Metrics,
) *Service {
	return &Service{
		repo:    repo,
		timeout: timeout,
		metrics: metrics,
		now:     time.Now,
	}
}

// Create persists a freshly issued artifact. Any failure, including an id
// collision, is reported as core.ErrPersistFailed with the cause kept.
func (s *Service) Create(ctx context.Context, artifact *Artifact) error {
	callCtx, cancel := core.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Create(callCtx, artifact); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w: %w", core.ErrPersistFailed, core.ErrTimeout, err)
		}
		return fmt.Errorf("%w: %w", core.ErrPersistFailed, err)
	}
	return nil
}

// Scan counts one scan-view and returns the stored payload. Unknown ids fail
// with core.ErrNotFound before anything is written.
func (s *Service) Scan(ctx context.Context, id string) (string, error) {
	callCtx, cancel := core.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.IncrementScan(callCtx, id); err != nil {
		return "", classify("scan artifact", err)
	}

	if s.metrics != nil {
		s.metrics.ScansTotal.Inc()
	}

	payload, err := s.repo.GetPayload(callCtx, id)
	if err != nil {
		return "", classify("scan artifact", err)
	}

	return payload, nil
}

func (s *Service) Analytics(
	ctx context.Context,
	id string,
) (*AnalyticsResponse, error) {
	callCtx, cancel := core.WithTimeout(ctx, s.timeout)
	defer cancel()

	scans, createdAt, err := s.repo.GetStats(callCtx, id)
	if err != nil {
		return nil, classify("artifact analytics", err)
	}

	stats := Aggregate(scans, createdAt, s.now())

	return &AnalyticsResponse{
		QRID:           id,
		TotalScans:     stats.TotalScans,
		CreatedAt:      createdAt,
		AvgScansPerDay: stats.AveragePerDay,
	}, nil
}

func (s *Service) Totals(ctx context.Context) (Totals, error) {
	callCtx, cancel := core.WithTimeout(ctx, s.timeout)
	defer cancel()

	totals, err := s.repo.Totals(callCtx)
	if err != nil {
		return Totals{}, core.StoreError("artifact totals", err)
	}
	return totals, nil
}

func classify(op string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return core.StoreError(op, err)
}
