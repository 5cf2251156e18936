// AngelaMos | 2026
// service.go

package issuance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/a32fred/Qr-Code-Generation/internal/account"
	"github.com/a32fred/Qr-Code-Generation/internal/artifact"
	"github.com/a32fred/Qr-Code-Generation/internal/core"
	"github.com/a32fred/Qr-Code-Generation/internal/plan"
	"github.com/a32fred/Qr-Code-Generation/internal/render"
)

type AccountResolver interface {
	Resolve(ctx context.Context, credential string) (*account.Account, error)
}

type UsageCounter interface {
	CurrentUsage(ctx context.Context, accountID string) (int64, error)
	Increment(ctx context.Context, accountID string) (int64, error)
}

type Renderer interface {
	Render(
		ctx context.Context,
		payload string,
		opts render.Options,
		tier plan.Tier,
	) ([]byte, error)
}

type ArtifactStore interface {
	Create(ctx context.Context, artifact *artifact.Artifact) error
}

type Deps struct {
	Accounts  AccountResolver
	Usage     UsageCounter
	Renderer  Renderer
	Artifacts ArtifactStore
	Logger    *slog.Logger
	Metrics   *core.Metrics
}

type Config struct {
	BaseURL    string
	UpgradeURL string
}

type Service struct {
	accounts   AccountResolver
	usage      UsageCounter
	renderer   Renderer
	artifacts  ArtifactStore
	logger     *slog.Logger
	metrics    *core.Metrics
	baseURL    string
	upgradeURL string
	newID      func() string
}

func NewService(deps Deps, cfg Config) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		accounts:   deps.Accounts,
		usage:      deps.Usage,
		renderer:   deps.Renderer,
		artifacts:  deps.Artifacts,
		logger:     logger,
		metrics:    deps.Metrics,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		upgradeURL: cfg.UpgradeURL,
		newID:      uuid.NewString,
	}
}

// Issue runs the issuance pipeline: resolve, check quota, render, persist,
// consume. Quota is only consumed after the artifact exists, and a failed
// consume does not fail the request.
//
// The check and the consume are separate store calls, so concurrent requests
// near the limit can each pass the check and overshoot it by up to the
// number of requests in flight.
func (s *Service) Issue(
	ctx context.Context,
	credential string,
	req Request,
) (*Result, error) {
	ctx, span := core.StartSpan(ctx, "issuance.Issue")
	defer span.End()

	acct, err := s.accounts.Resolve(ctx, credential)
	if err != nil {
		return nil, s.abort(ctx, "resolve", err)
	}

	tier := acct.Tier()
	span.SetAttributes(
		attribute.String("account.id", acct.ID),
		attribute.String("account.plan", tier.String()),
	)

	used, err := s.usage.CurrentUsage(ctx, acct.ID)
	if err != nil {
		return nil, s.abort(ctx, "quota_check", err)
	}

	limit := tier.MonthlyLimit()
	if used >= limit {
		if s.metrics != nil {
			s.metrics.QuotaRejections.WithLabelValues(tier.String()).Inc()
		}
		core.AddSpanEvent(ctx, "quota.exceeded",
			attribute.Int64("quota.usage", used),
			attribute.Int64("quota.limit", limit),
		)
		return nil, core.QuotaExceededError(used, limit, s.upgradeURL)
	}

	image, err := s.renderer.Render(ctx, req.Payload, req.Options, tier)
	if err != nil {
		return nil, s.abort(ctx, "render", err)
	}

	art := &artifact.Artifact{
		ID:        s.newID(),
		AccountID: acct.ID,
		Payload:   req.Payload,
	}
	if err := s.artifacts.Create(ctx, art); err != nil {
		if !errors.Is(err, core.ErrPersistFailed) {
			err = fmt.Errorf("%w: %w", core.ErrPersistFailed, err)
		}
		return nil, s.abort(ctx, "persist", err)
	}

	// The artifact is committed; a caller hanging up must not skip the charge.
	count, err := s.usage.Increment(context.WithoutCancel(ctx), acct.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "quota consume failed after artifact was persisted",
			"account_id", acct.ID,
			"artifact_id", art.ID,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.QuotaConsumeFailures.Inc()
		}
		core.AddSpanEvent(ctx, "quota.consume_failed")
		count = used + 1
	}

	if s.metrics != nil {
		s.metrics.ArtifactsIssued.WithLabelValues(tier.String()).Inc()
	}

	return &Result{
		ID:           art.ID,
		Image:        image,
		ViewURL:      s.baseURL + "/qr/" + art.ID,
		AnalyticsURL: s.baseURL + "/analytics/" + art.ID,
		Usage:        count,
		Limit:        limit,
	}, nil
}

func (s *Service) abort(ctx context.Context, step string, err error) error {
	if s.metrics != nil {
		s.metrics.IssuanceFailures.WithLabelValues(step).Inc()
	}
	core.SetSpanError(ctx, err)
	return fmt.Errorf("issue %s: %w", step, err)
}
