// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/a32fred/Qr-Code-Generation/internal/core"
	"github.com/a32fred/Qr-Code-Generation/internal/plan"
)

type Service struct {
	repo     Repository
	timeout  time.Duration
	metrics  *core.Metrics
	generate func() (string, error)
}

func NewService(
	repo Repository,
	timeout time.Duration,
	metrics *core.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		timeout:  timeout,
		metrics:  metrics,
		generate: core.GenerateCredential,
	}
}

// Register creates an account on the default tier and returns it with the
// plaintext credential. Only the credential's digest is stored, so this is the
// one time the caller can see it.
func (s *Service) Register(ctx context.Context) (*Account, string, error) {
	credential, err := s.generate()
	if err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}

	account := &Account{
		ID:             uuid.New().String(),
		CredentialHash: core.HashToken(credential),
		Plan:           plan.DefaultTier,
	}

	callCtx, cancel := core.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Create(callCtx, account); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, "", fmt.Errorf("register: %w", err)
		}
		return nil, "", core.StoreError("register", err)
	}

	if s.metrics != nil {
		s.metrics.AccountsRegistered.Inc()
	}

	return account, credential, nil
}

// Resolve maps a credential to its account. Missing, malformed and unknown
// credentials all yield core.ErrUnauthorized.
func (s *Service) Resolve(
	ctx context.Context,
	credential string,
) (*Account, error) {
	if credential == "" {
		return nil, fmt.Errorf("resolve account: missing credential: %w", core.ErrUnauthorized)
	}

	if !core.LooksLikeCredential(credential) {
		return nil, fmt.Errorf("resolve account: malformed credential: %w", core.ErrUnauthorized)
	}

	callCtx, cancel := core.WithTimeout(ctx, s.timeout)
	defer cancel()

	account, err := s.repo.GetByCredentialHash(callCtx, core.HashToken(credential))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("resolve account: %w", core.ErrUnauthorized)
		}
		return nil, core.StoreError("resolve account", err)
	}

	return account, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	callCtx, cancel := core.WithTimeout(ctx, s.timeout)
	defer cancel()

	total, err := s.repo.Count(callCtx)
	if err != nil {
		return 0, core.StoreError("count accounts", err)
	}
	return total, nil
}
