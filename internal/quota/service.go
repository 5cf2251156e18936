// AngelaMos | 2026
// service.go

package quota

import (
	"context"
	"time"

	"github.com/a32fred/Qr-Code-Generation/internal/account"
)

type UsageReader interface {
	CurrentUsage(ctx context.Context, accountID string) (int64, error)
}

type Service struct {
	usage UsageReader
	now   func() time.Time
}

func NewService(usage UsageReader) *Service {
	return &Service{usage: usage, now: time.Now}
}

// Report summarises the account's current window. Remaining is floored at
// zero because concurrent issuance may overshoot the limit slightly.
func (s *Service) Report(
	ctx context.Context,
	acct *account.Account,
) (*UsageReport, error) {
	used, err := s.usage.CurrentUsage(ctx, acct.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	limit := acct.MonthlyLimit()

	return &UsageReport{
		Plan:      acct.Tier().String(),
		Usage:     used,
		Limit:     limit,
		Remaining: max(limit-used, 0),
		Window:    Window(now),
		ResetDate: NextReset(now),
	}, nil
}
