// AngelaMos | 2026
// entity.go

package account

import (
	"time"

	"github.com/a32fred/Qr-Code-Generation/internal/plan"
)

type Account struct {
	ID             string    `db:"id"`
	CredentialHash string    `db:"credential_hash"`
	Plan           plan.Tier `db:"plan"`
	BillingRef     *string   `db:"billing_ref"`
	CreatedAt      time.Time `db:"created_at"`
}

// Tier returns the account's plan, folding anything unrecognised into the
// default tier.
func (a *Account) Tier() plan.Tier {
	if a.Plan.Valid() {
		return a.Plan
	}
	return plan.DefaultTier
}

func (a *Account) MonthlyLimit() int64 {
	return a.Tier().MonthlyLimit()
}
