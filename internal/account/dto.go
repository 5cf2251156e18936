// AngelaMos | 2026
// dto.go

package account

import (
	"fmt"
	"time"
)

type RegisterResponse struct {
	APIKey    string    `json:"api_key"`
	AccountID string    `json:"account_id"`
	Plan      string    `json:"plan"`
	Limit     int64     `json:"limit"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func ToRegisterResponse(a *Account, credential string) RegisterResponse {
	limit := a.MonthlyLimit()
	return RegisterResponse{
		APIKey:    credential,
		AccountID: a.ID,
		Plan:      a.Tier().String(),
		Limit:     limit,
		Message: fmt.Sprintf(
			"Welcome! You have %d %s QR codes per month.",
			limit,
			a.Tier(),
		),
		CreatedAt: a.CreatedAt,
	}
}
