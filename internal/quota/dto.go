// AngelaMos | 2026
// dto.go

package quota

import (
	"time"
)

type UsageReport struct {
	Plan      string    `json:"plan"`
	Usage     int64     `json:"usage"`
	Limit     int64     `json:"limit"`
	Remaining int64     `json:"remaining"`
	Window    string    `json:"window"`
	ResetDate time.Time `json:"reset_date"`
}
