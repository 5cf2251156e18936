// AngelaMos | 2026
// dto.go

package artifact

import (
	"time"
)

type AnalyticsResponse struct {
	QRID           string    `json:"qr_id"`
	TotalScans     int64     `json:"total_scans"`
	CreatedAt      time.Time `json:"created_at"`
	AvgScansPerDay float64   `json:"avg_scans_per_day"`
}
