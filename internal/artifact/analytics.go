// AngelaMos | 2026
// analytics.go

package artifact

import (
	"time"
)

const day = 24 * time.Hour

type Stats struct {
	TotalScans    int64
	AveragePerDay float64
}

// Aggregate derives the scan rate from the stored counter. Anything younger
// than a day, including a createdAt in the future, reports the raw count as
// its daily average; older artifacts divide by whole elapsed days.
func Aggregate(scans int64, createdAt, now time.Time) Stats {
	stats := Stats{TotalScans: scans, AveragePerDay: float64(scans)}

	days := int64(now.Sub(createdAt) / day)
	if days >= 1 {
		stats.AveragePerDay = float64(scans) / float64(days)
	}

	return stats
}
