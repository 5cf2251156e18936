// AngelaMos | 2026
// entity.go

package artifact

import (
	"time"
)

type Artifact struct {
	ID        string    `db:"id"`
	AccountID string    `db:"account_id"`
	Payload   string    `db:"payload"`
	Scans     int64     `db:"scans"`
	CreatedAt time.Time `db:"created_at"`
}

type Totals struct {
	Artifacts int64 `db:"artifacts" json:"artifacts"`
	Scans     int64 `db:"scans"     json:"scans"`
}
