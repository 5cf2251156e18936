// AngelaMos | 2026
// repository.go

package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/a32fred/Qr-Code-Generation/internal/core"
)

type Repository interface {
	Create(ctx context.Context, artifact *Artifact) error
	IncrementScan(ctx context.Context, id string) error
	GetPayload(ctx context.Context, id string) (string, error)
	GetStats(ctx context.Context, id string) (int64, time.Time, error)
	Totals(ctx context.Context) (Totals, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Create inserts the artifact with a zero scan counter. An existing id is
// reported as core.ErrDuplicateKey.
func (r *repository) Create(ctx context.Context, artifact *Artifact) error {
	query := `
		INSERT INTO artifacts (id, account_id, payload)
		VALUES ($1, $2, $3)
		RETURNING scans, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		artifact.ID,
		artifact.AccountID,
		artifact.Payload,
	).Scan(&artifact.Scans, &artifact.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create artifact: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create artifact: %w", err)
	}

	return nil
}

func (r *repository) IncrementScan(ctx context.Context, id string) error {
	query := `UPDATE artifacts SET scans = scans + 1 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment scan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment scan rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("increment scan: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) GetPayload(ctx context.Context, id string) (string, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload, `SELECT payload FROM artifacts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get payload: %w", core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get payload: %w", err)
	}
	return payload, nil
}

func (r *repository) GetStats(
	ctx context.Context,
	id string,
) (int64, time.Time, error) {
	query := `SELECT scans, created_at FROM artifacts WHERE id = $1`

	var scans int64
	var createdAt time.Time
	err := r.db.QueryRowxContext(ctx, query, id).Scan(&scans, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, fmt.Errorf("get stats: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("get stats: %w", err)
	}

	return scans, createdAt, nil
}

func (r *repository) Totals(ctx context.Context) (Totals, error) {
	query := `
		SELECT COUNT(*) AS artifacts, COALESCE(SUM(scans), 0) AS scans
		FROM artifacts`

	var totals Totals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return Totals{}, fmt.Errorf("artifact totals: %w", err)
	}
	return totals, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
