// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/a32fred/Qr-Code-Generation/internal/core"
)

type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByCredentialHash(ctx context.Context, hash string) (*Account, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Create inserts a new account. A clashing id or credential hash is reported
// as core.ErrDuplicateKey and never overwrites the existing row.
func (r *repository) Create(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (id, credential_hash, plan, billing_ref)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &account.CreatedAt, query,
		account.ID,
		account.CredentialHash,
		account.Plan,
		account.BillingRef,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *repository) GetByCredentialHash(
	ctx context.Context,
	hash string,
) (*Account, error) {
	query := `
		SELECT id, credential_hash, plan, billing_ref, created_at
		FROM accounts
		WHERE credential_hash = $1`

	var account Account
	err := r.db.GetContext(ctx, &account, query, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM accounts`); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return total, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
