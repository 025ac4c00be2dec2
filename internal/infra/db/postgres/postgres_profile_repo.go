package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*profileRepo)(nil)

type profileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepo{pool: pool}
}

func (r *profileRepo) Save(ctx context.Context, tx repository.Tx, p *model.UserProfile) error {
	p.UpdatedAt = time.Now()
	const q = `
INSERT INTO profiles (user_id, is_vip, vip_expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id) DO UPDATE SET
  is_vip = EXCLUDED.is_vip,
  vip_expires_at = EXCLUDED.vip_expires_at,
  updated_at = EXCLUDED.updated_at;
`
	_, err := execSQL(ctx, r.pool, tx, q, p.UserID, p.IsVIP, p.VIPExpiresAt, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *profileRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.UserProfile, error) {
	const q = `
SELECT user_id, is_vip, vip_expires_at, created_at, updated_at
  FROM profiles WHERE user_id = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	var p model.UserProfile
	if err := row.Scan(&p.UserID, &p.IsVIP, &p.VIPExpiresAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

// LockUser takes a per-user advisory xact lock so concurrent grants to the
// same user read a consistent current expiry. Only meaningful inside a tx.
func (r *profileRepo) LockUser(ctx context.Context, tx repository.Tx, userID string) error {
	_, err := execSQL(ctx, r.pool, tx, "SELECT pg_advisory_xact_lock($1)", hashToInt64(userID))
	return err
}
