package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"examvault-membership/internal/domain"
	"examvault-membership/internal/domain/model"
	"examvault-membership/internal/domain/ports/repository"
)

var _ repository.InvitationCodeRepository = (*invitationCodeRepo)(nil)

type invitationCodeRepo struct {
	pool *pgxpool.Pool
}

func NewInvitationCodeRepo(pool *pgxpool.Pool) repository.InvitationCodeRepository {
	return &invitationCodeRepo{pool: pool}
}

const codeColumns = `id, code, plan_type, max_uses, used_count, is_active, expires_at, created_at`

func (r *invitationCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.InvitationCode) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	const q = `
INSERT INTO invitation_codes (id, code, plan_type, max_uses, used_count, is_active, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
  max_uses = EXCLUDED.max_uses,
  is_active = EXCLUDED.is_active,
  expires_at = EXCLUDED.expires_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.Code, string(c.PlanType), c.MaxUses, c.UsedCount, c.IsActive, c.ExpiresAt, c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *invitationCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.InvitationCode, error) {
	const q = `SELECT ` + codeColumns + ` FROM invitation_codes WHERE code = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanCode(row)
}

func (r *invitationCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.InvitationCode, error) {
	const q = `SELECT ` + codeColumns + ` FROM invitation_codes WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanCode(row)
}

func (r *invitationCodeRepo) List(ctx context.Context, tx repository.Tx) ([]*model.InvitationCode, error) {
	const q = `SELECT ` + codeColumns + ` FROM invitation_codes ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.InvitationCode
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *invitationCodeRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE invitation_codes SET is_active = $2 WHERE id = $1;`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete hard-deletes a code. The use log keeps its rows; past grants stand.
func (r *invitationCodeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM invitation_codes WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invitationCodeRepo) HasUse(ctx context.Context, tx repository.Tx, codeID, userID string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM invitation_code_uses WHERE code_id = $1 AND user_id = $2);`
	row, err := pickRow(ctx, r.pool, tx, q, codeID, userID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

// InsertUse relies on the UNIQUE (code_id, user_id) index. A conflict maps to
// ErrCodeAlreadyUsed so a check-then-act race still yields exactly one grant.
func (r *invitationCodeRepo) InsertUse(ctx context.Context, tx repository.Tx, use *model.InvitationCodeUse) error {
	if use.ID == "" {
		use.ID = uuid.NewString()
	}
	const q = `
INSERT INTO invitation_code_uses (id, code_id, user_id, created_at)
VALUES ($1, $2, $3, $4);
`
	_, err := execSQL(ctx, r.pool, tx, q, use.ID, use.CodeID, use.UserID, use.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrCodeAlreadyUsed
	}
	return err
}

// ConsumeUse is a single conditional increment, never read-then-write: the
// WHERE clause re-checks activity and remaining slots at commit time.
func (r *invitationCodeRepo) ConsumeUse(ctx context.Context, tx repository.Tx, codeID string) error {
	const q = `
UPDATE invitation_codes
   SET used_count = used_count + 1
 WHERE id = $1 AND is_active AND used_count < max_uses;
`
	tag, err := execSQL(ctx, r.pool, tx, q, codeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCodeExhausted
	}
	return nil
}

func scanCode(row pgx.Row) (*model.InvitationCode, error) {
	var (
		c    model.InvitationCode
		plan string
	)
	err := row.Scan(&c.ID, &c.Code, &plan, &c.MaxUses, &c.UsedCount, &c.IsActive, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	c.PlanType = model.PlanType(plan)
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
