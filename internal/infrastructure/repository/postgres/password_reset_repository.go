package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/rank-boost/internal/domain/passwordreset"
	qb "github.com/riskibarqy/rank-boost/internal/platform/querybuilder"
)

type PasswordResetRepository struct {
	db *sqlx.DB
}

func NewPasswordResetRepository(db *sqlx.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, t passwordreset.Token) error {
	query, args, err := qb.InsertInto("password_reset_tokens").
		Columns("token", "user_public_id", "expires_at", "created_at").
		Values(t.Token, t.UserID, t.ExpiresAt, t.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert reset token query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

func (r *PasswordResetRepository) Get(ctx context.Context, token string) (passwordreset.Token, bool, error) {
	query, args, err := qb.Select(qb.Columns(resetTokenTableModel{})...).
		From("password_reset_tokens").
		Where(qb.Eq("token", token)).
		ToSQL()
	if err != nil {
		return passwordreset.Token{}, false, fmt.Errorf("build get reset token query: %w", err)
	}

	var row resetTokenTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return passwordreset.Token{}, false, nil
		}
		return passwordreset.Token{}, false, fmt.Errorf("get reset token: %w", err)
	}
	return resetTokenFromRow(row), true, nil
}

func (r *PasswordResetRepository) MarkUsed(ctx context.Context, token string, at time.Time) (bool, error) {
	query, args, err := qb.Update("password_reset_tokens").
		Set("used_at", at).
		Where(qb.Eq("token", token), qb.IsNull("used_at")).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark reset token query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark reset token used: %w", err)
	}
	affected, err := rowsAffected(res)
	if err != nil {
		return false, fmt.Errorf("mark reset token rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := qb.DeleteFrom("password_reset_tokens").
		Where(qb.Or(qb.Lt("expires_at", now), qb.IsNotNull("used_at"))).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build purge reset tokens query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge reset tokens: %w", err)
	}
	return rowsAffected(res)
}
