package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	qb "github.com/riskibarqy/rank-boost/internal/platform/querybuilder"
)

var userColumns = qb.Columns(userTableModel{})

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u user.User) error {
	query, args, err := qb.InsertModel("users", userToRow(u), "")
	if err != nil {
		return fmt.Errorf("build insert user query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "") {
			return user.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	return r.get(ctx, qb.Eq("public_id", userID))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (user.User, bool, error) {
	return r.get(ctx, qb.Expr("LOWER(username) = LOWER(?)", username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, bool, error) {
	return r.get(ctx, qb.Expr("LOWER(email) = LOWER(?)", email))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query, args, err := qb.Update("users").
		Set("password_hash", passwordHash).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("public_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update password query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if affected, err := rowsAffected(res); err != nil {
		return fmt.Errorf("update password rows affected: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("update password: user %s not found", userID)
	}
	return nil
}

func (r *UserRepository) get(ctx context.Context, condition qb.Condition) (user.User, bool, error) {
	query, args, err := qb.Select(userColumns...).From("users").Where(condition).ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return userFromRow(row), true, nil
}
