package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/rank-boost/internal/domain/credential"
	qb "github.com/riskibarqy/rank-boost/internal/platform/querybuilder"
)

type CredentialRepository struct {
	db *sqlx.DB
}

func NewCredentialRepository(db *sqlx.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Upsert(ctx context.Context, c credential.Credentials) error {
	query, args, err := qb.InsertModel("order_credentials", credentialTableModel{
		OrderID:        c.OrderID,
		AccountLogin:   c.AccountLogin,
		PasswordSealed: c.PasswordSealed,
		PasswordHash:   c.PasswordHash,
		UpdatedAt:      c.UpdatedAt,
	}, `
ON CONFLICT (order_public_id) DO UPDATE SET
    account_login = EXCLUDED.account_login,
    password_sealed = EXCLUDED.password_sealed,
    password_hash = EXCLUDED.password_hash,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert credentials query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert credentials: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Get(ctx context.Context, orderID string) (credential.Credentials, bool, error) {
	query, args, err := qb.Select(qb.Columns(credentialTableModel{})...).
		From("order_credentials").
		Where(qb.Eq("order_public_id", orderID)).
		ToSQL()
	if err != nil {
		return credential.Credentials{}, false, fmt.Errorf("build get credentials query: %w", err)
	}

	var row credentialTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return credential.Credentials{}, false, nil
		}
		return credential.Credentials{}, false, fmt.Errorf("get credentials: %w", err)
	}
	return credentialFromRow(row), true, nil
}
