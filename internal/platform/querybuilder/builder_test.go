package querybuilder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSelectBuilder_ForUpdate(t *testing.T) {
	query, args, err := Select("public_id", "status").
		From("orders").
		Where(Eq("public_id", "o-1"), IsNull("deleted_at")).
		ForUpdate().
		ToSQL()
	require.NoError(t, err)

	require.Equal(t, "SELECT public_id, status FROM orders WHERE public_id = $1 AND deleted_at IS NULL FOR UPDATE", query)
	require.Equal(t, []any{"o-1"}, args)
}

func TestSelectBuilder_InOrLimitOffset(t *testing.T) {
	query, args, err := Select("public_id").
		From("orders").
		Where(
			In("status", []string{"Claimed", "In Progress"}),
			Or(Eq("user_public_id", "u1"), Eq("booster_public_id", "u1")),
		).
		OrderBy("created_at DESC").
		Limit(20).
		Offset(40).
		ToSQL()
	require.NoError(t, err)

	want := "SELECT public_id FROM orders WHERE status IN ($1, $2) AND (user_public_id = $3 OR booster_public_id = $4) ORDER BY created_at DESC LIMIT 20 OFFSET 40"
	require.Equal(t, want, query)
	require.Equal(t, []any{"Claimed", "In Progress", "u1", "u1"}, args)
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("id").From("orders").Where(In("public_id", []string{})).ToSQL()
	require.NoError(t, err)
	require.Equal(t, "SELECT id FROM orders WHERE 1=0", query)
	require.Empty(t, args)
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("balance_entries").
		Columns("order_public_id", "kind").
		Values("o-1", "cashback").
		Suffix("ON CONFLICT (order_public_id, kind) DO NOTHING").
		ToSQL()
	require.NoError(t, err)

	require.Equal(t, "INSERT INTO balance_entries (order_public_id, kind) VALUES ($1, $2) ON CONFLICT (order_public_id, kind) DO NOTHING", query)
	require.Equal(t, []any{"o-1", "cashback"}, args)
}

func TestUpdateBuilder_SetExprBindsArgs(t *testing.T) {
	query, args, err := Update("users").
		SetExpr("balance", "balance + ?", "2.46").
		SetExpr("updated_at", "NOW()").
		Where(Eq("public_id", "u1")).
		ToSQL()
	require.NoError(t, err)

	require.Equal(t, "UPDATE users SET balance = balance + $1, updated_at = NOW() WHERE public_id = $2", query)
	require.Equal(t, []any{"2.46", "u1"}, args)
}

func TestDeleteBuilder(t *testing.T) {
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := DeleteFrom("password_reset_tokens").
		Where(Or(Lt("expires_at", cutoff), IsNotNull("used_at"))).
		ToSQL()
	require.NoError(t, err)

	require.Equal(t, "DELETE FROM password_reset_tokens WHERE (expires_at < $1 OR used_at IS NOT NULL)", query)
	require.Equal(t, []any{cutoff}, args)

	_, _, err = DeleteFrom("orders").ToSQL()
	require.Error(t, err)
}

type sampleRow struct {
	ID       int64  `db:"id,readonly"`
	PublicID string `db:"public_id"`
	Status   string `db:"status"`
	Ignored  string `db:"-"`
	internal string
}

func TestInsertModel_SkipsReadonlyColumns(t *testing.T) {
	query, args, err := InsertModel("orders", sampleRow{ID: 7, PublicID: "o-1", Status: "Pending", internal: "x"}, "RETURNING id")
	require.NoError(t, err)

	require.Equal(t, "INSERT INTO orders (public_id, status) VALUES ($1, $2) RETURNING id", query)
	require.Equal(t, []any{"o-1", "Pending"}, args)
	require.Equal(t, []string{"id", "public_id", "status"}, Columns(sampleRow{}))
}
