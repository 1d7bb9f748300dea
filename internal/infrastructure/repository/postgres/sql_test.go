package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get order: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fakeErr("pq: relation orders does not exist")) {
		t.Fatalf("expected unrelated error to be ignored")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches any constraint", func(t *testing.T) {
		err := fmt.Errorf("insert claim: %w", &pq.Error{Code: "23505", Constraint: "booster_orders_order_public_id_key"})
		if !isUniqueViolation(err, "") {
			t.Fatalf("expected unique violation")
		}
	})

	t.Run("matches named constraint", func(t *testing.T) {
		err := &pq.Error{Code: "23505", Constraint: "booster_orders_order_public_id_key"}
		if !isUniqueViolation(err, claimOrderConstraint) {
			t.Fatalf("expected claim constraint match")
		}
		if isUniqueViolation(err, "users_email_lower_key") {
			t.Fatalf("expected other constraint to be ignored")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23503"}, "") {
			t.Fatalf("expected foreign key violation to be ignored")
		}
		if isUniqueViolation(fakeErr("boom"), "") {
			t.Fatalf("expected plain error to be ignored")
		}
	})
}

func TestOrderExtrasRoundTrip(t *testing.T) {
	raw, err := encodeExtras(nil)
	if err != nil || raw != "[]" {
		t.Fatalf("empty extras encoded as %q err=%v", raw, err)
	}

	extras, err := decodeExtras(`[{"label":"Duo Queue","cost":"32.80"}]`)
	if err != nil {
		t.Fatalf("decode extras: %v", err)
	}
	if len(extras) != 1 || extras[0].Label != "Duo Queue" || extras[0].Cost.StringFixed(2) != "32.80" {
		t.Fatalf("unexpected extras: %+v", extras)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
