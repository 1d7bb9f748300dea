package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/rank-boost/internal/domain/balance"
	"github.com/riskibarqy/rank-boost/internal/domain/coupon"
	"github.com/riskibarqy/rank-boost/internal/domain/credential"
	"github.com/riskibarqy/rank-boost/internal/domain/message"
	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/passwordreset"
	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	"github.com/shopspring/decimal"
)

type userTableModel struct {
	ID           int64           `db:"id,readonly"`
	PublicID     string          `db:"public_id"`
	Username     string          `db:"username"`
	Email        string          `db:"email"`
	PasswordHash string          `db:"password_hash"`
	Role         string          `db:"role"`
	Balance      decimal.Decimal `db:"balance"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func userToRow(u user.User) userTableModel {
	return userTableModel{
		PublicID:     u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Balance:      u.Balance,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromRow(row userTableModel) user.User {
	return user.User{
		ID:           row.PublicID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         user.Role(row.Role),
		Balance:      row.Balance,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type orderTableModel struct {
	ID               int64           `db:"id,readonly"`
	PublicID         string          `db:"public_id"`
	UserID           string          `db:"user_public_id"`
	Game             string          `db:"game"`
	CurrentRank      string          `db:"current_rank"`
	CurrentPoints    int             `db:"current_points"`
	DesiredRank      string          `db:"desired_rank"`
	DesiredPoints    int             `db:"desired_points"`
	Price            decimal.Decimal `db:"price"`
	Cashback         decimal.Decimal `db:"cashback"`
	Status           string          `db:"status"`
	PayoutStatus     string          `db:"payout_status"`
	Extras           string          `db:"extras"`
	PaymentSessionID string          `db:"payment_session_id"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

type extraRow struct {
	Label string `json:"label"`
	Cost  string `json:"cost"`
}

func encodeExtras(extras []order.Extra) (string, error) {
	rows := make([]extraRow, 0, len(extras))
	for _, e := range extras {
		rows = append(rows, extraRow{Label: e.Label, Cost: e.Cost.StringFixed(2)})
	}
	return sonic.MarshalString(rows)
}

func decodeExtras(raw string) ([]order.Extra, error) {
	if raw == "" {
		return nil, nil
	}
	var rows []extraRow
	if err := sonic.UnmarshalString(raw, &rows); err != nil {
		return nil, err
	}
	out := make([]order.Extra, 0, len(rows))
	for _, r := range rows {
		cost, err := decimal.NewFromString(r.Cost)
		if err != nil {
			return nil, fmt.Errorf("extra %q cost: %w", r.Label, err)
		}
		out = append(out, order.Extra{Label: r.Label, Cost: cost})
	}
	return out, nil
}

func orderToRow(o order.Order) (orderTableModel, error) {
	extras, err := encodeExtras(o.Extras)
	if err != nil {
		return orderTableModel{}, fmt.Errorf("encode order extras: %w", err)
	}
	return orderTableModel{
		PublicID:         o.ID,
		UserID:           o.UserID,
		Game:             string(o.Game),
		CurrentRank:      o.CurrentRank,
		CurrentPoints:    o.CurrentPoints,
		DesiredRank:      o.DesiredRank,
		DesiredPoints:    o.DesiredPoints,
		Price:            o.Price,
		Cashback:         o.Cashback,
		Status:           string(o.Status),
		PayoutStatus:     string(o.PayoutStatus),
		Extras:           extras,
		PaymentSessionID: o.PaymentSessionID,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}, nil
}

func orderFromRow(row orderTableModel) (order.Order, error) {
	extras, err := decodeExtras(row.Extras)
	if err != nil {
		return order.Order{}, fmt.Errorf("decode extras of order %s: %w", row.PublicID, err)
	}
	return order.Order{
		ID:               row.PublicID,
		UserID:           row.UserID,
		Game:             pricing.Game(row.Game),
		CurrentRank:      row.CurrentRank,
		CurrentPoints:    row.CurrentPoints,
		DesiredRank:      row.DesiredRank,
		DesiredPoints:    row.DesiredPoints,
		Price:            row.Price,
		Cashback:         row.Cashback,
		Status:           order.Status(row.Status),
		PayoutStatus:     order.PayoutStatus(row.PayoutStatus),
		Extras:           extras,
		PaymentSessionID: row.PaymentSessionID,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}

func ordersFromRows(rows []orderTableModel) ([]order.Order, error) {
	out := make([]order.Order, 0, len(rows))
	for _, row := range rows {
		o, err := orderFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

type claimTableModel struct {
	ID        int64     `db:"id,readonly"`
	OrderID   string    `db:"order_public_id"`
	BoosterID string    `db:"booster_public_id"`
	ClaimedAt time.Time `db:"claimed_at"`
}

func claimFromRow(row claimTableModel) order.Claim {
	return order.Claim{OrderID: row.OrderID, BoosterID: row.BoosterID, ClaimedAt: row.ClaimedAt}
}

type balanceEntryTableModel struct {
	ID        int64           `db:"id,readonly"`
	PublicID  string          `db:"public_id"`
	UserID    string          `db:"user_public_id"`
	OrderID   string          `db:"order_public_id"`
	Kind      string          `db:"kind"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"created_at"`
}

func balanceEntryFromRow(row balanceEntryTableModel) balance.Entry {
	return balance.Entry{
		ID:        row.PublicID,
		UserID:    row.UserID,
		OrderID:   row.OrderID,
		Kind:      balance.Kind(row.Kind),
		Amount:    row.Amount,
		CreatedAt: row.CreatedAt,
	}
}

type couponTableModel struct {
	ID              int64           `db:"id,readonly"`
	PublicID        string          `db:"public_id"`
	Game            string          `db:"game"`
	Code            string          `db:"code"`
	DiscountPercent decimal.Decimal `db:"discount_percent"`
	CreatedAt       time.Time       `db:"created_at"`
}

func couponFromRow(row couponTableModel) coupon.Coupon {
	return coupon.Coupon{
		ID:              row.PublicID,
		Game:            pricing.Game(row.Game),
		Code:            row.Code,
		DiscountPercent: row.DiscountPercent,
		CreatedAt:       row.CreatedAt,
	}
}

type credentialTableModel struct {
	OrderID        string    `db:"order_public_id"`
	AccountLogin   string    `db:"account_login"`
	PasswordSealed string    `db:"password_sealed"`
	PasswordHash   string    `db:"password_hash"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func credentialFromRow(row credentialTableModel) credential.Credentials {
	return credential.Credentials{
		OrderID:        row.OrderID,
		AccountLogin:   row.AccountLogin,
		PasswordSealed: row.PasswordSealed,
		PasswordHash:   row.PasswordHash,
		UpdatedAt:      row.UpdatedAt,
	}
}

type messageTableModel struct {
	ID        int64     `db:"id,readonly"`
	PublicID  string    `db:"public_id"`
	OrderID   string    `db:"order_public_id"`
	SenderID  string    `db:"sender_public_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

func messageFromRow(row messageTableModel) message.Message {
	return message.Message{
		ID:        row.PublicID,
		OrderID:   row.OrderID,
		SenderID:  row.SenderID,
		Body:      row.Body,
		CreatedAt: row.CreatedAt,
	}
}

type resetTokenTableModel struct {
	Token     string       `db:"token"`
	UserID    string       `db:"user_public_id"`
	ExpiresAt time.Time    `db:"expires_at"`
	UsedAt    sql.NullTime `db:"used_at"`
	CreatedAt time.Time    `db:"created_at"`
}

func resetTokenFromRow(row resetTokenTableModel) passwordreset.Token {
	t := passwordreset.Token{
		Token:     row.Token,
		UserID:    row.UserID,
		ExpiresAt: row.ExpiresAt,
		CreatedAt: row.CreatedAt,
	}
	if row.UsedAt.Valid {
		usedAt := row.UsedAt.Time
		t.UsedAt = &usedAt
	}
	return t
}
