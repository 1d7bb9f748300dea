package httpapi

import (
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/balance"
	"github.com/riskibarqy/rank-boost/internal/domain/message"
	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/pricing"
	"github.com/riskibarqy/rank-boost/internal/usecase"
	"github.com/shopspring/decimal"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,max=72"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	UserID      string `json:"userId" validate:"required"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type quoteRequest struct {
	Game          string   `json:"game" validate:"required,max=32"`
	CurrentRank   string   `json:"currentRank" validate:"required,max=64"`
	CurrentPoints int      `json:"currentPoints" validate:"gte=0"`
	DesiredRank   string   `json:"desiredRank" validate:"required,max=64"`
	DesiredPoints int      `json:"desiredPoints" validate:"gte=0"`
	Extras        []string `json:"extras" validate:"omitempty,max=16,dive,required,max=64"`
	CouponCode    string   `json:"couponCode" validate:"omitempty,max=32"`
	// Price is the amount the client displayed. Only compared, never charged.
	Price string `json:"price,omitempty" validate:"omitempty,max=32"`
}

func (r quoteRequest) toInput() usecase.QuoteInput {
	return usecase.QuoteInput{
		Game:          r.Game,
		CurrentRank:   r.CurrentRank,
		CurrentPoints: r.CurrentPoints,
		DesiredRank:   r.DesiredRank,
		DesiredPoints: r.DesiredPoints,
		Extras:        r.Extras,
		CouponCode:    r.CouponCode,
	}
}

type checkoutRequest struct {
	OrderData quoteRequest `json:"orderData"`
	UserID    string       `json:"userId,omitempty"`
}

type createCouponRequest struct {
	Game            string `json:"game" validate:"required,oneof=league valorant"`
	Code            string `json:"code" validate:"required,max=32"`
	DiscountPercent string `json:"discountPercent" validate:"required"`
}

type bulkPayoutRequest struct {
	OrderIDs []string `json:"orderIds" validate:"required,min=1,max=100,dive,required"`
}

type submitCredentialsRequest struct {
	AccountLogin    string `json:"accountLogin" validate:"required,max=128"`
	AccountPassword string `json:"accountPassword" validate:"required,max=256"`
}

type verifyCredentialsRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

type postMessageRequest struct {
	Body string `json:"body" validate:"required,max=8000"`
}

type authDTO struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

type positionDTO struct {
	Tier     string `json:"tier"`
	Division string `json:"division,omitempty"`
	Points   int    `json:"points"`
	Label    string `json:"label"`
}

type extraCostDTO struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Cost  string `json:"cost"`
}

type quoteDTO struct {
	Game            string         `json:"game"`
	Current         positionDTO    `json:"current"`
	Desired         positionDTO    `json:"desired"`
	Valid           bool           `json:"valid"`
	Reason          string         `json:"reason,omitempty"`
	Unprescribed    bool           `json:"unprescribed"`
	BelowMinimum    bool           `json:"belowMinimum"`
	Chargeable      bool           `json:"chargeable"`
	LadderPrice     string         `json:"ladderPrice"`
	DiscountPercent string         `json:"discountPercent"`
	BasePrice       string         `json:"basePrice"`
	Extras          []extraCostDTO `json:"extras"`
	TimeTax         string         `json:"timeTax"`
	CappedJumpFee   string         `json:"cappedJumpFee"`
	TotalPrice      string         `json:"totalPrice"`
	CouponApplied   bool           `json:"couponApplied"`
	CouponPercent   string         `json:"couponPercent,omitempty"`
	FinalPrice      string         `json:"finalPrice"`
	Cashback        string         `json:"cashback"`
	Currency        string         `json:"currency"`
}

type gameExtraDTO struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Percent string `json:"percent"`
}

type gamePricingDTO struct {
	Game              string         `json:"game"`
	Name              string         `json:"name"`
	Currency          string         `json:"currency"`
	PointsLabel       string         `json:"pointsLabel"`
	Tiers             []string       `json:"tiers"`
	Divisions         []string       `json:"divisions"`
	CappedTier        string         `json:"cappedTier"`
	DivisionPointsMax int            `json:"divisionPointsMax"`
	MinPointsDelta    int            `json:"minPointsDelta"`
	MaxCappedPoints   int            `json:"maxCappedPoints"`
	CashbackPercent   string         `json:"cashbackPercent"`
	Extras            []gameExtraDTO `json:"extras"`
}

type couponDTO struct {
	ID              string    `json:"id"`
	Game            string    `json:"game"`
	Code            string    `json:"code"`
	DiscountPercent string    `json:"discountPercent"`
	CreatedAt       time.Time `json:"createdAt"`
}

type checkoutDTO struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	OrderID  string `json:"orderId"`
	Price    string `json:"price"`
	Cashback string `json:"cashback"`
	Currency string `json:"currency"`
}

type webhookDTO struct {
	Received         bool   `json:"received"`
	EventType        string `json:"eventType"`
	OrderID          string `json:"orderId,omitempty"`
	Ignored          bool   `json:"ignored"`
	Created          bool   `json:"created"`
	CashbackCredited bool   `json:"cashbackCredited"`
}

type orderExtraDTO struct {
	Label string `json:"label"`
	Cost  string `json:"cost"`
}

type claimDTO struct {
	BoosterID string    `json:"boosterId"`
	ClaimedAt time.Time `json:"claimedAt"`
}

type orderDTO struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Game          string          `json:"game"`
	CurrentRank   string          `json:"currentRank"`
	CurrentPoints int             `json:"currentPoints"`
	DesiredRank   string          `json:"desiredRank"`
	DesiredPoints int             `json:"desiredPoints"`
	Price         string          `json:"price"`
	Cashback      string          `json:"cashback"`
	Status        string          `json:"status"`
	PayoutStatus  string          `json:"payoutStatus"`
	Extras        []orderExtraDTO `json:"extras"`
	Claim         *claimDTO       `json:"claim,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type payoutDTO struct {
	OrderID   string   `json:"orderId"`
	BoosterID string   `json:"boosterId"`
	Amount    string   `json:"amount"`
	Order     orderDTO `json:"order"`
}

type bulkPayoutItemDTO struct {
	OrderID   string `json:"orderId"`
	Approved  bool   `json:"approved"`
	BoosterID string `json:"boosterId,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

type credentialsDTO struct {
	OrderID      string    `json:"orderId"`
	AccountLogin string    `json:"accountLogin"`
	HasPassword  bool      `json:"hasPassword"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type revealedCredentialsDTO struct {
	OrderID         string `json:"orderId"`
	AccountLogin    string `json:"accountLogin"`
	AccountPassword string `json:"accountPassword"`
}

type messageDTO struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	SenderID  string    `json:"senderId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type ledgerEntryDTO struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

type summaryDTO struct {
	UserID        string           `json:"userId"`
	Username      string           `json:"username"`
	Role          string           `json:"role"`
	Capabilities  []string         `json:"capabilities"`
	Balance       string           `json:"balance"`
	Orders        []orderDTO       `json:"orders"`
	ClaimedOrders []orderDTO       `json:"claimedOrders"`
	Ledger        []ledgerEntryDTO `json:"ledger"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func positionToDTO(p pricing.Position) positionDTO {
	return positionDTO{Tier: p.Tier, Division: p.Division, Points: p.Points, Label: p.Label()}
}

func quoteToDTO(q pricing.Quote) quoteDTO {
	extras := make([]extraCostDTO, 0, len(q.Extras))
	for _, e := range q.Extras {
		extras = append(extras, extraCostDTO{Key: e.Key, Label: e.Label, Cost: money(e.Cost)})
	}

	out := quoteDTO{
		Game:            string(q.Game),
		Current:         positionToDTO(q.Current),
		Desired:         positionToDTO(q.Desired),
		Valid:           q.Valid,
		Reason:          q.Reason,
		Unprescribed:    q.Unprescribed,
		BelowMinimum:    q.BelowMinimum,
		Chargeable:      q.Chargeable(),
		LadderPrice:     money(q.LadderPrice),
		DiscountPercent: q.DiscountPercent.String(),
		BasePrice:       money(q.BasePrice),
		Extras:          extras,
		TimeTax:         money(q.TimeTax),
		CappedJumpFee:   money(q.CappedJumpFee),
		TotalPrice:      money(q.TotalPrice),
		CouponApplied:   q.CouponApplied,
		FinalPrice:      money(q.FinalPrice),
		Cashback:        money(q.Cashback),
		Currency:        q.Currency,
	}
	if q.CouponApplied {
		out.CouponPercent = q.CouponPercent.String()
	}
	return out
}

func gamePricingToDTO(cfg *pricing.GameConfig) gamePricingDTO {
	extras := make([]gameExtraDTO, 0, len(cfg.Extras))
	for _, e := range cfg.Extras {
		extras = append(extras, gameExtraDTO{Key: e.Key, Label: e.Label, Percent: e.Percent.String()})
	}
	cappedTier := ""
	if len(cfg.Tiers) > 0 {
		cappedTier = cfg.Tiers[len(cfg.Tiers)-1]
	}

	return gamePricingDTO{
		Game:              string(cfg.Game),
		Name:              cfg.Name,
		Currency:          cfg.Currency,
		PointsLabel:       cfg.PointsLabel,
		Tiers:             cfg.Tiers,
		Divisions:         cfg.Divisions,
		CappedTier:        cappedTier,
		DivisionPointsMax: cfg.DivisionPointsMax,
		MinPointsDelta:    cfg.MinPointsDelta,
		MaxCappedPoints:   cfg.MaxCappedPoints,
		CashbackPercent:   cfg.CashbackPercent.String(),
		Extras:            extras,
	}
}

func orderToDTO(o order.Order, claim *order.Claim) orderDTO {
	extras := make([]orderExtraDTO, 0, len(o.Extras))
	for _, e := range o.Extras {
		extras = append(extras, orderExtraDTO{Label: e.Label, Cost: money(e.Cost)})
	}

	out := orderDTO{
		ID:            o.ID,
		UserID:        o.UserID,
		Game:          string(o.Game),
		CurrentRank:   o.CurrentRank,
		CurrentPoints: o.CurrentPoints,
		DesiredRank:   o.DesiredRank,
		DesiredPoints: o.DesiredPoints,
		Price:         money(o.Price),
		Cashback:      money(o.Cashback),
		Status:        string(o.Status),
		PayoutStatus:  string(o.PayoutStatus),
		Extras:        extras,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if claim != nil {
		out.Claim = &claimDTO{BoosterID: claim.BoosterID, ClaimedAt: claim.ClaimedAt}
	}
	return out
}

func ordersToDTO(items []order.Order) []orderDTO {
	out := make([]orderDTO, 0, len(items))
	for _, o := range items {
		out = append(out, orderToDTO(o, nil))
	}
	return out
}

func messageToDTO(m message.Message) messageDTO {
	return messageDTO{ID: m.ID, OrderID: m.OrderID, SenderID: m.SenderID, Body: m.Body, CreatedAt: m.CreatedAt}
}

func ledgerToDTO(entries []balance.Entry) []ledgerEntryDTO {
	out := make([]ledgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerEntryDTO{
			ID:        e.ID,
			OrderID:   e.OrderID,
			Kind:      string(e.Kind),
			Amount:    money(e.Amount),
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
