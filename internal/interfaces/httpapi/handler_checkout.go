package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/riskibarqy/rank-boost/internal/usecase"
)

const (
	maxWebhookBytes  = 64 << 10
	stripeSignHeader = "Stripe-Signature"
)

func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateCheckoutSession")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req checkoutRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	// The body may still carry the caller's id; it has to agree with the token.
	if req.UserID != "" && req.UserID != principal.UserID {
		writeError(ctx, w, fmt.Errorf("%w: userId does not match the authenticated user", usecase.ErrForbidden))
		return
	}

	result, err := h.checkoutService.CreateCheckoutSession(ctx, principal, usecase.CheckoutInput{
		Quote:        req.OrderData.toInput(),
		DisplayPrice: req.OrderData.Price,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create checkout session failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, checkoutDTO{
		ID:       result.SessionID,
		URL:      result.URL,
		OrderID:  result.OrderID,
		Price:    money(result.Quote.FinalPrice),
		Cashback: money(result.Quote.Cashback),
		Currency: result.Quote.Currency,
	})
}

// StripeWebhook must see the raw body bytes; the signature covers them exactly.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StripeWebhook")
	defer span.End()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: read webhook body: %v", usecase.ErrInvalidInput, err))
		return
	}

	result, err := h.checkoutService.HandleWebhook(ctx, payload, r.Header.Get(stripeSignHeader))
	if err != nil {
		h.logger.WarnContext(ctx, "webhook rejected", "client_ip", resolveClientIP(r), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, webhookDTO{
		Received:         true,
		EventType:        string(result.EventType),
		OrderID:          result.OrderID,
		Ignored:          result.Ignored,
		Created:          result.Created,
		CashbackCredited: result.CashbackCredited,
	})
}
