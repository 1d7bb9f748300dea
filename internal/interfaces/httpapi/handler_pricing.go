package httpapi

import (
	"net/http"

	"github.com/riskibarqy/rank-boost/internal/usecase"
)

func (h *Handler) QuotePrice(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.QuotePrice")
	defer span.End()

	var req quoteRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	quote, err := h.pricingService.Quote(ctx, req.toInput())
	if err != nil {
		h.logger.ErrorContext(ctx, "quote failed", "game", req.Game, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, quoteToDTO(quote))
}

func (h *Handler) GetGamePricing(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGamePricing")
	defer span.End()

	cfg, err := h.pricingService.Game(ctx, r.PathValue("game"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamePricingToDTO(cfg))
}

func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateCoupon")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createCouponRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.pricingService.CreateCoupon(ctx, principal, usecase.CreateCouponInput{
		Game:            req.Game,
		Code:            req.Code,
		DiscountPercent: req.DiscountPercent,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create coupon failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, couponDTO{
		ID:              c.ID,
		Game:            string(c.Game),
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent.String(),
		CreatedAt:       c.CreatedAt,
	})
}
