package httpapi

import (
	"context"
	"net/http"

	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
)

type orderTransition func(ctx context.Context, actor user.Principal, orderID string) (order.Order, error)

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	h.listOrders(w, r, "httpapi.Handler.ListOrders", h.orderService.ListOrders)
}

func (h *Handler) ListAvailableOrders(w http.ResponseWriter, r *http.Request) {
	h.listOrders(w, r, "httpapi.Handler.ListAvailableOrders", h.orderService.ListAvailable)
}

func (h *Handler) ListClaimedOrders(w http.ResponseWriter, r *http.Request) {
	h.listOrders(w, r, "httpapi.Handler.ListClaimedOrders", h.orderService.ListClaimed)
}

func (h *Handler) listOrders(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	list func(ctx context.Context, actor user.Principal) ([]order.Order, error),
) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := list(ctx, principal)
	if err != nil {
		h.logger.WarnContext(ctx, "list orders failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ordersToDTO(items))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetOrder")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	detail, err := h.orderService.Get(ctx, principal, r.PathValue("orderID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, orderToDTO(detail.Order, detail.Claim))
}

func (h *Handler) ClaimOrder(w http.ResponseWriter, r *http.Request) {
	h.transitionOrder(w, r, "httpapi.Handler.ClaimOrder", h.orderService.Claim)
}

func (h *Handler) UnclaimOrder(w http.ResponseWriter, r *http.Request) {
	h.transitionOrder(w, r, "httpapi.Handler.UnclaimOrder", h.orderService.Unclaim)
}

func (h *Handler) StartOrder(w http.ResponseWriter, r *http.Request) {
	h.transitionOrder(w, r, "httpapi.Handler.StartOrder", h.orderService.Start)
}

func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	h.transitionOrder(w, r, "httpapi.Handler.CompleteOrder", h.orderService.Complete)
}

func (h *Handler) transitionOrder(w http.ResponseWriter, r *http.Request, spanName string, apply orderTransition) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	orderID := r.PathValue("orderID")
	o, err := apply(ctx, principal, orderID)
	if err != nil {
		h.logger.WarnContext(ctx, "order transition failed", "order_id", orderID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, orderToDTO(o, nil))
}

func (h *Handler) ApprovePayout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApprovePayout")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	orderID := r.PathValue("orderID")
	result, err := h.orderService.ApprovePayout(ctx, principal, orderID)
	if err != nil {
		h.logger.WarnContext(ctx, "approve payout failed", "order_id", orderID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payoutDTO{
		OrderID:   result.Order.ID,
		BoosterID: result.BoosterID,
		Amount:    money(result.Amount),
		Order:     orderToDTO(result.Order, nil),
	})
}

func (h *Handler) BulkApprovePayouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BulkApprovePayouts")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req bulkPayoutRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	outcomes, err := h.orderService.BulkApprovePayouts(ctx, principal, req.OrderIDs)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]bulkPayoutItemDTO, 0, len(outcomes))
	for _, outcome := range outcomes {
		item := bulkPayoutItemDTO{OrderID: outcome.OrderID}
		if outcome.Err != nil {
			mapped := mapError(ctx, outcome.Err)
			item.Reason = mapped.Reason
			item.Message = outcome.Err.Error()
			if mapped.PublicMessage != "" {
				item.Message = mapped.PublicMessage
				h.logger.ErrorContext(ctx, "bulk payout item failed", "order_id", outcome.OrderID, "error", outcome.Err)
			}
		} else {
			item.Approved = true
			item.BoosterID = outcome.Result.BoosterID
			item.Amount = money(outcome.Result.Amount)
		}
		items = append(items, item)
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
