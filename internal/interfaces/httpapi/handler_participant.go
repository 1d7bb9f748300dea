package httpapi

import (
	"net/http"

	"github.com/riskibarqy/rank-boost/internal/usecase"
)

func (h *Handler) GetCredentials(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCredentials")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.credentialService.Get(ctx, principal, r.PathValue("orderID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, credentialsToDTO(view))
}

func (h *Handler) SubmitCredentials(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitCredentials")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitCredentialsRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	orderID := r.PathValue("orderID")
	view, err := h.credentialService.Submit(ctx, principal, orderID, usecase.SubmitCredentialsInput{
		AccountLogin:    req.AccountLogin,
		AccountPassword: req.AccountPassword,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit credentials failed", "order_id", orderID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, credentialsToDTO(view))
}

func (h *Handler) RevealCredentials(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RevealCredentials")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	orderID := r.PathValue("orderID")
	revealed, err := h.credentialService.Reveal(ctx, principal, orderID)
	if err != nil {
		h.logger.WarnContext(ctx, "reveal credentials failed", "order_id", orderID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeSuccess(ctx, w, http.StatusOK, revealedCredentialsDTO{
		OrderID:         revealed.OrderID,
		AccountLogin:    revealed.AccountLogin,
		AccountPassword: revealed.AccountPassword,
	})
}

func (h *Handler) VerifyCredentials(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.VerifyCredentials")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req verifyCredentialsRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	match, err := h.credentialService.Verify(ctx, principal, r.PathValue("orderID"), req.Password)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"match": match})
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMessages")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	messages, err := h.chatService.List(ctx, principal, r.PathValue("orderID"), limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]messageDTO, 0, len(messages))
	for _, m := range messages {
		items = append(items, messageToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PostMessage")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req postMessageRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	m, err := h.chatService.Post(ctx, principal, r.PathValue("orderID"), req.Body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, messageToDTO(m))
}

func credentialsToDTO(view usecase.CredentialsView) credentialsDTO {
	return credentialsDTO{
		OrderID:      view.OrderID,
		AccountLogin: view.AccountLogin,
		HasPassword:  view.HasPassword,
		UpdatedAt:    view.UpdatedAt,
	}
}
