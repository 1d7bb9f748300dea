package httpapi

import (
	"net/http"

	"github.com/riskibarqy/rank-boost/internal/usecase"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Register")
	defer span.End()

	var req registerRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.authService.Register(ctx, usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "register failed", "username", req.Username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, authDTO{
		UserID:   result.User.ID,
		Username: result.User.Username,
		Role:     string(result.User.Role),
		Token:    result.Token,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.authService.Login(ctx, usecase.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "username", req.Username, "client_ip", resolveClientIP(r), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, authDTO{
		UserID:   result.User.ID,
		Username: result.User.Username,
		Role:     string(result.User.Role),
		Token:    result.Token,
	})
}

// ForgotPassword always answers 202 so the endpoint cannot be used to probe
// which emails are registered.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ForgotPassword")
	defer span.End()

	var req forgotPasswordRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.authService.ForgotPassword(ctx, req.Email); err != nil {
		h.logger.ErrorContext(ctx, "forgot password failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]bool{"accepted": true})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetPassword")
	defer span.End()

	var req resetPasswordRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	err := h.authService.ResetPassword(ctx, usecase.ResetPasswordInput{
		UserID:      req.UserID,
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "reset password failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"reset": true})
}

func (h *Handler) GetUserRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserRole")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	userID := r.URL.Query().Get("userId")
	role, err := h.authService.GetRole(ctx, principal, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if userID == "" {
		userID = principal.UserID
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"userId":       userID,
		"role":         string(role),
		"capabilities": role.Capabilities().Names(),
	})
}

func (h *Handler) GetUserBalance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserBalance")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	userID := r.URL.Query().Get("userId")
	balance, err := h.authService.GetBalance(ctx, principal, userID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if userID == "" {
		userID = principal.UserID
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"userId":  userID,
		"balance": money(balance),
	})
}

func (h *Handler) GetMySummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMySummary")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.summaryService.Summary(ctx, principal)
	if err != nil {
		h.logger.ErrorContext(ctx, "load account summary failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summaryDTO{
		UserID:        summary.UserID,
		Username:      summary.Username,
		Role:          string(summary.Role),
		Capabilities:  summary.Capabilities,
		Balance:       money(summary.Balance),
		Orders:        ordersToDTO(summary.Orders),
		ClaimedOrders: ordersToDTO(summary.ClaimedOrders),
		Ledger:        ledgerToDTO(summary.Ledger),
	})
}
