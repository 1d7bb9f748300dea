package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/register", handler.Register)
	mux.HandleFunc("POST /v1/login", handler.Login)
	mux.HandleFunc("POST /v1/forgot-password", handler.ForgotPassword)
	mux.HandleFunc("POST /v1/reset-password", handler.ResetPassword)
	mux.HandleFunc("POST /v1/pricing/quote", handler.QuotePrice)
	mux.HandleFunc("GET /v1/pricing/games/{game}", handler.GetGamePricing)
	// Authenticated by the provider signature, not a bearer token.
	mux.HandleFunc("POST /v1/webhook", handler.StripeWebhook)
}

func registerAccountRoutes(mux *http.ServeMux, handler *Handler, auth Authenticator) {
	mux.Handle("GET /v1/user-role", RequireAuth(auth, http.HandlerFunc(handler.GetUserRole)))
	mux.Handle("GET /v1/user-balance", RequireAuth(auth, http.HandlerFunc(handler.GetUserBalance)))
	mux.Handle("GET /v1/me/summary", RequireAuth(auth, http.HandlerFunc(handler.GetMySummary)))
	mux.Handle("POST /v1/create-checkout-session", RequireAuth(auth, http.HandlerFunc(handler.CreateCheckoutSession)))
}

func registerOrderRoutes(mux *http.ServeMux, handler *Handler, auth Authenticator) {
	mux.Handle("GET /v1/orders", RequireAuth(auth, http.HandlerFunc(handler.ListOrders)))
	mux.Handle("GET /v1/orders/available", RequireAuth(auth, http.HandlerFunc(handler.ListAvailableOrders)))
	mux.Handle("GET /v1/orders/claimed", RequireAuth(auth, http.HandlerFunc(handler.ListClaimedOrders)))
	mux.Handle("GET /v1/orders/{orderID}", RequireAuth(auth, http.HandlerFunc(handler.GetOrder)))
	mux.Handle("POST /v1/orders/{orderID}/claim", RequireAuth(auth, http.HandlerFunc(handler.ClaimOrder)))
	mux.Handle("POST /v1/orders/{orderID}/unclaim", RequireAuth(auth, http.HandlerFunc(handler.UnclaimOrder)))
	mux.Handle("POST /v1/orders/{orderID}/start", RequireAuth(auth, http.HandlerFunc(handler.StartOrder)))
	mux.Handle("POST /v1/orders/{orderID}/complete", RequireAuth(auth, http.HandlerFunc(handler.CompleteOrder)))
	mux.Handle("POST /v1/orders/{orderID}/approve-payout", RequireAuth(auth, http.HandlerFunc(handler.ApprovePayout)))

	mux.Handle("GET /v1/orders/{orderID}/credentials", RequireAuth(auth, http.HandlerFunc(handler.GetCredentials)))
	mux.Handle("PUT /v1/orders/{orderID}/credentials", RequireAuth(auth, http.HandlerFunc(handler.SubmitCredentials)))
	mux.Handle("GET /v1/orders/{orderID}/credentials/reveal", RequireAuth(auth, http.HandlerFunc(handler.RevealCredentials)))
	mux.Handle("POST /v1/orders/{orderID}/credentials/verify", RequireAuth(auth, http.HandlerFunc(handler.VerifyCredentials)))
	mux.Handle("GET /v1/orders/{orderID}/messages", RequireAuth(auth, http.HandlerFunc(handler.ListMessages)))
	mux.Handle("POST /v1/orders/{orderID}/messages", RequireAuth(auth, http.HandlerFunc(handler.PostMessage)))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, auth Authenticator) {
	mux.Handle("POST /v1/admin/payouts/approve", RequireAuth(auth, http.HandlerFunc(handler.BulkApprovePayouts)))
	mux.Handle("POST /v1/admin/coupons", RequireAuth(auth, http.HandlerFunc(handler.CreateCoupon)))
}
