package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/payment"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	paymentmock "github.com/riskibarqy/rank-boost/internal/mocks/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCheckoutService(t *testing.T, f *testFixture, gateway payment.Gateway) *CheckoutService {
	t.Helper()

	pricingService := NewPricingService(f.catalog(t), f.coupons, f.idGen, f.logger)
	return NewCheckoutService(pricingService, gateway, f.orders, f.users, f.idGen, f.logger)
}

func silverToGold() QuoteInput {
	return QuoteInput{Game: "league", CurrentRank: "Silver III", DesiredRank: "Gold I"}
}

func TestCheckoutService_CreateSessionUsesServerPrice(t *testing.T) {
	f := newTestFixture(t)
	customer := f.addUser(t, "customer", user.RoleUser)
	gateway := paymentmock.NewGateway(t)
	service := newCheckoutService(t, f, gateway)

	var captured payment.CheckoutRequest
	gateway.
		On("CreateCheckoutSession", mock.Anything, mock.AnythingOfType("payment.CheckoutRequest")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(payment.CheckoutRequest) }).
		Return(payment.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil).
		Once()

	result, err := service.CreateCheckoutSession(context.Background(), customer, CheckoutInput{
		Quote:        silverToGold(),
		DisplayPrice: "82.00",
	})
	require.NoError(t, err)
	require.Equal(t, "cs_test_1", result.SessionID)
	require.Equal(t, "82.00", captured.Amount.StringFixed(2))
	require.Equal(t, result.OrderID, captured.Reference)
	require.Equal(t, "customer", captured.Metadata[metaUserID])
	require.Equal(t, "2.46", captured.Metadata[metaCashback])
}

func TestCheckoutService_RejectsBeforeCallingGateway(t *testing.T) {
	f := newTestFixture(t)
	customer := f.addUser(t, "customer", user.RoleUser)
	gateway := paymentmock.NewGateway(t)
	service := newCheckoutService(t, f, gateway)
	ctx := context.Background()

	cases := []struct {
		name  string
		actor user.Principal
		input CheckoutInput
		want  error
	}{
		{
			name:  "capped climb below minimum",
			actor: customer,
			input: CheckoutInput{Quote: QuoteInput{Game: "league", CurrentRank: "Master", DesiredRank: "Master", DesiredPoints: 39}},
			want:  ErrInvalidInput,
		},
		{
			name:  "reverse transition",
			actor: customer,
			input: CheckoutInput{Quote: QuoteInput{Game: "league", CurrentRank: "Gold I", DesiredRank: "Silver III"}},
			want:  ErrInvalidInput,
		},
		{
			name:  "unknown game",
			actor: customer,
			input: CheckoutInput{Quote: QuoteInput{Game: "chess", CurrentRank: "Gold I", DesiredRank: "Gold II"}},
			want:  ErrInvalidInput,
		},
		{
			name:  "stale display price",
			actor: customer,
			input: CheckoutInput{Quote: silverToGold(), DisplayPrice: "80.00"},
			want:  ErrInvalidInput,
		},
		{
			name:  "anonymous caller",
			input: CheckoutInput{Quote: silverToGold()},
			want:  ErrUnauthorized,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateCheckoutSession(ctx, tc.actor, tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v, want %v", err, tc.want)
			}
		})
	}
	gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestCheckoutService_GatewayFailureIsDependencyError(t *testing.T) {
	f := newTestFixture(t)
	customer := f.addUser(t, "customer", user.RoleUser)
	gateway := paymentmock.NewGateway(t)
	service := newCheckoutService(t, f, gateway)

	gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(payment.CheckoutSession{}, errors.New("stripe unavailable")).
		Once()

	_, err := service.CreateCheckoutSession(context.Background(), customer, CheckoutInput{Quote: silverToGold()})
	require.ErrorIs(t, err, ErrDependencyUnavailable)
}

func TestCheckoutService_WebhookReplayCreatesOneOrder(t *testing.T) {
	f := newTestFixture(t)
	customer := f.addUser(t, "customer", user.RoleUser)
	gateway := paymentmock.NewGateway(t)
	service := newCheckoutService(t, f, gateway)
	ctx := context.Background()

	var captured payment.CheckoutRequest
	gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(payment.CheckoutRequest) }).
		Return(payment.CheckoutSession{ID: "cs_test_1"}, nil).
		Once()
	checkout, err := service.CreateCheckoutSession(ctx, customer, CheckoutInput{Quote: silverToGold()})
	require.NoError(t, err)

	payload := []byte(`{"id":"evt_1"}`)
	gateway.On("ParseEvent", payload, "sig").Return(payment.Event{
		ID:          "evt_1",
		Type:        payment.EventCheckoutCompleted,
		SessionID:   "cs_test_1",
		Reference:   captured.Reference,
		Paid:        true,
		AmountTotal: decimal.RequireFromString("82.00"),
		Currency:    "usd",
		Metadata:    captured.Metadata,
	}, nil).Twice()

	first, err := service.HandleWebhook(ctx, payload, "sig")
	require.NoError(t, err)
	require.True(t, first.Created)
	require.True(t, first.CashbackCredited)

	second, err := service.HandleWebhook(ctx, payload, "sig")
	require.NoError(t, err)
	require.False(t, second.Created)
	require.False(t, second.CashbackCredited)

	orders, err := f.orders.ListByUser(ctx, "customer")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, checkout.OrderID, orders[0].ID)
	require.Equal(t, order.StatusPending, orders[0].Status)
	require.Equal(t, "82.00", orders[0].Price.StringFixed(2))
	require.Equal(t, "2.46", f.balanceOf(t, "customer"))
}

func TestCheckoutService_WebhookRejectsBadSignatureAndIgnoresOtherEvents(t *testing.T) {
	f := newTestFixture(t)
	gateway := paymentmock.NewGateway(t)
	service := newCheckoutService(t, f, gateway)
	ctx := context.Background()

	gateway.On("ParseEvent", []byte("forged"), "bad").
		Return(payment.Event{}, payment.ErrInvalidSignature).
		Once()
	_, err := service.HandleWebhook(ctx, []byte("forged"), "bad")
	require.ErrorIs(t, err, ErrInvalidSignature)

	gateway.On("ParseEvent", []byte("expired"), "sig").
		Return(payment.Event{ID: "evt_2", Type: "checkout.session.expired"}, nil).
		Once()
	result, err := service.HandleWebhook(ctx, []byte("expired"), "sig")
	require.NoError(t, err)
	require.True(t, result.Ignored)
}

func TestCheckoutService_WebhookRejectsAmountMismatch(t *testing.T) {
	f := newTestFixture(t)
	customer := f.addUser(t, "customer", user.RoleUser)
	gateway := paymentmock.NewGateway(t)
	service := newCheckoutService(t, f, gateway)
	ctx := context.Background()

	var captured payment.CheckoutRequest
	gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(payment.CheckoutRequest) }).
		Return(payment.CheckoutSession{ID: "cs_test_1"}, nil).
		Once()
	_, err := service.CreateCheckoutSession(ctx, customer, CheckoutInput{Quote: silverToGold()})
	require.NoError(t, err)

	gateway.On("ParseEvent", mock.Anything, mock.Anything).Return(payment.Event{
		ID:          "evt_3",
		Type:        payment.EventCheckoutCompleted,
		Reference:   captured.Reference,
		Paid:        true,
		AmountTotal: decimal.RequireFromString("1.00"),
		Metadata:    captured.Metadata,
	}, nil).Once()

	_, err = service.HandleWebhook(ctx, []byte("{}"), "sig")
	require.ErrorIs(t, err, ErrInvalidInput)
	orders, _ := f.orders.ListAll(ctx)
	require.Empty(t, orders)
}
