package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/credential"
	"github.com/riskibarqy/rank-boost/internal/domain/order"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"github.com/riskibarqy/rank-boost/internal/platform/secret"
	"go.opentelemetry.io/otel/attribute"
)

const maxAccountLoginLength = 128

// Sealer encrypts account passwords bound to their order id.
type Sealer interface {
	Seal(plaintext, additional string) (string, error)
	Open(sealed, additional string) (string, error)
}

type SubmitCredentialsInput struct {
	AccountLogin    string
	AccountPassword string
}

type CredentialsView struct {
	OrderID      string
	AccountLogin string
	HasPassword  bool
	UpdatedAt    time.Time
}

type RevealedCredentials struct {
	OrderID         string
	AccountLogin    string
	AccountPassword string
}

type CredentialService struct {
	orders      order.Repository
	credentials credential.Repository
	sealer      Sealer
	logger      *logging.Logger
	now         func() time.Time
}

func NewCredentialService(orders order.Repository, credentials credential.Repository, sealer Sealer, logger *logging.Logger) *CredentialService {
	if logger == nil {
		logger = logging.Default()
	}

	return &CredentialService{
		orders:      orders,
		credentials: credentials,
		sealer:      sealer,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit stores the account details for an order. Only the customer who
// placed it, or an admin, may do so.
func (s *CredentialService) Submit(ctx context.Context, actor user.Principal, orderID string, input SubmitCredentialsInput) (CredentialsView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CredentialService.Submit", attribute.String("order_id", orderID))
	defer span.End()

	p, err := loadParticipation(ctx, s.orders, actor, strings.TrimSpace(orderID))
	if err != nil {
		return CredentialsView{}, err
	}
	if !p.owner && !p.admin {
		return CredentialsView{}, fmt.Errorf("%w: only the order owner can submit credentials", ErrForbidden)
	}

	login := strings.TrimSpace(input.AccountLogin)
	if login == "" || len(login) > maxAccountLoginLength {
		return CredentialsView{}, fmt.Errorf("%w: account login must be 1-%d characters", ErrInvalidInput, maxAccountLoginLength)
	}
	if input.AccountPassword == "" {
		return CredentialsView{}, fmt.Errorf("%w: account password is required", ErrInvalidInput)
	}

	sealed, err := s.sealer.Seal(input.AccountPassword, p.order.ID)
	if err != nil {
		return CredentialsView{}, fmt.Errorf("seal account password: %w", err)
	}
	hash, err := secret.HashPassword(input.AccountPassword)
	if err != nil {
		return CredentialsView{}, fmt.Errorf("hash account password: %w", err)
	}

	c := credential.Credentials{
		OrderID:        p.order.ID,
		AccountLogin:   login,
		PasswordSealed: sealed,
		PasswordHash:   hash,
		UpdatedAt:      s.now().UTC(),
	}
	if err := s.credentials.Upsert(ctx, c); err != nil {
		recordSpanError(span, err)
		return CredentialsView{}, fmt.Errorf("store credentials: %w", err)
	}

	s.logger.InfoContext(ctx, "order credentials submitted", "order_id", c.OrderID, "actor_id", actor.UserID)
	return viewCredentials(c), nil
}

func (s *CredentialService) Get(ctx context.Context, actor user.Principal, orderID string) (CredentialsView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CredentialService.Get", attribute.String("order_id", orderID))
	defer span.End()

	c, _, err := s.load(ctx, actor, orderID)
	if err != nil {
		return CredentialsView{}, err
	}
	return viewCredentials(c), nil
}

// Reveal decrypts the account password for the booster working the order.
func (s *CredentialService) Reveal(ctx context.Context, actor user.Principal, orderID string) (RevealedCredentials, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CredentialService.Reveal", attribute.String("order_id", orderID))
	defer span.End()

	c, p, err := s.load(ctx, actor, orderID)
	if err != nil {
		return RevealedCredentials{}, err
	}
	if !p.claimOwner && !p.admin {
		return RevealedCredentials{}, fmt.Errorf("%w: only the assigned booster can reveal credentials", ErrForbidden)
	}

	password, err := s.sealer.Open(c.PasswordSealed, c.OrderID)
	if err != nil {
		recordSpanError(span, err)
		return RevealedCredentials{}, fmt.Errorf("open account password: %w", err)
	}

	s.logger.InfoContext(ctx, "order credentials revealed", "order_id", c.OrderID, "actor_id", actor.UserID)
	return RevealedCredentials{
		OrderID:         c.OrderID,
		AccountLogin:    c.AccountLogin,
		AccountPassword: password,
	}, nil
}

// Verify reports whether password matches the stored account password
// without decrypting it.
func (s *CredentialService) Verify(ctx context.Context, actor user.Principal, orderID, password string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CredentialService.Verify", attribute.String("order_id", orderID))
	defer span.End()

	if password == "" {
		return false, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	c, _, err := s.load(ctx, actor, orderID)
	if err != nil {
		return false, err
	}
	return secret.CheckPassword(c.PasswordHash, password), nil
}

func (s *CredentialService) load(ctx context.Context, actor user.Principal, orderID string) (credential.Credentials, participation, error) {
	p, err := loadParticipation(ctx, s.orders, actor, strings.TrimSpace(orderID))
	if err != nil {
		return credential.Credentials{}, participation{}, err
	}
	if !p.participant() {
		return credential.Credentials{}, participation{}, fmt.Errorf("%w: order=%s", ErrForbidden, orderID)
	}

	c, exists, err := s.credentials.Get(ctx, p.order.ID)
	if err != nil {
		return credential.Credentials{}, participation{}, fmt.Errorf("get credentials: %w", err)
	}
	if !exists {
		return credential.Credentials{}, participation{}, fmt.Errorf("%w: no credentials for order %s", ErrNotFound, p.order.ID)
	}
	return c, p, nil
}

func viewCredentials(c credential.Credentials) CredentialsView {
	return CredentialsView{
		OrderID:      c.OrderID,
		AccountLogin: c.AccountLogin,
		HasPassword:  c.PasswordSealed != "",
		UpdatedAt:    c.UpdatedAt,
	}
}
