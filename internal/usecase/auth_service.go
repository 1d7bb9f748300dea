package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/passwordreset"
	"github.com/riskibarqy/rank-boost/internal/domain/user"
	idgen "github.com/riskibarqy/rank-boost/internal/platform/id"
	"github.com/riskibarqy/rank-boost/internal/platform/logging"
	"github.com/riskibarqy/rank-boost/internal/platform/secret"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const minPasswordLength = 8

// TokenIssuer issues and verifies bearer tokens whose subject is a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Subject(raw string) (string, error)
}

// ResetNotifier delivers password reset tokens to users.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, u user.User, token string, expiresAt time.Time) error
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type ResetPasswordInput struct {
	UserID      string
	Token       string
	NewPassword string
}

type AuthResult struct {
	User  user.User
	Token string
}

type AuthService struct {
	users    user.Repository
	resets   passwordreset.Repository
	tokens   TokenIssuer
	notifier ResetNotifier
	idGen    idgen.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewAuthService(
	users user.Repository,
	resets passwordreset.Repository,
	tokens TokenIssuer,
	notifier ResetNotifier,
	idGen idgen.Generator,
	logger *logging.Logger,
) *AuthService {
	if logger == nil {
		logger = logging.Default()
	}
	if notifier == nil {
		notifier = NewLogResetNotifier(logger)
	}

	return &AuthService{
		users:    users,
		resets:   resets,
		tokens:   tokens,
		notifier: notifier,
		idGen:    idGen,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Register")
	defer span.End()

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Username == "" {
		return AuthResult{}, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return AuthResult{}, fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return AuthResult{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	if _, exists, err := s.users.GetByUsername(ctx, input.Username); err != nil {
		return AuthResult{}, fmt.Errorf("get user by username: %w", err)
	} else if exists {
		return AuthResult{}, fmt.Errorf("%w: username is already taken", ErrConflict)
	}
	if _, exists, err := s.users.GetByEmail(ctx, input.Email); err != nil {
		return AuthResult{}, fmt.Errorf("get user by email: %w", err)
	} else if exists {
		return AuthResult{}, fmt.Errorf("%w: email is already registered", ErrConflict)
	}

	hash, err := secret.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	userID, err := s.idGen.NewID()
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate user id: %w", err)
	}

	now := s.now().UTC()
	u := user.User{
		ID:           userID,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         user.RoleUser,
		Balance:      decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return AuthResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return AuthResult{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return AuthResult{User: u, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Login")
	defer span.End()

	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	u, exists, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("get user by username: %w", err)
	}
	if !exists || !secret.CheckPassword(u.PasswordHash, input.Password) {
		return AuthResult{}, fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: u, Token: token}, nil
}

// Authenticate resolves a bearer token to the current principal. The role is
// always read from the store, never from the token.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (user.Principal, error) {
	userID, err := s.tokens.Subject(rawToken)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	u, exists, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.Principal{}, fmt.Errorf("get user by id: %w", err)
	}
	if !exists {
		return user.Principal{}, fmt.Errorf("%w: account no longer exists", ErrUnauthorized)
	}
	return u.Principal(), nil
}

// ForgotPassword issues a reset token when the email is known. Unknown emails
// succeed silently so the endpoint cannot be used to probe accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.ForgotPassword")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	}

	u, exists, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("get user by email: %w", err)
	}
	if !exists {
		s.logger.DebugContext(ctx, "password reset requested for unknown email")
		return nil
	}

	token, err := s.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	now := s.now().UTC()
	reset := passwordreset.Token{
		Token:     token,
		UserID:    u.ID,
		ExpiresAt: now.Add(passwordreset.TokenTTL),
		CreatedAt: now,
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return fmt.Errorf("create reset token: %w", err)
	}

	if err := s.notifier.NotifyPasswordReset(ctx, u, reset.Token, reset.ExpiresAt); err != nil {
		return fmt.Errorf("%w: notify password reset: %v", ErrDependencyUnavailable, err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.ResetPassword", attribute.String("user_id", input.UserID))
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Token = strings.TrimSpace(input.Token)
	if input.UserID == "" || input.Token == "" {
		return fmt.Errorf("%w: user id and token are required", ErrInvalidInput)
	}
	if len(input.NewPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	errInvalidToken := fmt.Errorf("%w: reset token is invalid or expired", ErrInvalidInput)
	reset, exists, err := s.resets.Get(ctx, input.Token)
	if err != nil {
		return fmt.Errorf("get reset token: %w", err)
	}
	now := s.now().UTC()
	if !exists || reset.UserID != input.UserID || !reset.Usable(now) {
		return errInvalidToken
	}

	hash, err := secret.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	marked, err := s.resets.MarkUsed(ctx, reset.Token, now)
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}
	if !marked {
		return errInvalidToken
	}
	if err := s.users.UpdatePassword(ctx, reset.UserID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset completed", "user_id", reset.UserID)
	return nil
}

// GetRole returns the role of userID. Callers may read their own role; admins
// may read anyone's.
func (s *AuthService) GetRole(ctx context.Context, actor user.Principal, userID string) (user.Role, error) {
	u, err := s.visibleUser(ctx, actor, userID)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

func (s *AuthService) GetBalance(ctx context.Context, actor user.Principal, userID string) (decimal.Decimal, error) {
	u, err := s.visibleUser(ctx, actor, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return u.Balance, nil
}

func (s *AuthService) visibleUser(ctx context.Context, actor user.Principal, userID string) (user.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = actor.UserID
	}
	if userID != actor.UserID && !actor.Can(user.CapFullVisibility) {
		return user.User{}, fmt.Errorf("%w: cannot read another user's account", ErrForbidden)
	}

	u, exists, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user=%s", ErrNotFound, userID)
	}
	return u, nil
}

// LogResetNotifier writes reset tokens to the log instead of sending email.
type LogResetNotifier struct {
	logger *logging.Logger
}

func NewLogResetNotifier(logger *logging.Logger) *LogResetNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogResetNotifier{logger: logger}
}

func (n *LogResetNotifier) NotifyPasswordReset(ctx context.Context, u user.User, token string, expiresAt time.Time) error {
	if token == "" {
		return errors.New("empty reset token")
	}
	n.logger.InfoContext(ctx, "password reset token issued",
		"user_id", u.ID,
		"expires_at", expiresAt.Format(time.RFC3339),
	)
	n.logger.DebugContext(ctx, "password reset token", "user_id", u.ID, "token", token)
	return nil
}
