package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/user"
	"github.com/riskibarqy/rank-boost/internal/platform/authtoken"
)

type capturingNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (n *capturingNotifier) NotifyPasswordReset(_ context.Context, u user.User, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tokens == nil {
		n.tokens = make(map[string]string)
	}
	n.tokens[u.ID] = token
	return nil
}

func newAuthService(t *testing.T, f *testFixture, notifier ResetNotifier) *AuthService {
	t.Helper()

	issuer, err := authtoken.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return NewAuthService(f.users, f.resets, issuer, notifier, f.idGen, f.logger)
}

func TestAuthService_RegisterLoginAuthenticate(t *testing.T) {
	f := newTestFixture(t)
	service := newAuthService(t, f, nil)
	ctx := context.Background()

	registered, err := service.Register(ctx, RegisterInput{Username: "alice", Email: "Alice@Example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.User.Role != user.RoleUser || registered.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", registered.User)
	}

	if _, err := service.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: "correct-horse"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate username err=%v, want ErrConflict", err)
	}
	if _, err := service.Login(ctx, LoginInput{Username: "alice", Password: "wrong-password"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong password err=%v, want ErrUnauthorized", err)
	}

	login, err := service.Login(ctx, LoginInput{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	principal, err := service.Authenticate(ctx, login.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.UserID != registered.User.ID || principal.Role != user.RoleUser {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if _, err := service.Authenticate(ctx, "not-a-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("garbage token err=%v, want ErrUnauthorized", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	f := newTestFixture(t)
	service := newAuthService(t, f, nil)

	inputs := []RegisterInput{
		{Username: "", Email: "a@example.com", Password: "long-enough"},
		{Username: "bob", Email: "not-an-email", Password: "long-enough"},
		{Username: "bob", Email: "bob@example.com", Password: "short"},
	}
	for _, in := range inputs {
		if _, err := service.Register(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("register %+v err=%v, want ErrInvalidInput", in, err)
		}
	}
}

func TestAuthService_PasswordResetIsSingleUse(t *testing.T) {
	f := newTestFixture(t)
	notifier := &capturingNotifier{}
	service := newAuthService(t, f, notifier)
	ctx := context.Background()

	registered, err := service.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "old-password"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := service.ForgotPassword(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("unknown email must succeed silently: %v", err)
	}
	if err := service.ForgotPassword(ctx, "alice@example.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	token := notifier.tokens[registered.User.ID]
	if token == "" {
		t.Fatalf("expected reset token to be delivered")
	}

	reset := ResetPasswordInput{UserID: registered.User.ID, Token: token, NewPassword: "new-password"}
	if err := service.ResetPassword(ctx, ResetPasswordInput{UserID: "someone-else", Token: token, NewPassword: "new-password"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("foreign user reset err=%v, want ErrInvalidInput", err)
	}
	if err := service.ResetPassword(ctx, reset); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if err := service.ResetPassword(ctx, reset); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("reused token err=%v, want ErrInvalidInput", err)
	}

	if _, err := service.Login(ctx, LoginInput{Username: "alice", Password: "new-password"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestAuthService_ResetTokenExpires(t *testing.T) {
	f := newTestFixture(t)
	notifier := &capturingNotifier{}
	service := newAuthService(t, f, notifier)
	ctx := context.Background()

	now := fixtureNow
	service.now = func() time.Time { return now }

	registered, err := service.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: "old-password"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := service.ForgotPassword(ctx, "alice@example.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}

	now = now.Add(61 * time.Minute)
	err = service.ResetPassword(ctx, ResetPasswordInput{
		UserID:      registered.User.ID,
		Token:       notifier.tokens[registered.User.ID],
		NewPassword: "new-password",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expired token err=%v, want ErrInvalidInput", err)
	}
}

func TestAuthService_RoleAndBalanceVisibility(t *testing.T) {
	f := newTestFixture(t)
	customer := f.addUser(t, "customer", user.RoleUser)
	f.addUser(t, "other", user.RoleBooster)
	admin := f.addUser(t, "admin", user.RoleAdmin)
	service := newAuthService(t, f, nil)
	ctx := context.Background()

	role, err := service.GetRole(ctx, customer, "")
	if err != nil || role != user.RoleUser {
		t.Fatalf("own role=%s err=%v", role, err)
	}
	if _, err := service.GetBalance(ctx, customer, "other"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign balance err=%v, want ErrForbidden", err)
	}
	role, err = service.GetRole(ctx, admin, "other")
	if err != nil || role != user.RoleBooster {
		t.Fatalf("admin read role=%s err=%v", role, err)
	}
	if _, err := service.GetRole(ctx, admin, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err=%v, want ErrNotFound", err)
	}
}
