package authtoken

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssuer_IssueAndVerify(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.True(t, claims.Expires.Equal(now.Add(time.Hour)))
}

func TestIssuer_VerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewIssuer("other-secret", time.Hour)
	require.NoError(t, err)

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }
	other.now = issuer.now

	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	_, err = other.Verify(token)
	require.True(t, errors.Is(err, ErrInvalidToken))

	now = now.Add(2 * time.Hour)
	_, err = issuer.Verify(token)
	require.True(t, errors.Is(err, ErrInvalidToken))

	_, err = issuer.Verify("")
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestNewIssuer_RequiresSecret(t *testing.T) {
	_, err := NewIssuer(" ", time.Hour)
	require.ErrorIs(t, err, ErrEmptySecret)
}
