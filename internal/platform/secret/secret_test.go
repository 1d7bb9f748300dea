package secret

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBox_SealOpenRoundTrip(t *testing.T) {
	box, err := NewBox("local-dev-credentials-key")
	require.NoError(t, err)

	sealed, err := box.Seal("hunter2", "order-1")
	require.NoError(t, err)
	require.NotContains(t, sealed, "hunter2")

	opened, err := box.Open(sealed, "order-1")
	require.NoError(t, err)
	require.Equal(t, "hunter2", opened)
}

func TestBox_OpenRejectsWrongContextOrKey(t *testing.T) {
	box, err := NewBox("key-a")
	require.NoError(t, err)
	other, err := NewBox("key-b")
	require.NoError(t, err)

	sealed, err := box.Seal("hunter2", "order-1")
	require.NoError(t, err)

	_, err = box.Open(sealed, "order-2")
	require.True(t, errors.Is(err, ErrMalformed))

	_, err = other.Open(sealed, "order-1")
	require.True(t, errors.Is(err, ErrMalformed))

	_, err = box.Open("%%%", "order-1")
	require.True(t, errors.Is(err, ErrMalformed))
}

func TestNewBox_RequiresKeyMaterial(t *testing.T) {
	_, err := NewBox("   ")
	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	require.True(t, CheckPassword(hash, "s3cret-pass"))
	require.False(t, CheckPassword(hash, "wrong"))
	require.False(t, CheckPassword("", "s3cret-pass"))

	_, err = HashPassword("")
	require.ErrorIs(t, err, ErrPasswordEmpty)
}
