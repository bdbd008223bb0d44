package crypto

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	h := NewArgon2Hasher(nil)
	ctx := context.Background()

	encoded, err := h.HashPassword(ctx, "correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$"), "expected PHC format, got %q", encoded)

	ok, err := h.VerifyPassword(ctx, "correct horse battery staple", encoded)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.VerifyPassword(ctx, "wrong password", encoded)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArgon2Hasher_SaltVaries(t *testing.T) {
	h := NewArgon2Hasher(&Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	ctx := context.Background()

	first, err := h.HashPassword(ctx, "pin1234")
	require.NoError(t, err)
	second, err := h.HashPassword(ctx, "pin1234")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestArgon2Hasher_MalformedHash(t *testing.T) {
	h := NewArgon2Hasher(nil)
	_, err := h.VerifyPassword(context.Background(), "anything", "not-a-phc-string")
	require.Error(t, err)
}
