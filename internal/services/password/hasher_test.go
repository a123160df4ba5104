// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package password_test

import (
	"context"
	"strings"
	"testing"

	"github.com/accountd/accountd/internal/services/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHash_Verify(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "longenough123")

	require.NoError(t, err)
	assert.NotEqual(t, "longenough123", hash)
	assert.True(t, h.Verify(ctx, "longenough123", hash))
	assert.False(t, h.Verify(ctx, "wrong-password", hash))
}

func TestHash_Salted(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost, 1)
	ctx := context.Background()

	a, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)
	b, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify(ctx, "same-password", a))
	assert.True(t, h.Verify(ctx, "same-password", b))
}

func TestVerify_MalformedHash(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost, 1)

	assert.False(t, h.Verify(context.Background(), "anything", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify(context.Background(), "anything", ""))
}

func TestVerify_CancelledContext(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost, 1)
	hash, err := h.Hash(context.Background(), "pw-pw-pw-pw-pw")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, h.Verify(ctx, "pw-pw-pw-pw-pw", hash))
}

func TestNewHasher_InvalidCostFallsBack(t *testing.T) {
	h := password.NewHasher(99, 0)

	hash, err := h.Hash(context.Background(), "pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHash_MaxLength(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost, 1)
	ctx := context.Background()

	longest := strings.Repeat("a", password.MaxLength)
	hash, err := h.Hash(ctx, longest)
	require.NoError(t, err)
	assert.True(t, h.Verify(ctx, longest, hash))

	_, err = h.Hash(ctx, longest+"a")
	assert.ErrorIs(t, err, password.ErrTooLong)

	// length is counted in bytes: 37 two-byte runes are 74 bytes
	_, err = h.Hash(ctx, strings.Repeat("ä", 37))
	assert.ErrorIs(t, err, password.ErrTooLong)
}

func TestCompareDummy(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost, 1)

	assert.False(t, h.CompareDummy(context.Background(), "dummy-password-for-timing"))
	assert.False(t, h.CompareDummy(context.Background(), "anything"))
}
