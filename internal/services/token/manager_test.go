// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/accountd/accountd/internal/models"
	"github.com/accountd/accountd/internal/services/token"
	"github.com/accountd/accountd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	a := token.Generate("secret", "1")

	assert.Len(t, a, 64)
	assert.Equal(t, a, token.Generate("secret", "1"))
	assert.NotEqual(t, a, token.Generate("secret", "2"))
	assert.NotEqual(t, a, token.Generate("other", "1"))
}

func newManager(t *testing.T, now *time.Time) (*token.Manager, *models.Account) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	acc := testutil.NewTestAccount(t, repo, "a@b.com")
	m := token.NewManager(repo, "secret", token.WithClock(func() time.Time { return *now }))
	return m, acc
}

func TestCurrent_RotatesWhenEmpty(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m, acc := newManager(t, &now)
	ctx := context.Background()

	rec, err := m.Current(ctx, acc)

	require.NoError(t, err)
	assert.False(t, rec.Used)
	assert.True(t, rec.Expiry.After(now))
	assert.Len(t, acc.Tokens, 1)
}

func TestCurrent_ReusesValidToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m, acc := newManager(t, &now)
	ctx := context.Background()

	first, err := m.Current(ctx, acc)
	require.NoError(t, err)
	now = now.Add(time.Hour)
	second, err := m.Current(ctx, acc)
	require.NoError(t, err)

	assert.Equal(t, first.Token, second.Token)
	assert.Len(t, acc.Tokens, 1)
}

func TestCurrent_RotatesAfterExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m, acc := newManager(t, &now)
	ctx := context.Background()

	first, err := m.Current(ctx, acc)
	require.NoError(t, err)
	now = now.Add(models.TokenLifetime)
	second, err := m.Current(ctx, acc)
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.Len(t, acc.Tokens, 2)
}

func TestCurrent_NeverReturnsUsedOrExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m, acc := newManager(t, &now)
	ctx := context.Background()

	for i := range 5 {
		rec, err := m.Current(ctx, acc)
		require.NoError(t, err)
		assert.False(t, rec.Used)
		assert.True(t, rec.Expiry.After(now))
		if i%2 == 0 {
			m.MarkUsed(acc, rec.Token)
		} else {
			now = now.Add(25 * time.Hour)
		}
	}
}

func TestIssue_InvalidatesPreviousTokens(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m, acc := newManager(t, &now)
	ctx := context.Background()

	_, err := m.Issue(ctx, acc)
	require.NoError(t, err)
	_, err = m.Issue(ctx, acc)
	require.NoError(t, err)
	latest, err := m.Issue(ctx, acc)
	require.NoError(t, err)

	require.Len(t, acc.Tokens, 3)
	for _, rec := range acc.Tokens[:2] {
		assert.True(t, rec.Used)
		assert.False(t, rec.Expiry.After(now))
	}
	cur, ok := acc.CurrentToken(now)
	require.True(t, ok)
	assert.Equal(t, latest.Token, cur.Token)
}

func TestIssue_Persists(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	_, repo := testutil.NewTestDB(t)
	acc := testutil.NewTestAccount(t, repo, "a@b.com")
	m := token.NewManager(repo, "secret", token.WithClock(func() time.Time { return now }))

	rec, err := m.Issue(context.Background(), acc)
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), acc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Tokens, 1)
	assert.Equal(t, rec.Token, stored.Tokens[0].Token)
}

func TestIssue_UniqueWithinSameInstant(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m, acc := newManager(t, &now)
	ctx := context.Background()

	a, err := m.Issue(ctx, acc)
	require.NoError(t, err)
	b, err := m.Issue(ctx, acc)
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
}

func TestMarkUsed_UnknownIsNoop(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m, acc := newManager(t, &now)

	rec, err := m.Current(context.Background(), acc)
	require.NoError(t, err)

	tokens := m.MarkUsed(acc, "unknown")
	require.Len(t, tokens, 1)
	assert.False(t, tokens[0].Used)

	tokens = m.MarkUsed(acc, rec.Token)
	assert.True(t, tokens[0].Used)
}
