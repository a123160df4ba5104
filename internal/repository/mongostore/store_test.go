// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/accountd/accountd/internal/models"
	"github.com/accountd/accountd/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestToBSON_Empty(t *testing.T) {
	assert.Equal(t, bson.D{}, toBSON(repository.Filter{}))
}

func TestToBSON_AllFields(t *testing.T) {
	f := repository.Filter{
		Username: "u",
		Email:    "e",
		Active:   repository.Bool(true),
		IsAdmin:  repository.Bool(false),
	}

	got := toBSON(f)

	assert.Equal(t, bson.D{
		{Key: "username", Value: "u"},
		{Key: "email", Value: "e"},
		{Key: "active", Value: true},
		{Key: "is_admin", Value: false},
	}, got)
}

func TestWrapError_Nil(t *testing.T) {
	assert.NoError(t, wrapError(nil))
}

// newTestStore connects to MONGO_URI; the test is skipped without it.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, uri)
	require.NoError(t, err)

	db := client.Database("accountd_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	store, err := New(ctx, db)
	require.NoError(t, err)
	return store
}

func TestStore_SaveFindDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	acc := &models.Account{Username: "a@b.com", Email: "a@b.com", PasswordHash: "h"}
	acc.AppendToken("tok", time.Now())

	require.NoError(t, store.Save(ctx, acc))
	require.NotEmpty(t, acc.ID)

	got, err := store.FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
	require.Len(t, got.Tokens, 1)

	err = store.Save(ctx, &models.Account{Username: "a@b.com", Email: "a@b.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	list, err := store.Find(ctx, repository.Filter{}, repository.FindOptions{Limit: 10, OmitTokens: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Tokens)

	require.NoError(t, store.Delete(ctx, acc.ID))
	_, err = store.FindByID(ctx, acc.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
