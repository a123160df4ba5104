// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/accountd/accountd/internal/models"
	"github.com/accountd/accountd/internal/services/account"
	"github.com/accountd/accountd/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccounts(t *testing.T, f *fixture, n int) {
	t.Helper()
	ctx := context.Background()
	for i := range n {
		email := fmt.Sprintf("user%02d@b.com", i)
		acc := &models.Account{Username: email, Email: email, PasswordHash: "h"}
		acc.AppendToken(fmt.Sprintf("tok-%d", i), f.tokens.Now())
		require.NoError(t, f.repo.Save(ctx, acc))
	}
}

func TestList_Pagination(t *testing.T) {
	f := setup(t)
	seedAccounts(t, f, 25)

	page, err := f.svc.List(context.Background(), account.ListParams{Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, page.List, 10)
	assert.EqualValues(t, 25, page.Count)
	assert.EqualValues(t, 3, page.Pages)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, "user10@b.com", page.List[0].Email)
	for _, acc := range page.List {
		assert.Nil(t, acc.Tokens)
	}
}

func TestList_Defaults(t *testing.T) {
	f := setup(t)
	seedAccounts(t, f, 25)

	page, err := f.svc.List(context.Background(), account.ListParams{})

	require.NoError(t, err)
	assert.Len(t, page.List, 20)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 1, page.Page)
	assert.EqualValues(t, 2, page.Pages)
}

func TestList_Empty(t *testing.T) {
	f := setup(t)

	page, err := f.svc.List(context.Background(), account.ListParams{})

	require.NoError(t, err)
	assert.NotNil(t, page.List)
	assert.Empty(t, page.List)
	assert.Zero(t, page.Count)
	assert.Zero(t, page.Pages)
}

func TestListAdmins(t *testing.T) {
	f := setup(t)
	testutil.NewActiveAccount(t, f.repo, "admin@b.com", true)
	testutil.NewActiveAccount(t, f.repo, "user@b.com", false)
	inactive := testutil.NewTestAccount(t, f.repo, "idle@b.com")
	inactive.IsAdmin = true
	require.NoError(t, f.repo.Save(context.Background(), inactive))

	admins, err := f.svc.ListAdmins(context.Background())

	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@b.com", admins[0].Email)
}

func TestCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	acc, err := f.svc.Create(ctx, account.CreateAccountRequest{
		Email: "new@b.com", FirstName: "N", LastName: "U",
		Password: "pw", ConfPassword: "pw", Active: true, IsAdmin: true,
	})

	require.NoError(t, err)
	assert.True(t, acc.Active)
	assert.True(t, acc.IsAdmin)
	stored := f.stored(t, acc.ID)
	assert.Empty(t, stored.Tokens)
	assert.Empty(t, f.mailer.Sent())

	_, err = f.svc.Create(ctx, account.CreateAccountRequest{Email: "x@b.com", Password: "pw", ConfPassword: "other"})
	assert.ErrorIs(t, err, account.ErrPasswordPolicy)

	_, err = f.svc.Create(ctx, account.CreateAccountRequest{Email: "new@b.com", Password: "pw", ConfPassword: "pw"})
	assert.ErrorIs(t, err, account.ErrDuplicateAccount)
}

func TestGet(t *testing.T) {
	f := setup(t)
	acc, _ := f.register(t)

	got, err := f.svc.Get(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Tokens)

	_, err = f.svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestPatch(t *testing.T) {
	f := setup(t)
	acc, _ := f.register(t)
	ctx := context.Background()
	name := "Jane"
	active := true

	got, err := f.svc.Patch(ctx, acc.ID, account.PatchAccountRequest{FirstName: &name, Active: &active})

	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FirstName)
	assert.True(t, got.Active)
	stored := f.stored(t, acc.ID)
	assert.Equal(t, "a@b.com", stored.Username)
	assert.Len(t, stored.Tokens, 1)
	assert.True(t, f.hasher.Verify(ctx, "longenough123", stored.PasswordHash))
}

func TestPatch_Password(t *testing.T) {
	f := setup(t)
	acc, _ := f.register(t)
	ctx := context.Background()

	_, err := f.svc.Patch(ctx, acc.ID, account.PatchAccountRequest{Password: "newpassword", ConfPassword: "different"})
	assert.ErrorIs(t, err, account.ErrPasswordPolicy)

	_, err = f.svc.Patch(ctx, acc.ID, account.PatchAccountRequest{Password: "newpassword", ConfPassword: "newpassword"})
	require.NoError(t, err)
	assert.True(t, f.hasher.Verify(ctx, "newpassword", f.stored(t, acc.ID).PasswordHash))
}

func TestPatch_NotFound(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Patch(context.Background(), "missing", account.PatchAccountRequest{})

	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	acc, _ := f.register(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, acc.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, acc.ID), account.ErrAccountNotFound)
}

func TestRequireAdmin(t *testing.T) {
	f := setup(t)
	admin := testutil.NewActiveAccount(t, f.repo, "admin@b.com", true)
	user := testutil.NewActiveAccount(t, f.repo, "user@b.com", false)
	ctx := context.Background()

	assert.NoError(t, f.svc.RequireAdmin(ctx, admin.ID))
	assert.ErrorIs(t, f.svc.RequireAdmin(ctx, user.ID), account.ErrForbidden)
	assert.ErrorIs(t, f.svc.RequireAdmin(ctx, "missing"), account.ErrForbidden)
}

func TestEnsureAdmin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.EnsureAdmin(ctx, "root@b.com", "rootpassword")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = f.svc.EnsureAdmin(ctx, "root@b.com", "changedpassword")
	require.NoError(t, err)
	assert.False(t, created)

	res, err := f.svc.Authenticate(ctx, account.LoginRequest{Username: "root@b.com", Password: "changedpassword"}, true)
	require.NoError(t, err)
	assert.True(t, res.Account.IsAdmin)

	_, err = f.svc.EnsureAdmin(ctx, "", "x")
	var verr *account.ValidationError
	assert.ErrorAs(t, err, &verr)
}
