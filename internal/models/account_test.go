// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/accountd/accountd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_PasswordNeverSerialized(t *testing.T) {
	acc := &models.Account{ID: "1", Email: "a@b.com", PasswordHash: "secret-hash"}

	b, err := json.Marshal(acc)

	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret-hash")
	assert.NotContains(t, string(b), "password")
}

func TestAccount_PublicStripsTokens(t *testing.T) {
	acc := &models.Account{ID: "1"}
	acc.AppendToken("tok", time.Now())

	pub := acc.Public()

	assert.Nil(t, pub.Tokens)
	assert.Len(t, acc.Tokens, 1)
}

func TestAccount_Profile(t *testing.T) {
	now := time.Now()
	acc := &models.Account{
		ID:               "1",
		Email:            "a@b.com",
		RegistrationDate: now,
		LastLogin:        &now,
		Settings:         models.Settings{"theme": "dark"},
	}
	acc.AppendToken("tok", now)

	p := acc.Profile()

	assert.Equal(t, "a@b.com", p["email"])
	assert.NotContains(t, p, "tokens")
	assert.NotContains(t, p, "last_login")
	assert.NotContains(t, p, "registration_date")
	assert.Equal(t, models.Settings{"theme": "dark"}, p["user_settings"])
}

func TestSettings_ValueScan(t *testing.T) {
	in := models.Settings{"theme": "dark", "page_size": float64(50)}

	v, err := in.Value()
	require.NoError(t, err)

	var out models.Settings
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in, out)
}

func TestSettings_ScanNil(t *testing.T) {
	out := models.Settings{"a": 1}

	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out)
}
