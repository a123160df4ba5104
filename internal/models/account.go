// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Account is the persisted user document. Tokens and Settings are stored
// inside the document, so every write replaces them together with the
// account fields.
type Account struct { //nolint:govet // fieldalignment: readability over optimization
	ID               string     `db:"id" bson:"_id" json:"id"`
	Username         string     `db:"username" bson:"username" json:"username"`
	Email            string     `db:"email" bson:"email" json:"email"`
	FirstName        string     `db:"firstname" bson:"firstname" json:"firstname"`
	LastName         string     `db:"lastname" bson:"lastname" json:"lastname"`
	Company          string     `db:"company" bson:"company" json:"company,omitempty"`
	PasswordHash     string     `db:"password_hash" bson:"password" json:"-"`
	Active           bool       `db:"active" bson:"active" json:"active"`
	IsAdmin          bool       `db:"is_admin" bson:"is_admin" json:"is_admin"`
	RegistrationDate time.Time  `db:"registration_date" bson:"registration_date" json:"registration_date"`
	LastLogin        *time.Time `db:"last_login" bson:"last_login,omitempty" json:"last_login,omitempty"`
	Tokens           Tokens     `db:"tokens" bson:"tokens" json:"tokens,omitempty"`
	Settings         Settings   `db:"user_settings" bson:"user_settings,omitempty" json:"user_settings,omitempty"`
}

// Settings is the schema-less configuration bag owned by the account holder.
type Settings map[string]any

// Value implements driver.Valuer.
func (s Settings) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *Settings) Scan(src any) error {
	raw, err := rawJSON(src)
	if err != nil || raw == nil {
		*s = nil
		return err
	}
	return json.Unmarshal(raw, s)
}

func rawJSON(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported json column type")
	}
}

// Public returns a copy safe to hand to API clients: the token collection
// is stripped. The password hash never leaves the process because of its
// json tag.
func (a *Account) Public() *Account {
	cp := *a
	cp.Tokens = nil
	return &cp
}

// Profile is the self-service view: tokens, last_login and
// registration_date are omitted.
func (a *Account) Profile() map[string]any {
	p := map[string]any{
		"id":        a.ID,
		"username":  a.Username,
		"email":     a.Email,
		"firstname": a.FirstName,
		"lastname":  a.LastName,
		"company":   a.Company,
		"active":    a.Active,
		"is_admin":  a.IsAdmin,
	}
	if a.Settings != nil {
		p["user_settings"] = a.Settings
	}
	return p
}
