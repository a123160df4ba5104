// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

const (
	// TokenLifetime is how long a freshly issued security token stays valid.
	TokenLifetime = 24 * time.Hour
	// TokenBackdate is how far into the past a superseded token's expiry is moved.
	TokenBackdate = time.Hour
)

// TokenRecord is a security token owned by exactly one account.
type TokenRecord struct {
	Token     string    `bson:"token" json:"token"`
	IssueDate time.Time `bson:"issue_date" json:"issue_date"`
	Expiry    time.Time `bson:"expiry" json:"expiry"`
	Used      bool      `bson:"used" json:"used"`
}

// IsCurrent reports whether the token is unused and not yet expired at now.
func (t TokenRecord) IsCurrent(now time.Time) bool {
	return !t.Used && t.Expiry.After(now)
}

// Tokens is the ordered token collection of an account (issuance order).
type Tokens []TokenRecord

// Value implements driver.Valuer.
func (t Tokens) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tokens) Scan(src any) error {
	raw, err := rawJSON(src)
	if err != nil || raw == nil {
		*t = nil
		return err
	}
	return json.Unmarshal(raw, t)
}

// CurrentToken returns the first token that is neither used nor expired.
// It never mutates the collection.
func (a *Account) CurrentToken(now time.Time) (*TokenRecord, bool) {
	for i := range a.Tokens {
		if a.Tokens[i].IsCurrent(now) {
			return &a.Tokens[i], true
		}
	}
	return nil, false
}

// AppendToken invalidates every existing token (used, expiry back-dated by
// TokenBackdate) and appends a fresh one expiring TokenLifetime from now.
// Superseded tokens are kept for the audit trail.
func (a *Account) AppendToken(value string, now time.Time) TokenRecord {
	for i := range a.Tokens {
		a.Tokens[i].Used = true
		a.Tokens[i].Expiry = now.Add(-TokenBackdate)
	}
	rec := TokenRecord{
		Token:     value,
		IssueDate: now,
		Expiry:    now.Add(TokenLifetime),
	}
	a.Tokens = append(a.Tokens, rec)
	return rec
}

// MarkTokenUsed flags the matching token as used. Unknown values are ignored.
func (a *Account) MarkTokenUsed(value string) Tokens {
	for i := range a.Tokens {
		if a.Tokens[i].Token == value {
			a.Tokens[i].Used = true
		}
	}
	return a.Tokens
}
