// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and tracks the per-account security tokens.
package token

import (
	"crypto/sha256"
	"encoding/hex"
)

// Generate returns the hex encoded SHA-256 digest of secret followed by salt.
func Generate(secret, salt string) string {
	sum := sha256.Sum256([]byte(secret + salt))
	return hex.EncodeToString(sum[:])
}
