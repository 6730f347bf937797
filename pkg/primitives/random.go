// Package primitives implements the low-level cryptographic building blocks
// (C1): secure randomness, HKDF-SHA256 key derivation, ChaCha20-Poly1305
// AEAD, constant-time comparison, and zeroization. Every other package in
// this module builds on these rather than reaching for crypto/* directly.
package primitives

import (
	"crypto/rand"
	"io"

	"github.com/qryptchat/pq-engine/internal/qerrors"
)

// Reader is the engine's cryptographically secure randomness source.
var Reader io.Reader = rand.Reader

// RandomBytes returns n cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(Reader, b); err != nil {
		return nil, qerrors.Wrap(qerrors.KindEncryption, "primitives.RandomBytes", err)
	}
	return b, nil
}
