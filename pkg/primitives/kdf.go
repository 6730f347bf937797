// kdf.go derives AEAD keys from KEM shared secrets using HKDF-SHA256
// (RFC 5869), via the ecosystem implementation in golang.org/x/crypto/hkdf
// rather than a hand-rolled extract-and-expand — the spec specifies
// HKDF-SHA256 precisely, and x/crypto already ships it.
package primitives

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/qryptchat/pq-engine/internal/qerrors"
)

// DomainTag prefixes every HKDF info string, per spec §4.1.
const DomainTag = "QryptChat-v1-"

// DeriveKey runs HKDF-SHA256 over ikm with the given salt, using an info
// string of DomainTag + context, and returns length bytes of key material.
// ikm is typically a KEM shared secret; the caller is responsible for
// zeroizing both ikm and the returned key once the AEAD key has been used.
func DeriveKey(ikm, salt []byte, context string, length int) ([]byte, error) {
	info := []byte(DomainTag + context)
	r := hkdf.New(sha256.New, ikm, salt, info)

	out := make([]byte, length)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, qerrors.Wrap(qerrors.KindEncryption, "primitives.DeriveKey", err)
	}
	return out, nil
}
