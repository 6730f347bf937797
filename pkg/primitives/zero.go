package primitives

import "crypto/subtle"

// SaltSize is the size in bytes of the HKDF salt carried in every envelope.
const SaltSize = 32

// NonceSize is the size in bytes of the AEAD nonce carried in every envelope.
const NonceSize = 12

// KeySize is the size in bytes of a derived AEAD key.
const KeySize = 32

// TagSize is the size in bytes of the ChaCha20-Poly1305 authentication tag.
const TagSize = 16

// SecureZero overwrites buf with zeros. The Go runtime may already have
// copied the data elsewhere and the compiler is in principle free to elide
// a zeroing loop it can prove is dead, but this is the same best-effort
// wipe the rest of the ecosystem uses absent cgo-level memory locking.
func SecureZero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// SecureZeroAll wipes every buffer in bufs.
func SecureZeroAll(bufs ...[]byte) {
	for _, b := range bufs {
		SecureZero(b)
	}
}

// CTEqual reports whether a and b are equal, in time independent of where
// they first differ. Unequal lengths are rejected in constant time relative
// to the shorter input's processing, matching crypto/subtle's contract.
func CTEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
