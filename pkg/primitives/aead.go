// aead.go implements authenticated encryption with ChaCha20-Poly1305.
//
// Unlike the teacher's stateful, counter-nonce AEAD type (used for a
// long-lived tunnel where many packets share one key), an envelope carries
// a single fresh random nonce generated per message, so Seal/Open here are
// stateless pure functions over an explicit key and nonce.
package primitives

import (
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/qryptchat/pq-engine/internal/qerrors"
)

// AEADSeal encrypts and authenticates plaintext under key and nonce,
// returning ciphertext||tag. aad may be nil; per spec §4.6 the single-
// recipient cipher always calls this with an empty aad.
func AEADSeal(key, nonce, plaintext, aad []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, qerrors.New(qerrors.KindEncryption, "primitives.AEADSeal", "invalid key size")
	}
	if len(nonce) != NonceSize {
		return nil, qerrors.New(qerrors.KindEncryption, "primitives.AEADSeal", "invalid nonce size")
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, qerrors.Wrap(qerrors.KindEncryption, "primitives.AEADSeal", err)
	}

	return aead.Seal(nil, nonce, plaintext, aad), nil
}

// AEADOpen decrypts and verifies ciphertext (which includes the trailing
// tag) under key and nonce. It never returns partial plaintext: on tag
// mismatch it returns a KindDecryption error and a nil plaintext.
func AEADOpen(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, qerrors.New(qerrors.KindEncryption, "primitives.AEADOpen", "invalid key size")
	}
	if len(nonce) != NonceSize {
		return nil, qerrors.New(qerrors.KindDecryption, "primitives.AEADOpen", "invalid nonce size")
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, qerrors.Wrap(qerrors.KindEncryption, "primitives.AEADOpen", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, qerrors.New(qerrors.KindDecryption, "primitives.AEADOpen", "authentication failed")
	}
	return plaintext, nil
}
