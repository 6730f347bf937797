package primitives_test

import (
	"bytes"
	"testing"

	"github.com/qryptchat/pq-engine/pkg/primitives"
)

func TestRandomBytesNotAllZero(t *testing.T) {
	b, err := primitives.RandomBytes(32)
	if err != nil {
		t.Fatalf("RandomBytes: %v", err)
	}
	allZero := true
	for _, v := range b {
		if v != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Error("RandomBytes returned all zeros")
	}
}

func TestRandomBytesDiffer(t *testing.T) {
	a, _ := primitives.RandomBytes(32)
	b, _ := primitives.RandomBytes(32)
	if bytes.Equal(a, b) {
		t.Error("two independent RandomBytes calls produced identical output")
	}
}

func TestSecureZero(t *testing.T) {
	b, _ := primitives.RandomBytes(32)
	primitives.SecureZero(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not zeroed: %d", i, v)
		}
	}
}

func TestCTEqual(t *testing.T) {
	a := []byte{1, 2, 3, 4}
	b := []byte{1, 2, 3, 4}
	c := []byte{1, 2, 3, 5}
	if !primitives.CTEqual(a, b) {
		t.Error("expected equal slices to compare equal")
	}
	if primitives.CTEqual(a, c) {
		t.Error("expected differing slices to compare unequal")
	}
	if primitives.CTEqual(a, []byte{1, 2, 3}) {
		t.Error("expected differing lengths to compare unequal")
	}
}

func TestB64RoundTrip(t *testing.T) {
	b, _ := primitives.RandomBytes(64)
	s := primitives.B64Encode(b)
	got, err := primitives.B64Decode(s)
	if err != nil {
		t.Fatalf("B64Decode: %v", err)
	}
	if !bytes.Equal(b, got) {
		t.Fatal("base64 round trip mismatch")
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	ikm, _ := primitives.RandomBytes(32)
	salt, _ := primitives.RandomBytes(primitives.SaltSize)

	k1, err := primitives.DeriveKey(ikm, salt, "ChaCha20-Poly1305", primitives.KeySize)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	k2, err := primitives.DeriveKey(ikm, salt, "ChaCha20-Poly1305", primitives.KeySize)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatal("DeriveKey is not deterministic for identical inputs")
	}

	k3, err := primitives.DeriveKey(ikm, salt, "other-context", primitives.KeySize)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if bytes.Equal(k1, k3) {
		t.Fatal("DeriveKey context string is not providing domain separation")
	}
}

func TestAEADRoundTrip(t *testing.T) {
	key, _ := primitives.RandomBytes(primitives.KeySize)
	nonce, _ := primitives.RandomBytes(primitives.NonceSize)
	plaintext := []byte("hello, post-quantum world")

	ct, err := primitives.AEADSeal(key, nonce, plaintext, nil)
	if err != nil {
		t.Fatalf("AEADSeal: %v", err)
	}

	pt, err := primitives.AEADOpen(key, nonce, ct, nil)
	if err != nil {
		t.Fatalf("AEADOpen: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", pt, plaintext)
	}
}

func TestAEADOpenDetectsTamper(t *testing.T) {
	key, _ := primitives.RandomBytes(primitives.KeySize)
	nonce, _ := primitives.RandomBytes(primitives.NonceSize)

	ct, err := primitives.AEADSeal(key, nonce, []byte("hello"), nil)
	if err != nil {
		t.Fatalf("AEADSeal: %v", err)
	}
	ct[len(ct)-1] ^= 0xFF

	if _, err := primitives.AEADOpen(key, nonce, ct, nil); err == nil {
		t.Fatal("expected AEADOpen to reject tampered ciphertext")
	}
}

func TestAEADOpenRejectsWrongKey(t *testing.T) {
	key, _ := primitives.RandomBytes(primitives.KeySize)
	other, _ := primitives.RandomBytes(primitives.KeySize)
	nonce, _ := primitives.RandomBytes(primitives.NonceSize)

	ct, _ := primitives.AEADSeal(key, nonce, []byte("hello"), nil)
	if _, err := primitives.AEADOpen(other, nonce, ct, nil); err == nil {
		t.Fatal("expected AEADOpen to reject ciphertext sealed under a different key")
	}
}
