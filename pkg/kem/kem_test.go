package kem_test

import (
	"bytes"
	"testing"

	"github.com/qryptchat/pq-engine/pkg/kem"
)

func TestParseAlgorithmRoundTrip(t *testing.T) {
	for _, alg := range []kem.Algorithm{kem.Primary, kem.Legacy} {
		got, ok := kem.ParseAlgorithm(alg.String())
		if !ok || got != alg {
			t.Fatalf("ParseAlgorithm(%q) = %v, %v; want %v, true", alg.String(), got, ok, alg)
		}
	}
	if _, ok := kem.ParseAlgorithm("nonsense"); ok {
		t.Fatal("expected ParseAlgorithm to reject unknown algorithm string")
	}
}

func testRoundTrip(t *testing.T, alg kem.Algorithm) {
	t.Helper()

	pk, sk, err := kem.GenerateKeyPair(alg)
	if err != nil {
		t.Fatalf("GenerateKeyPair(%v): %v", alg, err)
	}
	if len(pk) != alg.PublicKeySize() {
		t.Fatalf("public key size = %d, want %d", len(pk), alg.PublicKeySize())
	}
	if len(sk) != alg.PrivateKeySize() {
		t.Fatalf("private key size = %d, want %d", len(sk), alg.PrivateKeySize())
	}

	ct, ss1, err := kem.Encapsulate(alg, pk)
	if err != nil {
		t.Fatalf("Encapsulate(%v): %v", alg, err)
	}
	if len(ct) != alg.CiphertextSize() {
		t.Fatalf("ciphertext size = %d, want %d", len(ct), alg.CiphertextSize())
	}
	if len(ss1) != kem.SharedSecretSize {
		t.Fatalf("shared secret size = %d, want %d", len(ss1), kem.SharedSecretSize)
	}

	ss2, err := kem.Decapsulate(alg, sk, ct)
	if err != nil {
		t.Fatalf("Decapsulate(%v): %v", alg, err)
	}
	if !bytes.Equal(ss1, ss2) {
		t.Fatalf("shared secrets diverged for %v", alg)
	}
}

func TestRoundTripPrimary(t *testing.T) { testRoundTrip(t, kem.Primary) }
func TestRoundTripLegacy(t *testing.T) { testRoundTrip(t, kem.Legacy) }

func TestDecapsulateWithWrongKeyDiffers(t *testing.T) {
	pkA, _, err := kem.GenerateKeyPair(kem.Primary)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	_, skB, err := kem.GenerateKeyPair(kem.Primary)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	ct, ss, err := kem.Encapsulate(kem.Primary, pkA)
	if err != nil {
		t.Fatalf("Encapsulate: %v", err)
	}

	// Decapsulating with an unrelated private key must not error (implicit
	// rejection) and must not recover the original shared secret.
	wrong, err := kem.Decapsulate(kem.Primary, skB, ct)
	if err != nil {
		t.Fatalf("Decapsulate with mismatched key returned an error instead of implicit rejection: %v", err)
	}
	if bytes.Equal(ss, wrong) {
		t.Fatal("Decapsulate with the wrong private key recovered the original shared secret")
	}
}

func TestEncapsulateRejectsWrongSizedPublicKey(t *testing.T) {
	if _, _, err := kem.Encapsulate(kem.Primary, []byte("too-short")); err == nil {
		t.Fatal("expected Encapsulate to reject a malformed public key")
	}
}

func TestDecapsulateRejectsWrongSizedInputs(t *testing.T) {
	_, sk, err := kem.GenerateKeyPair(kem.Legacy)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if _, err := kem.Decapsulate(kem.Legacy, sk, []byte("not-a-ciphertext")); err == nil {
		t.Fatal("expected Decapsulate to reject a malformed ciphertext")
	}
	if _, err := kem.Decapsulate(kem.Legacy, []byte("not-a-key"), make([]byte, kem.Legacy.CiphertextSize())); err == nil {
		t.Fatal("expected Decapsulate to reject a malformed private key")
	}
}
