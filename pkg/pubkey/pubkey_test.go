package pubkey_test

import (
	"bytes"
	"testing"

	"github.com/qryptchat/pq-engine/internal/qerrors"
	"github.com/qryptchat/pq-engine/pkg/kem"
	"github.com/qryptchat/pq-engine/pkg/primitives"
	"github.com/qryptchat/pq-engine/pkg/pubkey"
)

func randomKeyBytes(t *testing.T, n int) []byte {
	t.Helper()
	b, err := primitives.RandomBytes(n)
	if err != nil {
		t.Fatalf("RandomBytes: %v", err)
	}
	return b
}

func TestNormalizeAcceptsExactSizedKeys(t *testing.T) {
	for _, alg := range []kem.Algorithm{kem.Primary, kem.Legacy} {
		raw := randomKeyBytes(t, alg.PublicKeySize())
		candidate := primitives.B64Encode(raw)

		got, gotAlg, err := pubkey.Normalize(candidate, true, nil)
		if err != nil {
			t.Fatalf("Normalize(%v): %v", alg, err)
		}
		if gotAlg != alg {
			t.Fatalf("detected algorithm = %v, want %v", gotAlg, alg)
		}
		if !bytes.Equal(got, raw) {
			t.Fatal("exact-sized key was mutated")
		}
	}
}

func TestNormalizeRejectsLegacyHeader(t *testing.T) {
	raw := append([]byte("KYBER"), randomKeyBytes(t, kem.Primary.PublicKeySize()-5)...)
	candidate := primitives.B64Encode(raw)

	_, _, err := pubkey.Normalize(candidate, true, nil)
	kind, ok := qerrors.As(err)
	if !ok || kind != qerrors.KindIncompatibleKey {
		t.Fatalf("expected KindIncompatibleKey, got %v (ok=%v)", kind, ok)
	}
}

func TestNormalizeRejectsInvalidBase64(t *testing.T) {
	_, _, err := pubkey.Normalize("not base64 at all!!!", true, nil)
	if err == nil {
		t.Fatal("expected error for non-base64 input")
	}
}

func TestNormalizePadsNearSizeKey(t *testing.T) {
	raw := randomKeyBytes(t, kem.Primary.PublicKeySize()-10)
	candidate := primitives.B64Encode(raw)

	got, alg, err := pubkey.Normalize(candidate, true, nil)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if alg != kem.Primary {
		t.Fatalf("detected algorithm = %v, want Primary", alg)
	}
	if len(got) != kem.Primary.PublicKeySize() {
		t.Fatalf("padded length = %d, want %d", len(got), kem.Primary.PublicKeySize())
	}
}

func TestNormalizeRejectsNearSizeWhenPaddingDisabled(t *testing.T) {
	raw := randomKeyBytes(t, kem.Primary.PublicKeySize()-10)
	candidate := primitives.B64Encode(raw)

	if _, _, err := pubkey.Normalize(candidate, false, nil); err == nil {
		t.Fatal("expected rejection when near-size padding is disabled")
	}
}

func TestNormalizeRejectsFarSizeMismatch(t *testing.T) {
	raw := randomKeyBytes(t, 10)
	candidate := primitives.B64Encode(raw)

	if _, _, err := pubkey.Normalize(candidate, true, nil); err == nil {
		t.Fatal("expected rejection for a key far shorter than any known algorithm")
	}
}

func TestNormalizeRejectsStructurallyInvalidKey(t *testing.T) {
	raw := make([]byte, kem.Primary.PublicKeySize())
	// first 50 bytes all zero: fails the structural validity heuristic.
	candidate := primitives.B64Encode(raw)

	_, _, err := pubkey.Normalize(candidate, true, nil)
	kind, ok := qerrors.As(err)
	if !ok || kind != qerrors.KindInvalidPublicKey {
		t.Fatalf("expected KindInvalidPublicKey, got %v (ok=%v)", kind, ok)
	}
}
