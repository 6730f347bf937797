// Package integration provides end-to-end integration tests for the
// post-quantum encryption engine: full round trips across the key vault,
// multi-recipient fan-out, and the envelope codec.
package integration

import (
	"context"
	"testing"

	"github.com/qryptchat/pq-engine/internal/config"
	"github.com/qryptchat/pq-engine/pkg/engine"
	"github.com/qryptchat/pq-engine/pkg/fanout"
	"github.com/qryptchat/pq-engine/pkg/kem"
	"github.com/qryptchat/pq-engine/pkg/primitives"
	"github.com/qryptchat/pq-engine/pkg/vault/store"
)

// TestEndToEndConversationFanOut verifies the full path from key
// generation through fan-out encryption to per-recipient decryption,
// across two independent engine instances standing in for two users.
func TestEndToEndConversationFanOut(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{AllowNearSizePadding: true}

	alice := engine.New(store.NewMemStore(), cfg, nil)
	bob := engine.New(store.NewMemStore(), cfg, nil)
	if err := alice.Init(ctx); err != nil {
		t.Fatalf("alice Init: %v", err)
	}
	if err := bob.Init(ctx); err != nil {
		t.Fatalf("bob Init: %v", err)
	}

	alicePK, err := alice.PublicKey(kem.Primary)
	if err != nil {
		t.Fatalf("alice PublicKey: %v", err)
	}
	bobPK, err := bob.PublicKey(kem.Legacy)
	if err != nil {
		t.Fatalf("bob PublicKey: %v", err)
	}

	dir := fanout.NewStaticDirectory()
	dir.SetConversation("conv-1", map[string]string{
		"alice": alicePK,
		"bob":   bobPK,
	})

	result, err := alice.EncryptForConversation(ctx, dir, "conv-1", "hello from alice")
	if err != nil {
		t.Fatalf("EncryptForConversation: %v", err)
	}
	if len(result.Envelopes) != 2 {
		t.Fatalf("got %d envelopes, want 2", len(result.Envelopes))
	}

	if got := alice.DecryptForCurrentUser(ctx, result.Envelopes["alice"], ""); got != "hello from alice" {
		t.Fatalf("alice decrypt = %q, want %q", got, "hello from alice")
	}
	if got := bob.DecryptForCurrentUser(ctx, result.Envelopes["bob"], ""); got != "hello from alice" {
		t.Fatalf("bob decrypt = %q, want %q", got, "hello from alice")
	}
}

// TestEndToEndKeyWipeBreaksDecryption verifies that wiping a vault and
// re-initializing it discards the old private key material: an envelope
// sealed before the wipe can no longer be opened afterward, and the
// public key visible to the Participant Directory changes.
func TestEndToEndKeyWipeBreaksDecryption(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{AllowNearSizePadding: true}
	s := store.NewMemStore()

	e := engine.New(s, cfg, nil)
	if err := e.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	legacyPKBefore, err := e.PublicKey(kem.Legacy)
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}

	env, err := e.EncryptFor(ctx, legacyPKBefore, "pre-wipe secret")
	if err != nil {
		t.Fatalf("EncryptFor: %v", err)
	}

	if err := e.Wipe(ctx); err != nil {
		t.Fatalf("Wipe: %v", err)
	}
	if err := e.Init(ctx); err != nil {
		t.Fatalf("re-Init: %v", err)
	}

	if got := e.DecryptForCurrentUser(ctx, env, ""); got == "pre-wipe secret" {
		t.Fatal("expected decryption to fail after wipe, but it still succeeded")
	}

	legacyPKAfter, err := e.PublicKey(kem.Legacy)
	if err != nil {
		t.Fatalf("PublicKey after re-init: %v", err)
	}
	if legacyPKAfter == legacyPKBefore {
		t.Fatal("expected a fresh legacy public key after wipe+reinit")
	}
}

// TestEndToEndExportImportMigratesVault verifies that an exported key
// pair can be imported into a second engine backed by a different store
// and still decrypt envelopes sealed against the exported public key.
func TestEndToEndExportImportMigratesVault(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{AllowNearSizePadding: true}

	source := engine.New(store.NewMemStore(), cfg, nil)
	if err := source.Init(ctx); err != nil {
		t.Fatalf("source Init: %v", err)
	}
	exported, err := source.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}

	dest := engine.New(store.NewMemStore(), cfg, nil)
	if err := dest.Init(ctx); err != nil {
		t.Fatalf("dest Init: %v", err)
	}

	for slot, alg := range map[string]kem.Algorithm{"primary": kem.Primary, "legacy": kem.Legacy} {
		exp, ok := exported[slot]
		if !ok {
			t.Fatalf("missing export for %s", alg)
		}
		pk, err := primitives.B64Decode(exp.PublicKey)
		if err != nil {
			t.Fatalf("decode public key: %v", err)
		}
		sk, err := primitives.B64Decode(exp.PrivateKey)
		if err != nil {
			t.Fatalf("decode private key: %v", err)
		}
		if err := dest.Import(ctx, alg, pk, sk); err != nil {
			t.Fatalf("Import %s: %v", alg, err)
		}
	}

	destPrimaryPK, err := dest.PublicKey(kem.Primary)
	if err != nil {
		t.Fatalf("dest PublicKey: %v", err)
	}
	env, err := source.EncryptFor(ctx, destPrimaryPK, "migrated message")
	if err != nil {
		t.Fatalf("EncryptFor: %v", err)
	}
	if got := dest.DecryptForCurrentUser(ctx, env, ""); got != "migrated message" {
		t.Fatalf("dest decrypt = %q, want %q", got, "migrated message")
	}
}

// TestEndToEndPartialFanOutFailure mirrors a mixed recipient set where
// one participant's stored key carries the legacy KYBER header: the valid
// recipients still get envelopes and the incompatible one is reported as a
// failure rather than aborting the whole fan-out.
func TestEndToEndPartialFanOutFailure(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{AllowNearSizePadding: true}

	alice := engine.New(store.NewMemStore(), cfg, nil)
	if err := alice.Init(ctx); err != nil {
		t.Fatalf("alice Init: %v", err)
	}
	bob := engine.New(store.NewMemStore(), cfg, nil)
	if err := bob.Init(ctx); err != nil {
		t.Fatalf("bob Init: %v", err)
	}
	alicePK, err := alice.PublicKey(kem.Primary)
	if err != nil {
		t.Fatalf("alice PublicKey: %v", err)
	}
	bobPK, err := bob.PublicKey(kem.Legacy)
	if err != nil {
		t.Fatalf("bob PublicKey: %v", err)
	}

	legacyHeaderKey := append([]byte("KYBER"), make([]byte, 80)...)
	dir := fanout.NewStaticDirectory()
	dir.SetConversation("conv-2", map[string]string{
		"alice": alicePK,
		"bob":   bobPK,
		"carol": primitives.B64Encode(legacyHeaderKey),
	})

	result, err := alice.EncryptForConversation(ctx, dir, "conv-2", "partial fan-out")
	if err != nil {
		t.Fatalf("EncryptForConversation: %v", err)
	}
	if len(result.Envelopes) != 2 {
		t.Fatalf("got %d envelopes, want 2", len(result.Envelopes))
	}
	if len(result.Failures) != 1 || result.Failures[0].RecipientID != "carol" {
		t.Fatalf("expected exactly one failure for carol, got %+v", result.Failures)
	}
}

