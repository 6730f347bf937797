package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/qryptchat/pq-engine/internal/config"
	"github.com/qryptchat/pq-engine/pkg/engine"
	"github.com/qryptchat/pq-engine/pkg/fanout"
	"github.com/qryptchat/pq-engine/pkg/kem"
	"github.com/qryptchat/pq-engine/pkg/primitives"
	"github.com/qryptchat/pq-engine/pkg/vault/store"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := config.Config{AllowNearSizePadding: true}
	e := engine.New(store.NewMemStore(), cfg, nil)
	if err := e.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return e
}

func TestEngineEncryptForRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	pk, err := e.PublicKey(kem.Primary)
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}

	env, err := e.EncryptFor(context.Background(), pk, "hello")
	if err != nil {
		t.Fatalf("EncryptFor: %v", err)
	}

	got := e.DecryptForCurrentUser(context.Background(), env, "")
	if got != "hello" {
		t.Fatalf("DecryptForCurrentUser = %q, want %q", got, "hello")
	}
}

func TestEngineFanOutAndMetadataRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	pk, err := e.PublicKey(kem.Primary)
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}

	dir := fanout.NewStaticDirectory()
	dir.SetConversation("conv-1", map[string]string{"self": pk})

	type meta struct {
		Filename string `json:"filename"`
	}
	result, err := e.EncryptMetadataForConversation(ctx, dir, "conv-1", meta{Filename: "x.pdf"})
	if err != nil {
		t.Fatalf("EncryptMetadataForConversation: %v", err)
	}

	var out meta
	if err := e.DecryptMetadata(ctx, result.Envelopes["self"], "", &out); err != nil {
		t.Fatalf("DecryptMetadata: %v", err)
	}
	if out.Filename != "x.pdf" {
		t.Fatalf("Filename = %q, want x.pdf", out.Filename)
	}
}

func TestEngineExportWipeImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	before, err := e.PublicKey(kem.Primary)
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}

	exported, err := e.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}

	if err := e.Wipe(ctx); err != nil {
		t.Fatalf("Wipe: %v", err)
	}

	for slot, exp := range exported {
		alg, ok := kem.ParseAlgorithm(exp.Algorithm)
		if !ok {
			t.Fatalf("unparseable algorithm for slot %s: %q", slot, exp.Algorithm)
		}
		pk, err := primitives.B64Decode(exp.PublicKey)
		if err != nil {
			t.Fatalf("decode exported public key: %v", err)
		}
		sk, err := primitives.B64Decode(exp.PrivateKey)
		if err != nil {
			t.Fatalf("decode exported private key: %v", err)
		}
		if err := e.Import(ctx, alg, pk, sk); err != nil {
			t.Fatalf("Import(%v): %v", alg, err)
		}
	}

	after, err := e.PublicKey(kem.Primary)
	if err != nil {
		t.Fatalf("PublicKey after reimport: %v", err)
	}
	if before != after {
		t.Fatal("re-imported primary public key differs from the exported one")
	}
}

func TestEngineShouldRotate(t *testing.T) {
	e := newTestEngine(t)

	rotate, err := e.ShouldRotate(kem.Primary, time.Nanosecond)
	if err != nil {
		t.Fatalf("ShouldRotate: %v", err)
	}
	if !rotate {
		t.Fatal("expected ShouldRotate to report true for a near-zero max age")
	}

	rotate, err = e.ShouldRotate(kem.Primary, 24*time.Hour)
	if err != nil {
		t.Fatalf("ShouldRotate: %v", err)
	}
	if rotate {
		t.Fatal("expected ShouldRotate to report false for a freshly generated key")
	}
}
