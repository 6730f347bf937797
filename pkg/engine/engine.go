// Package engine provides the explicit engine value the Design Notes call
// for: a first-class struct with init/wipe/import lifecycle and its own
// key state, replacing the source's process-wide singleton. It wires
// together the Key Vault (C3), Public-Key Hygiene (C4), the Single-
// Recipient Cipher (C6), Multi-Recipient Fan-Out (C7), and the Metadata
// Encryptor (C8) behind one mutex-guarded facade, grounded on the
// teacher's pkg/tunnel/pool.go mutex-guarded shared-state pattern.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/qryptchat/pq-engine/internal/config"
	"github.com/qryptchat/pq-engine/internal/obslog"
	"github.com/qryptchat/pq-engine/pkg/cipher"
	"github.com/qryptchat/pq-engine/pkg/fanout"
	"github.com/qryptchat/pq-engine/pkg/kem"
	"github.com/qryptchat/pq-engine/pkg/metadata"
	"github.com/qryptchat/pq-engine/pkg/vault"
)

// Engine is a per-instance value owning one UserKeyState and exposing the
// full public API (spec §6). Concurrent callers share one mutex around
// init, wipe, import, and the public_key/private_key read paths; encrypt
// and decrypt calls proceed without holding the engine lock once they have
// read the key material they need, so fan-out can parallelize freely.
type Engine struct {
	cfg config.Config
	log *obslog.Logger

	mu sync.Mutex
	v  *vault.Vault
}

// New constructs an Engine backed by store, using cfg for the near-size
// padding policy and log for structural/diagnostic logging.
func New(s vault.Store, cfg config.Config, log *obslog.Logger) *Engine {
	if log == nil {
		log = obslog.Null()
	}
	return &Engine{
		cfg: cfg,
		log: log.Named("engine"),
		v:   vault.New(s, log),
	}
}

// Init loads or generates both key pairs. Idempotent and safe for
// concurrent callers.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.v.Init(ctx)
}

// Wipe zeroizes and deletes all durable key state.
func (e *Engine) Wipe(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.v.Wipe(ctx)
}

// Import replaces the key pair for alg and persists it (explicit
// rotation/restore path).
func (e *Engine) Import(ctx context.Context, alg kem.Algorithm, pk, sk []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.v.Import(ctx, alg, pk, sk)
}

// PublicKey returns the base64 public key for alg, for sharing with the
// Participant Directory.
func (e *Engine) PublicKey(alg kem.Algorithm) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.v.PublicKey(alg)
}

// ExportAll returns a backup export of both key pairs.
func (e *Engine) ExportAll() (map[string]vault.Export, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.v.ExportAll()
}

// AlgorithmInfo reports the key-pair age for one algorithm, for rotation
// scheduling decisions (supplemented feature, spec.md §9 does not define a
// policy, only the import() mechanism).
type AlgorithmInfo struct {
	Algorithm kem.Algorithm
	Age       time.Duration
}

// AlgorithmInfoAll returns the current age of both resident key pairs.
func (e *Engine) AlgorithmInfoAll() ([]AlgorithmInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]AlgorithmInfo, 0, 2)
	for _, alg := range []kem.Algorithm{kem.Primary, kem.Legacy} {
		kp, err := e.v.KeyPair(alg)
		if err != nil {
			return nil, err
		}
		out = append(out, AlgorithmInfo{Algorithm: alg, Age: kp.Age()})
	}
	return out, nil
}

// ShouldRotate reports whether alg's key pair is older than maxAge.
func (e *Engine) ShouldRotate(alg kem.Algorithm, maxAge time.Duration) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kp, err := e.v.KeyPair(alg)
	if err != nil {
		return false, err
	}
	return kp.ShouldRotate(maxAge), nil
}

// EncryptForConversation fans plaintext out to a conversation's
// participants (C7), without holding the engine lock across the parallel
// per-recipient work.
func (e *Engine) EncryptForConversation(ctx context.Context, dir fanout.ParticipantDirectory, conversationID, plaintext string) (fanout.Result, error) {
	return fanout.EncryptForConversation(ctx, dir, conversationID, plaintext,
		fanout.WithNearSizePadding(e.cfg.AllowNearSizePadding), fanout.WithLogger(e.log))
}

// EncryptForRecipients fans plaintext out to an explicit recipient set (C7).
func (e *Engine) EncryptForRecipients(ctx context.Context, dir fanout.ParticipantDirectory, plaintext string, recipientIDs []string) (fanout.Result, error) {
	return fanout.EncryptForRecipients(ctx, dir, plaintext, recipientIDs,
		fanout.WithNearSizePadding(e.cfg.AllowNearSizePadding), fanout.WithLogger(e.log))
}

// DecryptForCurrentUser decrypts an envelope addressed to this engine's
// resident keys (C6 via C7's thin wrapper).
func (e *Engine) DecryptForCurrentUser(ctx context.Context, envelopeStr, senderPKB64 string) string {
	e.mu.Lock()
	v := e.v
	e.mu.Unlock()
	return fanout.DecryptForCurrentUser(ctx, envelopeStr, senderPKB64, v, e.log)
}

// EncryptMetadataForConversation serializes and fans out a structured
// metadata object (C8).
func (e *Engine) EncryptMetadataForConversation(ctx context.Context, dir fanout.ParticipantDirectory, conversationID string, obj interface{}) (fanout.Result, error) {
	return metadata.EncryptForConversation(ctx, dir, conversationID, obj,
		fanout.WithNearSizePadding(e.cfg.AllowNearSizePadding), fanout.WithLogger(e.log))
}

// DecryptMetadata decrypts and JSON-parses a metadata envelope into out.
func (e *Engine) DecryptMetadata(ctx context.Context, envelopeStr, senderPKB64 string, out interface{}) error {
	e.mu.Lock()
	v := e.v
	e.mu.Unlock()
	return metadata.Decrypt(ctx, envelopeStr, senderPKB64, v, out)
}

// EncryptFor is a convenience single-recipient path (spec §4.6), bypassing
// the Participant Directory entirely when the caller already has the
// recipient's public key.
func (e *Engine) EncryptFor(ctx context.Context, recipientPKB64, plaintext string) (string, error) {
	return cipher.EncryptFor(ctx, recipientPKB64, plaintext, e.cfg.AllowNearSizePadding, e.log)
}
