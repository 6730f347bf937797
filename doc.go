// Package pqengine provides client-side post-quantum end-to-end encryption
// for a messaging application: per-recipient envelope encryption sealed
// with ML-KEM (NIST FIPS 203), no session state and no handshake.
//
// # Quick Start
//
//	import (
//		"context"
//
//		"github.com/qryptchat/pq-engine/internal/config"
//		"github.com/qryptchat/pq-engine/pkg/engine"
//		"github.com/qryptchat/pq-engine/pkg/kem"
//		"github.com/qryptchat/pq-engine/pkg/vault/store"
//	)
//
//	s, _ := store.NewFileStore("/var/lib/qryptchat")
//	e := engine.New(s, *config.Load(), nil)
//	_ = e.Init(context.Background())
//
//	recipientPK, _ := e.PublicKey(kem.Primary)
//	envelope, _ := e.EncryptFor(context.Background(), recipientPK, "hello")
//	plaintext := e.DecryptForCurrentUser(context.Background(), envelope, "")
//
// For sending one message to every participant of a conversation, see
// pkg/engine's EncryptForConversation, which fans the plaintext out through
// a ParticipantDirectory and returns one envelope per recipient plus a
// per-recipient failure ledger.
//
// # Package Structure
//
//   - pkg/primitives: AEAD (ChaCha20-Poly1305), HKDF-SHA256 KDF, secure
//     random, base64, and zeroization helpers
//   - pkg/kem: ML-KEM-1024 (Primary) / ML-KEM-768 (Legacy) adapter
//   - pkg/vault: durable per-algorithm key-pair storage with init/wipe/
//     import/export lifecycle
//   - pkg/pubkey: public-key hygiene (size normalization, legacy-header
//     rejection, structural sanity checks)
//   - pkg/envelope: the versioned wire envelope codec, with legacy field
//     aliases and deprecated-algorithm detection
//   - pkg/cipher: single-recipient encrypt/decrypt
//   - pkg/fanout: multi-recipient fan-out with a bounded worker pool
//   - pkg/metadata: JSON metadata object encryption built on pkg/fanout
//   - pkg/engine: the mutex-guarded facade tying the above together
//   - internal/qerrors: the typed error-kind taxonomy shared by every
//     package above
//   - internal/obslog: structured logging, never logging key material,
//     shared secrets, or plaintext
//   - internal/config: environment-driven configuration (vault directory,
//     log level/format, the near-size-padding feature flag)
//
// # Security Properties
//
//   - Post-quantum key encapsulation: ML-KEM-1024 (NIST Category 5) as the
//     default algorithm, with ML-KEM-768 (NIST Category 3) retained for
//     decrypting envelopes from not-yet-rotated legacy senders
//   - Authenticated encryption: ChaCha20-Poly1305, one fresh random nonce
//     per envelope
//   - Per-message key freshness: each envelope encapsulates a fresh shared
//     secret; there is no persistent session key. Envelopes are sealed to
//     the recipient's long-term key pair, so there is no forward secrecy:
//     whoever holds that private key can open every envelope sealed to it
//   - No plaintext or key material ever crosses a log line
//
// # Testing
//
//	go test ./...                                       # all unit tests
//	go test ./test/integration/...                       # end-to-end flows
//	go test -fuzz=FuzzEnvelopeDecode ./test/fuzz/        # fuzz the codec
//	go test -run TestKAT ./pkg/primitives                # known-answer tests
//	go test -bench=. ./test/benchmark                    # benchmarks
//
// # References
//
//   - NIST FIPS 203: Module-Lattice-Based Key-Encapsulation Mechanism Standard
//   - RFC 8439: ChaCha20 and Poly1305 for IETF Protocols
//   - RFC 5869: HMAC-based Extract-and-Expand Key Derivation Function (HKDF)
package pqengine
