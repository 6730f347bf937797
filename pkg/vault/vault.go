package vault

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/qryptchat/pq-engine/internal/obslog"
	"github.com/qryptchat/pq-engine/internal/qerrors"
	"github.com/qryptchat/pq-engine/pkg/kem"
	"github.com/qryptchat/pq-engine/pkg/primitives"
)

// recordVersion is the on-disk schema version written into every KeyPair
// record. Bumped if the storage record shape ever changes.
const recordVersion = 1

// KeyPair is one ML-KEM key pair for a single Algorithm, as defined in
// spec.md §3. PublicKey and PrivateKey are raw key bytes, never a parsed
// circl type — pkg/kem packs/unpacks on demand.
type KeyPair struct {
	PublicKey  []byte
	PrivateKey []byte
	Algorithm  kem.Algorithm
	CreatedAt  time.Time
	Version    uint32
}

// Age returns how long ago the key pair was created.
func (kp KeyPair) Age() time.Duration {
	return time.Since(kp.CreatedAt)
}

// ShouldRotate reports whether the key pair is older than maxAge. The spec
// defines rotation as the import() operation but leaves scheduling to the
// caller; this is that scheduling helper.
func (kp KeyPair) ShouldRotate(maxAge time.Duration) bool {
	return kp.Age() >= maxAge
}

// wipe zeroizes the key pair's secret material in place.
func (kp *KeyPair) wipe() {
	primitives.SecureZero(kp.PrivateKey)
	primitives.SecureZero(kp.PublicKey)
}

// record is the JSON shape persisted to a Store, mirroring spec §6's
// "{public_key, private_key, algorithm, timestamp, version}" contract.
type record struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	Algorithm  string `json:"algorithm"`
	Timestamp  int64  `json:"timestamp"`
	Version    uint32 `json:"version"`
}

func (kp KeyPair) toRecord() record {
	return record{
		PublicKey:  primitives.B64Encode(kp.PublicKey),
		PrivateKey: primitives.B64Encode(kp.PrivateKey),
		Algorithm:  kp.Algorithm.String(),
		Timestamp:  kp.CreatedAt.Unix(),
		Version:    kp.Version,
	}
}

// fromRecord parses a stored record for the expected algorithm slot. A
// record whose Algorithm field does not match wantAlg is treated as absent
// per spec §6, returning ok=false so the caller regenerates the pair.
func fromRecord(data []byte, wantAlg kem.Algorithm, log *obslog.Logger) (KeyPair, bool) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Warn("vault: stored key record is not valid JSON, treating as absent",
			obslog.Fields{"algorithm": wantAlg.String()})
		return KeyPair{}, false
	}

	gotAlg, ok := kem.ParseAlgorithm(rec.Algorithm)
	if !ok || gotAlg != wantAlg {
		log.Warn("vault: stored key record algorithm mismatch, regenerating",
			obslog.Fields{"want": wantAlg.String(), "got": rec.Algorithm})
		return KeyPair{}, false
	}

	pk, err := primitives.B64Decode(rec.PublicKey)
	if err != nil {
		log.Warn("vault: stored public key is not valid base64, regenerating", obslog.Fields{"algorithm": wantAlg.String()})
		return KeyPair{}, false
	}
	sk, err := primitives.B64Decode(rec.PrivateKey)
	if err != nil {
		log.Warn("vault: stored private key is not valid base64, regenerating", obslog.Fields{"algorithm": wantAlg.String()})
		return KeyPair{}, false
	}
	if len(pk) != wantAlg.PublicKeySize() || len(sk) != wantAlg.PrivateKeySize() {
		log.Warn("vault: stored key record has wrong key size, regenerating", obslog.Fields{"algorithm": wantAlg.String()})
		return KeyPair{}, false
	}

	return KeyPair{
		PublicKey:  pk,
		PrivateKey: sk,
		Algorithm:  gotAlg,
		CreatedAt:  time.Unix(rec.Timestamp, 0).UTC(),
		Version:    rec.Version,
	}, true
}

// storageKeyFor maps an Algorithm to its durable storage key, preserving
// the historical names spec §6 calls out.
func storageKeyFor(alg kem.Algorithm) string {
	if alg == kem.Legacy {
		return StorageKeyLegacy
	}
	return StorageKeyPrimary
}

// Export is the b64 view of one key pair returned by ExportAll, matching
// spec §4.3's "{primary, legacy}" shape.
type Export struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	Algorithm  string `json:"algorithm"`
}

// Vault owns the UserKeyState: exactly one Primary and one Legacy KeyPair,
// per spec §3's "user owns exactly two KeyPairs simultaneously" invariant.
// Init is idempotent and safe against concurrent callers; subsequent
// operations assume single-threaded access to the key state (spec §4.3,
// §5) — pkg/engine is the component that adds a mutex around this for
// callers who need concurrent access.
type Vault struct {
	store Store
	log   *obslog.Logger

	mu      sync.Mutex
	primary *KeyPair
	legacy  *KeyPair
}

// New returns a Vault backed by store. Call Init before using it.
func New(s Store, log *obslog.Logger) *Vault {
	if log == nil {
		log = obslog.Null()
	}
	return &Vault{store: s, log: log.Named("vault")}
}

// Init loads both key pairs from durable storage; any missing or invalid
// pair is generated and persisted. Returns once both pairs are resident.
func (v *Vault) Init(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	primary, err := v.loadOrGenerate(ctx, kem.Primary)
	if err != nil {
		return err
	}
	legacy, err := v.loadOrGenerate(ctx, kem.Legacy)
	if err != nil {
		return err
	}

	v.primary = &primary
	v.legacy = &legacy
	return nil
}

func (v *Vault) loadOrGenerate(ctx context.Context, alg kem.Algorithm) (KeyPair, error) {
	key := storageKeyFor(alg)

	if data, ok, err := v.store.Get(ctx, key); err != nil {
		return KeyPair{}, qerrors.Wrap(qerrors.KindKeyStorage, "vault.Init", err)
	} else if ok {
		if kp, ok := fromRecord(data, alg, v.log); ok {
			return kp, nil
		}
	}

	pk, sk, err := kem.GenerateKeyPair(alg)
	if err != nil {
		return KeyPair{}, err
	}
	kp := KeyPair{
		PublicKey:  pk,
		PrivateKey: sk,
		Algorithm:  alg,
		CreatedAt:  time.Now().UTC(),
		Version:    recordVersion,
	}
	if err := v.persist(ctx, kp); err != nil {
		return KeyPair{}, err
	}
	v.log.Info("vault: generated new key pair", obslog.Fields{"algorithm": alg.String()})
	return kp, nil
}

func (v *Vault) persist(ctx context.Context, kp KeyPair) error {
	data, err := json.Marshal(kp.toRecord())
	if err != nil {
		return qerrors.Wrap(qerrors.KindKeyStorage, "vault.persist", err)
	}
	if err := v.store.Put(ctx, storageKeyFor(kp.Algorithm), data); err != nil {
		return qerrors.Wrap(qerrors.KindKeyStorage, "vault.persist", err)
	}
	return nil
}

func (v *Vault) slot(alg kem.Algorithm) **KeyPair {
	if alg == kem.Legacy {
		return &v.legacy
	}
	return &v.primary
}

// PublicKey returns a read-only base64 view of the public key for algorithm,
// for sharing with the Participant Directory.
func (v *Vault) PublicKey(alg kem.Algorithm) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	kp := *v.slot(alg)
	if kp == nil {
		return "", qerrors.New(qerrors.KindKeyStorage, "vault.PublicKey", "vault not initialized")
	}
	return primitives.B64Encode(kp.PublicKey), nil
}

// PrivateKey returns the raw private key handle for algorithm. Internal:
// never exposed to callers outside the engine/cipher packages.
func (v *Vault) PrivateKey(alg kem.Algorithm) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	kp := *v.slot(alg)
	if kp == nil {
		return nil, qerrors.New(qerrors.KindKeyStorage, "vault.PrivateKey", "vault not initialized")
	}
	return kp.PrivateKey, nil
}

// KeyPair returns a copy of the full key pair for algorithm, used by
// rotation-scheduling callers that need CreatedAt.
func (v *Vault) KeyPair(alg kem.Algorithm) (KeyPair, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	kp := *v.slot(alg)
	if kp == nil {
		return KeyPair{}, qerrors.New(qerrors.KindKeyStorage, "vault.KeyPair", "vault not initialized")
	}
	return *kp, nil
}

// ExportAll returns a b64 export of both key pairs, for backup.
func (v *Vault) ExportAll() (map[string]Export, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.primary == nil || v.legacy == nil {
		return nil, qerrors.New(qerrors.KindKeyStorage, "vault.ExportAll", "vault not initialized")
	}

	return map[string]Export{
		"primary": {
			PublicKey:  primitives.B64Encode(v.primary.PublicKey),
			PrivateKey: primitives.B64Encode(v.primary.PrivateKey),
			Algorithm:  v.primary.Algorithm.String(),
		},
		"legacy": {
			PublicKey:  primitives.B64Encode(v.legacy.PublicKey),
			PrivateKey: primitives.B64Encode(v.legacy.PrivateKey),
			Algorithm:  v.legacy.Algorithm.String(),
		},
	}, nil
}

// Import replaces the key pair for algorithm with (pk, sk) and persists it,
// for restore or explicit rotation.
func (v *Vault) Import(ctx context.Context, alg kem.Algorithm, pk, sk []byte) error {
	if len(pk) != alg.PublicKeySize() || len(sk) != alg.PrivateKeySize() {
		return qerrors.New(qerrors.KindInvalidKey, "vault.Import", "key size mismatch for algorithm")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	kp := KeyPair{
		PublicKey:  pk,
		PrivateKey: sk,
		Algorithm:  alg,
		CreatedAt:  time.Now().UTC(),
		Version:    recordVersion,
	}
	if err := v.persist(ctx, kp); err != nil {
		return err
	}

	slot := v.slot(alg)
	if *slot != nil {
		(*slot).wipe()
	}
	*slot = &kp
	v.log.Info("vault: imported key pair", obslog.Fields{"algorithm": alg.String()})
	return nil
}

// Wipe zeroizes in-memory copies, deletes durable entries, and clears the
// resident key state. A subsequent Init produces a fresh pair.
func (v *Vault) Wipe(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var firstErr error
	for _, alg := range []kem.Algorithm{kem.Primary, kem.Legacy} {
		if err := v.store.Delete(ctx, storageKeyFor(alg)); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if v.primary != nil {
		v.primary.wipe()
		v.primary = nil
	}
	if v.legacy != nil {
		v.legacy.wipe()
		v.legacy = nil
	}

	v.log.Info("vault: wiped", nil)
	if firstErr != nil {
		return qerrors.Wrap(qerrors.KindKeyStorage, "vault.Wipe", firstErr)
	}
	return nil
}
