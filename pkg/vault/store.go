// Package vault implements the Key Vault (C3): the sole owner of the
// user's ML-KEM key pairs. Private key material never crosses the package
// boundary except as an opaque handle passed into pkg/cipher.
package vault

import "context"

// Store is the durable local storage contract (spec §6): an opaque
// key/value record store keyed by a stable string, the way a host
// application's keychain/async-storage layer looks from the engine's side.
// Two implementations ship in pkg/vault/store: FileStore and MemStore.
type Store interface {
	// Get returns the raw bytes stored under key, or ok=false if absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put persists value under key, overwriting any existing record.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes the record at key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Storage keys for the two key-pair slots, preserved from the historical
// naming spec §6 calls out explicitly.
const (
	StorageKeyPrimary = "qryptchat_pq_keypair"
	StorageKeyLegacy  = "qryptchat_pq_keypair_768"
)
