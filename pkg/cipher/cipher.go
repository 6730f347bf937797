// Package cipher implements the Single-Recipient Cipher (C6):
// encrypt_for/decrypt over one recipient's ML-KEM public or private key.
// Grounded on the teacher's pkg/crypto/post.go encrypt/decrypt pipeline
// (KEM encapsulate → HKDF → AEAD seal, in that order, zeroizing derived
// key material on every path) but adapted from the teacher's session-tunnel
// framing to the spec's single, stateless, per-message envelope.
package cipher

import (
	"context"
	"time"

	"github.com/qryptchat/pq-engine/internal/obslog"
	"github.com/qryptchat/pq-engine/internal/qerrors"
	"github.com/qryptchat/pq-engine/pkg/envelope"
	"github.com/qryptchat/pq-engine/pkg/kem"
	"github.com/qryptchat/pq-engine/pkg/primitives"
	"github.com/qryptchat/pq-engine/pkg/pubkey"
)

// hkdfContext is the fixed HKDF info-string context for AEAD key
// derivation. Must not vary per call: the spec's critical AAD rule extends
// to this context string — it is not conversation-specific.
const hkdfContext = "ChaCha20-Poly1305"

// Stable user-facing decryption outcome strings (spec §6, §4.6).
const (
	PlaceholderFormatError          = "[Encrypted message - format error]"
	PlaceholderLegacyUnsupported    = "[Legacy encrypted message - please delete]"
	PlaceholderDecryptionFailed     = "[Encrypted message - decryption failed]"
	PlaceholderNoSupportedAlgorithm = "[Encrypted message - could not decrypt with any supported algorithm]"
)

// PrivateKeyLookup resolves the decapsulation key for an algorithm. It is
// satisfied by *vault.Vault; kept as an interface here so pkg/cipher does
// not import pkg/vault, avoiding a dependency cycle risk and keeping the
// cipher testable against a fake key source.
type PrivateKeyLookup interface {
	PrivateKey(alg kem.Algorithm) ([]byte, error)
}

// EncryptFor runs the full C6 encrypt procedure against recipientPKB64.
func EncryptFor(ctx context.Context, recipientPKB64, plaintext string, allowNearSizePadding bool, log *obslog.Logger) (result string, err error) {
	if log == nil {
		log = obslog.Null()
	}

	_, endSpan := obslog.GetTracer().StartSpan(ctx, "cipher.EncryptFor", map[string]interface{}{
		"plaintext_bytes": len(plaintext),
	})
	defer func() { endSpan(err) }()

	pk, alg, err := pubkey.Normalize(recipientPKB64, allowNearSizePadding, log)
	if err != nil {
		return "", err
	}

	kemCT, ss, err := kem.Encapsulate(alg, pk)
	if err != nil {
		return "", err
	}
	defer primitives.SecureZero(ss)

	salt, err := primitives.RandomBytes(primitives.SaltSize)
	if err != nil {
		return "", err
	}
	key, err := primitives.DeriveKey(ss, salt, hkdfContext, primitives.KeySize)
	if err != nil {
		return "", err
	}
	defer primitives.SecureZero(key)

	nonce, err := primitives.RandomBytes(primitives.NonceSize)
	if err != nil {
		return "", err
	}

	ct, err := primitives.AEADSeal(key, nonce, []byte(plaintext), nil)
	if err != nil {
		return "", qerrors.Wrap(qerrors.KindEncryption, "cipher.EncryptFor", err)
	}

	result, err = envelope.Encode(alg.String(), kemCT, salt, nonce, ct, time.Now().UnixMilli())
	return result, err
}

// Decrypt runs the full C6 decrypt procedure. It never returns a Go error
// to the caller for decrypt-path failures (spec §7 policy 1): those map to
// one of the Placeholder* strings instead. envelopeStr itself is returned
// unchanged when it is not ciphertext at all (mixed plaintext histories).
func Decrypt(ctx context.Context, envelopeStr string, keys PrivateKeyLookup, log *obslog.Logger) string {
	if log == nil {
		log = obslog.Null()
	}

	_, endSpan := obslog.GetTracer().StartSpan(ctx, "cipher.Decrypt", map[string]interface{}{
		"envelope_bytes": len(envelopeStr),
	})
	var spanErr error
	defer func() { endSpan(spanErr) }()

	env, err := envelope.Decode(envelopeStr)
	if kind, ok := qerrors.As(err); ok {
		switch kind {
		case qerrors.KindNotCiphertext:
			return envelopeStr
		case qerrors.KindFormatError:
			spanErr = err
			return PlaceholderFormatError
		case qerrors.KindLegacyUnsupported:
			spanErr = err
			return PlaceholderLegacyUnsupported
		case qerrors.KindUnknownAlg:
			// fall through: try both algorithms below.
		default:
			spanErr = err
			return PlaceholderFormatError
		}
	} else if err != nil {
		spanErr = err
		return PlaceholderFormatError
	}

	if env.Alg == "" {
		for _, alg := range []kem.Algorithm{kem.Primary, kem.Legacy} {
			if pt, ok := tryDecrypt(env, alg, keys, log); ok {
				return pt
			}
		}
		spanErr = qerrors.New(qerrors.KindUnknownAlg, "cipher.Decrypt", "no supported algorithm decrypted the envelope")
		return PlaceholderNoSupportedAlgorithm
	}

	alg, ok := kem.ParseAlgorithm(env.Alg)
	if !ok {
		spanErr = qerrors.New(qerrors.KindUnknownAlg, "cipher.Decrypt", "unrecognized algorithm tag")
		return PlaceholderNoSupportedAlgorithm
	}
	if pt, ok := tryDecrypt(env, alg, keys, log); ok {
		return pt
	}
	spanErr = qerrors.New(qerrors.KindDecryption, "cipher.Decrypt", "decapsulation or AEAD open failed")
	return PlaceholderDecryptionFailed
}

// tryDecrypt attempts decapsulation and AEAD open for one algorithm,
// reporting ok=false on any recoverable failure so the caller can fall
// back to the next algorithm (the UnknownAlg path) without leaking a Go
// error out of the decrypt-path boundary.
func tryDecrypt(env envelope.Envelope, alg kem.Algorithm, keys PrivateKeyLookup, log *obslog.Logger) (string, bool) {
	sk, err := keys.PrivateKey(alg)
	if err != nil {
		return "", false
	}
	sk = normalizePrivateKeySize(sk, alg)

	ss, err := kem.Decapsulate(alg, sk, env.KemCT)
	if err != nil {
		log.Debug("cipher: decapsulation failed", obslog.Fields{"algorithm": alg.String()})
		return "", false
	}
	defer primitives.SecureZero(ss)

	key, err := primitives.DeriveKey(ss, env.Salt, hkdfContext, primitives.KeySize)
	if err != nil {
		return "", false
	}
	defer primitives.SecureZero(key)

	pt, err := primitives.AEADOpen(key, env.Nonce, env.CipherText, nil)
	if err != nil {
		log.Debug("cipher: AEAD open failed", obslog.Fields{"algorithm": alg.String()})
		return "", false
	}
	return string(pt), true
}

// normalizePrivateKeySize mirrors C4's pad/truncate tolerance for private
// keys (spec §4.6 step 5): a private key of unexpected length is resized
// to alg.PrivateKeySize() rather than rejected outright, matching the
// decrypt-path's tolerant posture toward minor storage drift.
func normalizePrivateKeySize(sk []byte, alg kem.Algorithm) []byte {
	want := alg.PrivateKeySize()
	if len(sk) == want {
		return sk
	}
	out := make([]byte, want)
	copy(out, sk)
	return out
}
