// Package kem implements the uniform adapter (C2) over the two ML-KEM
// parameter sets the engine supports in parallel: Primary (ML-KEM-1024,
// NIST Category 5) and Legacy (ML-KEM-768, NIST Category 3). It binds to
// github.com/cloudflare/circl, the same ML-KEM library the teacher's
// pkg/crypto/mlkem.go wraps for a single parameter set — generalized here
// to two, selected by Algorithm, and with the teacher's classical X25519
// cascade (pkg/chkem) dropped: the spec defines a pure post-quantum KEM,
// not a hybrid cascade (see DESIGN.md).
package kem

import (
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"

	"github.com/qryptchat/pq-engine/internal/qerrors"
	"github.com/qryptchat/pq-engine/pkg/primitives"
)

// Algorithm identifies one of the two supported KEM parameter sets.
type Algorithm int

const (
	// Primary is ML-KEM-1024 (NIST Category 5 / ~256-bit post-quantum security).
	Primary Algorithm = iota
	// Legacy is ML-KEM-768 (NIST Category 3), kept for recipients who have
	// not yet received a Primary public key.
	Legacy
)

// String returns the canonical algorithm tag used on the wire (envelope
// "alg" field) and in logs.
func (a Algorithm) String() string {
	switch a {
	case Primary:
		return "Primary"
	case Legacy:
		return "Legacy"
	default:
		return "Unknown"
	}
}

// Name returns the human-readable parameter-set name.
func (a Algorithm) Name() string {
	switch a {
	case Primary:
		return "ML-KEM-1024"
	case Legacy:
		return "ML-KEM-768"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a wire "alg" string to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch s {
	case "Primary", "primary", "ML-KEM-1024", "mlkem1024":
		return Primary, true
	case "Legacy", "legacy", "ML-KEM-768", "mlkem768":
		return Legacy, true
	default:
		return 0, false
	}
}

// scheme is the minimal surface this package needs from a concrete ML-KEM
// parameter set; mlkem1024Scheme and mlkem768Scheme implement it by
// wrapping the circl package functions directly, mirroring the teacher's
// pkg/crypto/mlkem.go wrapper style.
type scheme interface {
	pkSize() int
	skSize() int
	ctSize() int
	generate() (pk, sk []byte, err error)
	encapsulate(pk []byte) (ct, ss []byte, err error)
	decapsulate(sk, ct []byte) (ss []byte, err error)
}

// SharedSecretSize is the size in bytes of the shared secret produced by
// either parameter set.
const SharedSecretSize = 32

func schemeFor(alg Algorithm) scheme {
	switch alg {
	case Legacy:
		return mlkem768Scheme{}
	default:
		return mlkem1024Scheme{}
	}
}

// PublicKeySize returns the encapsulation-key size for alg.
func (a Algorithm) PublicKeySize() int { return schemeFor(a).pkSize() }

// PrivateKeySize returns the decapsulation-key size for alg.
func (a Algorithm) PrivateKeySize() int { return schemeFor(a).skSize() }

// CiphertextSize returns the KEM ciphertext size for alg.
func (a Algorithm) CiphertextSize() int { return schemeFor(a).ctSize() }

// GenerateKeyPair generates a fresh key pair for alg.
func GenerateKeyPair(alg Algorithm) (pk, sk []byte, err error) {
	pk, sk, err = schemeFor(alg).generate()
	if err != nil {
		return nil, nil, qerrors.Wrap(qerrors.KindKeyGeneration, "kem.GenerateKeyPair", err)
	}
	return pk, sk, nil
}

// Encapsulate runs encapsulation against a structurally valid public key of
// the given algorithm, returning the KEM ciphertext and the shared secret.
// Returns KindInvalidPublicKey if pk cannot be unpacked.
func Encapsulate(alg Algorithm, pk []byte) (ct, ss []byte, err error) {
	if len(pk) != alg.PublicKeySize() {
		return nil, nil, qerrors.New(qerrors.KindInvalidPublicKey, "kem.Encapsulate", "public key size mismatch")
	}
	ct, ss, err = schemeFor(alg).encapsulate(pk)
	if err != nil {
		return nil, nil, qerrors.Wrap(qerrors.KindInvalidPublicKey, "kem.Encapsulate", err)
	}
	return ct, ss, nil
}

// Decapsulate recovers the shared secret for a KEM ciphertext using sk.
//
// ML-KEM's Fujisaki-Okamoto transform provides implicit rejection: a
// malformed or mismatched ciphertext yields a pseudo-random shared secret
// rather than an error, so the subsequent AEAD open fails cleanly instead
// of leaking a decapsulation oracle. Decapsulate only returns an error when
// the inputs are structurally impossible to process (wrong sizes).
func Decapsulate(alg Algorithm, sk, ct []byte) ([]byte, error) {
	if len(sk) != alg.PrivateKeySize() {
		return nil, qerrors.New(qerrors.KindInvalidKey, "kem.Decapsulate", "private key size mismatch")
	}
	if len(ct) != alg.CiphertextSize() {
		return nil, qerrors.New(qerrors.KindDecryption, "kem.Decapsulate", "ciphertext size mismatch")
	}
	ss, err := schemeFor(alg).decapsulate(sk, ct)
	if err != nil {
		return nil, qerrors.Wrap(qerrors.KindDecryption, "kem.Decapsulate", err)
	}
	return ss, nil
}

// --- ML-KEM-1024 (Primary) ---

type mlkem1024Scheme struct{}

func (mlkem1024Scheme) pkSize() int { return mlkem1024.PublicKeySize }
func (mlkem1024Scheme) skSize() int { return mlkem1024.PrivateKeySize }
func (mlkem1024Scheme) ctSize() int { return mlkem1024.CiphertextSize }

func (mlkem1024Scheme) generate() (pk, sk []byte, err error) {
	pub, priv, err := mlkem1024.GenerateKeyPair(primitives.Reader)
	if err != nil {
		return nil, nil, err
	}
	pkBuf := make([]byte, mlkem1024.PublicKeySize)
	skBuf := make([]byte, mlkem1024.PrivateKeySize)
	pub.Pack(pkBuf)
	priv.Pack(skBuf)
	return pkBuf, skBuf, nil
}

func (mlkem1024Scheme) encapsulate(pk []byte) (ct, ss []byte, err error) {
	pub := new(mlkem1024.PublicKey)
	if err := pub.Unpack(pk); err != nil {
		return nil, nil, err
	}

	seed, err := primitives.RandomBytes(mlkem1024.EncapsulationSeedSize)
	if err != nil {
		return nil, nil, err
	}

	ct = make([]byte, mlkem1024.CiphertextSize)
	ss = make([]byte, mlkem1024.SharedKeySize)
	pub.EncapsulateTo(ct, ss, seed)
	return ct, ss, nil
}

func (mlkem1024Scheme) decapsulate(sk, ct []byte) ([]byte, error) {
	priv := new(mlkem1024.PrivateKey)
	if err := priv.Unpack(sk); err != nil {
		return nil, err
	}
	ss := make([]byte, mlkem1024.SharedKeySize)
	priv.DecapsulateTo(ss, ct)
	return ss, nil
}

// --- ML-KEM-768 (Legacy) ---

type mlkem768Scheme struct{}

func (mlkem768Scheme) pkSize() int { return mlkem768.PublicKeySize }
func (mlkem768Scheme) skSize() int { return mlkem768.PrivateKeySize }
func (mlkem768Scheme) ctSize() int { return mlkem768.CiphertextSize }

func (mlkem768Scheme) generate() (pk, sk []byte, err error) {
	pub, priv, err := mlkem768.GenerateKeyPair(primitives.Reader)
	if err != nil {
		return nil, nil, err
	}
	pkBuf := make([]byte, mlkem768.PublicKeySize)
	skBuf := make([]byte, mlkem768.PrivateKeySize)
	pub.Pack(pkBuf)
	priv.Pack(skBuf)
	return pkBuf, skBuf, nil
}

func (mlkem768Scheme) encapsulate(pk []byte) (ct, ss []byte, err error) {
	pub := new(mlkem768.PublicKey)
	if err := pub.Unpack(pk); err != nil {
		return nil, nil, err
	}

	seed, err := primitives.RandomBytes(mlkem768.EncapsulationSeedSize)
	if err != nil {
		return nil, nil, err
	}

	ct = make([]byte, mlkem768.CiphertextSize)
	ss = make([]byte, mlkem768.SharedKeySize)
	pub.EncapsulateTo(ct, ss, seed)
	return ct, ss, nil
}

func (mlkem768Scheme) decapsulate(sk, ct []byte) ([]byte, error) {
	priv := new(mlkem768.PrivateKey)
	if err := priv.Unpack(sk); err != nil {
		return nil, err
	}
	ss := make([]byte, mlkem768.SharedKeySize)
	priv.DecapsulateTo(ss, ct)
	return ss, nil
}
