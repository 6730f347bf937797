// Package pubkey implements Public-Key Hygiene (C4): tolerant parsing of
// public keys arriving as base64 from an untrusted Participant Directory,
// so small protocol drift (padding mistakes, a legacy textual header) does
// not silently corrupt ciphertexts. Grounded on the teacher's structural
// validity checks in pkg/crypto/mlkem.go (which rejects malformed key
// lengths before ever touching circl), generalized here into the full
// header-strip / near-size / structural-validity pipeline the spec
// requires across both KEM parameter sets.
package pubkey

import (
	"bytes"

	"github.com/qryptchat/pq-engine/internal/obslog"
	"github.com/qryptchat/pq-engine/internal/qerrors"
	"github.com/qryptchat/pq-engine/pkg/kem"
	"github.com/qryptchat/pq-engine/pkg/primitives"
)

// legacyHeader is the ASCII textual header ("KYBER") a pre-migration key
// format began with. Any candidate starting with it is unrepairable.
var legacyHeader = []byte{75, 89, 66, 69, 82} // "KYBER"

// nearSizeTolerance is the maximum byte-length delta §4.4 step 4 will
// pad or truncate across, before giving up and treating the key as
// structurally invalid.
const nearSizeTolerance = 32

// structuralZeroThreshold is the number of zero bytes, out of the first
// structuralSampleSize, that marks a key as corrupted rather than merely
// unlucky.
const (
	structuralSampleSize   = 50
	structuralZeroThreshold = 40
)

// Normalize runs the full hygiene procedure over a base64 candidate and
// returns usable key bytes plus the algorithm they were normalized to.
//
// allowNearSizePadding gates step 4 (near-size normalization): the spec's
// tolerant default is true, but it is unsound in general — padding a key
// that was merely truncated succeeds pseudo-randomly and no peer can ever
// decapsulate against it. Callers that can afford to reject any non-exact
// size should set it false.
func Normalize(candidate string, allowNearSizePadding bool, log *obslog.Logger) ([]byte, kem.Algorithm, error) {
	if log == nil {
		log = obslog.Null()
	}

	raw, err := primitives.B64Decode(candidate)
	if err != nil {
		return nil, 0, qerrors.Wrap(qerrors.KindInvalidPublicKey, "pubkey.Normalize", err)
	}

	if bytes.HasPrefix(raw, legacyHeader) {
		log.Warn("pubkey: rejected legacy KYBER-header key", nil)
		return nil, 0, qerrors.New(qerrors.KindIncompatibleKey, "pubkey.Normalize", "legacy textual key header is unrepairable")
	}

	normalized, alg, ok := fitToAlgorithm(raw, allowNearSizePadding, log)
	if !ok {
		return nil, 0, qerrors.New(qerrors.KindInvalidPublicKey, "pubkey.Normalize", "key length does not match any known algorithm")
	}

	if isStructurallyInvalid(normalized) {
		return nil, 0, qerrors.New(qerrors.KindInvalidPublicKey, "pubkey.Normalize", "key fails structural validity heuristic")
	}

	return normalized, alg, nil
}

// fitToAlgorithm implements §4.4 steps 4 and 6: exact-size match first,
// then near-size pad/truncate to whichever algorithm's size is closer.
func fitToAlgorithm(raw []byte, allowNearSizePadding bool, log *obslog.Logger) ([]byte, kem.Algorithm, bool) {
	algs := []kem.Algorithm{kem.Primary, kem.Legacy}

	for _, alg := range algs {
		if len(raw) == alg.PublicKeySize() {
			return raw, alg, true
		}
	}

	if !allowNearSizePadding {
		return nil, 0, false
	}

	bestAlg := algs[0]
	bestDelta := abs(len(raw) - bestAlg.PublicKeySize())
	for _, alg := range algs[1:] {
		if d := abs(len(raw) - alg.PublicKeySize()); d < bestDelta {
			bestAlg, bestDelta = alg, d
		}
	}
	if bestDelta > nearSizeTolerance {
		return nil, 0, false
	}

	log.Warn("pubkey: near-size key padding triggered", obslog.Fields{
		"algorithm": bestAlg.String(),
		"delta":     bestDelta,
	})
	return resize(raw, bestAlg.PublicKeySize()), bestAlg, true
}

// resize pads with trailing zeros or truncates raw to exactly n bytes.
func resize(raw []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, raw)
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// isStructurallyInvalid applies the corruption heuristic: too many zero
// bytes in the first structuralSampleSize bytes suggests a truncated or
// zero-filled buffer rather than real key material.
func isStructurallyInvalid(key []byte) bool {
	n := structuralSampleSize
	if len(key) < n {
		n = len(key)
	}
	zeros := 0
	for _, b := range key[:n] {
		if b == 0 {
			zeros++
		}
	}
	return zeros >= structuralZeroThreshold
}
