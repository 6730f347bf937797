// Package envelope implements the Envelope Codec (C5): the canonical v3
// on-wire JSON record and its encode/decode dispatch rules. Bit-exact
// compatibility is mandatory — field name aliases on decode, short
// canonical names on encode — grounded on the teacher's pkg/protocol/codec.go
// dispatch structure (decode into one canonical struct, classify before
// use) but replacing its length-prefixed binary frame with JSON, since the
// spec's wire format is JSON, not a binary protocol.
package envelope

import (
	"encoding/json"
	"strings"

	"github.com/qryptchat/pq-engine/internal/qerrors"
	"github.com/qryptchat/pq-engine/pkg/primitives"
)

// Version is the only envelope version this codec understands.
const Version = 3

// Historical fallback algorithm tags, explicitly deprecated on decode.
const (
	fallbackAES    = "FALLBACK-AES"
	fallbackAESGCM = "FALLBACK-AES-GCM"
)

// UnknownAlgTag is the decode-time sentinel for "alg absent or unrecognized,
// but all other required fields present" — the caller tries both
// algorithms in order Primary, Legacy.
const UnknownAlgTag = ""

// Envelope is the canonical in-memory form of a v3 ciphertext record.
type Envelope struct {
	Version    int    // v
	Alg        string // alg: "Primary" | "Legacy" | UnknownAlgTag
	KemCT      []byte // kem
	Salt       []byte // s
	Nonce      []byte // n
	CipherText []byte // c
	SentAtMS   int64  // t
}

// wireEnvelope is the JSON shape emitted on encode: short canonical names
// only, per spec §6 ("on encode emit only the short canonical names").
type wireEnvelope struct {
	V    int    `json:"v"`
	Alg  string `json:"alg"`
	Kem  string `json:"kem"`
	Salt string `json:"s"`
	N    string `json:"n"`
	C    string `json:"c"`
	T    int64  `json:"t"`
}

// aliasEnvelope accepts every historical long field-name spelling in
// addition to the canonical short ones, for decode-side tolerance.
type aliasEnvelope struct {
	V             *int    `json:"v"`
	Alg           *string `json:"alg"`
	Algorithm     *string `json:"algorithm"`
	Kem           *string `json:"kem"`
	KemCiphertext *string `json:"kemCiphertext"`
	Salt          *string `json:"s"`
	SaltLong      *string `json:"salt"`
	N             *string `json:"n"`
	Nonce         *string `json:"nonce"`
	C             *string `json:"c"`
	Ciphertext    *string `json:"ciphertext"`
	T             *int64  `json:"t"`
}

func firstNonNilString(vals ...*string) (string, bool) {
	for _, v := range vals {
		if v != nil {
			return *v, true
		}
	}
	return "", false
}

// Encode produces the canonical wire string for an envelope.
func Encode(alg string, kemCT, salt, nonce, cipherText []byte, sentAtMS int64) (string, error) {
	w := wireEnvelope{
		V:    Version,
		Alg:  alg,
		Kem:  b64(kemCT),
		Salt: b64(salt),
		N:    b64(nonce),
		C:    b64(cipherText),
		T:    sentAtMS,
	}
	data, err := json.Marshal(w)
	if err != nil {
		return "", qerrors.Wrap(qerrors.KindFormatError, "envelope.Encode", err)
	}
	return string(data), nil
}

// Decode parses s into an Envelope, applying the alias and deprecation
// rules from spec §4.5. If s is not JSON at all, it returns a
// KindNotCiphertext error so the caller can treat s as plaintext.
func Decode(s string) (Envelope, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed[0] != '{' {
		return Envelope{}, qerrors.New(qerrors.KindNotCiphertext, "envelope.Decode", "input is not a JSON object")
	}

	var a aliasEnvelope
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return Envelope{}, qerrors.New(qerrors.KindNotCiphertext, "envelope.Decode", "input is not valid JSON")
	}

	if a.V == nil || *a.V != Version {
		return Envelope{}, qerrors.New(qerrors.KindFormatError, "envelope.Decode", "missing or unsupported version")
	}

	algTag, _ := firstNonNilString(a.Alg, a.Algorithm)
	if algTag == fallbackAES || algTag == fallbackAESGCM {
		return Envelope{}, qerrors.New(qerrors.KindLegacyUnsupported, "envelope.Decode", "fallback AES envelope is deprecated")
	}

	kemStr, haveKem := firstNonNilString(a.Kem, a.KemCiphertext)
	saltStr, haveSalt := firstNonNilString(a.Salt, a.SaltLong)
	nonceStr, haveNonce := firstNonNilString(a.N, a.Nonce)
	ctStr, haveCT := firstNonNilString(a.C, a.Ciphertext)

	if !haveKem || !haveSalt || !haveNonce || !haveCT || a.T == nil {
		return Envelope{}, qerrors.New(qerrors.KindFormatError, "envelope.Decode", "missing required field")
	}

	kemCT, err := unb64(kemStr)
	if err != nil {
		return Envelope{}, qerrors.Wrap(qerrors.KindFormatError, "envelope.Decode", err)
	}
	salt, err := unb64(saltStr)
	if err != nil {
		return Envelope{}, qerrors.Wrap(qerrors.KindFormatError, "envelope.Decode", err)
	}
	nonce, err := unb64(nonceStr)
	if err != nil {
		return Envelope{}, qerrors.Wrap(qerrors.KindFormatError, "envelope.Decode", err)
	}
	ct, err := unb64(ctStr)
	if err != nil {
		return Envelope{}, qerrors.Wrap(qerrors.KindFormatError, "envelope.Decode", err)
	}

	env := Envelope{
		Version:    Version,
		Alg:        algTag,
		KemCT:      kemCT,
		Salt:       salt,
		Nonce:      nonce,
		CipherText: ct,
		SentAtMS:   *a.T,
	}

	if algTag != "" && algTag != "Primary" && algTag != "Legacy" {
		// alg present but not one of the known names: per §4.5, all six
		// required fields are already present at this point, so this is
		// the UnknownAlg case, not FormatError.
		env.Alg = UnknownAlgTag
		return env, qerrors.New(qerrors.KindUnknownAlg, "envelope.Decode", "unrecognized alg value")
	}
	if algTag == "" {
		return env, qerrors.New(qerrors.KindUnknownAlg, "envelope.Decode", "alg field absent")
	}

	return env, nil
}

func b64(b []byte) string {
	return primitives.B64Encode(b)
}

func unb64(s string) ([]byte, error) {
	return primitives.B64Decode(s)
}
