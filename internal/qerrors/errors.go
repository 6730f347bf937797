// Package qerrors defines the typed error taxonomy shared by every component
// of the post-quantum encryption engine.
//
// Errors by exception are replaced by an explicit Kind enum: callers branch
// on Kind rather than comparing sentinel values, because the fan-out ledger
// (pkg/fanout) needs to carry a Kind per failed recipient independent of the
// underlying Go error value.
package qerrors

import (
	"errors"
	"fmt"
)

// Kind identifies a class of engine error. See spec §4.9.
type Kind int

const (
	// KindUnknown is the zero value; never returned by the engine itself.
	KindUnknown Kind = iota

	KindKeyGeneration
	KindKeyStorage
	KindInvalidKey
	KindIncompatibleKey
	KindInvalidPublicKey

	KindNotCiphertext
	KindFormatError
	KindUnknownAlg
	KindLegacyUnsupported

	KindEncryption
	KindDecryption
	KindNoParticipants
	KindAllRecipientsFailed
	KindAllRecipientsIncompatible
)

// String returns a stable, CamelCase taxonomy name for the kind.
func (k Kind) String() string {
	switch k {
	case KindKeyGeneration:
		return "KeyGeneration"
	case KindKeyStorage:
		return "KeyStorage"
	case KindInvalidKey:
		return "InvalidKey"
	case KindIncompatibleKey:
		return "IncompatibleKey"
	case KindInvalidPublicKey:
		return "InvalidPublicKey"
	case KindNotCiphertext:
		return "NotCiphertext"
	case KindFormatError:
		return "FormatError"
	case KindUnknownAlg:
		return "UnknownAlg"
	case KindLegacyUnsupported:
		return "LegacyUnsupported"
	case KindEncryption:
		return "Encryption"
	case KindDecryption:
		return "Decryption"
	case KindNoParticipants:
		return "NoParticipants"
	case KindAllRecipientsFailed:
		return "AllRecipientsFailed"
	case KindAllRecipientsIncompatible:
		return "AllRecipientsIncompatible"
	default:
		return "Unknown"
	}
}

// Error is the engine's concrete error type: a Kind, an operation label for
// debugging, and an optional wrapped cause. Detail strings must never carry
// key material, shared secrets, or plaintext (see spec §7 logging policy).
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a new Error.
func New(kind Kind, op, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail}
}

// Wrap builds a new Error around an existing cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// As reports whether err (or any error in its chain) is an *Error and, if
// so, returns its Kind.
func As(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindUnknown, false
}

// Is reports whether err (or any error in its chain) is an *Error carrying
// the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := As(err)
	return ok && k == kind
}
