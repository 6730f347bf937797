// Package metadata implements the Metadata Encryptor (C8): serialize a
// structured metadata object to canonical JSON and route it through
// pkg/fanout exactly as if it were a plaintext chat message.
package metadata

import (
	"context"
	"encoding/json"

	"github.com/qryptchat/pq-engine/internal/qerrors"
	"github.com/qryptchat/pq-engine/pkg/cipher"
	"github.com/qryptchat/pq-engine/pkg/fanout"
)

// EncryptForConversation serializes obj to JSON and fans it out exactly
// like a plaintext message (spec §4.8); stable key order is not required.
func EncryptForConversation(ctx context.Context, dir fanout.ParticipantDirectory, conversationID string, obj interface{}, opts ...fanout.Option) (fanout.Result, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return fanout.Result{}, qerrors.Wrap(qerrors.KindFormatError, "metadata.EncryptForConversation", err)
	}
	return fanout.EncryptForConversation(ctx, dir, conversationID, string(data), opts...)
}

// Decrypt decrypts envelopeStr via pkg/cipher and JSON-parses the result
// into out. Round-trips preserve the object under JSON canonicalization.
func Decrypt(ctx context.Context, envelopeStr, senderPKB64 string, keys cipher.PrivateKeyLookup, out interface{}) error {
	plaintext := fanout.DecryptForCurrentUser(ctx, envelopeStr, senderPKB64, keys, nil)
	if err := json.Unmarshal([]byte(plaintext), out); err != nil {
		return qerrors.Wrap(qerrors.KindFormatError, "metadata.Decrypt", err)
	}
	return nil
}
