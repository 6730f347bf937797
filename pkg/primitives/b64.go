package primitives

import "encoding/base64"

// B64Encode encodes b as standard (padded) base64, the encoding used by
// every envelope field and every public key exported by the key vault.
func B64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// B64Decode decodes s as base64, accepting both standard and URL-safe
// alphabets and both padded and unpadded forms — public keys arriving from
// external directories have historically used any of the four variants.
func B64Decode(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, base64.CorruptInputError(0)
}
