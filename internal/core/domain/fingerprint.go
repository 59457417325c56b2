package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// FingerprintLength is the number of hex characters kept from the digest.
const FingerprintLength = 16

// Fingerprint derives the dedup key for a document from its exact bytes.
// No normalisation is applied: re-exported or re-formatted documents
// produce different fingerprints.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}
