package wasmmodule

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Fingerprint returns the hex-encoded Keccak-256 digest of an emitted wasm
// module's raw bytes, used to tag debug artifacts and log lines with a
// short, content-addressed identity for a compiled module (§6's debug
// surface). Keccak rather than SHA-2/3 to stay consistent with the hash
// EVM itself uses for SHA3/CODEHASH semantics.
func Fingerprint(raw []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil))
}
