package wasmmodule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterministic(t *testing.T) {
	raw := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	require.Equal(t, Fingerprint(raw), Fingerprint(raw))
	require.Len(t, Fingerprint(raw), 64) // 32 bytes, hex-encoded
}

func TestFingerprintDiffersOnDifferentInput(t *testing.T) {
	a := Fingerprint([]byte{0x01})
	b := Fingerprint([]byte{0x02})
	require.NotEqual(t, a, b)
}
