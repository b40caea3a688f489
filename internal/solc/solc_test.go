package solc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractHexFindsBannerAndDecodesHex(t *testing.T) {
	out := "======= Contract.sol:Contract =======\nBinary of the runtime part:\n6001600201\n"
	b, err := extractHex(out, "Binary of the runtime part")
	require.NoError(t, err)
	require.Equal(t, []byte{0x60, 0x01, 0x60, 0x02, 0x01}, b)
}

func TestExtractHexMissingBanner(t *testing.T) {
	_, err := extractHex("nothing useful here", "Binary of the runtime part")
	require.Error(t, err)
}

func TestExtractJSONFindsArrayPayload(t *testing.T) {
	out := "======= Contract.sol:Contract =======\nContract JSON ABI\n[{\"type\":\"function\"}]\n"
	raw, err := extractJSON(out)
	require.NoError(t, err)
	require.JSONEq(t, `[{"type":"function"}]`, string(raw))
}

func TestExtractJSONMissingPayload(t *testing.T) {
	_, err := extractJSON("no brackets at all")
	require.Error(t, err)
}

func TestDecodeHexOddLengthErrors(t *testing.T) {
	_, err := decodeHex("abc")
	require.Error(t, err)
}

func TestDecodeHexStripsPrefix(t *testing.T) {
	b, err := decodeHex("0x2a")
	require.NoError(t, err)
	require.Equal(t, []byte{0x2a}, b)
}
