package cerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsMatchesKind(t *testing.T) {
	err := New(KindBadHex, "bad input")
	require.True(t, Is(err, KindBadHex))
	require.False(t, Is(err, KindEmpty))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying failure")
	err := Wrap(KindIoError, "reading file", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "underlying failure")
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	err := Wrap(KindConfigError, "no cause here", nil)
	require.Nil(t, err.Unwrap())
}

func TestCLILinePrefixesEveryError(t *testing.T) {
	err := New(KindMergeError, "duplicate export")
	line := CLILine(err)
	require.Contains(t, line, "evm2wasm:")
	require.Contains(t, line, "duplicate export")
}

func TestCLILineHandlesPlainError(t *testing.T) {
	line := CLILine(errors.New("not a cerr.Error"))
	require.Equal(t, "evm2wasm: not a cerr.Error", line)
}
