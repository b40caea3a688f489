package evmcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImmediateDecimalSmallValue(t *testing.T) {
	require.Equal(t, "42", ImmediateDecimal([]byte{0x2A}))
}

func TestImmediateDecimalEmpty(t *testing.T) {
	require.Equal(t, "0", ImmediateDecimal(nil))
}

func TestImmediateDecimalFullWidth(t *testing.T) {
	immed := make([]byte, 32)
	immed[31] = 0x01
	require.Equal(t, "1", ImmediateDecimal(immed))
}
