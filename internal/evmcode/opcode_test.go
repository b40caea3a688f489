package evmcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpcodeStringKnownAndUnknown(t *testing.T) {
	require.Equal(t, "ADD", ADD.String())
	require.Equal(t, "UNDEFINED(0x0c)", Opcode(0x0c).String())
}

func TestPushSizeRange(t *testing.T) {
	require.Equal(t, 1, PUSH1.PushSize())
	require.Equal(t, 32, PUSH32.PushSize())
	require.Equal(t, 0, ADD.PushSize())
}

func TestIsTerminator(t *testing.T) {
	for _, op := range []Opcode{JUMP, JUMPI, STOP, RETURN, REVERT, INVALID, SELFDESTRUCT} {
		require.True(t, op.IsTerminator(), "%s should be a terminator", op)
	}
	require.False(t, ADD.IsTerminator())
	require.False(t, JUMPDEST.IsTerminator())
}
