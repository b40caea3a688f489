package evmanalyze

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evm2wasm/evm2wasm/internal/evmcode"
)

func decodeOrFail(t *testing.T, code []byte) *evmcode.Program {
	t.Helper()
	prog, err := evmcode.Decode(code)
	require.NoError(t, err)
	return prog
}

func TestSingleBlockNoJumpdest(t *testing.T) {
	// PUSH1 1, PUSH1 2, ADD, STOP — one block, no jump destinations.
	prog := decodeOrFail(t, []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00})
	blocks, jt := Analyze(prog)
	require.Len(t, blocks, 1)
	require.Equal(t, Terminal, blocks[0].Successor)
	require.Equal(t, 0, jt.Len())
}

func TestSingleJumpdestFormsOneBlock(t *testing.T) {
	// JUMPDEST, STOP: one block, beginning at pc 0.
	prog := decodeOrFail(t, []byte{0x5b, 0x00})
	blocks, jt := Analyze(prog)
	require.Len(t, blocks, 1)
	require.Equal(t, 1, jt.Len())
	idx, ok := jt.BlockIndex(0)
	require.True(t, ok)
	require.Equal(t, 0, idx)
}

func TestJumpdestInMiddleSplitsBlock(t *testing.T) {
	// STOP, JUMPDEST, STOP: first block is just STOP (pc 0), second
	// starts at the JUMPDEST (pc 1).
	code := []byte{0x00, 0x5b, 0x00}
	prog := decodeOrFail(t, code)
	blocks, jt := Analyze(prog)
	require.Len(t, blocks, 2)
	require.Equal(t, uint32(0), blocks[0].PCStart)
	require.Equal(t, uint32(1), blocks[1].PCStart)
	idx, ok := jt.BlockIndex(1)
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestJumpSuccessorClassification(t *testing.T) {
	// PUSH1 0, JUMP, JUMPDEST, STOP
	code := []byte{0x60, 0x00, 0x56, 0x5b, 0x00}
	prog := decodeOrFail(t, code)
	blocks, _ := Analyze(prog)
	require.Len(t, blocks, 2)
	require.Equal(t, Jump, blocks[0].Successor)
}

func TestJumpiFallsThroughToNextBlock(t *testing.T) {
	// PUSH1 0, PUSH1 0, JUMPI, JUMPDEST, STOP
	code := []byte{0x60, 0x00, 0x60, 0x00, 0x57, 0x5b, 0x00}
	prog := decodeOrFail(t, code)
	blocks, _ := Analyze(prog)
	require.Len(t, blocks, 2)
	require.Equal(t, Jumpi, blocks[0].Successor)
	require.Equal(t, 1, blocks[0].Next)
}

func TestFallsOffEndTreatedAsTerminal(t *testing.T) {
	// PUSH1 1, PUSH1 2, ADD with no STOP: falls off the end.
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01}
	prog := decodeOrFail(t, code)
	blocks, _ := Analyze(prog)
	require.Len(t, blocks, 1)
	require.Equal(t, Terminal, blocks[0].Successor)
}
