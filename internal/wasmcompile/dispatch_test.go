package wasmcompile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoopDepthFromBlock(t *testing.T) {
	// body_k still sits inside n-k blocks of the outer n+1 block nest; the
	// loop wraps the whole emitBlockSwitch, one level further out.
	require.Equal(t, uint32(3), loopDepthFromBlock(0, 3))
	require.Equal(t, uint32(1), loopDepthFromBlock(2, 3))
	require.Equal(t, uint32(0), loopDepthFromBlock(3, 3))
}

func TestEmitBlockSwitchStructure(t *testing.T) {
	selector := (&asm{}).i32Const(1)
	bodies := []*asm{
		(&asm{}).i32Const(100),
		(&asm{}).i32Const(200),
	}
	def := (&asm{}).unreachable()

	out := emitBlockSwitch(selector, bodies, def)
	b := out.bytes()

	// n+1 = 3 opening blocks.
	require.Equal(t, []byte{opBlock, blockTypeVoid, opBlock, blockTypeVoid, opBlock, blockTypeVoid}, b[:6])

	// Followed immediately by the selector bytes, then br_table.
	rest := b[6:]
	require.Equal(t, selector.bytes(), rest[:len(selector.bytes())])
}

func TestChooseJumpResolveDenseVsSparse(t *testing.T) {
	// 8 jumpdests packed into 16 bytes: density 0.5, well above 1/16.
	dense := map[uint32]int{}
	pcs := make([]uint32, 0, 8)
	for i := uint32(0); i < 16; i += 2 {
		dense[i] = int(i / 2)
		pcs = append(pcs, i)
	}
	_, label := chooseJumpResolve(pcs, dense, 16)
	require.Equal(t, "jump_resolve_dense", label)

	// A single jumpdest in 4096 bytes: density far below 1/16.
	sparse := map[uint32]int{100: 0}
	_, label2 := chooseJumpResolve([]uint32{100}, sparse, 4096)
	require.Equal(t, "jump_resolve_sparse", label2)
}

func TestChooseJumpResolveEmptyJumpTable(t *testing.T) {
	body, label := chooseJumpResolve(nil, map[uint32]int{}, 10)
	require.Equal(t, "jump_resolve_sparse", label)
	require.Equal(t, []byte{opUnreachable}, body.bytes())
}

func TestJumpResolveSparseBinarySearchEmitsComparisons(t *testing.T) {
	pcs := []uint32{10, 20, 30, 40, 50}
	blockOf := map[uint32]int{10: 0, 20: 1, 30: 2, 40: 3, 50: 4}
	out := jumpResolveSparse(pcs, blockOf)
	require.NotEmpty(t, out.bytes())
	// Structural smoke check: the body must reference the i32.eq and
	// i32.lt_u comparisons generated by the binary search.
	require.Contains(t, string(out.bytes()), string([]byte{opI32Eq}))
	require.Contains(t, string(out.bytes()), string([]byte{opI32LtU}))
}
