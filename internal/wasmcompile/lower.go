package wasmcompile

import (
	"encoding/binary"

	"github.com/evm2wasm/evm2wasm/internal/config"
	"github.com/evm2wasm/evm2wasm/internal/evmanalyze"
	"github.com/evm2wasm/evm2wasm/internal/evmcode"
)

// Local slots of the generated entrypoint function (§4.4).
const (
	localTarget uint32 = 0 // current dispatch-loop block id
	localTmpPC  uint32 = 1 // scratch for a JUMPI's popped destination
)

// lowerCtx carries everything a block's lowering needs besides the block
// itself: the resolved runtime symbols, the compile options, and the
// jump-resolve helper's function index (assigned by the caller before any
// lowering happens, since the helper and the entrypoint are laid out
// together, §4.4).
type lowerCtx struct {
	st          *symbolTable
	cfg         config.CompilerConfig
	jumpResolve uint32
	numBlocks   int
}

// lowerBlock emits block's code body (§4.4 "Lowering of a block"). It never
// emits the surrounding case/end scaffolding — that's emitBlockSwitch's job
// — only the instruction sequence that runs once control reaches this
// block.
func lowerBlock(ctx *lowerCtx, b *evmanalyze.Block) (*asm, error) {
	out := &asm{}
	for _, instr := range b.Instructions {
		if err := lowerInstruction(ctx, out, instr, b.Index); err != nil {
			return nil, err
		}
	}
	if b.Successor == evmanalyze.Terminal {
		switch b.Instructions[len(b.Instructions)-1].Opcode {
		case evmcode.STOP, evmcode.RETURN, evmcode.REVERT, evmcode.INVALID, evmcode.SELFDESTRUCT:
		default:
			// Control falls off the end of the code: an implicit STOP.
			idx, err := ctx.st.resolve("stop")
			if err != nil {
				return nil, err
			}
			out.call(idx).ret()
		}
	}
	return out, nil
}

func lowerInstruction(ctx *lowerCtx, out *asm, instr evmcode.Instruction, blockIdx int) error {
	if ctx.cfg.ProgramCounter {
		idx, err := ctx.st.resolve("_evm_set_pc")
		if err != nil {
			return err
		}
		out.i32Const(int32(instr.PC)).call(idx)
	}
	if ctx.cfg.GasAccounting {
		idx, err := ctx.st.resolve("_evm_burn_gas")
		if err != nil {
			return err
		}
		out.i32Const(int32(baseGasFor(instr.Opcode))).call(idx)
	}

	switch instr.Opcode {
	case evmcode.JUMPDEST:
		// landing pad only; no runtime call (§4.4).
	case evmcode.JUMP:
		return lowerJump(ctx, out, blockIdx)
	case evmcode.JUMPI:
		return lowerJumpi(ctx, out, blockIdx)
	case evmcode.STOP, evmcode.RETURN, evmcode.REVERT, evmcode.INVALID, evmcode.SELFDESTRUCT:
		idx, err := ctx.st.resolve(runtimeNameFor(instr.Opcode))
		if err != nil {
			return err
		}
		out.call(idx).ret()
	default:
		if instr.Opcode.IsPush() {
			return lowerPush(ctx, out, instr)
		}
		idx, err := ctx.st.resolve(runtimeNameFor(instr.Opcode))
		if err != nil {
			return err
		}
		out.call(idx)
	}
	return nil
}

// lowerPush splits an n-byte big-endian immediate into up to four i64
// chunks (most-significant first) and calls the matching pushN helper
// (§4.4).
func lowerPush(ctx *lowerCtx, out *asm, instr evmcode.Instruction) error {
	idx, err := ctx.st.resolve(runtimeNameFor(instr.Opcode))
	if err != nil {
		return err
	}
	for _, chunk := range splitPushChunks(instr.Immed) {
		out.i64Const(chunk)
	}
	out.call(idx)
	return nil
}

// splitPushChunks breaks a big-endian byte immediate into 8-byte-or-smaller
// big-endian chunks, the first chunk absorbing any remainder so every
// chunk after it is a full 8 bytes.
func splitPushChunks(immed []byte) []int64 {
	n := len(immed)
	if n == 0 {
		return nil
	}
	numChunks := (n + 7) / 8
	firstSize := n - (numChunks-1)*8
	chunks := make([]int64, 0, numChunks)
	pos := 0
	sizes := append([]int{firstSize}, repeat(8, numChunks-1)...)
	for _, sz := range sizes {
		buf := make([]byte, 8)
		copy(buf[8-sz:], immed[pos:pos+sz])
		chunks = append(chunks, int64(binary.BigEndian.Uint64(buf)))
		pos += sz
	}
	return chunks
}

func repeat(v, n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func lowerJump(ctx *lowerCtx, out *asm, blockIdx int) error {
	popIdx, err := ctx.st.resolve("_evm_pop_u32")
	if err != nil {
		return err
	}
	out.call(popIdx).call(ctx.jumpResolve).localSet(localTarget)
	out.br(loopDepthFromBlock(blockIdx, ctx.numBlocks))
	return nil
}

func lowerJumpi(ctx *lowerCtx, out *asm, blockIdx int) error {
	popIdx, err := ctx.st.resolve("_evm_pop_u32")
	if err != nil {
		return err
	}
	out.call(popIdx).localSet(localTmpPC)
	out.call(popIdx)
	taken := &asm{}
	taken.localGet(localTmpPC).call(ctx.jumpResolve).localSet(localTarget)
	// +1: the enclosing if block adds its own label level, so the br's
	// target depth must account for it on top of the block body's depth.
	taken.br(loopDepthFromBlock(blockIdx, ctx.numBlocks) + 1)
	out.ifVoid().append(taken).end()
	return nil
}
