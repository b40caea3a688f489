// Package evmanalyze recovers basic-block structure and the jump-destination
// table from a decoded Program (§4.2).
package evmanalyze

import "github.com/evm2wasm/evm2wasm/internal/evmcode"

// SuccessorKind classifies how control leaves a Block (§4.2).
type SuccessorKind int

const (
	Fallthrough SuccessorKind = iota
	Jump
	Jumpi
	Terminal
)

func (k SuccessorKind) String() string {
	switch k {
	case Fallthrough:
		return "Fallthrough"
	case Jump:
		return "Jump"
	case Jumpi:
		return "Jumpi"
	case Terminal:
		return "Terminal"
	default:
		return "Unknown"
	}
}

// Block is a maximal run of instructions with one entry and one exit (§3).
type Block struct {
	Index        int
	PCStart      uint32
	PCEnd        uint32 // exclusive
	Instructions []evmcode.Instruction
	Successor    SuccessorKind
	// Next is the fallthrough/Jumpi-fallthrough target block index, valid
	// only when Successor is Fallthrough or Jumpi.
	Next int
}

// JumpTable maps a JUMPDEST pc to the index of the block it begins,
// ordered by pc (§3, §4.2).
type JumpTable struct {
	pcs     []uint32
	blockOf map[uint32]int
}

// PCs returns the jump destinations in ascending pc order.
func (jt *JumpTable) PCs() []uint32 { return jt.pcs }

// BlockIndex returns the block index that starts at pc, and whether pc is a
// valid jump destination.
func (jt *JumpTable) BlockIndex(pc uint32) (int, bool) {
	idx, ok := jt.blockOf[pc]
	return idx, ok
}

// Len returns the number of jump destinations.
func (jt *JumpTable) Len() int { return len(jt.pcs) }

// Analyze walks a decoded Program and returns its basic-block graph and
// jump-destination table (§4.2).
func Analyze(prog *evmcode.Program) ([]*Block, *JumpTable) {
	blocks := splitBlocks(prog.Instructions)
	jt := buildJumpTable(blocks)
	return blocks, jt
}

// splitBlocks implements the block-splitting rule in §4.2: close the
// current block after a terminator, or before a JUMPDEST.
func splitBlocks(instrs []evmcode.Instruction) []*Block {
	if len(instrs) == 0 {
		return nil
	}
	var blocks []*Block
	start := 0
	for i, instr := range instrs {
		isLast := i == len(instrs)-1
		closeHere := instr.Opcode.IsTerminator()
		closeBeforeNext := !isLast && instrs[i+1].Opcode == evmcode.JUMPDEST
		if closeHere || closeBeforeNext || isLast {
			blocks = append(blocks, &Block{
				Index:        len(blocks),
				PCStart:      instrs[start].PC,
				PCEnd:        instr.PC + uint32(instr.Size),
				Instructions: instrs[start : i+1],
			})
			start = i + 1
		}
	}
	assignSuccessors(blocks)
	return blocks
}

func assignSuccessors(blocks []*Block) {
	for i, b := range blocks {
		last := b.Instructions[len(b.Instructions)-1].Opcode
		switch last {
		case evmcode.JUMP:
			b.Successor = Jump
		case evmcode.JUMPI:
			b.Successor = Jumpi
			b.Next = i + 1
		case evmcode.STOP, evmcode.RETURN, evmcode.REVERT, evmcode.INVALID, evmcode.SELFDESTRUCT:
			b.Successor = Terminal
		default:
			b.Successor = Fallthrough
			b.Next = i + 1
		}
		if (b.Successor == Fallthrough || b.Successor == Jumpi) && b.Next >= len(blocks) {
			// Falls off the end of the code: lowered as an implicit STOP,
			// and there is no successor block to record.
			b.Successor = Terminal
		}
	}
}

// buildJumpTable walks the block list and records pc -> block index for
// every JUMPDEST (§4.2).
func buildJumpTable(blocks []*Block) *JumpTable {
	jt := &JumpTable{blockOf: make(map[uint32]int)}
	for _, b := range blocks {
		if b.Instructions[0].Opcode == evmcode.JUMPDEST {
			jt.pcs = append(jt.pcs, b.PCStart)
			jt.blockOf[b.PCStart] = b.Index
		}
	}
	return jt
}
