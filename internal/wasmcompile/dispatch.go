package wasmcompile

import "sort"

// emitBlockSwitch is the central construction of the whole compiler (§4.4):
// n+1 nested wasm blocks plus a single br_table turn an O(1) integer
// selector into a jump to one of n code bodies, with identity target
// numbering (selector i lands on bodies[i]) and a dedicated default body
// for any selector >= n. It underlies both the dispatch loop (selector =
// current block id) and the dense jump-resolve helper (selector = pc).
//
// Nesting, outermost first: [[ default ] [ body_{n-1} case ] ... [ body_0
// case ]]. The br_table sits in the innermost case; closing case_i via its
// `end` is exactly where body_i is emitted, so branching to case_i's label
// resumes execution at body_i — and falling off the end of body_i resumes
// at body_{i+1} with no branch at all, which is how EVM fallthrough
// successors cost nothing to express.
func emitBlockSwitch(selector *asm, bodies []*asm, defaultBody *asm) *asm {
	n := len(bodies)
	out := &asm{}
	for i := 0; i < n+1; i++ {
		out.block()
	}
	out.append(selector)
	targets := make([]uint32, n)
	for i := range targets {
		targets[i] = uint32(i)
	}
	out.brTable(targets, uint32(n))
	for i := 0; i < n; i++ {
		out.end()
		out.append(bodies[i])
	}
	out.end()
	out.append(defaultBody)
	return out
}

// loopDepthFromBlock returns the br depth, measured from a point
// immediately after case_k's end (i.e. inside body_k), that reaches the
// loop wrapping the whole emitBlockSwitch construct built over nb bodies.
func loopDepthFromBlock(k, nb int) uint32 {
	return uint32(nb - k)
}

// jumpResolveDense builds a helper function `(pc: i32) -> i32` mapping a
// runtime EVM pc directly to a block id via one emitBlockSwitch keyed on
// pc itself, sized to the highest JUMPDEST pc (§4.4: "dense br_table of
// size max_jumpdest_pc+1"). Used when JUMPDESTs are frequent enough that a
// fully populated table beats a search.
func jumpResolveDense(pcs []uint32, blockOf map[uint32]int, maxPC uint32) *asm {
	n := int(maxPC) + 1
	bodies := make([]*asm, n)
	for pc := 0; pc < n; pc++ {
		if id, ok := blockOf[uint32(pc)]; ok {
			bodies[pc] = (&asm{}).i32Const(int32(id)).ret()
		} else {
			bodies[pc] = (&asm{}).unreachable()
		}
	}
	selector := (&asm{}).localGet(0)
	return emitBlockSwitch(selector, bodies, (&asm{}).unreachable())
}

// jumpResolveSparse builds a helper function `(pc: i32) -> i32` as a
// compile-time-unrolled binary search over the sorted jump-destination
// table (§4.4: "sorted-array binary search"). Chosen when JUMPDESTs are
// sparse, to avoid materializing a huge mostly-trap table.
func jumpResolveSparse(pcs []uint32, blockOf map[uint32]int) *asm {
	sorted := append([]uint32(nil), pcs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := &asm{}
	out.append(binarySearchNode(sorted, blockOf, 0, len(sorted)-1))
	// every path through the search above returns or traps inside a
	// void-typed if/else; the function's declared i32 result still needs
	// something on the stack at the implicit end wasm validation sees.
	out.unreachable()
	return out
}

func binarySearchNode(sorted []uint32, blockOf map[uint32]int, lo, hi int) *asm {
	if lo > hi {
		return (&asm{}).unreachable()
	}
	mid := (lo + hi) / 2
	pc := sorted[mid]
	id := blockOf[pc]

	eq := (&asm{}).localGet(0).i32Const(int32(pc)).i32Eq()
	hit := (&asm{}).i32Const(int32(id)).ret()

	lt := (&asm{}).localGet(0).i32Const(int32(pc)).i32LtU()
	left := binarySearchNode(sorted, blockOf, lo, mid-1)
	right := binarySearchNode(sorted, blockOf, mid+1, hi)
	miss := (&asm{}).append(lt).ifElse(left, right)

	out := &asm{}
	out.append(eq).ifElse(hit, miss)
	return out
}

// jumpResolveDensityThreshold is the JUMPDESTs-per-byte ratio above which
// the dense strategy is chosen (§4.4: "high is >1 per 16 bytes").
const jumpResolveDensityThreshold = 1.0 / 16.0

// chooseJumpResolve picks and builds the pc -> block-id helper body plus
// its identifying label, per §4.4's density rule.
func chooseJumpResolve(pcs []uint32, blockOf map[uint32]int, codeLen int) (*asm, string) {
	if len(pcs) == 0 || codeLen == 0 {
		return (&asm{}).unreachable(), "jump_resolve_sparse"
	}
	var maxPC uint32
	for _, pc := range pcs {
		if pc > maxPC {
			maxPC = pc
		}
	}
	density := float64(len(pcs)) / float64(codeLen)
	if density > jumpResolveDensityThreshold {
		return jumpResolveDense(pcs, blockOf, maxPC), "jump_resolve_dense"
	}
	return jumpResolveSparse(pcs, blockOf), "jump_resolve_sparse"
}
