// Package wasmcompile lowers a decoded, analyzed EVM program into a wasm
// function body implementing EVM's dynamic control flow as a structured
// dispatch loop (§4.4). It never decodes wasm instructions — only emits
// them — so this file is a minimal byte-level assembler for the subset of
// the instruction set the lowering needs.
package wasmcompile

import "github.com/evm2wasm/evm2wasm/internal/wasmmodule"

const (
	opUnreachable byte = 0x00
	opBlock       byte = 0x02
	opLoop        byte = 0x03
	opIf          byte = 0x04
	opElse        byte = 0x05
	opEnd         byte = 0x0B
	opBr          byte = 0x0C
	opBrIf        byte = 0x0D
	opBrTable     byte = 0x0E
	opReturn      byte = 0x0F
	opCall        byte = 0x10
	opDrop        byte = 0x1A
	opLocalGet    byte = 0x20
	opLocalSet    byte = 0x21
	opLocalTee    byte = 0x22
	opI32Const    byte = 0x41
	opI64Const    byte = 0x42
	opI32Eqz      byte = 0x45
	opI32Eq       byte = 0x46
	opI32LtU      byte = 0x49
)

const blockTypeVoid byte = 0x40

// asm accumulates raw wasm instruction bytes.
type asm struct {
	buf []byte
}

func (a *asm) bytes() []byte { return a.buf }

func (a *asm) raw(b ...byte) *asm { a.buf = append(a.buf, b...); return a }

func (a *asm) block() *asm { return a.raw(opBlock, blockTypeVoid) }
func (a *asm) loop() *asm  { return a.raw(opLoop, blockTypeVoid) }
func (a *asm) ifVoid() *asm { return a.raw(opIf, blockTypeVoid) }
func (a *asm) els() *asm   { return a.raw(opElse) }
func (a *asm) end() *asm   { return a.raw(opEnd) }

func (a *asm) br(depth uint32) *asm {
	a.buf = append(a.buf, opBr)
	a.buf = wasmmodule.AppendU32(a.buf, depth)
	return a
}

func (a *asm) brIf(depth uint32) *asm {
	a.buf = append(a.buf, opBrIf)
	a.buf = wasmmodule.AppendU32(a.buf, depth)
	return a
}

// brTable emits br_table with the given target labels and default label.
func (a *asm) brTable(targets []uint32, def uint32) *asm {
	a.buf = append(a.buf, opBrTable)
	a.buf = wasmmodule.AppendU32(a.buf, uint32(len(targets)))
	for _, t := range targets {
		a.buf = wasmmodule.AppendU32(a.buf, t)
	}
	a.buf = wasmmodule.AppendU32(a.buf, def)
	return a
}

func (a *asm) call(funcIdx uint32) *asm {
	a.buf = append(a.buf, opCall)
	a.buf = wasmmodule.AppendU32(a.buf, funcIdx)
	return a
}

func (a *asm) localGet(idx uint32) *asm {
	a.buf = append(a.buf, opLocalGet)
	a.buf = wasmmodule.AppendU32(a.buf, idx)
	return a
}

func (a *asm) localSet(idx uint32) *asm {
	a.buf = append(a.buf, opLocalSet)
	a.buf = wasmmodule.AppendU32(a.buf, idx)
	return a
}

func (a *asm) i32Const(v int32) *asm {
	a.buf = append(a.buf, opI32Const)
	a.buf = wasmmodule.AppendI32(a.buf, v)
	return a
}

func (a *asm) i64Const(v int64) *asm {
	a.buf = append(a.buf, opI64Const)
	a.buf = wasmmodule.AppendI64(a.buf, v)
	return a
}

func (a *asm) i32Eqz() *asm { return a.raw(opI32Eqz) }
func (a *asm) i32Eq() *asm  { return a.raw(opI32Eq) }
func (a *asm) i32LtU() *asm { return a.raw(opI32LtU) }

func (a *asm) unreachable() *asm { return a.raw(opUnreachable) }
func (a *asm) ret() *asm         { return a.raw(opReturn) }
func (a *asm) drop() *asm        { return a.raw(opDrop) }

// ifElse emits `if ... else ... end` with void blocktype, gluing together
// two already-built branches.
func (a *asm) ifElse(then, elseBranch *asm) *asm {
	a.ifVoid()
	a.append(then)
	a.els()
	a.append(elseBranch)
	a.end()
	return a
}

func (a *asm) append(other *asm) *asm {
	a.buf = append(a.buf, other.buf...)
	return a
}
