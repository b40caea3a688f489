// Package runtime describes the symbol contract the two embedded wasm
// runtime blobs (cspr and wasi ABIs) must satisfy, and provides a builder
// for synthesizing a minimal module meeting that contract — used by Load
// and by tests that exercise the compiler and linker without a real
// prebuilt runtime binary on hand. The module-walking technique is grounded on the
// teacher's wasm JIT module walker, reimplemented from scratch in
// internal/wasmmodule rather than kept as a source file (see DESIGN.md).
package runtime

import (
	"github.com/evm2wasm/evm2wasm/internal/config"
	"github.com/evm2wasm/evm2wasm/internal/wasmcompile"
	"github.com/evm2wasm/evm2wasm/internal/wasmmodule"
)

// CodeBaseGlobal is the name of the immutable global the compiler reads to
// learn where to place the contract bytecode data segment (§4.4 step 1).
const CodeBaseGlobal = "__evm_code_base"

// CodeBaseOffset is the fixed memory offset BuildMinimal's runtime module
// exports __evm_code_base as.
const CodeBaseOffset = 1 << 16

// ABIBlob names the two runtime blobs an evm2wasm binary embeds (§6).
type ABIBlob struct {
	ABI  config.ABI
	Name string // embed asset name, e.g. "runtime_cspr.wasm"
}

// EmbeddedBlobs names the runtime blob for each ABI. Nothing in this module
// embeds or loads their bytes (the real prebuilt binaries are a separate
// release artifact); Load returns BuildMinimal for both ABIs instead.
var EmbeddedBlobs = []ABIBlob{
	{ABI: config.ABICspr, Name: "runtime_cspr.wasm"},
	{ABI: config.ABIWasi, Name: "runtime_wasi.wasm"},
}

// Load returns the runtime module for the given ABI. The real compiler
// ships two distinct prebuilt wasm binaries (one per ABI) as release
// assets outside this source tree; until those are vendored, Load falls
// back to BuildMinimal for both, which satisfies every symbol the
// compiler's symbol table requires even though its opcode bodies are
// stubs rather than real EVM semantics.
func Load(abi config.ABI) (*wasmmodule.Module, error) {
	_ = abi
	return BuildMinimal(), nil
}

// BuildMinimal synthesizes the smallest wasm module that satisfies every
// symbol the compiler's symbol table requires (§6's "must export, at
// minimum" list): a trivial body for every opcode helper and fixed
// helper, a linear memory, and the __evm_code_base global.
func BuildMinimal() *wasmmodule.Module {
	m := &wasmmodule.Module{
		Memories: []wasmmodule.Memory{{Limits: wasmmodule.Limits{Min: 17}}},
		Globals: []wasmmodule.Global{
			{Type: wasmmodule.ValI32, Mutable: false, Init: constI32(CodeBaseOffset)},
		},
		Exports: []wasmmodule.Export{
			{Name: CodeBaseGlobal, Kind: wasmmodule.KindGlobal, Index: 0},
		},
	}

	voidType := wasmmodule.FuncType{}
	u32ResultType := wasmmodule.FuncType{Results: []wasmmodule.ValType{wasmmodule.ValI32}}
	u32ParamType := wasmmodule.FuncType{Params: []wasmmodule.ValType{wasmmodule.ValI32}}

	addFunc := func(name string, ft wasmmodule.FuncType, body []byte) {
		typeIdx := internType(m, ft)
		m.FuncSec = append(m.FuncSec, typeIdx)
		m.Code = append(m.Code, wasmmodule.Function{Body: body})
		idx := uint32(len(m.FuncSec) - 1) // no imports: local index == global index
		m.Exports = append(m.Exports, wasmmodule.Export{Name: name, Kind: wasmmodule.KindFunc, Index: idx})
	}

	trivialVoid := []byte{0x0B}
	trivialU32 := []byte{0x41, 0x00, 0x0B} // i32.const 0; end

	for _, name := range wasmcompile.RequiredHelperNames() {
		switch name {
		case "_evm_pop_u32":
			addFunc(name, u32ResultType, trivialU32)
		case "_evm_push_u32", "_evm_set_pc", "_evm_burn_gas":
			addFunc(name, u32ParamType, trivialVoid)
		default: // _evm_init, _evm_call, _evm_post_exec
			addFunc(name, voidType, trivialVoid)
		}
	}

	for _, name := range wasmcompile.RequiredOpcodeNames() {
		ft := voidType
		if n, ok := pushImmediateSize(name); ok {
			chunks := wasmcompile.PushChunkCount(n)
			params := make([]wasmmodule.ValType, chunks)
			for i := range params {
				params[i] = wasmmodule.ValI64
			}
			ft = wasmmodule.FuncType{Params: params}
		}
		addFunc(name, ft, trivialVoid)
	}

	return m
}

func internType(m *wasmmodule.Module, ft wasmmodule.FuncType) uint32 {
	for i, existing := range m.Types {
		if existing.Equal(ft) {
			return uint32(i)
		}
	}
	m.Types = append(m.Types, ft)
	return uint32(len(m.Types) - 1)
}

func constI32(v int32) []byte {
	return append(wasmmodule.AppendI32([]byte{0x41}, v), 0x0B)
}

// pushImmediateSize returns n for a "pushN" runtime export name.
func pushImmediateSize(name string) (int, bool) {
	if len(name) <= 4 || name[:4] != "push" {
		return 0, false
	}
	n := 0
	for _, c := range name[4:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > 32 {
		return 0, false
	}
	return n, true
}
