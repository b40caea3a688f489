// Package wasmlink merges a compiled contract function into a prebuilt
// wasm runtime module (§4.5).
package wasmlink

import (
	"github.com/evm2wasm/evm2wasm/internal/cerr"
	"github.com/evm2wasm/evm2wasm/internal/wasmcompile"
	"github.com/evm2wasm/evm2wasm/internal/wasmmodule"
)

const codeBaseSymbol = "__evm_code_base"

// Merge implements §4.5's contract exactly: append the bytecode data
// segment, append (deduplicating) the contract's function type(s), append
// the function bodies, export the entrypoint, re-emit. Nothing already
// present in runtime is touched or renumbered — every append happens at
// the end of its section, so indices already baked into runtime's own
// code bodies stay valid.
func Merge(runtime *wasmmodule.Module, result *wasmcompile.CompileResult) (*wasmmodule.Module, error) {
	out := shallowClone(runtime)

	offsetExpr, err := codeBaseOffsetExpr(out)
	if err != nil {
		return nil, err
	}
	out.Data = append(out.Data, wasmmodule.DataSegment{
		MemoryIndex: 0,
		Offset:      offsetExpr,
		Init:        result.BytecodeData,
	})

	typeIdxs := make([]uint32, len(result.FuncTypes))
	for i, ft := range result.FuncTypes {
		typeIdxs[i] = dedupeType(out, ft)
	}
	firstNewFuncIdx := uint32(out.NumImportedFuncs() + len(out.FuncSec))
	for i, fn := range result.Functions {
		out.FuncSec = append(out.FuncSec, typeIdxs[i])
		out.Code = append(out.Code, fn)
	}
	entrypointIdx := firstNewFuncIdx + uint32(len(result.Functions)) - 1

	if _, exists := out.FindExport(result.EntrypointName); exists {
		return nil, cerr.New(cerr.KindMergeError, "entrypoint name already exported by runtime: "+result.EntrypointName)
	}
	out.Exports = append(out.Exports, wasmmodule.Export{
		Name: result.EntrypointName, Kind: wasmmodule.KindFunc, Index: entrypointIdx,
	})
	return out, nil
}

// shallowClone copies the module struct and its section slices (but not
// their elements) so Merge never mutates the caller's runtime module.
func shallowClone(m *wasmmodule.Module) *wasmmodule.Module {
	out := *m
	out.Types = append([]wasmmodule.FuncType(nil), m.Types...)
	out.Imports = append([]wasmmodule.Import(nil), m.Imports...)
	out.FuncSec = append([]uint32(nil), m.FuncSec...)
	out.Tables = append([]wasmmodule.Table(nil), m.Tables...)
	out.Memories = append([]wasmmodule.Memory(nil), m.Memories...)
	out.Globals = append([]wasmmodule.Global(nil), m.Globals...)
	out.Exports = append([]wasmmodule.Export(nil), m.Exports...)
	out.Elements = append([]wasmmodule.ElementSegment(nil), m.Elements...)
	out.Code = append([]wasmmodule.Function(nil), m.Code...)
	out.Data = append([]wasmmodule.DataSegment(nil), m.Data...)
	return &out
}

// dedupeType returns ft's index in out.Types, appending it only if no
// structurally equal entry already exists (§4.5 step 2).
func dedupeType(out *wasmmodule.Module, ft wasmmodule.FuncType) uint32 {
	for i, existing := range out.Types {
		if existing.Equal(ft) {
			return uint32(i)
		}
	}
	out.Types = append(out.Types, ft)
	return uint32(len(out.Types) - 1)
}

// codeBaseOffsetExpr resolves the runtime's __evm_code_base export (§4.4
// step 1) to a constant-expression byte sequence usable as a new data
// segment's offset. A locally defined global's current initializer value
// is read directly and re-encoded as i32.const, which is always legal in
// an offset expression; an imported global is referenced with global.get,
// which wasm 1.0 only permits for imports precisely because its value is
// not known until link time.
func codeBaseOffsetExpr(m *wasmmodule.Module) ([]byte, error) {
	exp, ok := m.FindExport(codeBaseSymbol)
	if !ok || exp.Kind != wasmmodule.KindGlobal {
		return nil, cerr.New(cerr.KindMissingSymbol, codeBaseSymbol)
	}
	numImportedGlobals := 0
	for _, imp := range m.Imports {
		if imp.Kind == wasmmodule.KindGlobal {
			numImportedGlobals++
		}
	}
	if int(exp.Index) < numImportedGlobals {
		buf := wasmmodule.AppendU32([]byte{0x23}, exp.Index)
		return append(buf, 0x0B), nil
	}
	local := int(exp.Index) - numImportedGlobals
	if local < 0 || local >= len(m.Globals) {
		return nil, cerr.New(cerr.KindMissingSymbol, codeBaseSymbol)
	}
	return m.Globals[local].Init, nil
}
