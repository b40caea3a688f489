// Package wasmmodule models a wasm binary module as ten section
// containers (§3, §4.3), and provides a Parser and Emitter between that
// model and the wasm binary format. Function bodies are kept as raw byte
// blobs (locals prefix + untouched instruction bytes) rather than being
// fully decoded — the merge step only needs to append new functions, not
// rewrite existing ones (§4.3).
package wasmmodule

// ValType is a wasm value type byte.
type ValType byte

const (
	ValI32 ValType = 0x7F
	ValI64 ValType = 0x7E
	ValF32 ValType = 0x7D
	ValF64 ValType = 0x7C
)

// FuncType is a function signature: params -> results.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Equal reports structural equality, used for type-section deduplication
// during merge (§4.5 step 2).
func (t FuncType) Equal(o FuncType) bool {
	if len(t.Params) != len(o.Params) || len(t.Results) != len(o.Results) {
		return false
	}
	for i := range t.Params {
		if t.Params[i] != o.Params[i] {
			return false
		}
	}
	for i := range t.Results {
		if t.Results[i] != o.Results[i] {
			return false
		}
	}
	return true
}

// ImportKind identifies what an import/export entry refers to.
type ImportKind byte

const (
	KindFunc   ImportKind = 0x00
	KindTable  ImportKind = 0x01
	KindMemory ImportKind = 0x02
	KindGlobal ImportKind = 0x03
)

// Import is one entry of the import section. For Func imports, TypeIndex
// is the signature index. For Table/Memory/Global imports, Descriptor
// holds the raw encoded limits/global-type bytes verbatim (the compiler
// never needs to introspect those, only preserve them across merge).
type Import struct {
	Module     string
	Field      string
	Kind       ImportKind
	TypeIndex  uint32
	Descriptor []byte
}

// Limits is a wasm memory/table limits pair.
type Limits struct {
	Min     uint32
	Max     uint32
	HasMax  bool
}

// Table is a table-section entry.
type Table struct {
	ElemType byte // 0x70 = funcref
	Limits   Limits
}

// Memory is a memory-section entry.
type Memory struct {
	Limits Limits
}

// Global is a global-section entry.
type Global struct {
	Type    ValType
	Mutable bool
	Init    []byte // raw init expr, ending in 0x0B
}

// Export is one entry of the export section.
type Export struct {
	Name  string
	Kind  ImportKind
	Index uint32
}

// LocalDecl is a (count, type) pair from a function body's locals prefix.
type LocalDecl struct {
	Count uint32
	Type  ValType
}

// Function is one entry of the code section: the function's own local
// declarations plus its raw instruction bytes (without the leading
// locals-count prefix, without the leading body-size prefix — both are
// reconstructed by the Emitter). The function's signature lives in the
// parallel function-section entry (by index), not here.
type Function struct {
	Locals []LocalDecl
	Body   []byte // instructions, up to and including the final 0x0B end
}

// ElementSegment is a raw element-section entry, kept as encoded bytes
// (table index, offset expr, function indices) since the compiler never
// needs to rewrite existing element segments.
type ElementSegment struct {
	Raw []byte
}

// DataSegment is a data-section entry.
type DataSegment struct {
	MemoryIndex uint32
	Offset      []byte // raw init expr, ending in 0x0B
	Init        []byte
}

// Module is the full in-memory model of a wasm binary (§3).
type Module struct {
	Types    []FuncType
	Imports  []Import
	FuncSec  []uint32 // type index per module-defined function
	Tables   []Table
	Memories []Memory
	Globals  []Global
	Exports  []Export
	Elements []ElementSegment
	Code     []Function
	Data     []DataSegment

	// customSections preserves any custom (name-bearing) sections verbatim
	// so re-emission doesn't silently drop producer/name metadata.
	customSections []customSection
}

type customSection struct {
	afterSectionID byte // re-emit immediately after this standard section ID (0 = at start)
	data           []byte
}

// NumImportedFuncs returns how many function imports precede the
// module-defined functions in the function index space (§3: "import
// functions before internal functions").
func (m *Module) NumImportedFuncs() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind == KindFunc {
			n++
		}
	}
	return n
}

// FuncTypeOf returns function index idx's signature. idx is in the global
// function index space (imports first, then module-defined functions).
func (m *Module) FuncTypeOf(idx uint32) (FuncType, bool) {
	nImp := 0
	for _, imp := range m.Imports {
		if imp.Kind != KindFunc {
			continue
		}
		if uint32(nImp) == idx {
			return m.Types[imp.TypeIndex], true
		}
		nImp++
	}
	local := int(idx) - m.NumImportedFuncs()
	if local < 0 || local >= len(m.FuncSec) {
		return FuncType{}, false
	}
	return m.Types[m.FuncSec[local]], true
}

// FindExport returns the export entry named name, if any.
func (m *Module) FindExport(name string) (Export, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return Export{}, false
}
