package wasmmodule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLEB128U32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 300, 1 << 20, 1<<32 - 1} {
		buf := AppendU32(nil, v)
		got, n, err := DecodeU32(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestLEB128I32RoundTripViaConstExpr(t *testing.T) {
	for _, v := range []int32{0, -1, 1, -64, 63, -65, 64, 1 << 20, -(1 << 20)} {
		buf := AppendI32([]byte{0x41}, v)
		buf = append(buf, 0x0B)
		require.Equal(t, byte(0x41), buf[0])
		require.Equal(t, byte(0x0B), buf[len(buf)-1])
		got, n, err := decodeSLEB(buf[1:], 32)
		require.NoError(t, err)
		require.Equal(t, len(buf)-2, n)
		require.Equal(t, int64(v), got)
	}
}

func TestFuncTypeEqual(t *testing.T) {
	a := FuncType{Params: []ValType{ValI32, ValI64}, Results: []ValType{ValI32}}
	b := FuncType{Params: []ValType{ValI32, ValI64}, Results: []ValType{ValI32}}
	c := FuncType{Params: []ValType{ValI32}, Results: []ValType{ValI32}}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestEmitParseRoundTrip(t *testing.T) {
	m := &Module{
		Types:    []FuncType{{}, {Results: []ValType{ValI32}}},
		FuncSec:  []uint32{1},
		Memories: []Memory{{Limits: Limits{Min: 1}}},
		Globals:  []Global{{Type: ValI32, Mutable: false, Init: []byte{0x41, 0x00, 0x0B}}},
		Exports: []Export{
			{Name: "answer", Kind: KindFunc, Index: 0},
			{Name: "mem", Kind: KindMemory, Index: 0},
		},
		Code: []Function{
			{Body: []byte{0x41, 0x2A, 0x0B}}, // i32.const 42; end
		},
	}

	raw := Emit(m)
	require.NotEmpty(t, raw)
	require.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D}, raw[:4])

	parsed, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, parsed.Types, 2)
	require.Len(t, parsed.Code, 1)
	require.Len(t, parsed.Exports, 2)

	exp, ok := parsed.FindExport("answer")
	require.True(t, ok)
	require.Equal(t, uint32(0), exp.Index)

	ft, ok := parsed.FuncTypeOf(0)
	require.True(t, ok)
	require.Equal(t, []ValType{ValI32}, ft.Results)
}

func TestNumImportedFuncsAndIndexSpace(t *testing.T) {
	m := &Module{
		Types: []FuncType{{}},
		Imports: []Import{
			{Module: "env", Field: "a", Kind: KindFunc, TypeIndex: 0},
			{Module: "env", Field: "mem", Kind: KindMemory},
		},
		FuncSec: []uint32{0},
	}
	require.Equal(t, 1, m.NumImportedFuncs())

	// index 0 -> the imported func, index 1 -> the first module-defined func
	_, ok := m.FuncTypeOf(0)
	require.True(t, ok)
	_, ok = m.FuncTypeOf(1)
	require.True(t, ok)
	_, ok = m.FuncTypeOf(2)
	require.False(t, ok)
}
