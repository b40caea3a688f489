package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evm2wasm/evm2wasm/internal/config"
	"github.com/evm2wasm/evm2wasm/internal/wasmcompile"
	"github.com/evm2wasm/evm2wasm/internal/wasmlink"
	"github.com/evm2wasm/evm2wasm/internal/wasmmodule"
)

func TestBuildMinimalExportsEveryRequiredSymbol(t *testing.T) {
	m := BuildMinimal()
	_, ok := m.FindExport(CodeBaseGlobal)
	require.True(t, ok)

	for _, name := range wasmcompile.RequiredHelperNames() {
		_, ok := m.FindExport(name)
		require.True(t, ok, "missing required helper export %s", name)
	}
	for _, name := range wasmcompile.RequiredOpcodeNames() {
		_, ok := m.FindExport(name)
		require.True(t, ok, "missing required opcode export %s", name)
	}
}

func TestCompileSimpleAddAgainstMinimalRuntime(t *testing.T) {
	runtimeMod := BuildMinimal()
	// PUSH1 1, PUSH1 2, ADD, STOP
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00}
	result, err := wasmcompile.Compile(code, runtimeMod, config.Default())
	require.NoError(t, err)
	require.Len(t, result.Functions, 2)
	require.Len(t, result.FuncTypes, 2)
	require.Equal(t, "_evm_execute", result.EntrypointName)
}

func TestCompileRevertAgainstMinimalRuntime(t *testing.T) {
	runtimeMod := BuildMinimal()
	// PUSH1 0, PUSH1 0, REVERT
	code := []byte{0x60, 0x00, 0x60, 0x00, 0xfd}
	result, err := wasmcompile.Compile(code, runtimeMod, config.Default())
	require.NoError(t, err)
	require.NotEmpty(t, result.Functions[1].Body)
}

func TestCompileThenMergeProducesLoadableModule(t *testing.T) {
	runtimeMod := BuildMinimal()
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00}
	result, err := wasmcompile.Compile(code, runtimeMod, config.Default())
	require.NoError(t, err)

	merged, err := wasmlink.Merge(runtimeMod, result)
	require.NoError(t, err)

	_, ok := merged.FindExport("_evm_execute")
	require.True(t, ok)

	raw := wasmmodule.Emit(merged)
	parsed, err := wasmmodule.Parse(raw)
	require.NoError(t, err)
	_, ok = parsed.FindExport("_evm_execute")
	require.True(t, ok)
}

func TestCompileEmptyProgramRejected(t *testing.T) {
	runtimeMod := BuildMinimal()
	result, err := wasmcompile.Compile(nil, runtimeMod, config.Default())
	require.Error(t, err) // evmcode.Decode rejects empty input (§4.1)
	require.Nil(t, result)
}
