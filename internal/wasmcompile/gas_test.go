package wasmcompile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/evm2wasm/evm2wasm/internal/evmcode"
)

func TestBaseGasForPushDupSwapShareOneCost(t *testing.T) {
	require.Equal(t, gasVeryLow, baseGasFor(evmcode.PUSH1))
	require.Equal(t, gasVeryLow, baseGasFor(evmcode.PUSH32))
	require.Equal(t, gasVeryLow, baseGasFor(evmcode.DUP1))
	require.Equal(t, gasVeryLow, baseGasFor(evmcode.DUP16))
	require.Equal(t, gasVeryLow, baseGasFor(evmcode.SWAP1))
	require.Equal(t, gasVeryLow, baseGasFor(evmcode.SWAP16))
}

func TestBaseGasForEnumeratedOpcodes(t *testing.T) {
	require.Equal(t, gasVeryLow, baseGasFor(evmcode.ADD))
	require.Equal(t, gasLow, baseGasFor(evmcode.MUL))
	require.Equal(t, gasSha3, baseGasFor(evmcode.SHA3))
	require.Equal(t, gasJumpdest, baseGasFor(evmcode.JUMPDEST))
}

func TestBaseGasForUnknownOpcodeIsZero(t *testing.T) {
	require.Equal(t, gasZero, baseGasFor(evmcode.Opcode(0x0c)))
}

func TestAddmodMulmodGasMatchesMid(t *testing.T) {
	require.Equal(t, gasMid, addmodMulmodWidenedGas())
	require.Equal(t, gasMid, baseGasFor(evmcode.ADDMOD))
	require.Equal(t, gasMid, baseGasFor(evmcode.MULMOD))
}
