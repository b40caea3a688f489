package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseChainIDNamedAliases(t *testing.T) {
	id, err := ParseChainID("mainnet")
	require.NoError(t, err)
	require.Equal(t, ChainIDMainnet, id)

	id, err = ParseChainID("testnet")
	require.NoError(t, err)
	require.Equal(t, ChainIDTestnet, id)

	id, err = ParseChainID("betanet")
	require.NoError(t, err)
	require.Equal(t, ChainIDBetanet, id)
}

func TestParseChainIDNumeric(t *testing.T) {
	id, err := ParseChainID("42")
	require.NoError(t, err)
	require.Equal(t, uint64(42), id)
}

func TestParseChainIDInvalid(t *testing.T) {
	_, err := ParseChainID("not-a-chain")
	require.Error(t, err)
}

func TestParseABI(t *testing.T) {
	abi, err := ParseABI("cspr")
	require.NoError(t, err)
	require.Equal(t, ABICspr, abi)

	abi, err = ParseABI("wasi")
	require.NoError(t, err)
	require.Equal(t, ABIWasi, abi)

	_, err = ParseABI("bogus")
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	require.Equal(t, ABICspr, cfg.ABI)
	require.Equal(t, ChainIDMainnet, cfg.ChainID)
	require.True(t, cfg.GasAccounting)
	require.True(t, cfg.ProgramCounter)
	require.Equal(t, "_evm_execute", cfg.EntrypointName)
}
