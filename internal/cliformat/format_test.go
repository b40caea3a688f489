package cliformat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInputFormatValid(t *testing.T) {
	for _, s := range []string{"auto", "bin", "sol"} {
		f, err := ParseInputFormat(s)
		require.NoError(t, err)
		require.Equal(t, InputFormat(s), f)
	}
}

func TestParseInputFormatInvalid(t *testing.T) {
	_, err := ParseInputFormat("yaml")
	require.Error(t, err)
}

func TestResolveInputFormatByExtension(t *testing.T) {
	require.Equal(t, InputSol, ResolveInputFormat(InputAuto, "Contract.sol"))
	require.Equal(t, InputBin, ResolveInputFormat(InputAuto, "contract.bin"))
	require.Equal(t, InputBin, ResolveInputFormat(InputAuto, "contract.hex"))
	require.Equal(t, InputBin, ResolveInputFormat(InputAuto, "contract.unknownext"))
	require.Equal(t, InputBin, ResolveInputFormat(InputAuto, "no-extension"))
}

func TestResolveInputFormatExplicitBypassesDetection(t *testing.T) {
	require.Equal(t, InputSol, ResolveInputFormat(InputSol, "contract.bin"))
}

func TestResolveOutputFormatAlwaysWasm(t *testing.T) {
	require.Equal(t, OutputWasm, ResolveOutputFormat(OutputAuto))
	require.Equal(t, OutputWasm, ResolveOutputFormat(OutputWasm))
}
