// Package cliformat resolves the CLI's input/output format flags, including
// extension-based "auto" detection (§6). The -b ABI flag is resolved by
// package config. Grounded on the
// original compiler's format module (original_source/bin/evm2cspr).
package cliformat

import (
	"strings"

	"github.com/evm2wasm/evm2wasm/internal/cerr"
)

// InputFormat selects how the CLI's input bytes are interpreted.
type InputFormat string

const (
	InputAuto InputFormat = "auto"
	InputBin  InputFormat = "bin"
	InputSol  InputFormat = "sol"
)

// OutputFormat selects the CLI's output encoding. Wasm is the only
// supported target (§6); Auto resolves to it.
type OutputFormat string

const (
	OutputAuto OutputFormat = "auto"
	OutputWasm OutputFormat = "wasm"
)

// ParseInputFormat validates a -f argument.
func ParseInputFormat(s string) (InputFormat, error) {
	switch InputFormat(s) {
	case InputAuto, InputBin, InputSol:
		return InputFormat(s), nil
	default:
		return "", cerr.New(cerr.KindConfigError, "-f must be auto, bin or sol, got "+s)
	}
}

// ParseOutputFormat validates a -t argument.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputAuto, OutputWasm:
		return OutputFormat(s), nil
	default:
		return "", cerr.New(cerr.KindConfigError, "-t must be auto or wasm, got "+s)
	}
}

// ResolveInputFormat picks a concrete format for InputAuto from the input
// path's extension (§6: ".bin"/".sol"/".hex"), defaulting to Bin when the
// extension is unrecognized or absent — mirroring the original's
// parse_input_extension, which falls back to Bin rather than erroring.
func ResolveInputFormat(requested InputFormat, path string) InputFormat {
	if requested != InputAuto {
		return requested
	}
	switch extensionOf(path) {
	case "sol":
		return InputSol
	case "bin", "hex":
		return InputBin
	default:
		return InputBin
	}
}

// ResolveOutputFormat picks a concrete format for OutputAuto. Wasm is the
// only target this compiler emits (§6's Non-goals exclude other targets),
// so Auto always resolves to Wasm regardless of the output path.
func ResolveOutputFormat(requested OutputFormat) OutputFormat {
	if requested == OutputAuto {
		return OutputWasm
	}
	return requested
}

func extensionOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 || i == len(path)-1 {
		return ""
	}
	return strings.ToLower(path[i+1:])
}
