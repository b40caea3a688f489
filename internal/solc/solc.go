// Package solc invokes the external Solidity compiler to turn a .sol
// source file into runtime bytecode and its ABI (§6). Grounded on the
// original compiler's two solc invocations (original_source's
// `solidity::compile` / `solidity::compile_abi`), run here concurrently
// with golang.org/x/sync/errgroup instead of sequentially.
package solc

import (
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/evm2wasm/evm2wasm/internal/cerr"
)

// BinaryName is the solc executable looked up on PATH.
const BinaryName = "solc"

// Result holds both solc outputs for one source file.
type Result struct {
	BinRuntime []byte // raw bytecode, hex-decoded
	ABI        json.RawMessage
}

// Compile runs `solc --bin-runtime --optimize` and `solc --abi --optimize`
// against path concurrently and returns the first error either invocation
// reports (§5: the compiler blocks only on this subprocess).
func Compile(ctx context.Context, path string) (*Result, error) {
	var res Result
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := runSolc(ctx, "--bin-runtime", path)
		if err != nil {
			return err
		}
		res.BinRuntime, err = extractHex(out, "Binary of the runtime part")
		return err
	})
	g.Go(func() error {
		out, err := runSolc(ctx, "--abi", path)
		if err != nil {
			return err
		}
		res.ABI, err = extractJSON(out)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &res, nil
}

func runSolc(ctx context.Context, flag, path string) (string, error) {
	cmd := exec.CommandContext(ctx, BinaryName, flag, "--optimize", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", cerr.Wrap(cerr.KindSolcFailed, BinaryName+" "+flag+" "+path, err)
	}
	return string(out), nil
}

// extractHex pulls the hex blob that solc prints beneath a banner line
// (solc's --bin-runtime textual output format: a labeled line, then the
// hex digits on the following non-empty line).
func extractHex(out, banner string) ([]byte, error) {
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if strings.Contains(line, banner) {
			for _, candidate := range lines[i+1:] {
				candidate = strings.TrimSpace(candidate)
				if candidate == "" {
					continue
				}
				return decodeHex(candidate)
			}
		}
	}
	return nil, cerr.New(cerr.KindSolcFailed, "solc output missing runtime bytecode")
}

func extractJSON(out string) (json.RawMessage, error) {
	i := strings.IndexByte(out, '[')
	if i < 0 {
		i = strings.IndexByte(out, '{')
	}
	if i < 0 {
		return nil, cerr.New(cerr.KindSolcFailed, "solc output missing ABI json")
	}
	raw := json.RawMessage(strings.TrimSpace(out[i:]))
	if !json.Valid(raw) {
		return nil, cerr.New(cerr.KindSolcFailed, "solc produced invalid ABI json")
	}
	return raw, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 != 0 {
		return nil, cerr.New(cerr.KindSolcFailed, "odd-length bytecode from solc")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, ok1 := hexVal(s[2*i])
		lo, ok2 := hexVal(s[2*i+1])
		if !ok1 || !ok2 {
			return nil, cerr.New(cerr.KindSolcFailed, "non-hex byte in solc output")
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
