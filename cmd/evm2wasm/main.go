// Command evm2wasm is a static ahead-of-time compiler from EVM bytecode
// (or Solidity source) to a wasm module linked against a prebuilt runtime
// library.
//
// Usage:
//
//	evm2wasm [flags] [INPUT]
//
// Flags:
//
//	-o FILE                  output file (default stdout)
//	-f {auto,bin,sol}        input format (default auto)
//	-t {auto,wasm}           output format (default auto)
//	-b {cspr,wasi}           target ABI (default cspr)
//	--chain-id ID            mainnet, testnet, betanet, or a u64 (default mainnet)
//	--fno-gas-accounting     disable gas instrumentation
//	--fno-program-counter    disable pc instrumentation
//	-d DIR                   write per-phase debug artifacts under DIR
//	-v                       verbose (shorthand for --log-level debug)
//	--log-level LEVEL        debug, info, warn, error (default info)
//	--log-format FORMAT      json, structured, text, color (default json)
//	-V                       print version and exit
//
// `evm2wasm dump -dir DIR` inspects debug artifacts written by a prior
// `-d DIR` run.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/evm2wasm/evm2wasm/internal/cerr"
	"github.com/evm2wasm/evm2wasm/internal/cliformat"
	"github.com/evm2wasm/evm2wasm/internal/config"
	"github.com/evm2wasm/evm2wasm/internal/debugdump"
	"github.com/evm2wasm/evm2wasm/internal/evmcode"
	"github.com/evm2wasm/evm2wasm/internal/solc"
	"github.com/evm2wasm/evm2wasm/internal/wasmcompile"
	"github.com/evm2wasm/evm2wasm/internal/wasmlink"
	"github.com/evm2wasm/evm2wasm/internal/wasmmodule"
	elog "github.com/evm2wasm/evm2wasm/log"
	"github.com/evm2wasm/evm2wasm/runtime"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "dump" {
		os.Exit(runDumpCLI(os.Args[2:]))
	}
	os.Exit(run(os.Args[1:]))
}

// options mirrors the original compiler's flag surface (§6), adapted onto
// Go's flag package via the project's custom flagSet wrapper.
type options struct {
	chainID          string
	debugFolder      string
	from             string
	to               string
	abi              string
	noGasAccounting  bool
	noProgramCounter bool
	outputPath       string
	verbose          bool
	logLevel         string
	logFormat        string
	showVersion      bool
}

func parseFlags(args []string) (*options, []string, bool, int) {
	opts := &options{chainID: "mainnet", from: "auto", to: "auto", abi: "cspr", outputPath: "-"}
	fs := newCustomFlagSet("evm2wasm")
	fs.StringVar(&opts.chainID, "chain-id", opts.chainID, "mainnet, testnet, betanet, or a numeric chain id")
	fs.StringVar(&opts.debugFolder, "d", "", "write per-phase debug artifacts under this directory")
	fs.StringVar(&opts.from, "f", opts.from, "input format: auto, bin, sol")
	fs.StringVar(&opts.to, "t", opts.to, "output format: auto, wasm")
	fs.StringVar(&opts.abi, "b", opts.abi, "target ABI: cspr, wasi")
	fs.BoolVar(&opts.noGasAccounting, "fno-gas-accounting", false, "disable precise gas instrumentation")
	fs.BoolVar(&opts.noProgramCounter, "fno-program-counter", false, "disable precise program counter instrumentation")
	fs.StringVar(&opts.outputPath, "o", opts.outputPath, "output file (default stdout)")
	fs.BoolVar(&opts.verbose, "v", false, "verbose output (equivalent to --log-level debug)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", "json", "console log format: json, structured, text, color")
	fs.BoolVar(&opts.showVersion, "V", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "evm2wasm: %v\n", err)
		return nil, nil, true, 2
	}
	if opts.showVersion {
		fmt.Printf("evm2wasm %s (commit %s)\n", version, commit)
		return nil, nil, true, 0
	}
	return opts, fs.Args(), false, 0
}

func run(args []string) int {
	opts, positional, exit, code := parseFlags(args)
	if exit {
		return code
	}

	level := logLevelToSlog(elog.LevelFromString(opts.logLevel))
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(level, opts.logFormat)
	elog.SetDefault(logger)

	inputPath := "-"
	if len(positional) > 0 {
		inputPath = positional[0]
	}

	if err := compileOne(logger, opts, inputPath); err != nil {
		fmt.Fprintln(os.Stderr, cerr.CLILine(err))
		return 1
	}
	return 0
}

// newLogger builds the CLI's console logger. "json" keeps the default
// machine-readable slog.JSONHandler stream; "text"/"color" switch to the
// LogFormatter-backed handler for a human-readable console (§6 ambient
// logging surface).
func newLogger(level slog.Level, format string) *elog.Logger {
	switch format {
	case "text":
		return elog.NewFormatted(level, &elog.TextFormatter{}, os.Stderr)
	case "color":
		return elog.NewFormatted(level, &elog.ColorFormatter{}, os.Stderr)
	case "structured":
		return elog.NewFormatted(level, &elog.JSONFormatter{}, os.Stderr)
	default:
		return elog.New(level)
	}
}

func logLevelToSlog(l elog.LogLevel) slog.Level {
	switch l {
	case elog.DEBUG:
		return slog.LevelDebug
	case elog.WARN:
		return slog.LevelWarn
	case elog.ERROR, elog.FATAL:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func compileOne(logger *elog.Logger, opts *options, inputPath string) error {
	inFmt, err := cliformat.ParseInputFormat(opts.from)
	if err != nil {
		return err
	}
	outFmt, err := cliformat.ParseOutputFormat(opts.to)
	if err != nil {
		return err
	}
	abi, err := config.ParseABI(opts.abi)
	if err != nil {
		return err
	}
	chainID, err := config.ParseChainID(opts.chainID)
	if err != nil {
		return err
	}
	dbg, err := debugdump.New(opts.debugFolder)
	if err != nil {
		return err
	}

	resolvedIn := cliformat.ResolveInputFormat(inFmt, inputPath)
	cliformat.ResolveOutputFormat(outFmt) // validated; wasm is the only target (§6)

	decodeLog := logger.Module("decode")
	bytecode, err := readBytecode(context.Background(), resolvedIn, inputPath, decodeLog)
	if err != nil {
		return err
	}
	_ = dbg.Write("bytecode", "bin", bytecode)
	if dbg.Enabled() {
		_ = dbg.WriteJSON("decode", decodeDebugSummary(bytecode))
	}

	cfg := config.Default()
	cfg.ABI = abi
	cfg.ChainID = chainID
	cfg.GasAccounting = !opts.noGasAccounting
	cfg.ProgramCounter = !opts.noProgramCounter

	runtimeMod, err := runtime.Load(cfg.ABI)
	if err != nil {
		return err
	}

	compileLog := logger.Module("compile")
	compileLog.Debug("compiling", "bytes", len(bytecode), "chain_id", cfg.ChainID)
	result, err := wasmcompile.Compile(bytecode, runtimeMod, cfg)
	if err != nil {
		return err
	}
	_ = dbg.WriteJSON("analyze", struct {
		Functions int `json:"new_functions"`
	}{len(result.Functions)})

	linkLog := logger.Module("link")
	linkLog.Debug("merging into runtime module")
	merged, err := wasmlink.Merge(runtimeMod, result)
	if err != nil {
		return err
	}

	out, err := openOutput(opts.outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	moduleBytes := wasmmodule.Emit(merged)
	fingerprint := wasmmodule.Fingerprint(moduleBytes)
	linkLog.Debug("emitted module", "bytes", len(moduleBytes), "keccak256", fingerprint)
	_ = dbg.WriteJSON("link", struct {
		Bytes      int    `json:"bytes"`
		Keccak256  string `json:"keccak256"`
		Entrypoint string `json:"entrypoint"`
	}{len(moduleBytes), fingerprint, result.EntrypointName})

	if _, err := out.Write(moduleBytes); err != nil {
		return cerr.Wrap(cerr.KindIoError, "writing output", err)
	}
	return nil
}

// pushConstant is one decoded PUSH immediate rendered for a debug artifact:
// large constants are much easier to eyeball in decimal than hex.
type pushConstant struct {
	PC      uint32 `json:"pc"`
	Opcode  string `json:"opcode"`
	Decimal string `json:"decimal"`
}

func decodeDebugSummary(bytecode []byte) []pushConstant {
	prog, err := evmcode.Decode(bytecode)
	if err != nil {
		return nil
	}
	var out []pushConstant
	for _, instr := range prog.Instructions {
		if !instr.Opcode.IsPush() {
			continue
		}
		out = append(out, pushConstant{
			PC:      instr.PC,
			Opcode:  instr.Opcode.String(),
			Decimal: evmcode.ImmediateDecimal(instr.Immed),
		})
	}
	return out
}

func readBytecode(ctx context.Context, format cliformat.InputFormat, path string, logger *elog.Logger) ([]byte, error) {
	switch format {
	case cliformat.InputSol:
		logger.Debug("invoking solc", "path", path)
		res, err := solc.Compile(ctx, path)
		if err != nil {
			return nil, err
		}
		return res.BinRuntime, nil
	default:
		raw, err := readInput(path)
		if err != nil {
			return nil, err
		}
		prog, err := evmcode.Decode(raw)
		if err != nil {
			return nil, err
		}
		return prog.Code, nil
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" || path == "/dev/stdin" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, cerr.Wrap(cerr.KindIoError, "reading stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerr.Wrap(cerr.KindIoError, "reading "+path, err)
	}
	return data, nil
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" || path == "/dev/stdout" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, cerr.Wrap(cerr.KindIoError, "opening output "+path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
