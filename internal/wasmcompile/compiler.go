// Package wasmcompile lowers a decoded, analyzed EVM program into a wasm
// function body implementing EVM's dynamic control flow as a structured
// dispatch loop (§4.4).
package wasmcompile

import (
	"github.com/evm2wasm/evm2wasm/internal/config"
	"github.com/evm2wasm/evm2wasm/internal/evmanalyze"
	"github.com/evm2wasm/evm2wasm/internal/evmcode"
	"github.com/evm2wasm/evm2wasm/internal/wasmmodule"
)

// CompileResult is everything wasmlink needs to merge a compiled contract
// into a runtime module (§4.4 "Output shape").
type CompileResult struct {
	EntrypointName string
	// Functions and FuncTypes are parallel, new-function-index order:
	// [0] the pc -> block-id jump-resolve helper, [1] the contract
	// entrypoint. The helper is emitted first because the entrypoint's
	// body calls it by index, and a prepend-only merge can't renumber
	// anything already referenced.
	Functions    []wasmmodule.Function
	FuncTypes    []wasmmodule.FuncType
	BytecodeData []byte
}

// Compile turns raw EVM bytecode into a CompileResult against the given
// runtime module's symbol table (§4.4).
func Compile(code []byte, runtime *wasmmodule.Module, cfg config.CompilerConfig) (*CompileResult, error) {
	prog, err := evmcode.Decode(code)
	if err != nil {
		return nil, err
	}
	blocks, jt := evmanalyze.Analyze(prog)

	st, err := newSymbolTable(runtime)
	if err != nil {
		return nil, err
	}

	helperIdx := uint32(runtime.NumImportedFuncs() + len(runtime.FuncSec))

	blockOf := make(map[uint32]int, jt.Len())
	for _, pc := range jt.PCs() {
		idx, _ := jt.BlockIndex(pc)
		blockOf[pc] = idx
	}
	helperAsm, _ := chooseJumpResolve(jt.PCs(), blockOf, len(prog.Code))

	ctx := &lowerCtx{st: st, cfg: cfg, jumpResolve: helperIdx, numBlocks: len(blocks)}
	bodies := make([]*asm, len(blocks))
	for _, b := range blocks {
		lb, err := lowerBlock(ctx, b)
		if err != nil {
			return nil, err
		}
		bodies[b.Index] = lb
	}
	if len(bodies) == 0 {
		// Empty program: a single implicit STOP (§4.1 edge case).
		stopIdx, rerr := st.resolve("stop")
		if rerr != nil {
			return nil, rerr
		}
		bodies = []*asm{(&asm{}).call(stopIdx).ret()}
	}

	selector := (&asm{}).localGet(localTarget)
	dispatch := emitBlockSwitch(selector, bodies, (&asm{}).unreachable())

	mainBody := &asm{}
	mainBody.i32Const(0).localSet(localTarget)
	mainBody.loop()
	mainBody.append(dispatch)
	mainBody.end()

	entrypointType := wasmmodule.FuncType{}
	helperType := wasmmodule.FuncType{
		Params:  []wasmmodule.ValType{wasmmodule.ValI32},
		Results: []wasmmodule.ValType{wasmmodule.ValI32},
	}

	entrypointFn := wasmmodule.Function{
		Locals: []wasmmodule.LocalDecl{{Count: 2, Type: wasmmodule.ValI32}},
		Body:   append(mainBody.bytes(), 0x0B),
	}
	helperFn := wasmmodule.Function{Body: append(helperAsm.bytes(), 0x0B)}

	return &CompileResult{
		EntrypointName: cfg.EntrypointName,
		Functions:      []wasmmodule.Function{helperFn, entrypointFn},
		FuncTypes:      []wasmmodule.FuncType{helperType, entrypointType},
		BytecodeData:   prog.Code,
	}, nil
}
