package wasmcompile

import (
	"github.com/evm2wasm/evm2wasm/internal/cerr"
	"github.com/evm2wasm/evm2wasm/internal/evmcode"
	"github.com/evm2wasm/evm2wasm/internal/wasmmodule"
)

// requiredHelpers are the fixed-name runtime exports every compiled
// contract depends on regardless of its opcode mix (§6: "each must
// export, at minimum").
var requiredHelpers = RequiredHelperNames()

// RequiredHelperNames lists the fixed-name runtime exports every compiled
// contract depends on regardless of its opcode mix (§6).
func RequiredHelperNames() []string {
	return []string{
		"_evm_init", "_evm_call", "_evm_post_exec",
		"_evm_pop_u32", "_evm_push_u32", "_evm_set_pc", "_evm_burn_gas",
	}
}

// symbolTable resolves runtime export names to function indices once per
// compile, so lowering a whole program only ever does map lookups.
type symbolTable struct {
	runtime *wasmmodule.Module
	byName  map[string]uint32
}

func newSymbolTable(runtime *wasmmodule.Module) (*symbolTable, error) {
	st := &symbolTable{runtime: runtime, byName: make(map[string]uint32)}
	for _, e := range runtime.Exports {
		if e.Kind == wasmmodule.KindFunc {
			st.byName[e.Name] = e.Index
		}
	}
	for _, name := range requiredHelpers {
		if _, err := st.resolve(name); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (st *symbolTable) resolve(name string) (uint32, error) {
	idx, ok := st.byName[name]
	if !ok {
		return 0, cerr.New(cerr.KindMissingSymbol, name)
	}
	return idx, nil
}

// PushChunkCount returns how many i64 parameters pushN's runtime export
// takes for an n-byte immediate: n bytes split into 8-byte-or-smaller
// big-endian chunks (§4.4).
func PushChunkCount(n int) int {
	return (n + 7) / 8
}

// pushHelperName returns the runtime export implementing PUSHn (§4.4).
func pushHelperName(n int) string {
	switch {
	case n >= 1 && n <= 32:
		return pushNames[n-1]
	default:
		return ""
	}
}

var pushNames = [32]string{
	"push1", "push2", "push3", "push4", "push5", "push6", "push7", "push8",
	"push9", "push10", "push11", "push12", "push13", "push14", "push15", "push16",
	"push17", "push18", "push19", "push20", "push21", "push22", "push23", "push24",
	"push25", "push26", "push27", "push28", "push29", "push30", "push31", "push32",
}

var dupNames = [16]string{
	"dup1", "dup2", "dup3", "dup4", "dup5", "dup6", "dup7", "dup8",
	"dup9", "dup10", "dup11", "dup12", "dup13", "dup14", "dup15", "dup16",
}

var swapNames = [16]string{
	"swap1", "swap2", "swap3", "swap4", "swap5", "swap6", "swap7", "swap8",
	"swap9", "swap10", "swap11", "swap12", "swap13", "swap14", "swap15", "swap16",
}

var logNames = [5]string{"log0", "log1", "log2", "log3", "log4"}

var fixedOpNames = map[evmcode.Opcode]string{
	evmcode.STOP: "stop", evmcode.ADD: "add", evmcode.MUL: "mul", evmcode.SUB: "sub",
	evmcode.DIV: "div", evmcode.SDIV: "sdiv", evmcode.MOD: "mod", evmcode.SMOD: "smod",
	evmcode.ADDMOD: "addmod", evmcode.MULMOD: "mulmod", evmcode.EXP: "exp", evmcode.SIGNEXTEND: "signextend",
	evmcode.LT: "lt", evmcode.GT: "gt", evmcode.SLT: "slt", evmcode.SGT: "sgt",
	evmcode.EQ: "eq", evmcode.ISZERO: "iszero", evmcode.AND: "and", evmcode.OR: "or",
	evmcode.XOR: "xor", evmcode.NOT: "not", evmcode.BYTE: "byte",
	evmcode.SHL: "shl", evmcode.SHR: "shr", evmcode.SAR: "sar",
	evmcode.SHA3: "sha3",
	evmcode.ADDRESS: "address", evmcode.BALANCE: "balance", evmcode.ORIGIN: "origin", evmcode.CALLER: "caller",
	evmcode.CALLVALUE: "callvalue", evmcode.CALLDATALOAD: "calldataload", evmcode.CALLDATASIZE: "calldatasize",
	evmcode.CALLDATACOPY: "calldatacopy", evmcode.CODESIZE: "codesize", evmcode.CODECOPY: "codecopy",
	evmcode.GASPRICE: "gasprice", evmcode.EXTCODESIZE: "extcodesize", evmcode.EXTCODECOPY: "extcodecopy",
	evmcode.RETURNDATASIZE: "returndatasize", evmcode.RETURNDATACOPY: "returndatacopy", evmcode.EXTCODEHASH: "extcodehash",
	evmcode.BLOCKHASH: "blockhash", evmcode.COINBASE: "coinbase", evmcode.TIMESTAMP: "timestamp",
	evmcode.NUMBER: "number", evmcode.DIFFICULTY: "difficulty", evmcode.GASLIMIT: "gaslimit",
	evmcode.CHAINID: "chainid", evmcode.SELFBALANCE: "selfbalance", evmcode.BASEFEE: "basefee",
	evmcode.POP: "pop", evmcode.MLOAD: "mload", evmcode.MSTORE: "mstore", evmcode.MSTORE8: "mstore8",
	evmcode.SLOAD: "sload", evmcode.SSTORE: "sstore",
	evmcode.PC: "pc", evmcode.MSIZE: "msize", evmcode.GAS: "gas",
	evmcode.CREATE: "create", evmcode.CALL: "call", evmcode.CALLCODE: "callcode", evmcode.RETURN: "return",
	evmcode.DELEGATECALL: "delegatecall", evmcode.CREATE2: "create2", evmcode.STATICCALL: "staticcall",
	evmcode.REVERT: "revert", evmcode.INVALID: "invalid", evmcode.SELFDESTRUCT: "selfdestruct",
}

// RequiredOpcodeNames lists every distinct runtime export name an opcode
// can lower to, on top of requiredHelpers. Exported so the runtime package
// can assemble a minimal symbol-complete module for tests without
// duplicating this enumeration.
func RequiredOpcodeNames() []string {
	names := make(map[string]struct{})
	for _, n := range fixedOpNames {
		names[n] = struct{}{}
	}
	for _, n := range pushNames {
		names[n] = struct{}{}
	}
	for _, n := range dupNames {
		names[n] = struct{}{}
	}
	for _, n := range swapNames {
		names[n] = struct{}{}
	}
	for _, n := range logNames {
		names[n] = struct{}{}
	}
	names["invalid"] = struct{}{}
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	return out
}

// runtimeNameFor returns the runtime export name implementing op's
// semantics, grounded on §4.4: "the runtime implements add, mul, sload,
// mstore, ...". JUMP/JUMPDEST/JUMPI are handled by the lowerer directly and
// never reach here; undefined opcodes map to "invalid".
func runtimeNameFor(op evmcode.Opcode) string {
	if name, ok := fixedOpNames[op]; ok {
		return name
	}
	if op.IsPush() {
		return pushHelperName(op.PushSize())
	}
	if op >= evmcode.DUP1 && op <= evmcode.DUP16 {
		return dupNames[op-evmcode.DUP1]
	}
	if op >= evmcode.SWAP1 && op <= evmcode.SWAP16 {
		return swapNames[op-evmcode.SWAP1]
	}
	if op >= evmcode.LOG0 && op <= evmcode.LOG4 {
		return logNames[op-evmcode.LOG0]
	}
	return "invalid"
}
