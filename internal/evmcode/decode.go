package evmcode

import (
	"strings"

	"github.com/evm2wasm/evm2wasm/internal/cerr"
)

// Instruction is one decoded EVM instruction (§3: "Instruction record").
type Instruction struct {
	PC     uint32
	Opcode Opcode
	Size   uint8  // 1 + len(Immediate)
	Immed  []byte // only non-nil for PUSHn
}

// Program is the decoder's output: the ordered instruction stream plus the
// original bytes (§3, needed for CODECOPY/CODESIZE at runtime).
type Program struct {
	Instructions []Instruction
	Code         []byte
}

// metadataLengthFieldSize is the size, in bytes, of the trailing length
// field the Solidity toolchain appends after a CBOR metadata blob.
const metadataLengthFieldSize = 2

// Decode disassembles raw EVM bytecode into a Program. input may be raw
// binary or hex (optionally "0x"-prefixed, whitespace tolerant); §4.1.
func Decode(input []byte) (*Program, error) {
	code, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, cerr.New(cerr.KindEmpty, "input has no bytecode")
	}
	code = stripMetadata(code)

	prog := &Program{Code: code}
	pc := uint32(0)
	for int(pc) < len(code) {
		op := Opcode(code[pc])
		size := uint8(1)
		var immed []byte
		if op.IsPush() {
			n := op.PushSize()
			end := int(pc) + 1 + n
			consumed := n
			if end > len(code) {
				// Truncated PUSH: only the bytes actually present count
				// toward size (decode/length law, §8), but the logical
				// immediate is still zero-padded to n bytes (§4.1) so the
				// compiler can always emit a full-width push.
				consumed = len(code) - int(pc) - 1
				if consumed < 0 {
					consumed = 0
				}
			}
			immed = make([]byte, n)
			copy(immed, code[pc+1:pc+1+uint32(consumed)])
			size = uint8(1 + consumed)
		}
		prog.Instructions = append(prog.Instructions, Instruction{
			PC: pc, Opcode: op, Size: size, Immed: immed,
		})
		pc += uint32(size)
	}
	return prog, nil
}

// normalizeInput detects hex-encoded input and decodes it to raw bytes.
// Raw binary input (any byte sequence containing something outside the hex
// alphabet, or simply not looking like text) passes through unchanged.
func normalizeInput(input []byte) ([]byte, error) {
	trimmed := strings.TrimSpace(string(input))
	if trimmed == "" {
		return nil, nil
	}
	if !looksLikeHex(trimmed) {
		return input, nil
	}
	trimmed = strings.TrimPrefix(trimmed, "0x")
	trimmed = strings.TrimPrefix(trimmed, "0X")
	var b strings.Builder
	for _, r := range trimmed {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	hexStr := b.String()
	if len(hexStr)%2 != 0 {
		return nil, cerr.New(cerr.KindBadHex, "odd-length hex string")
	}
	out := make([]byte, len(hexStr)/2)
	for i := 0; i < len(out); i++ {
		hi, ok1 := hexNibble(hexStr[2*i])
		lo, ok2 := hexNibble(hexStr[2*i+1])
		if !ok1 || !ok2 {
			return nil, cerr.New(cerr.KindBadHex, "non-hex character in input")
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, bool) {
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

// looksLikeHex decides whether the raw input was meant as a hex string: all
// characters (ignoring whitespace and an optional 0x prefix) are in the hex
// alphabet. Raw binary bytecode almost always contains a non-hex byte
// (opcodes >= 0x7a as ASCII would need to spell hex digits only, which real
// contract bytecode essentially never does).
func looksLikeHex(s string) bool {
	body := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if body == "" {
		return false
	}
	for _, r := range body {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		case r == ' ' || r == '\n' || r == '\t' || r == '\r':
		default:
			return false
		}
	}
	return true
}

// stripMetadata removes a trailing Solidity CBOR metadata blob, if present.
// The toolchain appends the CBOR map followed by a 2-byte big-endian length
// of that map; §4.1 and §8 scenario 6.
func stripMetadata(code []byte) []byte {
	if len(code) < metadataLengthFieldSize {
		return code
	}
	n := len(code)
	length := int(code[n-2])<<8 | int(code[n-1])
	metaStart := n - metadataLengthFieldSize - length
	if length == 0 || metaStart < 0 || metaStart >= n-metadataLengthFieldSize {
		return code
	}
	// A CBOR map header's top three bits are 101 (major type 5, map), i.e.
	// 0xA0-0xBF.
	if code[metaStart]&0xE0 != 0xA0 {
		return code
	}
	return code[:metaStart]
}
