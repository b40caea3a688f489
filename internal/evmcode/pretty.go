package evmcode

import "github.com/holiman/uint256"

// ImmediateDecimal renders a PUSHn immediate as an unsigned base-10 string,
// for debug-dump pretty printing of large constants (§6). immed is
// interpreted as a big-endian unsigned integer of up to 32 bytes, matching
// EVM's native word width.
func ImmediateDecimal(immed []byte) string {
	if len(immed) == 0 {
		return "0"
	}
	var padded [32]byte
	n := len(immed)
	if n > 32 {
		n = 32
		immed = immed[len(immed)-32:]
	}
	copy(padded[32-n:], immed)
	v := new(uint256.Int).SetBytes(padded[:])
	return v.Dec()
}
