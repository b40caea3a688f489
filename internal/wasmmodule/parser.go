package wasmmodule

import (
	"encoding/binary"

	"github.com/evm2wasm/evm2wasm/internal/cerr"
)

const (
	wasmMagic   uint32 = 0x6D736100
	wasmVersion uint32 = 1
)

const (
	secCustom   byte = 0
	secType     byte = 1
	secImport   byte = 2
	secFunction byte = 3
	secTable    byte = 4
	secMemory   byte = 5
	secGlobal   byte = 6
	secExport   byte = 7
	secStart    byte = 8
	secElement  byte = 9
	secCode     byte = 10
	secData     byte = 11
)

// Parse reads a wasm binary module into the in-memory model (§4.3).
func Parse(raw []byte) (*Module, error) {
	if len(raw) < 8 {
		return nil, cerr.New(cerr.KindMergeError, "wasm blob shorter than header")
	}
	if binary.LittleEndian.Uint32(raw[0:4]) != wasmMagic {
		return nil, cerr.New(cerr.KindMergeError, "bad wasm magic")
	}
	if binary.LittleEndian.Uint32(raw[4:8]) != wasmVersion {
		return nil, cerr.New(cerr.KindMergeError, "unsupported wasm version")
	}

	m := &Module{}
	offset := 8
	var lastStdSection byte
	for offset < len(raw) {
		id := raw[offset]
		offset++
		size, n, err := DecodeU32(raw[offset:])
		if err != nil {
			return nil, cerr.Wrap(cerr.KindMergeError, "decoding section length", err)
		}
		offset += n
		if offset+int(size) > len(raw) {
			return nil, cerr.New(cerr.KindMergeError, "section runs past end of module")
		}
		body := raw[offset : offset+int(size)]
		offset += int(size)

		switch id {
		case secCustom:
			m.customSections = append(m.customSections, customSection{afterSectionID: lastStdSection, data: append([]byte{id}, appendSizedBody(body)...)})
			continue
		case secType:
			if err := parseTypeSection(m, body); err != nil {
				return nil, err
			}
		case secImport:
			if err := parseImportSection(m, body); err != nil {
				return nil, err
			}
		case secFunction:
			if err := parseFunctionSection(m, body); err != nil {
				return nil, err
			}
		case secTable:
			if err := parseTableSection(m, body); err != nil {
				return nil, err
			}
		case secMemory:
			if err := parseMemorySection(m, body); err != nil {
				return nil, err
			}
		case secGlobal:
			if err := parseGlobalSection(m, body); err != nil {
				return nil, err
			}
		case secExport:
			if err := parseExportSection(m, body); err != nil {
				return nil, err
			}
		case secElement:
			if err := parseElementSection(m, body); err != nil {
				return nil, err
			}
		case secCode:
			if err := parseCodeSection(m, body); err != nil {
				return nil, err
			}
		case secData:
			if err := parseDataSection(m, body); err != nil {
				return nil, err
			}
		case secStart:
			// Preserved verbatim as a custom-like section; the compiler's
			// contracts never define a start function (§4.4 output shape).
			m.customSections = append(m.customSections, customSection{afterSectionID: id, data: append([]byte{id}, appendSizedBody(body)...)})
			continue
		default:
			return nil, cerr.New(cerr.KindMergeError, "unknown section id")
		}
		lastStdSection = id
	}
	return m, nil
}

func appendSizedBody(body []byte) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(body)))
	return append(buf, body...)
}

func parseTypeSection(m *Module, body []byte) error {
	count, n, err := DecodeU32(body)
	if err != nil {
		return err
	}
	off := n
	for i := uint32(0); i < count; i++ {
		if off >= len(body) || body[off] != 0x60 {
			return cerr.New(cerr.KindMergeError, "expected func type form 0x60")
		}
		off++
		ft, consumed, err := parseFuncTypeBody(body[off:])
		if err != nil {
			return err
		}
		off += consumed
		m.Types = append(m.Types, ft)
	}
	return nil
}

func parseFuncTypeBody(data []byte) (FuncType, int, error) {
	var ft FuncType
	nParams, n, err := DecodeU32(data)
	if err != nil {
		return ft, 0, err
	}
	off := n
	for i := uint32(0); i < nParams; i++ {
		ft.Params = append(ft.Params, ValType(data[off]))
		off++
	}
	nResults, n2, err := DecodeU32(data[off:])
	if err != nil {
		return ft, 0, err
	}
	off += n2
	for i := uint32(0); i < nResults; i++ {
		ft.Results = append(ft.Results, ValType(data[off]))
		off++
	}
	return ft, off, nil
}

func parseLimits(data []byte) (Limits, int, error) {
	var l Limits
	if len(data) < 1 {
		return l, 0, cerr.New(cerr.KindMergeError, "truncated limits")
	}
	flag := data[0]
	off := 1
	min, n, err := DecodeU32(data[off:])
	if err != nil {
		return l, 0, err
	}
	off += n
	l.Min = min
	if flag == 1 {
		max, n2, err := DecodeU32(data[off:])
		if err != nil {
			return l, 0, err
		}
		off += n2
		l.Max = max
		l.HasMax = true
	}
	return l, off, nil
}

func parseImportSection(m *Module, body []byte) error {
	count, n, err := DecodeU32(body)
	if err != nil {
		return err
	}
	off := n
	for i := uint32(0); i < count; i++ {
		modName, c1, err := parseName(body[off:])
		if err != nil {
			return err
		}
		off += c1
		field, c2, err := parseName(body[off:])
		if err != nil {
			return err
		}
		off += c2
		if off >= len(body) {
			return cerr.New(cerr.KindMergeError, "truncated import entry")
		}
		kind := ImportKind(body[off])
		off++
		imp := Import{Module: modName, Field: field, Kind: kind}
		switch kind {
		case KindFunc:
			typeIdx, c3, err := DecodeU32(body[off:])
			if err != nil {
				return err
			}
			off += c3
			imp.TypeIndex = typeIdx
		case KindTable:
			start := off
			if off >= len(body) {
				return cerr.New(cerr.KindMergeError, "truncated table import")
			}
			off++ // elem type
			_, c, err := parseLimits(body[off:])
			if err != nil {
				return err
			}
			off += c
			imp.Descriptor = append([]byte(nil), body[start:off]...)
		case KindMemory:
			start := off
			_, c, err := parseLimits(body[off:])
			if err != nil {
				return err
			}
			off += c
			imp.Descriptor = append([]byte(nil), body[start:off]...)
		case KindGlobal:
			start := off
			off += 2 // valtype + mutability byte
			if off > len(body) {
				return cerr.New(cerr.KindMergeError, "truncated global import")
			}
			imp.Descriptor = append([]byte(nil), body[start:off]...)
		default:
			return cerr.New(cerr.KindMergeError, "unknown import kind")
		}
		m.Imports = append(m.Imports, imp)
	}
	return nil
}

func parseName(data []byte) (string, int, error) {
	n, c, err := DecodeU32(data)
	if err != nil {
		return "", 0, err
	}
	if c+int(n) > len(data) {
		return "", 0, cerr.New(cerr.KindMergeError, "truncated name")
	}
	return string(data[c : c+int(n)]), c + int(n), nil
}

func parseFunctionSection(m *Module, body []byte) error {
	count, n, err := DecodeU32(body)
	if err != nil {
		return err
	}
	off := n
	for i := uint32(0); i < count; i++ {
		idx, c, err := DecodeU32(body[off:])
		if err != nil {
			return err
		}
		off += c
		m.FuncSec = append(m.FuncSec, idx)
	}
	return nil
}

func parseTableSection(m *Module, body []byte) error {
	count, n, err := DecodeU32(body)
	if err != nil {
		return err
	}
	off := n
	for i := uint32(0); i < count; i++ {
		elemType := body[off]
		off++
		limits, c, err := parseLimits(body[off:])
		if err != nil {
			return err
		}
		off += c
		m.Tables = append(m.Tables, Table{ElemType: elemType, Limits: limits})
	}
	return nil
}

func parseMemorySection(m *Module, body []byte) error {
	count, n, err := DecodeU32(body)
	if err != nil {
		return err
	}
	off := n
	for i := uint32(0); i < count; i++ {
		limits, c, err := parseLimits(body[off:])
		if err != nil {
			return err
		}
		off += c
		m.Memories = append(m.Memories, Memory{Limits: limits})
	}
	return nil
}

func parseGlobalSection(m *Module, body []byte) error {
	count, n, err := DecodeU32(body)
	if err != nil {
		return err
	}
	off := n
	for i := uint32(0); i < count; i++ {
		typ := ValType(body[off])
		off++
		mut := body[off] == 1
		off++
		initStart := off
		end, err := findExprEnd(body[off:])
		if err != nil {
			return err
		}
		off += end
		m.Globals = append(m.Globals, Global{Type: typ, Mutable: mut, Init: append([]byte(nil), body[initStart:off]...)})
	}
	return nil
}

func parseExportSection(m *Module, body []byte) error {
	count, n, err := DecodeU32(body)
	if err != nil {
		return err
	}
	off := n
	seen := map[string]bool{}
	for i := uint32(0); i < count; i++ {
		name, c, err := parseName(body[off:])
		if err != nil {
			return err
		}
		off += c
		kind := ImportKind(body[off])
		off++
		idx, c2, err := DecodeU32(body[off:])
		if err != nil {
			return err
		}
		off += c2
		if seen[name] {
			return cerr.New(cerr.KindMergeError, "duplicate export name: "+name)
		}
		seen[name] = true
		m.Exports = append(m.Exports, Export{Name: name, Kind: kind, Index: idx})
	}
	return nil
}

func parseElementSection(m *Module, body []byte) error {
	count, n, err := DecodeU32(body)
	if err != nil {
		return err
	}
	off := n
	for i := uint32(0); i < count; i++ {
		start := off
		tableIdx, c, err := DecodeU32(body[off:])
		if err != nil {
			return err
		}
		off += c
		_ = tableIdx
		exprLen, err := findExprEnd(body[off:])
		if err != nil {
			return err
		}
		off += exprLen
		numElems, c2, err := DecodeU32(body[off:])
		if err != nil {
			return err
		}
		off += c2
		for j := uint32(0); j < numElems; j++ {
			_, c3, err := DecodeU32(body[off:])
			if err != nil {
				return err
			}
			off += c3
		}
		m.Elements = append(m.Elements, ElementSegment{Raw: append([]byte(nil), body[start:off]...)})
	}
	return nil
}

func parseCodeSection(m *Module, body []byte) error {
	count, n, err := DecodeU32(body)
	if err != nil {
		return err
	}
	off := n
	for i := uint32(0); i < count; i++ {
		size, c, err := DecodeU32(body[off:])
		if err != nil {
			return err
		}
		off += c
		entry := body[off : off+int(size)]
		off += int(size)

		fn, err := parseFunctionBody(entry)
		if err != nil {
			return err
		}
		m.Code = append(m.Code, fn)
	}
	return nil
}

func parseFunctionBody(entry []byte) (Function, error) {
	numLocalDecls, n, err := DecodeU32(entry)
	if err != nil {
		return Function{}, err
	}
	off := n
	var locals []LocalDecl
	for i := uint32(0); i < numLocalDecls; i++ {
		cnt, c, err := DecodeU32(entry[off:])
		if err != nil {
			return Function{}, err
		}
		off += c
		typ := ValType(entry[off])
		off++
		locals = append(locals, LocalDecl{Count: cnt, Type: typ})
	}
	return Function{Locals: locals, Body: append([]byte(nil), entry[off:]...)}, nil
}

func parseDataSection(m *Module, body []byte) error {
	count, n, err := DecodeU32(body)
	if err != nil {
		return err
	}
	off := n
	for i := uint32(0); i < count; i++ {
		memIdx, c, err := DecodeU32(body[off:])
		if err != nil {
			return err
		}
		off += c
		offsetStart := off
		exprLen, err := findExprEnd(body[off:])
		if err != nil {
			return err
		}
		off += exprLen
		offsetExpr := append([]byte(nil), body[offsetStart:off]...)
		size, c2, err := DecodeU32(body[off:])
		if err != nil {
			return err
		}
		off += c2
		init := append([]byte(nil), body[off:off+int(size)]...)
		off += int(size)
		m.Data = append(m.Data, DataSegment{MemoryIndex: memIdx, Offset: offsetExpr, Init: init})
	}
	return nil
}

// findExprEnd returns the length, in bytes, of a constant init expression
// up to and including its terminating 0x0B (end) opcode. Init exprs used
// in global/element/data sections are a single const/global.get
// instruction followed by end (wasm MVP restricts them to that).
func findExprEnd(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, cerr.New(cerr.KindMergeError, "empty init expression")
	}
	op := data[0]
	off := 1
	switch op {
	case 0x41: // i32.const
		_, n, err := decodeSLEB(data[off:], 32)
		if err != nil {
			return 0, err
		}
		off += n
	case 0x42: // i64.const
		_, n, err := decodeSLEB(data[off:], 64)
		if err != nil {
			return 0, err
		}
		off += n
	case 0x23: // global.get
		_, n, err := DecodeU32(data[off:])
		if err != nil {
			return 0, err
		}
		off += n
	default:
		return 0, cerr.New(cerr.KindMergeError, "unsupported init expression opcode")
	}
	if off >= len(data) || data[off] != 0x0B {
		return 0, cerr.New(cerr.KindMergeError, "init expression missing end opcode")
	}
	return off + 1, nil
}

// decodeSLEB decodes a signed LEB128 value of up to `bits` width, returning
// the number of bytes consumed.
func decodeSLEB(data []byte, bits int) (int64, int, error) {
	var result int64
	var shift uint
	var b byte
	i := 0
	for {
		if i >= len(data) {
			return 0, 0, cerr.New(cerr.KindMergeError, "truncated signed LEB128")
		}
		b = data[i]
		result |= int64(b&0x7F) << shift
		shift += 7
		i++
		if b&0x80 == 0 {
			break
		}
	}
	if shift < uint(bits) && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, i, nil
}
