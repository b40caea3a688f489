package wasmmodule

import "encoding/binary"

// Emit serializes the in-memory model back to a wasm binary (§4.3
// "Emitter"). Sections are emitted in canonical wasm order; custom
// sections are re-inserted immediately after the standard section they
// originally followed.
func Emit(m *Module) []byte {
	var out []byte
	out = append(out, 0x00, 0x61, 0x73, 0x6D) // magic
	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint32(hdr, 1)
	out = append(out, hdr...) // version

	emitCustomAfter(&out, m, 0)

	if len(m.Types) > 0 {
		out = appendSection(out, secType, emitTypeSection(m))
	}
	emitCustomAfter(&out, m, secType)
	if len(m.Imports) > 0 {
		out = appendSection(out, secImport, emitImportSection(m))
	}
	emitCustomAfter(&out, m, secImport)
	if len(m.FuncSec) > 0 {
		out = appendSection(out, secFunction, emitFunctionSection(m))
	}
	emitCustomAfter(&out, m, secFunction)
	if len(m.Tables) > 0 {
		out = appendSection(out, secTable, emitTableSection(m))
	}
	emitCustomAfter(&out, m, secTable)
	if len(m.Memories) > 0 {
		out = appendSection(out, secMemory, emitMemorySection(m))
	}
	emitCustomAfter(&out, m, secMemory)
	if len(m.Globals) > 0 {
		out = appendSection(out, secGlobal, emitGlobalSection(m))
	}
	emitCustomAfter(&out, m, secGlobal)
	if len(m.Exports) > 0 {
		out = appendSection(out, secExport, emitExportSection(m))
	}
	emitCustomAfter(&out, m, secExport)
	emitCustomAfter(&out, m, secStart)
	if len(m.Elements) > 0 {
		out = appendSection(out, secElement, emitElementSection(m))
	}
	emitCustomAfter(&out, m, secElement)
	if len(m.Code) > 0 {
		out = appendSection(out, secCode, emitCodeSection(m))
	}
	emitCustomAfter(&out, m, secCode)
	if len(m.Data) > 0 {
		out = appendSection(out, secData, emitDataSection(m))
	}
	emitCustomAfter(&out, m, secData)
	return out
}

func emitCustomAfter(out *[]byte, m *Module, after byte) {
	for _, cs := range m.customSections {
		if cs.afterSectionID == after {
			*out = append(*out, cs.data...)
		}
	}
}

func appendSection(out []byte, id byte, body []byte) []byte {
	out = append(out, id)
	out = AppendU32(out, uint32(len(body)))
	return append(out, body...)
}

func emitTypeSection(m *Module) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(m.Types)))
	for _, ft := range m.Types {
		buf = append(buf, 0x60)
		buf = AppendU32(buf, uint32(len(ft.Params)))
		for _, p := range ft.Params {
			buf = append(buf, byte(p))
		}
		buf = AppendU32(buf, uint32(len(ft.Results)))
		for _, r := range ft.Results {
			buf = append(buf, byte(r))
		}
	}
	return buf
}

func emitLimits(buf []byte, l Limits) []byte {
	if l.HasMax {
		buf = append(buf, 1)
		buf = AppendU32(buf, l.Min)
		buf = AppendU32(buf, l.Max)
	} else {
		buf = append(buf, 0)
		buf = AppendU32(buf, l.Min)
	}
	return buf
}

func emitImportSection(m *Module) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(m.Imports)))
	for _, imp := range m.Imports {
		buf = appendName(buf, imp.Module)
		buf = appendName(buf, imp.Field)
		buf = append(buf, byte(imp.Kind))
		switch imp.Kind {
		case KindFunc:
			buf = AppendU32(buf, imp.TypeIndex)
		default:
			buf = append(buf, imp.Descriptor...)
		}
	}
	return buf
}

func appendName(buf []byte, s string) []byte {
	buf = AppendU32(buf, uint32(len(s)))
	return append(buf, s...)
}

func emitFunctionSection(m *Module) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(m.FuncSec)))
	for _, idx := range m.FuncSec {
		buf = AppendU32(buf, idx)
	}
	return buf
}

func emitTableSection(m *Module) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(m.Tables)))
	for _, t := range m.Tables {
		buf = append(buf, t.ElemType)
		buf = emitLimits(buf, t.Limits)
	}
	return buf
}

func emitMemorySection(m *Module) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(m.Memories)))
	for _, mem := range m.Memories {
		buf = emitLimits(buf, mem.Limits)
	}
	return buf
}

func emitGlobalSection(m *Module) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(m.Globals)))
	for _, g := range m.Globals {
		buf = append(buf, byte(g.Type))
		if g.Mutable {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		buf = append(buf, g.Init...)
	}
	return buf
}

func emitExportSection(m *Module) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(m.Exports)))
	for _, e := range m.Exports {
		buf = appendName(buf, e.Name)
		buf = append(buf, byte(e.Kind))
		buf = AppendU32(buf, e.Index)
	}
	return buf
}

func emitElementSection(m *Module) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(m.Elements)))
	for _, el := range m.Elements {
		buf = append(buf, el.Raw...)
	}
	return buf
}

func emitCodeSection(m *Module) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(m.Code)))
	for _, fn := range m.Code {
		body := emitFunctionBody(fn)
		buf = AppendU32(buf, uint32(len(body)))
		buf = append(buf, body...)
	}
	return buf
}

func emitFunctionBody(fn Function) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(fn.Locals)))
	for _, l := range fn.Locals {
		buf = AppendU32(buf, l.Count)
		buf = append(buf, byte(l.Type))
	}
	buf = append(buf, fn.Body...)
	return buf
}

func emitDataSection(m *Module) []byte {
	var buf []byte
	buf = AppendU32(buf, uint32(len(m.Data)))
	for _, d := range m.Data {
		buf = AppendU32(buf, d.MemoryIndex)
		buf = append(buf, d.Offset...)
		buf = AppendU32(buf, uint32(len(d.Init)))
		buf = append(buf, d.Init...)
	}
	return buf
}
