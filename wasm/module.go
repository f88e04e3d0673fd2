package wasm

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
)

// nameSubsectionFunctions is the id of the function names subsection.
const nameSubsectionFunctions byte = 1

// ReadModule parses a binary module. Section framing errors have phase
// load; malformed fields inside a section have phase decode. The first
// failure stops parsing and is both returned and reported to sink.
//
// Function bodies are kept as byte spans; use NewIterator or a validator to
// decode them.
func ReadModule(data []byte, f features.Features, sink errors.Sink) (*Module, error) {
	r := NewReader(data, f, sink)

	r.push("header")
	magic, err := r.u32le("magic")
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, r.report(errors.PhaseLoad, errors.KindInvalidData, 0, nil, "magic", "magic mismatch: got 0x%08x, expected 0x%08x", magic, Magic)
	}
	version, err := r.u32le("version")
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, r.report(errors.PhaseLoad, errors.KindInvalidData, 4, nil, "version", "version mismatch: got %d, expected %d", version, Version)
	}
	r.pop()

	m := &Module{}
	var lastOrder int

	for !r.Empty() {
		start := r.Position()
		id, err := r.u8("section id")
		if err != nil {
			return nil, err
		}
		size, err := r.u32("section size")
		if err != nil {
			return nil, err
		}
		base := r.Position()
		body, err := r.bytes(int(size), "section contents")
		if err != nil {
			return nil, err
		}

		if id != SectionCustom {
			order := sectionOrder(id)
			if order == 0 {
				return nil, r.report(errors.PhaseLoad, errors.KindInvalidData, start, nil, "section id", "unknown section id: %d", id)
			}
			if order <= lastOrder {
				return nil, r.report(errors.PhaseLoad, errors.KindInvalidData, start, nil, "section id", "section %s appears out of order", sectionName(id))
			}
			lastOrder = order
		}

		Logger().Debug("section",
			zap.String("name", sectionName(id)),
			zap.Int("offset", start),
			zap.Uint32("size", size))

		sr := r.sub(body, base, sectionName(id)+" section")
		if err := readSection(sr, id, m); err != nil {
			return nil, err
		}
		if !sr.Empty() {
			return nil, sr.report(errors.PhaseLoad, errors.KindInvalidData, sr.Position(), nil, "", "section size mismatch: %d bytes left", sr.Len())
		}
	}

	return m, nil
}

// sectionOrder returns the canonical position of a section, or 0 for an
// unknown id. The data count section precedes the code section.
func sectionOrder(id byte) int {
	switch id {
	case SectionType:
		return 1
	case SectionImport:
		return 2
	case SectionFunction:
		return 3
	case SectionTable:
		return 4
	case SectionMemory:
		return 5
	case SectionGlobal:
		return 6
	case SectionExport:
		return 7
	case SectionStart:
		return 8
	case SectionElement:
		return 9
	case SectionDataCount:
		return 10
	case SectionCode:
		return 11
	case SectionData:
		return 12
	default:
		return 0
	}
}

func sectionName(id byte) string {
	switch id {
	case SectionCustom:
		return "custom"
	case SectionType:
		return "type"
	case SectionImport:
		return "import"
	case SectionFunction:
		return "function"
	case SectionTable:
		return "table"
	case SectionMemory:
		return "memory"
	case SectionGlobal:
		return "global"
	case SectionExport:
		return "export"
	case SectionStart:
		return "start"
	case SectionElement:
		return "element"
	case SectionCode:
		return "code"
	case SectionData:
		return "data"
	case SectionDataCount:
		return "data count"
	default:
		return "unknown"
	}
}

func readSection(r *Reader, id byte, m *Module) error {
	switch id {
	case SectionCustom:
		return readCustomSection(r, m)
	case SectionType:
		return readVector(r, "type", func() error {
			ft, err := r.readFuncType()
			m.Types = append(m.Types, ft)
			return err
		})
	case SectionImport:
		return readVector(r, "import", func() error {
			imp, err := r.readImport()
			m.Imports = append(m.Imports, imp)
			return err
		})
	case SectionFunction:
		return readVector(r, "function", func() error {
			idx, err := r.u32("type index")
			m.Funcs = append(m.Funcs, idx)
			return err
		})
	case SectionTable:
		return readVector(r, "table", func() error {
			tt, err := r.readTableType()
			m.Tables = append(m.Tables, tt)
			return err
		})
	case SectionMemory:
		return readVector(r, "memory", func() error {
			mt, err := r.readMemoryType()
			m.Memories = append(m.Memories, mt)
			return err
		})
	case SectionGlobal:
		return readVector(r, "global", func() error {
			gt, err := r.readGlobalType()
			if err != nil {
				return err
			}
			init, err := r.ReadExpression()
			m.Globals = append(m.Globals, Global{Type: gt, Init: init})
			return err
		})
	case SectionExport:
		return readVector(r, "export", func() error {
			exp, err := r.readExport()
			m.Exports = append(m.Exports, exp)
			return err
		})
	case SectionStart:
		idx, err := r.u32("function index")
		if err != nil {
			return err
		}
		m.Start = &idx
		return nil
	case SectionElement:
		return readVector(r, "element segment", func() error {
			elem, err := r.readElement()
			m.Elements = append(m.Elements, elem)
			return err
		})
	case SectionCode:
		return readVector(r, "code", func() error {
			body, err := r.readFuncBody()
			m.Code = append(m.Code, body)
			return err
		})
	case SectionData:
		return readVector(r, "data segment", func() error {
			seg, err := r.readDataSegment()
			m.Data = append(m.Data, seg)
			return err
		})
	case SectionDataCount:
		count, err := r.u32("count")
		if err != nil {
			return err
		}
		m.DataCount = &count
		return nil
	}
	return nil
}

// readVector reads a count followed by that many items, pushing "what N"
// as context around each item.
func readVector(r *Reader, what string, item func() error) error {
	n, err := r.count("count")
	if err != nil {
		return err
	}
	for i := range n {
		r.push(what + " " + strconv.Itoa(i))
		err := item()
		r.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) readFuncType() (FuncType, error) {
	off := r.Position()
	form, err := r.u8("form")
	if err != nil {
		return FuncType{}, err
	}
	if form != 0x60 {
		return FuncType{}, r.fail(errors.KindInvalidData, off, "form", "unknown type form: 0x%02x", form)
	}
	params, err := r.valTypes("params")
	if err != nil {
		return FuncType{}, err
	}
	off = r.Position()
	results, err := r.valTypes("results")
	if err != nil {
		return FuncType{}, err
	}
	if len(results) > 1 {
		if err := r.require(features.MultiValue, off, "results", "multiple results"); err != nil {
			return FuncType{}, err
		}
	}
	return FuncType{Params: params, Results: results}, nil
}

func (r *Reader) valTypes(field string) ([]ValType, error) {
	n, err := r.count(field)
	if err != nil {
		return nil, err
	}
	types := make([]ValType, 0, n)
	for range n {
		vt, err := r.valType(field)
		if err != nil {
			return nil, err
		}
		types = append(types, vt)
	}
	return types, nil
}

func (r *Reader) readImport() (Import, error) {
	var imp Import
	var err error
	if imp.Module, err = r.name("module"); err != nil {
		return imp, err
	}
	if imp.Name, err = r.name("name"); err != nil {
		return imp, err
	}
	off := r.Position()
	if imp.Desc.Kind, err = r.u8("kind"); err != nil {
		return imp, err
	}
	switch imp.Desc.Kind {
	case KindFunc:
		imp.Desc.TypeIdx, err = r.u32("type index")
	case KindTable:
		var tt TableType
		tt, err = r.readTableType()
		imp.Desc.Table = &tt
	case KindMemory:
		var mt MemoryType
		mt, err = r.readMemoryType()
		imp.Desc.Memory = &mt
	case KindGlobal:
		var gt GlobalType
		gt, err = r.readGlobalType()
		imp.Desc.Global = &gt
	default:
		err = r.fail(errors.KindInvalidData, off, "kind", "unknown external kind: %d", imp.Desc.Kind)
	}
	return imp, err
}

func (r *Reader) readExport() (Export, error) {
	var exp Export
	var err error
	if exp.Name, err = r.name("name"); err != nil {
		return exp, err
	}
	off := r.Position()
	if exp.Kind, err = r.u8("kind"); err != nil {
		return exp, err
	}
	if exp.Kind > KindGlobal {
		return exp, r.fail(errors.KindInvalidData, off, "kind", "unknown external kind: %d", exp.Kind)
	}
	exp.Idx, err = r.u32("index")
	return exp, err
}

func (r *Reader) readLimits(allowShared bool) (Limits, error) {
	r.push("limits")
	defer r.pop()
	off := r.Position()
	flags, err := r.u8("flags")
	if err != nil {
		return Limits{}, err
	}
	if flags > 3 || (flags&2 != 0 && !allowShared) {
		return Limits{}, r.fail(errors.KindInvalidData, off, "flags", "unknown limits flags: 0x%02x", flags)
	}
	var lim Limits
	if lim.Min, err = r.u32("min"); err != nil {
		return Limits{}, err
	}
	if flags&1 != 0 {
		max, err := r.u32("max")
		if err != nil {
			return Limits{}, err
		}
		lim.Max = &max
	}
	if flags&2 != 0 {
		lim.Shared = true
		if err := r.require(features.Threads, off, "flags", "shared memory"); err != nil {
			return Limits{}, err
		}
	}
	return lim, nil
}

func (r *Reader) readTableType() (TableType, error) {
	elemType, err := r.readElemType("element type")
	if err != nil {
		return TableType{}, err
	}
	lim, err := r.readLimits(false)
	if err != nil {
		return TableType{}, err
	}
	return TableType{ElemType: elemType, Limits: lim}, nil
}

// readElemType reads a table element type: funcref in the core format,
// anyref with reference types.
func (r *Reader) readElemType(field string) (ValType, error) {
	off := r.Position()
	b, err := r.u8(field)
	if err != nil {
		return 0, err
	}
	switch ValType(b) {
	case ValFuncRef:
		return ValFuncRef, nil
	case ValAnyRef:
		return ValAnyRef, r.require(features.ReferenceTypes, off, field, "anyref")
	}
	return 0, r.fail(errors.KindInvalidData, off, field, "unknown element type: 0x%02x", b)
}

func (r *Reader) readMemoryType() (MemoryType, error) {
	lim, err := r.readLimits(true)
	return MemoryType{Limits: lim}, err
}

func (r *Reader) readGlobalType() (GlobalType, error) {
	vt, err := r.valType("type")
	if err != nil {
		return GlobalType{}, err
	}
	off := r.Position()
	mut, err := r.u8("mutability")
	if err != nil {
		return GlobalType{}, err
	}
	if mut > 1 {
		return GlobalType{}, r.fail(errors.KindInvalidData, off, "mutability", "unknown mutability: %d", mut)
	}
	return GlobalType{ValType: vt, Mutable: mut == 1}, nil
}

func (r *Reader) readElement() (Element, error) {
	off := r.Position()
	flags, err := r.u32("flags")
	if err != nil {
		return Element{}, err
	}
	if flags > 7 {
		return Element{}, r.fail(errors.KindInvalidData, off, "flags", "unknown element segment flags: %d", flags)
	}
	if flags != 0 {
		if err := r.require(features.BulkMemory, off, "flags", "element segment flags"); err != nil {
			return Element{}, err
		}
	}

	elem := Element{Flags: flags, Type: ValFuncRef}
	switch {
	case flags&1 == 0:
		elem.Mode = SegmentActive
	case flags&2 == 0:
		elem.Mode = SegmentPassive
	default:
		elem.Mode = SegmentDeclared
	}

	if elem.Mode == SegmentActive {
		if flags&2 != 0 {
			if elem.TableIdx, err = r.u32("table index"); err != nil {
				return Element{}, err
			}
		}
		r.push("offset")
		elem.Offset, err = r.ReadExpression()
		r.pop()
		if err != nil {
			return Element{}, err
		}
	}

	usesExprs := flags&4 != 0
	if flags&3 != 0 {
		if usesExprs {
			if elem.Type, err = r.readElemType("element type"); err != nil {
				return Element{}, err
			}
		} else {
			kindOff := r.Position()
			kind, err := r.u8("element kind")
			if err != nil {
				return Element{}, err
			}
			if kind != 0 {
				return Element{}, r.fail(errors.KindInvalidData, kindOff, "element kind", "unknown element kind: %d", kind)
			}
		}
	}

	n, err := r.count("count")
	if err != nil {
		return Element{}, err
	}
	for i := range n {
		if usesExprs {
			r.push("init " + strconv.Itoa(i))
			expr, err := r.ReadExpression()
			r.pop()
			if err != nil {
				return Element{}, err
			}
			elem.Exprs = append(elem.Exprs, expr)
			continue
		}
		idx, err := r.u32("function index")
		if err != nil {
			return Element{}, err
		}
		elem.FuncIdxs = append(elem.FuncIdxs, idx)
	}
	return elem, nil
}

func (r *Reader) readDataSegment() (DataSegment, error) {
	off := r.Position()
	flags, err := r.u32("flags")
	if err != nil {
		return DataSegment{}, err
	}
	if flags > 2 {
		return DataSegment{}, r.fail(errors.KindInvalidData, off, "flags", "unknown data segment flags: %d", flags)
	}
	if flags != 0 {
		if err := r.require(features.BulkMemory, off, "flags", "data segment flags"); err != nil {
			return DataSegment{}, err
		}
	}
	seg := DataSegment{Flags: flags, Mode: SegmentActive}
	if flags == 1 {
		seg.Mode = SegmentPassive
	} else {
		if flags == 2 {
			if seg.MemIdx, err = r.u32("memory index"); err != nil {
				return DataSegment{}, err
			}
		}
		r.push("offset")
		seg.Offset, err = r.ReadExpression()
		r.pop()
		if err != nil {
			return DataSegment{}, err
		}
	}
	n, err := r.count("size")
	if err != nil {
		return DataSegment{}, err
	}
	seg.Init, err = r.bytes(n, "init")
	return seg, err
}

func (r *Reader) readFuncBody() (FuncBody, error) {
	size, err := r.u32("size")
	if err != nil {
		return FuncBody{}, err
	}
	base := r.Position()
	data, err := r.bytes(int(size), "body")
	if err != nil {
		return FuncBody{}, err
	}
	br := r.sub(data, base, "body")
	n, err := br.count("locals count")
	if err != nil {
		return FuncBody{}, err
	}
	body := FuncBody{Locals: make([]LocalEntry, 0, n)}
	for range n {
		l, err := br.ReadLocals()
		if err != nil {
			return FuncBody{}, err
		}
		body.Locals = append(body.Locals, l)
	}
	body.Offset = br.Position()
	body.Code = data[body.Offset-base:]
	return body, nil
}

func readCustomSection(r *Reader, m *Module) error {
	name, err := r.name("name")
	if err != nil {
		return err
	}
	rest, _ := r.bytes(r.Len(), "contents")
	m.CustomSections = append(m.CustomSections, CustomSection{Name: name, Data: rest})
	if name == "name" {
		m.FuncNames = readFunctionNames(rest)
	}
	return nil
}

// readFunctionNames extracts the function names subsection. The name
// section is advisory, so malformed contents yield whatever was read before
// the error and are never reported.
func readFunctionNames(data []byte) map[uint32]string {
	r := NewReader(data, features.Default(), errors.Nop{})
	for !r.Empty() {
		id, err := r.u8("id")
		if err != nil {
			return nil
		}
		size, err := r.u32("size")
		if err != nil {
			return nil
		}
		contents, err := r.bytes(int(size), "contents")
		if err != nil {
			return nil
		}
		if id != nameSubsectionFunctions {
			continue
		}
		sr := NewReader(contents, features.Default(), errors.Nop{})
		n, err := sr.count("count")
		if err != nil {
			return nil
		}
		names := make(map[uint32]string, n)
		for range n {
			idx, err := sr.u32("index")
			if err != nil {
				Logger().Debug("truncated function names", zap.Error(err))
				return names
			}
			name, err := sr.name("name")
			if err != nil {
				Logger().Debug("truncated function names", zap.Error(err))
				return names
			}
			names[idx] = name
		}
		return names
	}
	return nil
}
