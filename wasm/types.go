package wasm

import (
	"fmt"
	"slices"
	"strings"
)

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01
)

// Section IDs define the binary identifiers for each module section.
// Sections must appear in canonical order (except custom sections).
const (
	SectionCustom    byte = 0
	SectionType      byte = 1
	SectionImport    byte = 2
	SectionFunction  byte = 3
	SectionTable     byte = 4
	SectionMemory    byte = 5
	SectionGlobal    byte = 6
	SectionExport    byte = 7
	SectionStart     byte = 8
	SectionElement   byte = 9
	SectionCode      byte = 10
	SectionData      byte = 11
	SectionDataCount byte = 12
)

// Import/Export descriptor kinds.
const (
	KindFunc   byte = 0
	KindTable  byte = 1
	KindMemory byte = 2
	KindGlobal byte = 3
)

// ValType is a value type encoding.
type ValType byte

// Value type encodings. Reference types follow the reference-types
// proposal, where anyref is the top type and nullref the bottom.
const (
	ValI32     ValType = 0x7F
	ValI64     ValType = 0x7E
	ValF32     ValType = 0x7D
	ValF64     ValType = 0x7C
	ValV128    ValType = 0x7B
	ValFuncRef ValType = 0x70
	ValAnyRef  ValType = 0x6F
	ValNullRef ValType = 0x6E
)

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValV128:
		return "v128"
	case ValFuncRef:
		return "funcref"
	case ValAnyRef:
		return "anyref"
	case ValNullRef:
		return "nullref"
	default:
		return fmt.Sprintf("valtype(0x%02x)", byte(v))
	}
}

// IsRef reports whether v is a reference type.
func (v ValType) IsRef() bool {
	return v == ValFuncRef || v == ValAnyRef || v == ValNullRef
}

// Block type constants. Negative values are the single-byte shorthands
// read as s33; non-negative values index the type section.
const (
	BlockTypeVoid    int32 = -64 // 0x40
	BlockTypeI32     int32 = -1  // 0x7F
	BlockTypeI64     int32 = -2  // 0x7E
	BlockTypeF32     int32 = -3  // 0x7D
	BlockTypeF64     int32 = -4  // 0x7C
	BlockTypeV128    int32 = -5  // 0x7B
	BlockTypeFuncRef int32 = -16 // 0x70
	BlockTypeAnyRef  int32 = -17 // 0x6F
	BlockTypeNullRef int32 = -18 // 0x6E
)

// BlockValType returns the single result type of a shorthand block type.
// ok is false for void and for type indices.
func BlockValType(bt int32) (vt ValType, ok bool) {
	if bt >= 0 || bt == BlockTypeVoid || bt < -0x40 {
		return 0, false
	}
	vt = ValType(byte(bt) & 0x7F)
	switch vt {
	case ValI32, ValI64, ValF32, ValF64, ValV128, ValFuncRef, ValAnyRef, ValNullRef:
		return vt, true
	}
	return 0, false
}

// Module represents a parsed WebAssembly module.
type Module struct {
	Types    []FuncType
	Imports  []Import
	Funcs    []uint32 // Type indices for declared functions
	Tables   []TableType
	Memories []MemoryType
	Globals  []Global
	Exports  []Export
	Start    *uint32
	Elements []Element
	Code     []FuncBody
	Data     []DataSegment

	// DataCount holds the count from the DataCount section (ID 12).
	DataCount *uint32

	// FuncNames maps function indices to names from the "name" section.
	FuncNames map[uint32]string

	CustomSections []CustomSection
}

// FuncType represents a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (f FuncType) String() string {
	return "(" + joinTypes(f.Params) + ") -> (" + joinTypes(f.Results) + ")"
}

func joinTypes(types []ValType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Equal reports whether two signatures are identical.
func (f FuncType) Equal(o FuncType) bool {
	return slices.Equal(f.Params, o.Params) && slices.Equal(f.Results, o.Results)
}

// Import represents an imported function, table, memory, or global.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes an imported item.
type ImportDesc struct {
	Table   *TableType
	Memory  *MemoryType
	Global  *GlobalType
	TypeIdx uint32
	Kind    byte
}

// TableType describes a table with element type and size limits.
type TableType struct {
	Limits   Limits
	ElemType ValType
}

// MemoryType describes a linear memory with size limits in pages.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for tables and memories.
type Limits struct {
	Max    *uint32
	Min    uint32
	Shared bool
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	ValType ValType
	Mutable bool
}

// Global represents a global variable with its constant initializer.
type Global struct {
	Init []Instruction
	Type GlobalType
}

// Export describes an exported item.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// SegmentMode distinguishes active, passive, and declared segments.
type SegmentMode byte

const (
	SegmentActive SegmentMode = iota
	SegmentPassive
	SegmentDeclared
)

// Element represents an element segment.
// Flags determine the format:
//   - 0: active, tableIdx=0, offset expr, vec(funcidx)
//   - 1: passive, elemkind, vec(funcidx)
//   - 2: active, tableIdx, offset expr, elemkind, vec(funcidx)
//   - 3: declared, elemkind, vec(funcidx)
//   - 4: active, tableIdx=0, offset expr, vec(expr)
//   - 5: passive, reftype, vec(expr)
//   - 6: active, tableIdx, offset expr, reftype, vec(expr)
//   - 7: declared, reftype, vec(expr)
type Element struct {
	Offset   []Instruction
	FuncIdxs []uint32
	Exprs    [][]Instruction
	Flags    uint32
	TableIdx uint32
	Mode     SegmentMode
	Type     ValType
}

// FuncBody represents a function's local declarations and code. Code
// excludes the local declarations and ends with the end opcode; Offset is
// the absolute position of Code's first byte in the module.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte
	Offset int
}

// LocalEntry is a run of Count locals sharing one type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// DataSegment represents a data segment.
// Flags determine the format:
//   - 0: active, memIdx=0, offset expr, vec(byte)
//   - 1: passive, vec(byte)
//   - 2: active, memIdx, offset expr, vec(byte)
type DataSegment struct {
	Offset []Instruction
	Init   []byte
	Flags  uint32
	MemIdx uint32
	Mode   SegmentMode
}

// CustomSection holds a named custom section's data.
type CustomSection struct {
	Name string
	Data []byte
}

// NumImportedFuncs returns the number of imported functions.
func (m *Module) NumImportedFuncs() int {
	return m.countImports(KindFunc)
}

// NumImportedTables returns the number of imported tables.
func (m *Module) NumImportedTables() int {
	return m.countImports(KindTable)
}

// NumImportedMemories returns the number of imported memories.
func (m *Module) NumImportedMemories() int {
	return m.countImports(KindMemory)
}

// NumImportedGlobals returns the number of imported globals.
func (m *Module) NumImportedGlobals() int {
	return m.countImports(KindGlobal)
}

func (m *Module) countImports(kind byte) int {
	count := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == kind {
			count++
		}
	}
	return count
}

// NumFuncs returns the size of the function index space.
func (m *Module) NumFuncs() int {
	return m.NumImportedFuncs() + len(m.Funcs)
}

// FuncTypeIndex returns the type index of a function in the function
// index space, where imported functions come first.
func (m *Module) FuncTypeIndex(funcIdx uint32) (uint32, bool) {
	i := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind != KindFunc {
			continue
		}
		if uint32(i) == funcIdx {
			return imp.Desc.TypeIdx, true
		}
		i++
	}
	local := uint64(funcIdx) - uint64(i)
	if local >= uint64(len(m.Funcs)) {
		return 0, false
	}
	return m.Funcs[local], true
}

// FunctionType returns the signature of a function in the function index
// space.
func (m *Module) FunctionType(funcIdx uint32) (*FuncType, bool) {
	typeIdx, ok := m.FuncTypeIndex(funcIdx)
	if !ok || typeIdx >= uint32(len(m.Types)) {
		return nil, false
	}
	return &m.Types[typeIdx], true
}

// FunctionIndexByName looks a function up by its name section entry, or
// failing that by export name.
func (m *Module) FunctionIndexByName(name string) (uint32, bool) {
	best, found := uint32(0), false
	for idx, n := range m.FuncNames {
		if n == name && (!found || idx < best) {
			best, found = idx, true
		}
	}
	if found {
		return best, true
	}
	for _, exp := range m.Exports {
		if exp.Kind == KindFunc && exp.Name == name {
			return exp.Idx, true
		}
	}
	return 0, false
}

// Body returns the code of a function in the function index space.
// Imported functions have no body.
func (m *Module) Body(funcIdx uint32) (*FuncBody, bool) {
	local := uint64(funcIdx) - uint64(m.NumImportedFuncs())
	if uint64(funcIdx) < uint64(m.NumImportedFuncs()) || local >= uint64(len(m.Code)) {
		return nil, false
	}
	return &m.Code[local], true
}
