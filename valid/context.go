package valid

import (
	"math"
	"sort"

	"github.com/wippyai/wasm-validator/wasm"
)

// LabelKind identifies the construct that opened a label.
type LabelKind uint8

const (
	LabelBlock LabelKind = iota
	LabelLoop
	LabelIf
	LabelElse
)

func (k LabelKind) String() string {
	switch k {
	case LabelBlock:
		return "block"
	case LabelLoop:
		return "loop"
	case LabelIf:
		return "if"
	case LabelElse:
		return "else"
	default:
		return "label"
	}
}

// Label is one open structured control region. StackLimit is the operand
// stack depth at entry; the label owns every entry above it.
type Label struct {
	Params      []StackType
	Results     []StackType
	StackLimit  int
	Kind        LabelKind
	Unreachable bool
}

// BranchTypes returns the types a branch to l carries: the params for a
// loop, the results otherwise.
func (l *Label) BranchTypes() []StackType {
	if l.Kind == LabelLoop {
		return l.Params
	}
	return l.Results
}

// Declarations are the module-level entities a function body refers to.
// Index spaces list imports first, then definitions.
type Declarations struct {
	Types           []wasm.FuncType
	Functions       []uint32 // type index per function
	Tables          []wasm.TableType
	Memories        []wasm.MemoryType
	Globals         []wasm.GlobalType
	ElementSegments []wasm.ValType // element type per segment
	DataSegments    uint32
	ImportedGlobals int
}

// NewDeclarations collects the index spaces of m.
func NewDeclarations(m *wasm.Module) *Declarations {
	d := &Declarations{Types: m.Types}
	for _, imp := range m.Imports {
		switch imp.Desc.Kind {
		case wasm.KindFunc:
			d.Functions = append(d.Functions, imp.Desc.TypeIdx)
		case wasm.KindTable:
			if imp.Desc.Table != nil {
				d.Tables = append(d.Tables, *imp.Desc.Table)
			}
		case wasm.KindMemory:
			if imp.Desc.Memory != nil {
				d.Memories = append(d.Memories, *imp.Desc.Memory)
			}
		case wasm.KindGlobal:
			if imp.Desc.Global != nil {
				d.Globals = append(d.Globals, *imp.Desc.Global)
				d.ImportedGlobals++
			}
		}
	}
	d.Functions = append(d.Functions, m.Funcs...)
	d.Tables = append(d.Tables, m.Tables...)
	d.Memories = append(d.Memories, m.Memories...)
	for _, g := range m.Globals {
		d.Globals = append(d.Globals, g.Type)
	}
	for _, e := range m.Elements {
		elemType := e.Type
		if elemType == 0 {
			elemType = wasm.ValFuncRef
		}
		d.ElementSegments = append(d.ElementSegments, elemType)
	}
	if m.DataCount != nil {
		d.DataSegments = *m.DataCount
	} else {
		d.DataSegments = uint32(len(m.Data))
	}
	return d
}

// localRun covers locals [previous run's end, end).
type localRun struct {
	end uint64
	typ StackType
}

// Context is the per-function state of the instruction validator: the
// operand type stack, the label stack and the local types. A Context is
// owned by a single goroutine.
type Context struct {
	decls     *Declarations
	stack     []StackType
	labels    []Label
	locals    []localRun
	offset    int
	hasOffset bool
}

// NewContext creates an empty Context referring to decls, which may be nil.
func NewContext(decls *Declarations) *Context {
	if decls == nil {
		decls = &Declarations{}
	}
	return &Context{decls: decls}
}

// Declarations returns the module declarations the context refers to.
func (c *Context) Declarations() *Declarations { return c.decls }

// Reset clears the stacks and locals.
func (c *Context) Reset() {
	c.stack = c.stack[:0]
	c.labels = c.labels[:0]
	c.locals = c.locals[:0]
	c.hasOffset = false
}

// BeginFunction resets the context for a body of type ft: the params
// become the first locals and the function's own block is pushed.
func (c *Context) BeginFunction(ft wasm.FuncType) {
	c.Reset()
	for _, p := range ft.Params {
		c.AppendLocals(1, p)
	}
	c.PushLabel(LabelBlock, nil, StackTypes(ft.Results))
}

// BeginExpression resets the context for a constant expression producing
// results.
func (c *Context) BeginExpression(results []StackType) {
	c.Reset()
	c.PushLabel(LabelBlock, nil, results)
}

// AppendLocals appends count locals of type vt. It fails when the total
// would exceed the local index space.
func (c *Context) AppendLocals(count uint32, vt wasm.ValType) bool {
	total := c.LocalCount() + uint64(count)
	if total > math.MaxUint32 {
		return false
	}
	if count == 0 {
		return true
	}
	c.locals = append(c.locals, localRun{end: total, typ: StackTypeOf(vt)})
	return true
}

// LocalCount returns the number of locals, params included.
func (c *Context) LocalCount() uint64 {
	if len(c.locals) == 0 {
		return 0
	}
	return c.locals[len(c.locals)-1].end
}

// LocalType returns the type of local idx.
func (c *Context) LocalType(idx uint32) (StackType, bool) {
	i := sort.Search(len(c.locals), func(i int) bool {
		return uint64(idx) < c.locals[i].end
	})
	if i == len(c.locals) {
		return 0, false
	}
	return c.locals[i].typ, true
}

// PushLabel opens a label whose floor is the current stack depth.
func (c *Context) PushLabel(kind LabelKind, params, results []StackType) {
	c.labels = append(c.labels, Label{
		Kind:       kind,
		Params:     params,
		Results:    results,
		StackLimit: len(c.stack),
	})
}

// LabelDepth returns the number of open labels.
func (c *Context) LabelDepth() int { return len(c.labels) }

// Label returns the label at relative depth, 0 being the innermost.
func (c *Context) Label(depth uint32) (*Label, bool) {
	if uint64(depth) >= uint64(len(c.labels)) {
		return nil, false
	}
	return &c.labels[len(c.labels)-1-int(depth)], true
}

// StackDepth returns the operand stack depth across all labels.
func (c *Context) StackDepth() int { return len(c.stack) }

// TypeStack returns a copy of the operand stack, bottom first.
func (c *Context) TypeStack() []StackType {
	return append([]StackType(nil), c.stack...)
}

// PushType pushes one operand type.
func (c *Context) PushType(t StackType) {
	c.stack = append(c.stack, t)
}

// PushTypes pushes operand types in order.
func (c *Context) PushTypes(types []StackType) {
	c.stack = append(c.stack, types...)
}

// SetOffset records the byte offset of the instruction being validated,
// attached to errors reported for it.
func (c *Context) SetOffset(offset int) {
	c.offset = offset
	c.hasOffset = true
}

func (c *Context) top() *Label {
	return &c.labels[len(c.labels)-1]
}

// available returns the operand entries owned by the innermost label.
func (c *Context) available() []StackType {
	return c.stack[c.top().StackLimit:]
}

func (c *Context) resetToLimit() {
	c.stack = c.stack[:c.top().StackLimit]
}

func (c *Context) functionType(idx uint32) (wasm.FuncType, bool) {
	if uint64(idx) >= uint64(len(c.decls.Types)) {
		return wasm.FuncType{}, false
	}
	return c.decls.Types[idx], true
}
