package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	werrors "github.com/wippyai/wasm-validator/errors"
	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/valid"
	"github.com/wippyai/wasm-validator/wasm"
)

func newInspectCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Browse functions and their diagnostics interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
				return errors.New("inspect requires a terminal")
			}
			f, err := global.features()
			if err != nil {
				return err
			}
			p := tea.NewProgram(newInspectModel(args[0], f), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

type inspectState int

const (
	stateList inspectState = iota
	stateFilter
	stateCode
)

type codeLine struct {
	offset int
	text   string
	diags  []string
}

type funcEntry struct {
	label string
	lines []codeLine

	// diags holds diagnostics without an instruction offset.
	diags  []string
	errors int
}

type inspectModel struct {
	err      error
	filename string
	features features.Features
	funcs    []funcEntry
	visible  []int
	filter   textinput.Model
	code     viewport.Model
	selected int
	height   int
	loaded   bool
	state    inspectState
}

func newInspectModel(filename string, f features.Features) *inspectModel {
	ti := textinput.New()
	ti.Placeholder = "name or index"
	ti.Prompt = "/ "
	ti.Width = 40

	return &inspectModel{
		filename: filename,
		features: f,
		filter:   ti,
		code:     viewport.New(80, 20),
		height:   24,
		state:    stateList,
	}
}

type inspectLoadedMsg struct {
	err   error
	funcs []funcEntry
}

func (m *inspectModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *inspectModel) loadModule() tea.Msg {
	mod, err := loadModule(m.filename, m.features)
	if err != nil {
		return inspectLoadedMsg{err: err}
	}
	return inspectLoadedMsg{funcs: inspectFunctions(mod, m.features)}
}

// inspectFunctions validates each body on its own and attaches every
// diagnostic to the instruction at its offset.
func inspectFunctions(mod *wasm.Module, f features.Features) []funcEntry {
	decls := valid.NewDeclarations(mod)
	imported := uint32(mod.NumImportedFuncs())
	funcs := make([]funcEntry, 0, len(mod.Code))

	for i := range mod.Code {
		idx := imported + uint32(i)
		body := mod.Code[i]
		entry := funcEntry{label: functionLabel(mod, idx)}

		var sink werrors.List
		if ft, ok := mod.FunctionType(idx); ok {
			valid.ValidateCode(decls, *ft, body, f, &sink)
		} else {
			sink.OnError(werrors.Validation(werrors.KindOutOfBounds, "function has an invalid type index"))
		}
		entry.errors = sink.Len()

		byOffset := make(map[int][]string)
		for _, e := range sink.Errors() {
			if e.HasOffset {
				byOffset[e.Offset] = append(byOffset[e.Offset], e.Error())
			} else {
				entry.diags = append(entry.diags, e.Error())
			}
		}

		it := wasm.NewIterator(body.Code, body.Offset, f, nil)
		for it.Next() {
			entry.lines = append(entry.lines, codeLine{
				offset: it.Offset(),
				text:   it.Instruction().String(),
				diags:  byOffset[it.Offset()],
			})
			delete(byOffset, it.Offset())
		}
		// Decode failures point past the last decoded instruction.
		for _, off := range slices.Sorted(maps.Keys(byOffset)) {
			entry.diags = append(entry.diags, byOffset[off]...)
		}
		funcs = append(funcs, entry)
	}
	return funcs
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.code.Width = msg.Width
		m.code.Height = max(msg.Height-4, 1)

	case inspectLoadedMsg:
		m.loaded = true
		m.err = msg.err
		m.funcs = msg.funcs
		m.applyFilter()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case stateFilter:
			return m.updateFilter(msg)
		case stateCode:
			return m.updateCode(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *inspectModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.visible)-1 {
			m.selected++
		}
	case "/":
		m.state = stateFilter
		return m, m.filter.Focus()
	case "enter":
		if len(m.visible) > 0 {
			m.code.SetContent(m.renderCode(m.funcs[m.visible[m.selected]]))
			m.code.GotoTop()
			m.state = stateCode
		}
	}
	return m, nil
}

func (m *inspectModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filter.Blur()
		m.state = stateList
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *inspectModel) updateCode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.state = stateList
		return m, nil
	}
	var cmd tea.Cmd
	m.code, cmd = m.code.Update(msg)
	return m, cmd
}

func (m *inspectModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, f := range m.funcs {
		if query == "" || strings.Contains(strings.ToLower(f.label), query) {
			m.visible = append(m.visible, i)
		}
	}
	m.selected = min(m.selected, max(len(m.visible)-1, 0))
}

func (m *inspectModel) renderCode(f funcEntry) string {
	var b strings.Builder
	b.WriteString(funcStyle.Render(f.label))
	b.WriteString("\n")
	for _, d := range f.diags {
		b.WriteString(errorStyle.Render("  " + d))
		b.WriteString("\n")
	}
	for _, l := range f.lines {
		b.WriteString(offsetStyle.Render(fmt.Sprintf("%06x", l.offset)))
		b.WriteString("  ")
		b.WriteString(l.text)
		b.WriteString("\n")
		for _, d := range l.diags {
			b.WriteString(errorStyle.Render("        ^ " + d))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *inspectModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if !m.loaded {
		return "Loading module..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("wasmcheck"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	if m.state == stateCode {
		b.WriteString(m.code.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
		return b.String()
	}

	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	rows := max(m.height-8, 1)
	first := max(0, m.selected-rows+1)
	for i := first; i < len(m.visible) && i < first+rows; i++ {
		f := m.funcs[m.visible[i]]
		status := okStyle.Render("ok")
		if f.errors > 0 {
			status = errorStyle.Render(fmt.Sprintf("%d errors", f.errors))
		}
		line := f.label
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + funcStyle.Render(line))
		}
		b.WriteString("  ")
		b.WriteString(status)
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render("  no functions"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter view • / filter • q quit"))
	return b.String()
}
