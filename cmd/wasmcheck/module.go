package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/wippyai/wasm-validator/features"
	"github.com/wippyai/wasm-validator/wasm"
)

func loadModule(path string, f features.Features) (*wasm.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	m, err := wasm.ReadModule(data, f, nil)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return m, nil
}

// resolveFunction accepts a function index or a name from the name
// section or the exports. Imported functions have no body and are
// rejected.
func resolveFunction(m *wasm.Module, ref string) (uint32, *wasm.FuncBody, error) {
	idx, ok := uint32(0), false
	if n, err := strconv.ParseUint(ref, 10, 32); err == nil {
		idx, ok = uint32(n), true
	} else {
		idx, ok = m.FunctionIndexByName(ref)
	}
	if !ok {
		return 0, nil, fmt.Errorf("function %q not found", ref)
	}
	body, ok := m.Body(idx)
	if !ok {
		if int(idx) < m.NumImportedFuncs() {
			return 0, nil, fmt.Errorf("function %d is imported", idx)
		}
		return 0, nil, fmt.Errorf("function index %d out of range, module has %d functions", idx, m.NumFuncs())
	}
	return idx, body, nil
}

func functionLabel(m *wasm.Module, idx uint32) string {
	label := "func " + strconv.FormatUint(uint64(idx), 10)
	if name, ok := m.FuncNames[idx]; ok {
		label += " <" + name + ">"
	}
	if ft, ok := m.FunctionType(idx); ok {
		label += " " + ft.String()
	}
	return label
}
