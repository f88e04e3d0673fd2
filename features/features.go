// Package features defines the toggles that gate optional instruction
// families during decoding, encoding and validation.
package features

import (
	"fmt"
	"math/bits"
	"strings"
)

// Feature is a single optional proposal flag.
type Feature uint32

const (
	Threads Feature = 1 << iota
	ReferenceTypes
	BulkMemory
	SIMD
	TailCall
	SignExtension
	SaturatingFloatToInt
	MutableGlobals
	MultiValue

	// all is the union of every known flag.
	all = Threads | ReferenceTypes | BulkMemory | SIMD | TailCall |
		SignExtension | SaturatingFloatToInt | MutableGlobals | MultiValue
)

var names = [...]struct {
	feature Feature
	name    string
}{
	{Threads, "threads"},
	{ReferenceTypes, "reference-types"},
	{BulkMemory, "bulk-memory"},
	{SIMD, "simd"},
	{TailCall, "tail-call"},
	{SignExtension, "sign-extension"},
	{SaturatingFloatToInt, "saturating-float-to-int"},
	{MutableGlobals, "mutable-globals"},
	{MultiValue, "multi-value"},
}

// String returns the kebab-case name of a single flag. Unions render as
// a comma separated list.
func (f Feature) String() string {
	if f == 0 {
		return "none"
	}
	if bits.OnesCount32(uint32(f)) == 1 {
		for _, n := range names {
			if n.feature == f {
				return n.name
			}
		}
		return fmt.Sprintf("feature(0x%x)", uint32(f))
	}
	var parts []string
	for _, n := range names {
		if f&n.feature != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// Parse returns the flag for a feature name. Underscores are accepted in
// place of dashes.
func Parse(name string) (Feature, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, n := range names {
		if n.name == key {
			return n.feature, nil
		}
	}
	return 0, fmt.Errorf("unknown feature %q", name)
}

// Names lists every known feature name in declaration order.
func Names() []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.name
	}
	return out
}

// Features is a set of enabled flags. The zero value has every flag
// disabled; Default returns the baseline most modules expect.
//
// A Features value is read-only configuration for a pass: callers adjust
// it with Enable/Disable and then call UpdateDependencies before handing
// it to a reader, writer or validator.
type Features struct {
	enabled Feature
}

// Default returns the baseline feature set: mutable globals only.
func Default() Features {
	return Features{enabled: MutableGlobals}
}

// All returns a feature set with every flag enabled.
func All() Features {
	var f Features
	f.EnableAll()
	return f
}

// New returns a feature set with exactly the given flags enabled and
// dependencies resolved.
func New(flags ...Feature) Features {
	var f Features
	for _, flag := range flags {
		f.Enable(flag)
	}
	f.UpdateDependencies()
	return f
}

// Enable turns on the given flags.
func (f *Features) Enable(feature Feature) {
	f.enabled |= feature & all
}

// Disable turns off the given flags.
func (f *Features) Disable(feature Feature) {
	f.enabled &^= feature
}

// Set enables or disables the given flags.
func (f *Features) Set(feature Feature, on bool) {
	if on {
		f.Enable(feature)
	} else {
		f.Disable(feature)
	}
}

// IsEnabled reports whether every flag in feature is enabled.
func (f Features) IsEnabled(feature Feature) bool {
	return feature != 0 && f.enabled&feature == feature
}

// EnableAll turns on every known flag.
func (f *Features) EnableAll() {
	f.enabled = all
}

// UpdateDependencies enforces implications between flags. Reference
// types rely on the bulk memory table instructions, so enabling the
// former enables the latter.
func (f *Features) UpdateDependencies() {
	if f.enabled&ReferenceTypes != 0 {
		f.enabled |= BulkMemory
	}
}

// Flags returns the raw enabled flags.
func (f Features) Flags() Feature {
	return f.enabled
}

// EnableNames enables every named feature. Unknown names fail without
// modifying f.
func (f *Features) EnableNames(list []string) error {
	return f.applyNames(list, true)
}

// DisableNames disables every named feature. Unknown names fail without
// modifying f.
func (f *Features) DisableNames(list []string) error {
	return f.applyNames(list, false)
}

func (f *Features) applyNames(list []string, on bool) error {
	var mask Feature
	for _, name := range list {
		if strings.TrimSpace(name) == "" {
			continue
		}
		feature, err := Parse(name)
		if err != nil {
			return err
		}
		mask |= feature
	}
	f.Set(mask, on)
	return nil
}

func (f Features) String() string {
	return f.enabled.String()
}
