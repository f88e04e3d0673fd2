package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestList_Context(t *testing.T) {
	var l List
	l.PushContext("function 2")
	l.PushContext("i32.add")
	l.OnError(Validation(KindTypeMismatch, "expected stack to contain [i32, i32], got []"))
	l.PopContext()
	l.OnError(&Error{Phase: PhaseDecode, Kind: KindTruncated, Path: []string{"memarg"}})
	l.PopContext()
	l.OnError(Validation(KindStructure, "expected function end"))

	if l.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", l.Len())
	}

	want := [][]string{
		{"function 2", "i32.add"},
		{"function 2", "memarg"},
		nil,
	}
	for i, err := range l.Errors() {
		if strings.Join(err.Path, "|") != strings.Join(want[i], "|") {
			t.Errorf("error %d path: got %v, want %v", i, err.Path, want[i])
		}
	}
}

func TestList_PopEmpty(t *testing.T) {
	var l List
	l.PopContext()
	l.OnError(Validation(KindStructure, "x"))
	if len(l.Errors()[0].Path) != 0 {
		t.Errorf("path: got %v, want empty", l.Errors()[0].Path)
	}
}

func TestList_Limit(t *testing.T) {
	l := List{Limit: 2}
	for i := 0; i < 5; i++ {
		l.OnError(Validation(KindTypeMismatch, "e%d", i))
	}
	if l.Len() != 2 {
		t.Errorf("Len: got %d, want 2", l.Len())
	}
	if l.Dropped != 3 {
		t.Errorf("Dropped: got %d, want 3", l.Dropped)
	}
}

func TestList_Err(t *testing.T) {
	var l List
	if l.Err() != nil {
		t.Fatal("empty list should return nil")
	}
	l.OnError(Validation(KindAlignment, "invalid alignment"))
	l.OnError(Validation(KindImmutable, "global.set is invalid on immutable global 0"))

	err := l.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, &Error{Phase: PhaseValidate, Kind: KindImmutable}) {
		t.Error("joined error should match each member")
	}
	if !strings.Contains(err.Error(), "invalid alignment") {
		t.Errorf("joined message: %q", err.Error())
	}
}

func TestList_Reset(t *testing.T) {
	l := List{Limit: 1}
	l.PushContext("stale")
	l.OnError(Validation(KindTypeMismatch, "x"))
	l.OnError(Validation(KindTypeMismatch, "y"))
	if l.Len() != 1 || l.Dropped != 1 {
		t.Errorf("got len %d dropped %d", l.Len(), l.Dropped)
	}

	l.Reset()
	if l.Len() != 0 || l.Dropped != 0 {
		t.Error("Reset should clear errors")
	}
	l.OnError(Validation(KindStructure, "z"))
	if len(l.Errors()[0].Path) != 0 {
		t.Error("Reset should clear context")
	}
}

func TestList_NilError(t *testing.T) {
	var l List
	l.OnError(nil)
	if l.Len() != 0 {
		t.Error("nil errors must be ignored")
	}
}

func TestNop(t *testing.T) {
	var s Sink = Nop{}
	s.PushContext("a")
	s.OnError(Validation(KindStructure, "ignored"))
	s.PopContext()
}
