package collection

import (
	"reflect"
	"testing"
)

func TestSelectDeselectToggle(t *testing.T) {
	s := NewSelectionManager()
	if !s.Select("a") || s.Select("a") {
		t.Error("select change reporting wrong")
	}
	if !s.IsSelected("a") || s.IsSelected("b") {
		t.Error("membership wrong")
	}
	if s.Toggle("b") != true {
		t.Error("toggle into selection should report selected")
	}
	if s.Toggle("b") != false {
		t.Error("toggle out of selection should report deselected")
	}
	if !s.Deselect("a") || s.Deselect("a") {
		t.Error("deselect change reporting wrong")
	}
	if s.Count() != 0 {
		t.Errorf("count = %d, want 0", s.Count())
	}
}

func TestSelectedKeysSorted(t *testing.T) {
	s := NewSelectionManager()
	s.Select("z")
	s.Select("a")
	s.Select("m")
	if got := s.SelectedKeys(); !reflect.DeepEqual(got, []string{"a", "m", "z"}) {
		t.Errorf("keys = %v", got)
	}
}

func TestAnchor(t *testing.T) {
	s := NewSelectionManager()
	v := s.Version()
	if !s.SetAnchor("a") || s.SetAnchor("a") {
		t.Error("anchor change reporting wrong")
	}
	if s.Anchor() != "a" {
		t.Errorf("anchor = %q", s.Anchor())
	}
	if s.Version() != v+1 {
		t.Errorf("version bumps = %d, want 1", s.Version()-v)
	}
}

func TestClear(t *testing.T) {
	s := NewSelectionManager()
	if s.Clear() {
		t.Error("clear of empty selection reported a change")
	}
	s.Select("a")
	s.SetAnchor("a")
	if !s.Clear() {
		t.Error("clear failed")
	}
	if s.Count() != 0 || s.Anchor() != "" {
		t.Error("clear left state behind")
	}
}

func TestPrune(t *testing.T) {
	s := NewSelectionManager()
	s.Select("a")
	s.Select("b")
	s.Select("c")
	s.SetAnchor("b")

	dropped := s.Prune(func(key string) bool { return key == "a" })
	if dropped != 3 { // b, c, and the anchor
		t.Errorf("dropped = %d, want 3", dropped)
	}
	if !s.IsSelected("a") || s.IsSelected("b") {
		t.Error("prune kept or dropped the wrong keys")
	}
	if s.Anchor() != "" {
		t.Error("prune kept a dead anchor")
	}

	v := s.Version()
	if got := s.Prune(func(string) bool { return true }); got != 0 {
		t.Errorf("no-op prune dropped %d", got)
	}
	if s.Version() != v {
		t.Error("no-op prune bumped version")
	}
}
