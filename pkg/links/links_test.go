package links

import (
	"reflect"
	"testing"
)

func buildDiamond() *Manager {
	// a → b → d, a → c → d
	m := NewManager()
	m.Link("a", "b", KindBlocks)
	m.Link("b", "d", KindBlocks)
	m.Link("a", "c", KindBlocks)
	m.Link("c", "d", KindRelates)
	return m
}

func TestLinkRegistersKeysAndRejectsDuplicates(t *testing.T) {
	m := NewManager()
	if !m.Link("a", "b", KindBlocks) {
		t.Fatal("first link rejected")
	}
	if !m.HasKey("a") || !m.HasKey("b") {
		t.Error("Link should register unknown keys")
	}
	if m.Link("a", "b", KindBlocks) {
		t.Error("identical re-link reported a change")
	}
	if m.Link("a", "a", KindBlocks) {
		t.Error("self-link accepted")
	}
	// Re-linking with a different kind relabels the edge.
	if !m.Link("a", "b", KindRelates) {
		t.Error("kind change rejected")
	}
	if kind, ok := m.LinkKind("a", "b"); !ok || kind != KindRelates {
		t.Errorf("LinkKind = %q,%v, want relates", kind, ok)
	}
}

func TestUnlink(t *testing.T) {
	m := buildDiamond()
	if !m.Unlink("a", "b") {
		t.Fatal("unlink of existing edge failed")
	}
	if m.HasLink("a", "b") {
		t.Error("edge survived unlink")
	}
	if m.Unlink("a", "b") {
		t.Error("second unlink reported a change")
	}
	if m.Unlink("a", "zz") {
		t.Error("unlink with unknown key reported a change")
	}
	// Keys stay registered after their edges go.
	if !m.HasKey("b") {
		t.Error("unlink dropped a key")
	}
}

func TestRemoveKeyCascades(t *testing.T) {
	m := buildDiamond()
	if !m.RemoveKey("b") {
		t.Fatal("remove failed")
	}
	if m.HasLink("a", "b") || m.HasLink("b", "d") {
		t.Error("edges survived key removal")
	}
	if got := m.Len(); got != 3 {
		t.Errorf("Len = %d, want 3", got)
	}
	if m.RemoveKey("b") {
		t.Error("second removal reported a change")
	}
	// The other branch is intact.
	if !m.HasLink("c", "d") {
		t.Error("unrelated edge lost")
	}
}

func TestLinksFromTo(t *testing.T) {
	m := buildDiamond()
	from := m.LinksFrom("a")
	want := []Link{{From: "a", To: "b", Kind: KindBlocks}, {From: "a", To: "c", Kind: KindBlocks}}
	if !reflect.DeepEqual(from, want) {
		t.Errorf("LinksFrom(a) = %+v, want %+v", from, want)
	}
	to := m.LinksTo("d")
	wantTo := []Link{{From: "b", To: "d", Kind: KindBlocks}, {From: "c", To: "d", Kind: KindRelates}}
	if !reflect.DeepEqual(to, wantTo) {
		t.Errorf("LinksTo(d) = %+v, want %+v", to, wantTo)
	}
	if m.LinksFrom("zz") != nil {
		t.Error("LinksFrom of unknown key should be nil")
	}
}

func TestDegree(t *testing.T) {
	m := buildDiamond()
	if in, out := m.Degree("a"); in != 0 || out != 2 {
		t.Errorf("Degree(a) = %d,%d, want 0,2", in, out)
	}
	if in, out := m.Degree("d"); in != 2 || out != 0 {
		t.Errorf("Degree(d) = %d,%d, want 2,0", in, out)
	}
	if in, out := m.Degree("zz"); in != 0 || out != 0 {
		t.Errorf("Degree of unknown key = %d,%d, want 0,0", in, out)
	}
}

func TestShortestPath(t *testing.T) {
	m := NewManager()
	// a → b → c → e and shortcut a → d → e
	m.Link("a", "b", KindBlocks)
	m.Link("b", "c", KindBlocks)
	m.Link("c", "e", KindBlocks)
	m.Link("a", "d", KindBlocks)
	m.Link("d", "e", KindBlocks)

	got := m.ShortestPath("a", "e")
	want := []string{"a", "d", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ShortestPath = %v, want %v", got, want)
	}
	if m.ShortestPath("e", "a") != nil {
		t.Error("path against edge direction should be nil")
	}
	if got := m.ShortestPath("a", "a"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("self path = %v", got)
	}
	if m.ShortestPath("a", "zz") != nil {
		t.Error("path to unknown key should be nil")
	}
	if !m.Reachable("a", "e") || m.Reachable("e", "a") {
		t.Error("Reachable disagrees with ShortestPath")
	}
}

func TestTopoOrder(t *testing.T) {
	m := buildDiamond()
	order, ok := m.TopoOrder()
	if !ok {
		t.Fatal("acyclic graph reported a cycle")
	}
	pos := map[string]int{}
	for i, k := range order {
		pos[k] = i
	}
	for _, edge := range [][2]string{{"a", "b"}, {"b", "d"}, {"a", "c"}, {"c", "d"}} {
		if pos[edge[0]] > pos[edge[1]] {
			t.Errorf("topo order places %s after %s", edge[0], edge[1])
		}
	}

	m.Link("d", "a", KindBlocks)
	if _, ok := m.TopoOrder(); ok {
		t.Error("cyclic graph reported an order")
	}
}

func TestCycles(t *testing.T) {
	m := NewManager()
	if m.Cycles() != nil {
		t.Error("empty graph has cycles")
	}
	m.Link("a", "b", KindBlocks)
	m.Link("b", "c", KindBlocks)
	m.Link("c", "a", KindBlocks)
	cycles := m.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("cycle count = %d, want 1", len(cycles))
	}
	c := cycles[0]
	if len(c) != 4 || c[0] != c[len(c)-1] {
		t.Errorf("cycle = %v, want closed 3-cycle", c)
	}
}

func TestVersionBumpsOnChangeOnly(t *testing.T) {
	m := NewManager()
	v := m.Version()
	m.Link("a", "b", KindBlocks)
	if m.Version() == v {
		t.Error("link did not bump version")
	}
	v = m.Version()
	m.Link("a", "b", KindBlocks) // duplicate
	m.Unlink("a", "zz")          // unknown
	m.RemoveKey("zz")            // unknown
	if m.Version() != v {
		t.Error("no-ops bumped version")
	}
}
