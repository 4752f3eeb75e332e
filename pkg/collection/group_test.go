package collection

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/arbor/pkg/slots"
)

func catOption() GroupOption[item] {
	return GroupOption[item]{ID: "cat", Label: "Category", Keys: func(it item) []string {
		if it.Cat == "" {
			return nil
		}
		return strings.Split(it.Cat, "/")
	}}
}

func TestBuildTreeUngrouped(t *testing.T) {
	g := NewGroupManager[item]()
	root := g.BuildTree("root", itemKey, []item{{ID: "a"}, {ID: "b"}})
	if root.ChildCount() != 0 || root.Len() != 2 {
		t.Errorf("ungrouped tree: %d children, %d items", root.ChildCount(), root.Len())
	}
}

func TestBuildTreeNestedPaths(t *testing.T) {
	g := NewGroupManager(catOption())
	g.Select("cat")

	root := g.BuildTree("root", itemKey, []item{
		{ID: "a", Cat: "infra/network"},
		{ID: "b", Cat: "infra"},
		{ID: "c", Cat: ""},
		{ID: "d", Cat: "infra/network"},
	})

	if !root.ContainsKey("c") {
		t.Error("pathless item should stay at the root")
	}
	infra := root.Child("root/infra")
	if infra == nil {
		t.Fatal("missing group node root/infra")
	}
	if !infra.ContainsKey("b") {
		t.Error("item with one segment should sit in the first-level group")
	}
	network := infra.Child("root/infra/network")
	if network == nil {
		t.Fatal("missing nested group node root/infra/network")
	}
	if network.Len() != 2 {
		t.Errorf("nested group has %d items, want 2", network.Len())
	}
	tag, ok := network.Extra().(slots.GroupTag)
	if !ok || tag.OptionID != "cat" {
		t.Errorf("group node extra = %#v, want GroupTag{cat}", network.Extra())
	}
}

func TestBuildTreePreservesEncounterOrder(t *testing.T) {
	g := NewGroupManager(catOption())
	g.Select("cat")
	root := g.BuildTree("root", itemKey, []item{
		{ID: "1", Cat: "zeta"},
		{ID: "2", Cat: "alpha"},
		{ID: "3", Cat: "zeta"},
	})
	if root.ChildAt(0).ID() != "root/zeta" || root.ChildAt(1).ID() != "root/alpha" {
		t.Errorf("group order = %s, %s; want first-encounter order",
			root.ChildAt(0).ID(), root.ChildAt(1).ID())
	}
}

func TestSelectAndCycle(t *testing.T) {
	g := NewGroupManager(catOption())
	v := g.Version()

	if g.Select("nope") {
		t.Error("unknown option accepted")
	}
	if !g.Select("cat") {
		t.Fatal("known option rejected")
	}
	if g.Select("cat") {
		t.Error("re-selecting the active option reported a change")
	}
	if g.Active() == nil || g.Active().ID != "cat" {
		t.Error("active option wrong")
	}
	if g.Version() != v+1 {
		t.Errorf("version bumps = %d, want 1", g.Version()-v)
	}

	// Cycle wraps through ungrouped.
	if !g.Cycle() {
		t.Fatal("cycle failed")
	}
	if g.Active() != nil {
		t.Error("cycle past the last option should deactivate grouping")
	}
	g.Cycle()
	if g.Active() == nil {
		t.Error("cycle from ungrouped should activate the first option")
	}

	empty := NewGroupManager[item]()
	if empty.Cycle() {
		t.Error("cycle with no options reported a change")
	}
}
