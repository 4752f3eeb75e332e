package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/vanderheijden86/arbor/pkg/slots"
)

func pipelineItems() []item {
	return []item{
		{ID: "a", Cat: "infra", Pri: 2, Val: 10},
		{ID: "b", Cat: "web", Pri: 0, Val: 5},
		{ID: "c", Cat: "infra", Pri: 1, Val: 7},
		{ID: "d", Cat: "web", Pri: 1, Val: 3},
	}
}

func newPipeline(t *testing.T, opts ...ControllerOption[item]) *Controller[item] {
	t.Helper()
	c := NewController(itemKey, opts...)
	t.Cleanup(c.Close)
	return c
}

// slotKinds renders the projection as a compact shape string: "H" per header
// (with the group label), one id per item slot.
func slotKinds(c *Controller[item]) []string {
	out := make([]string, 0, c.Slots().TotalSlots())
	for i := 0; i < c.Slots().TotalSlots(); i++ {
		switch s := c.Slots().GetSlot(i).(type) {
		case slots.GroupHeaderSlot[item]:
			out = append(out, "H:"+s.Node.ID())
		case slots.ItemSlot[item]:
			out = append(out, s.Key)
		}
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestControllerGroupedProjection(t *testing.T) {
	c := newPipeline(t, WithGroupOptions(catOption()))
	c.Grouper().Select("cat")
	c.Sorter().SetFields(priField(Ascending))
	c.SetItems(pipelineItems())

	// Items sort by priority (key tiebreak), groups appear in sorted-item
	// encounter order: b(web,0), c(infra,1), d(web,1), a(infra,2).
	want := []string{"H:root/web", "b", "d", "H:root/infra", "c", "a"}
	if got := slotKinds(c); !equalStrings(got, want) {
		t.Errorf("projection = %v, want %v", got, want)
	}
}

func TestControllerFilterReprojects(t *testing.T) {
	c := newPipeline(t, WithGroupOptions(catOption()))
	c.Grouper().Select("cat")
	c.SetItems(pipelineItems())

	before := c.Slots().TotalSlots()
	c.Filter().Set("infra", func(it item) bool { return it.Cat == "infra" })
	// Headers stay; only items are pruned.
	want := []string{"H:root/infra", "a", "c", "H:root/web"}
	if got := slotKinds(c); !equalStrings(got, want) {
		t.Errorf("filtered projection = %v, want %v", got, want)
	}

	c.Filter().Clear()
	if c.Slots().TotalSlots() != before {
		t.Errorf("clearing the filter did not restore %d slots", before)
	}
}

func TestControllerGroupChangeKeepsCollapseState(t *testing.T) {
	c := newPipeline(t, WithGroupOptions(catOption()))
	c.Grouper().Select("cat")
	c.SetItems(pipelineItems())

	if !c.Slots().Collapse("root/infra") {
		t.Fatal("collapse failed")
	}

	// Re-sorting rebuilds the tree; the collapsed group must stay collapsed.
	c.Sorter().SetFields(priField(Descending))
	infra := c.Root().Child("root/infra")
	if infra == nil || !infra.Collapsed() {
		t.Error("collapse state lost across tree rebuild")
	}
	for _, s := range slotKinds(c) {
		if s == "a" || s == "c" {
			t.Errorf("collapsed group leaked item %s", s)
		}
	}
}

func TestControllerSetItemsPrunesSelection(t *testing.T) {
	c := newPipeline(t)
	c.SetItems(pipelineItems())
	c.Selection().Select("a")
	c.Selection().Select("b")
	c.Selection().SetAnchor("b")

	c.SetItems([]item{{ID: "a"}})
	if !c.Selection().IsSelected("a") || c.Selection().IsSelected("b") {
		t.Error("selection not pruned to surviving keys")
	}
	if c.Selection().Anchor() != "" {
		t.Error("dead anchor survived SetItems")
	}
	if c.AnchorIndex() != -1 {
		t.Errorf("anchor index = %d, want -1", c.AnchorIndex())
	}
}

func TestControllerRevealKey(t *testing.T) {
	c := newPipeline(t, WithGroupOptions(catOption()))
	c.Grouper().Select("cat")
	c.SetItems(pipelineItems())
	c.Slots().Collapse("root/web")

	if c.Slots().IndexOfKey("b") != -1 {
		t.Fatal("item under a collapsed group should be invisible")
	}
	idx := c.RevealKey("b")
	if idx == -1 {
		t.Fatal("reveal returned -1 for an existing key")
	}
	if got := c.Slots().IndexOfKey("b"); got != idx {
		t.Errorf("revealed index %d, IndexOfKey %d", idx, got)
	}
	if c.Selection().Anchor() != "b" {
		t.Error("reveal did not move the anchor")
	}
	if c.AnchorIndex() != idx {
		t.Errorf("anchor index = %d, want %d", c.AnchorIndex(), idx)
	}

	if c.RevealKey("nope") != -1 {
		t.Error("reveal of an unknown key should return -1")
	}
}

func TestControllerSearchSeesCollapsedItems(t *testing.T) {
	c := newPipeline(t, WithGroupOptions(catOption()))
	c.Grouper().Select("cat")
	c.SetItems(pipelineItems())
	c.Slots().CollapseAll()

	got := c.SearchItems(func(it item) bool { return it.Cat == "infra" })
	if len(got) != 2 {
		t.Errorf("search found %d items, want 2 (collapse must not hide them)", len(got))
	}
}

func TestControllerRefreshAndLoadMore(t *testing.T) {
	all := pipelineItems()
	calls := 0
	c := newPipeline(t, WithLoader[item](sliceLoader(all, &calls), 3))

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(c.Items()) != len(all) {
		t.Errorf("refresh loaded %d items, want %d", len(c.Items()), len(all))
	}
	if c.HasMore() {
		t.Error("fully refreshed controller reports more pages")
	}
	if n, err := c.LoadMore(context.Background()); err != nil || n != 0 {
		t.Errorf("load past the end: n=%d err=%v", n, err)
	}
	if c.Slots().UniqueItemCount() != len(all) {
		t.Errorf("projection has %d items, want %d", c.Slots().UniqueItemCount(), len(all))
	}
}

func TestControllerWithoutLoader(t *testing.T) {
	c := newPipeline(t)
	if err := c.Refresh(context.Background()); !errors.Is(err, ErrNoLoader) {
		t.Errorf("refresh err = %v, want ErrNoLoader", err)
	}
	if _, err := c.LoadMore(context.Background()); !errors.Is(err, ErrNoLoader) {
		t.Errorf("load more err = %v, want ErrNoLoader", err)
	}
	if c.HasMore() {
		t.Error("loaderless controller reports more pages")
	}
}

func TestControllerAggregatesOnHeaders(t *testing.T) {
	c := newPipeline(t,
		WithGroupOptions(catOption()),
		WithAggregates(AggregateSpec[item]{Name: "val", Kind: AggregateSum, Value: func(it item) float64 { return it.Val }}),
	)
	c.Grouper().Select("cat")
	c.SetItems(pipelineItems())

	found := false
	for i := 0; i < c.Slots().TotalSlots(); i++ {
		h, ok := c.Slots().GetSlot(i).(slots.GroupHeaderSlot[item])
		if !ok || h.Node.ID() != "root/infra" {
			continue
		}
		found = true
		if h.Aggregates["val"] != 17 {
			t.Errorf("infra val rollup = %v, want 17", h.Aggregates["val"])
		}
	}
	if !found {
		t.Fatal("no infra header in the projection")
	}
}

func TestControllerCloseUnsubscribes(t *testing.T) {
	c := NewController(itemKey, WithGroupOptions[item](catOption()))
	c.SetItems(pipelineItems())
	root := c.Root()
	c.Close()

	// A grouper change after Close must not rebuild the tree.
	c.Grouper().Select("cat")
	if c.Root() != root {
		t.Error("closed controller still reacts to grouping changes")
	}
}
