package collection

import "sort"

// SelectionManager tracks the set of selected item keys plus a single anchor
// key, the cursor position the controller preserves across rebuilds. It knows
// nothing about visibility: selection survives filtering and collapse, and is
// pruned explicitly when the underlying item set changes.
type SelectionManager struct {
	selected map[string]struct{}
	anchor   string
	version  uint64
	sig      signal
}

// NewSelectionManager creates an empty selection.
func NewSelectionManager() *SelectionManager {
	return &SelectionManager{selected: make(map[string]struct{})}
}

// Version returns the monotonic change counter.
func (s *SelectionManager) Version() uint64 { return s.version }

// Listen registers a change callback and returns an unsubscribe function.
func (s *SelectionManager) Listen(fn func()) func() { return s.sig.listen(fn) }

func (s *SelectionManager) changed() {
	s.version++
	s.sig.fire()
}

// Select adds the key. Returns false when already selected; no version bump,
// no notification.
func (s *SelectionManager) Select(key string) bool {
	if _, ok := s.selected[key]; ok {
		return false
	}
	s.selected[key] = struct{}{}
	s.changed()
	return true
}

// Deselect removes the key. Returns false when not selected.
func (s *SelectionManager) Deselect(key string) bool {
	if _, ok := s.selected[key]; !ok {
		return false
	}
	delete(s.selected, key)
	s.changed()
	return true
}

// Toggle flips the key's membership and reports the new state.
func (s *SelectionManager) Toggle(key string) bool {
	if s.Select(key) {
		return true
	}
	s.Deselect(key)
	return false
}

// IsSelected reports membership.
func (s *SelectionManager) IsSelected(key string) bool {
	_, ok := s.selected[key]
	return ok
}

// Count returns the number of selected keys.
func (s *SelectionManager) Count() int { return len(s.selected) }

// SelectedKeys returns the selected keys, sorted for deterministic output.
func (s *SelectionManager) SelectedKeys() []string {
	out := make([]string, 0, len(s.selected))
	for k := range s.selected {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clear empties the selection and the anchor. No-op when both are empty.
func (s *SelectionManager) Clear() bool {
	if len(s.selected) == 0 && s.anchor == "" {
		return false
	}
	s.selected = make(map[string]struct{})
	s.anchor = ""
	s.changed()
	return true
}

// Anchor returns the anchor key, empty when unset.
func (s *SelectionManager) Anchor() string { return s.anchor }

// SetAnchor moves the anchor. Returns false when unchanged.
func (s *SelectionManager) SetAnchor(key string) bool {
	if s.anchor == key {
		return false
	}
	s.anchor = key
	s.changed()
	return true
}

// Prune drops selected keys (and the anchor) that the keep predicate rejects,
// returning how many entries were dropped. Used after a reload to discard
// selections for items that no longer exist.
func (s *SelectionManager) Prune(keep func(key string) bool) int {
	dropped := 0
	for k := range s.selected {
		if !keep(k) {
			delete(s.selected, k)
			dropped++
		}
	}
	if s.anchor != "" && !keep(s.anchor) {
		s.anchor = ""
		dropped++
	}
	if dropped > 0 {
		s.changed()
	}
	return dropped
}
