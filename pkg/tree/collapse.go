package tree

// CollapseMode selects how Collapse changes a node's collapse flag.
type CollapseMode int

const (
	// CollapseOn forces the node into the collapsed state.
	CollapseOn CollapseMode = iota
	// CollapseOff forces the node into the expanded state.
	CollapseOff
	// CollapseToggle flips the current state.
	CollapseToggle
)

// Collapsed reports whether this node is collapsed. A collapsed node still
// appears in visible traversals; only its descendants are hidden.
func (n *Node[T]) Collapsed() bool { return n.collapsed }

// Collapse applies the mode to this node and returns whether the state
// changed. Requesting a state that already holds is a no-op: no version bump,
// no notification.
func (n *Node[T]) Collapse(mode CollapseMode) bool {
	target := n.collapsed
	switch mode {
	case CollapseOn:
		target = true
	case CollapseOff:
		target = false
	case CollapseToggle:
		target = !n.collapsed
	}
	if target == n.collapsed {
		return false
	}
	n.collapsed = target
	n.bump()
	n.notify()
	return true
}

// ExpandToThis expands every strict ancestor so this node becomes reachable
// in the visible projection. Each ancestor that actually changed notifies its
// own listeners.
func (n *Node[T]) ExpandToThis() {
	for a := n.parent; a != nil; a = a.parent {
		a.Collapse(CollapseOff)
	}
}

// CollapseToLevel collapses the subtree at a relative depth cutoff: nodes
// fewer than level steps below this node expand, nodes at or past the cutoff
// collapse. level <= 0 collapses this node too; a level past the subtree
// height expands everything. Returns whether any node changed.
func (n *Node[T]) CollapseToLevel(level int) bool {
	base := n.depth
	changed := false
	n.eachPre(func(node *Node[T]) bool {
		if node.depth-base < level {
			changed = node.Collapse(CollapseOff) || changed
		} else {
			changed = node.Collapse(CollapseOn) || changed
		}
		return true
	})
	return changed
}

// ExpandAll expands every node in the subtree. No-op (returns false) when all
// are already expanded.
func (n *Node[T]) ExpandAll() bool {
	return n.setAllCollapsed(false)
}

// CollapseAll collapses every node in the subtree. No-op (returns false) when
// all are already collapsed.
func (n *Node[T]) CollapseAll() bool {
	return n.setAllCollapsed(true)
}

func (n *Node[T]) setAllCollapsed(collapsed bool) bool {
	mode := CollapseOff
	if collapsed {
		mode = CollapseOn
	}
	changed := false
	n.eachPre(func(node *Node[T]) bool {
		changed = node.Collapse(mode) || changed
		return true
	})
	return changed
}

// CaptureCollapseState snapshots the ids of all collapsed nodes in the
// subtree. The snapshot is independent of the tree and safe to serialize.
func (n *Node[T]) CaptureCollapseState() *CollapseState {
	s := NewCollapseState()
	n.eachPre(func(node *Node[T]) bool {
		if node.collapsed {
			s.Add(node.id)
		}
		return true
	})
	return s
}

// RestoreCollapseState sets every subtree node's collapse flag to its
// membership in the snapshot. Snapshot ids that name no node are ignored.
// Returns whether anything changed; nothing notifies otherwise.
func (n *Node[T]) RestoreCollapseState(s *CollapseState) bool {
	changed := false
	n.eachPre(func(node *Node[T]) bool {
		want := s != nil && s.Contains(node.id)
		if want {
			changed = node.Collapse(CollapseOn) || changed
		} else {
			changed = node.Collapse(CollapseOff) || changed
		}
		return true
	})
	return changed
}
