package tree

// Read-only navigation and search. Traversals never mutate the tree and are
// safe to run at any time between mutations.

// Parent returns the parent node, or nil for a root.
func (n *Node[T]) Parent() *Node[T] { return n.parent }

// IsRoot reports whether this node has no parent.
func (n *Node[T]) IsRoot() bool { return n.parent == nil }

// IsLeaf reports whether this node has no children.
func (n *Node[T]) IsLeaf() bool { return len(n.children) == 0 }

// Root walks the parent chain to the tree root (self for a root).
func (n *Node[T]) Root() *Node[T] {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Parents returns the ancestor chain nearest-first, excluding this node.
func (n *Node[T]) Parents() []*Node[T] {
	var out []*Node[T]
	for a := n.parent; a != nil; a = a.parent {
		out = append(out, a)
	}
	return out
}

// PathFromRoot returns the chain from the root down to and including this
// node.
func (n *Node[T]) PathFromRoot() []*Node[T] {
	parents := n.Parents()
	out := make([]*Node[T], 0, len(parents)+1)
	for i := len(parents) - 1; i >= 0; i-- {
		out = append(out, parents[i])
	}
	return append(out, n)
}

// Siblings returns the other children of this node's parent, in order. A root
// has no siblings.
func (n *Node[T]) Siblings() []*Node[T] {
	if n.parent == nil {
		return nil
	}
	out := make([]*Node[T], 0, len(n.parent.children)-1)
	for _, c := range n.parent.children {
		if c != n {
			out = append(out, c)
		}
	}
	return out
}

// IsAncestorOf reports whether this node is a strict ancestor of other.
func (n *Node[T]) IsAncestorOf(other *Node[T]) bool {
	if other == nil {
		return false
	}
	for a := other.parent; a != nil; a = a.parent {
		if a == n {
			return true
		}
	}
	return false
}

// IsDescendantOf reports whether this node is a strict descendant of other.
func (n *Node[T]) IsDescendantOf(other *Node[T]) bool {
	if other == nil {
		return false
	}
	return other.IsAncestorOf(n)
}

// IsSiblingOf reports whether both nodes share a parent. Self is excluded.
func (n *Node[T]) IsSiblingOf(other *Node[T]) bool {
	return other != nil && other != n && n.parent != nil && n.parent == other.parent
}

// CommonAncestorWith returns the nearest node that is an ancestor-or-self of
// both nodes: the node itself when other == n, nil when the two nodes belong
// to unrelated trees.
func (n *Node[T]) CommonAncestorWith(other *Node[T]) *Node[T] {
	if other == nil {
		return nil
	}
	if other == n {
		return n
	}
	// Dual path walk: equalize depths, then step both up in lockstep.
	a, b := n, other
	for a.depth > b.depth {
		a = a.parent
	}
	for b.depth > a.depth {
		b = b.parent
	}
	for a != nil && b != nil && a != b {
		a = a.parent
		b = b.parent
	}
	if a == b {
		return a
	}
	return nil
}

// ── Subtree traversal ──

// eachPre visits this node and its descendants depth-first pre-order until
// visit returns false. Recursion is bounded: past maxRecursionDepth frames
// the remaining subtree is walked with an explicit stack.
func (n *Node[T]) eachPre(visit func(*Node[T]) bool) bool {
	return n.eachPreBounded(visit, 0)
}

func (n *Node[T]) eachPreBounded(visit func(*Node[T]) bool, frames int) bool {
	if frames >= maxRecursionDepth {
		return n.eachPreIterative(visit)
	}
	if !visit(n) {
		return false
	}
	for _, c := range n.children {
		if !c.eachPreBounded(visit, frames+1) {
			return false
		}
	}
	return true
}

// eachPreIterative is the explicit-stack form of eachPre, used for subtrees
// deeper than the recursion bound.
func (n *Node[T]) eachPreIterative(visit func(*Node[T]) bool) bool {
	stack := []*Node[T]{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(node) {
			return false
		}
		for i := len(node.children) - 1; i >= 0; i-- {
			stack = append(stack, node.children[i])
		}
	}
	return true
}

// eachBFS visits this node and its descendants breadth-first until visit
// returns false. Queue-based, so depth never matters.
func (n *Node[T]) eachBFS(visit func(*Node[T]) bool) {
	queue := []*Node[T]{n}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if !visit(node) {
			return
		}
		queue = append(queue, node.children...)
	}
}

// Descendants returns this node and all nodes below it. depthFirst selects
// pre-order DFS; otherwise level order (BFS), which visits every depth-d node
// before any depth-(d+1) node.
func (n *Node[T]) Descendants(depthFirst bool) []*Node[T] {
	var out []*Node[T]
	if depthFirst {
		n.eachPre(func(node *Node[T]) bool {
			out = append(out, node)
			return true
		})
		return out
	}
	n.eachBFS(func(node *Node[T]) bool {
		out = append(out, node)
		return true
	})
	return out
}

// VisibleDescendants returns the subtree nodes that survive collapse pruning:
// a node is skipped exactly when some strict ancestor between it and this
// node is collapsed. A collapsed node itself still appears; its content does
// not. This node's own collapse state hides its descendants but not itself.
func (n *Node[T]) VisibleDescendants(depthFirst bool) []*Node[T] {
	var out []*Node[T]
	if depthFirst {
		n.eachVisiblePre(func(node *Node[T]) bool {
			out = append(out, node)
			return true
		})
		return out
	}
	queue := []*Node[T]{n}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		out = append(out, node)
		if node.collapsed {
			continue
		}
		queue = append(queue, node.children...)
	}
	return out
}

// eachVisiblePre is eachPre with collapse pruning: children of a collapsed
// node are not descended into.
func (n *Node[T]) eachVisiblePre(visit func(*Node[T]) bool) bool {
	return n.eachVisiblePreBounded(visit, 0)
}

func (n *Node[T]) eachVisiblePreBounded(visit func(*Node[T]) bool, frames int) bool {
	if frames >= maxRecursionDepth {
		return n.eachVisiblePreIterative(visit)
	}
	if !visit(n) {
		return false
	}
	if n.collapsed {
		return true
	}
	for _, c := range n.children {
		if !c.eachVisiblePreBounded(visit, frames+1) {
			return false
		}
	}
	return true
}

func (n *Node[T]) eachVisiblePreIterative(visit func(*Node[T]) bool) bool {
	stack := []*Node[T]{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(node) {
			return false
		}
		if node.collapsed {
			continue
		}
		for i := len(node.children) - 1; i >= 0; i-- {
			stack = append(stack, node.children[i])
		}
	}
	return true
}

// ── Search ──

// FindNode locates a node by id anywhere in the subtree (BFS, self included).
func (n *Node[T]) FindNode(id string) *Node[T] {
	var found *Node[T]
	n.eachBFS(func(node *Node[T]) bool {
		if node.id == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// FindNodeByKey locates the first node (BFS) holding an item with the given
// key.
func (n *Node[T]) FindNodeByKey(key string) *Node[T] {
	var found *Node[T]
	n.eachBFS(func(node *Node[T]) bool {
		if node.ContainsKey(key) {
			found = node
			return false
		}
		return true
	})
	return found
}

// FindNodeByItem locates the first node (BFS) holding an item with the same
// key as the given item.
func (n *Node[T]) FindNodeByItem(item T) *Node[T] {
	return n.FindNodeByKey(n.keyOf(item))
}

// FindFirstNode returns the first subtree node (BFS) matching pred, or nil.
func (n *Node[T]) FindFirstNode(pred func(*Node[T]) bool) *Node[T] {
	var found *Node[T]
	n.eachBFS(func(node *Node[T]) bool {
		if pred(node) {
			found = node
			return false
		}
		return true
	})
	return found
}

// FindAllNodes returns every subtree node (BFS order) matching pred.
func (n *Node[T]) FindAllNodes(pred func(*Node[T]) bool) []*Node[T] {
	var out []*Node[T]
	n.eachBFS(func(node *Node[T]) bool {
		if pred(node) {
			out = append(out, node)
		}
		return true
	})
	return out
}

// FindFirstItem returns the first item in the subtree (node-by-node, BFS)
// matching pred.
func (n *Node[T]) FindFirstItem(pred func(T) bool) (T, bool) {
	var found T
	ok := false
	n.eachBFS(func(node *Node[T]) bool {
		for _, it := range node.items {
			if pred(it) {
				found, ok = it, true
				return false
			}
		}
		return true
	})
	return found, ok
}

// FindAllItems returns every item in the subtree matching pred, BFS node
// order.
func (n *Node[T]) FindAllItems(pred func(T) bool) []T {
	var out []T
	n.eachBFS(func(node *Node[T]) bool {
		for _, it := range node.items {
			if pred(it) {
				out = append(out, it)
			}
		}
		return true
	})
	return out
}

// AnyItem reports whether any item in the subtree matches pred.
func (n *Node[T]) AnyItem(pred func(T) bool) bool {
	_, ok := n.FindFirstItem(pred)
	return ok
}

// EveryItem reports whether all items in the subtree match pred. Vacuously
// true for an item-less subtree.
func (n *Node[T]) EveryItem(pred func(T) bool) bool {
	all := true
	n.eachBFS(func(node *Node[T]) bool {
		for _, it := range node.items {
			if !pred(it) {
				all = false
				return false
			}
		}
		return true
	})
	return all
}

// ── Flattened views ──

// Leaves returns the subtree nodes without children, DFS pre-order.
func (n *Node[T]) Leaves() []*Node[T] {
	var out []*Node[T]
	n.eachPre(func(node *Node[T]) bool {
		if len(node.children) == 0 {
			out = append(out, node)
		}
		return true
	})
	return out
}

// NodesAtDepth returns the subtree nodes exactly level steps below this node
// (level 0 is the node itself).
func (n *Node[T]) NodesAtDepth(level int) []*Node[T] {
	if level < 0 {
		return nil
	}
	base := n.depth
	var out []*Node[T]
	n.eachBFS(func(node *Node[T]) bool {
		rel := node.depth - base
		if rel == level {
			out = append(out, node)
		}
		// BFS visits in depth order; past the target level nothing matches.
		return rel <= level
	})
	return out
}

// FlattenedItems returns every item in the subtree, level order.
func (n *Node[T]) FlattenedItems() []T {
	var out []T
	n.eachBFS(func(node *Node[T]) bool {
		out = append(out, node.items...)
		return true
	})
	return out
}

// ItemsDFS returns every item in the subtree, depth-first pre-order. This is
// the order the slot projection uses.
func (n *Node[T]) ItemsDFS() []T {
	var out []T
	n.eachPre(func(node *Node[T]) bool {
		out = append(out, node.items...)
		return true
	})
	return out
}

// FlattenedKeys returns the keys of FlattenedItems in the same order.
func (n *Node[T]) FlattenedKeys() []string {
	var out []string
	n.eachBFS(func(node *Node[T]) bool {
		for _, it := range node.items {
			out = append(out, node.keyOf(it))
		}
		return true
	})
	return out
}

// FlattenedLength returns the total number of items in the subtree.
func (n *Node[T]) FlattenedLength() int {
	total := 0
	n.eachBFS(func(node *Node[T]) bool {
		total += len(node.items)
		return true
	})
	return total
}

// Height returns the length of the longest downward path from this node
// (0 for a leaf). The value is cached and recomputed after structural
// changes. Computed with a queue, so chain depth never overflows the stack.
func (n *Node[T]) Height() int {
	if n.heightOK {
		return n.height
	}
	base := n.depth
	max := 0
	n.eachBFS(func(node *Node[T]) bool {
		if rel := node.depth - base; rel > max {
			max = rel
		}
		return true
	})
	n.height = max
	n.heightOK = true
	return max
}
