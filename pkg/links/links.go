// Package links maintains the directed graph of relationships between items,
// keyed by item key, independent of the tree's parent/child structure. It
// answers reachability, shortest-path and cycle queries for link-aware views.
package links

import (
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Kind labels a link.
type Kind string

// Standard link kinds. Blocks participates in ordering; the others are
// informational.
const (
	KindBlocks     Kind = "blocks"
	KindRelates    Kind = "relates"
	KindDuplicates Kind = "duplicates"
)

// Blocking reports whether the kind gates execution order.
func (k Kind) Blocking() bool { return k == KindBlocks }

// Link is one directed edge between item keys.
type Link struct {
	From string
	To   string
	Kind Kind
}

// Manager holds the link graph. Like the rest of the engine it is
// synchronous and single-owner.
type Manager struct {
	g        *simple.DirectedGraph
	idToNode map[string]int64
	nodeToID map[int64]string
	kinds    map[int64]map[int64]Kind
	version  uint64
}

// NewManager creates an empty link graph.
func NewManager() *Manager {
	return &Manager{
		g:        simple.NewDirectedGraph(),
		idToNode: make(map[string]int64),
		nodeToID: make(map[int64]string),
		kinds:    make(map[int64]map[int64]Kind),
	}
}

// Version returns the monotonic change counter.
func (m *Manager) Version() uint64 { return m.version }

// AddKey registers a key as a graph node. Returns false when already present.
func (m *Manager) AddKey(key string) bool {
	if _, ok := m.idToNode[key]; ok {
		return false
	}
	n := m.g.NewNode()
	m.g.AddNode(n)
	m.idToNode[key] = n.ID()
	m.nodeToID[n.ID()] = key
	m.version++
	return true
}

// RemoveKey drops a key and every link touching it. Returns false when the
// key is unknown.
func (m *Manager) RemoveKey(key string) bool {
	id, ok := m.idToNode[key]
	if !ok {
		return false
	}
	m.g.RemoveNode(id)
	delete(m.idToNode, key)
	delete(m.nodeToID, id)
	delete(m.kinds, id)
	for _, tos := range m.kinds {
		delete(tos, id)
	}
	m.version++
	return true
}

// HasKey reports whether the key is registered.
func (m *Manager) HasKey(key string) bool {
	_, ok := m.idToNode[key]
	return ok
}

// Keys returns all registered keys, sorted.
func (m *Manager) Keys() []string {
	out := make([]string, 0, len(m.idToNode))
	for k := range m.idToNode {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered keys.
func (m *Manager) Len() int { return len(m.idToNode) }

// Link adds a directed edge, registering unknown keys on the fly. Returns
// false for self-links and for edges that already exist with the same kind;
// re-linking with a different kind updates the label.
func (m *Manager) Link(from, to string, kind Kind) bool {
	if from == to {
		return false
	}
	m.AddKey(from)
	m.AddKey(to)
	u, v := m.idToNode[from], m.idToNode[to]
	if existing, ok := m.kinds[u][v]; ok && existing == kind {
		return false
	}
	m.g.SetEdge(m.g.NewEdge(m.g.Node(u), m.g.Node(v)))
	if m.kinds[u] == nil {
		m.kinds[u] = make(map[int64]Kind)
	}
	m.kinds[u][v] = kind
	m.version++
	return true
}

// Unlink removes the edge. Returns false when it does not exist.
func (m *Manager) Unlink(from, to string) bool {
	u, okU := m.idToNode[from]
	v, okV := m.idToNode[to]
	if !okU || !okV {
		return false
	}
	if _, ok := m.kinds[u][v]; !ok {
		return false
	}
	m.g.RemoveEdge(u, v)
	delete(m.kinds[u], v)
	m.version++
	return true
}

// LinkKind returns the kind of the edge from → to.
func (m *Manager) LinkKind(from, to string) (Kind, bool) {
	u, okU := m.idToNode[from]
	v, okV := m.idToNode[to]
	if !okU || !okV {
		return "", false
	}
	kind, ok := m.kinds[u][v]
	return kind, ok
}

// HasLink reports whether the edge from → to exists.
func (m *Manager) HasLink(from, to string) bool {
	_, ok := m.LinkKind(from, to)
	return ok
}

// LinksFrom returns the outgoing links of a key, sorted by target.
func (m *Manager) LinksFrom(key string) []Link {
	u, ok := m.idToNode[key]
	if !ok {
		return nil
	}
	var out []Link
	for v, kind := range m.kinds[u] {
		out = append(out, Link{From: key, To: m.nodeToID[v], Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].To < out[j].To })
	return out
}

// LinksTo returns the incoming links of a key, sorted by source.
func (m *Manager) LinksTo(key string) []Link {
	v, ok := m.idToNode[key]
	if !ok {
		return nil
	}
	var out []Link
	for u, tos := range m.kinds {
		if kind, ok := tos[v]; ok {
			out = append(out, Link{From: m.nodeToID[u], To: key, Kind: kind})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

// Degree returns the in- and out-degree of a key, zeros when unknown.
func (m *Manager) Degree(key string) (in, out int) {
	id, ok := m.idToNode[key]
	if !ok {
		return 0, 0
	}
	return m.g.To(id).Len(), m.g.From(id).Len()
}

// ShortestPath returns the keys along a shortest directed path from → to,
// inclusive, or nil when no path exists. Links count uniformly; kinds are
// ignored.
func (m *Manager) ShortestPath(from, to string) []string {
	u, okU := m.idToNode[from]
	v, okV := m.idToNode[to]
	if !okU || !okV {
		return nil
	}
	if from == to {
		return []string{from}
	}
	shortest := path.DijkstraFrom(m.g.Node(u), m.g)
	nodes, _ := shortest.To(v)
	if len(nodes) == 0 {
		return nil
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = m.nodeToID[n.ID()]
	}
	return out
}

// Reachable reports whether any directed path leads from → to.
func (m *Manager) Reachable(from, to string) bool {
	return m.ShortestPath(from, to) != nil
}

// TopoOrder returns the keys in topological order (sources first). ok = false
// when the graph has a cycle; the slice is nil in that case.
func (m *Manager) TopoOrder() ([]string, bool) {
	sorted, err := topo.Sort(m.g)
	if err != nil {
		return nil, false
	}
	out := make([]string, len(sorted))
	for i, n := range sorted {
		out[i] = m.nodeToID[n.ID()]
	}
	return out, true
}

// Cycles returns every elementary directed cycle as a key sequence with the
// first key repeated at the end, matching gonum's convention.
func (m *Manager) Cycles() [][]string {
	raw := topo.DirectedCyclesIn(m.g)
	if len(raw) == 0 {
		return nil
	}
	out := make([][]string, len(raw))
	for i, cycle := range raw {
		keys := make([]string, len(cycle))
		for j, n := range cycle {
			keys[j] = m.nodeToID[n.ID()]
		}
		out[i] = keys
	}
	return out
}
