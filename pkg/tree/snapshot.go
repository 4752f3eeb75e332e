package tree

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// CollapseState is an immutable-by-convention snapshot of which node ids are
// collapsed. It serializes to two wire formats:
//
// JSON:
//
//	{"collapsedIds": ["a", "b/c"]}
//
// Query string:
//
//	collapsed=a,b%2Fc
//
// Ids are percent-encoded individually and comma-joined so an id may itself
// contain commas or slashes. An empty snapshot serializes to an empty query
// string (the key is omitted) and to an empty JSON array.
type CollapseState struct {
	ids map[string]struct{}
}

// NewCollapseState returns an empty snapshot.
func NewCollapseState(ids ...string) *CollapseState {
	s := &CollapseState{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Add records an id as collapsed.
func (s *CollapseState) Add(id string) { s.ids[id] = struct{}{} }

// Contains reports whether the id is recorded as collapsed.
func (s *CollapseState) Contains(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of recorded ids.
func (s *CollapseState) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// CollapsedIDs returns the recorded ids, sorted for deterministic output.
func (s *CollapseState) CollapsedIDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether two snapshots record the same id set.
func (s *CollapseState) Equal(other *CollapseState) bool {
	if s.Len() != other.Len() {
		return false
	}
	for id := range s.ids {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

type collapseStateJSON struct {
	CollapsedIDs []any `json:"collapsedIds"`
}

// MarshalJSON encodes the snapshot as {"collapsedIds": [...]} with sorted
// ids.
func (s *CollapseState) MarshalJSON() ([]byte, error) {
	ids := s.CollapsedIDs()
	vals := make([]any, len(ids))
	for i, id := range ids {
		vals[i] = id
	}
	return json.Marshal(collapseStateJSON{CollapsedIDs: vals})
}

// UnmarshalJSON decodes {"collapsedIds": [...]}. A null or absent array means
// an empty snapshot; non-string entries are silently dropped.
func (s *CollapseState) UnmarshalJSON(data []byte) error {
	var raw collapseStateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("collapse state: %w", err)
	}
	s.ids = make(map[string]struct{}, len(raw.CollapsedIDs))
	for _, v := range raw.CollapsedIDs {
		if id, ok := v.(string); ok {
			s.ids[id] = struct{}{}
		}
	}
	return nil
}

// CollapseStateFromJSON decodes a snapshot from its JSON form. nil, empty or
// literal-null input yields an empty snapshot.
func CollapseStateFromJSON(data []byte) (*CollapseState, error) {
	s := NewCollapseState()
	if len(data) == 0 || strings.TrimSpace(string(data)) == "null" {
		return s, nil
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ToQueryString encodes the snapshot as "collapsed=<id,id,...>" with each id
// percent-encoded. An empty snapshot encodes to the empty string.
func (s *CollapseState) ToQueryString() string {
	ids := s.CollapsedIDs()
	if len(ids) == 0 {
		return ""
	}
	enc := make([]string, len(ids))
	for i, id := range ids {
		enc[i] = url.QueryEscape(id)
	}
	return "collapsed=" + strings.Join(enc, ",")
}

// CollapseStateFromQueryString parses a query string produced by
// ToQueryString. Unrelated key=value pairs are tolerated and ignored, as is
// a missing or empty collapsed value. Segments that fail percent-decoding
// are dropped.
func CollapseStateFromQueryString(qs string) *CollapseState {
	s := NewCollapseState()
	qs = strings.TrimPrefix(qs, "?")
	if qs == "" {
		return s
	}
	for _, pair := range strings.Split(qs, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if key != "collapsed" || value == "" {
			continue
		}
		for _, seg := range strings.Split(value, ",") {
			if seg == "" {
				continue
			}
			id, err := url.QueryUnescape(seg)
			if err != nil {
				continue
			}
			s.ids[id] = struct{}{}
		}
	}
	return s
}

// ── State file persistence ──

// stateFileName is the filename collapse snapshots are persisted under.
const stateFileName = "collapse-state.json"

// StatePath returns the snapshot file path under stateDir.
func StatePath(stateDir string) string {
	return filepath.Join(stateDir, stateFileName)
}

// SaveState persists the subtree's collapse snapshot under stateDir. An empty
// stateDir skips persistence entirely. Errors are logged as warnings and do
// not interrupt the caller.
func (n *Node[T]) SaveState(stateDir string) {
	if stateDir == "" {
		return
	}
	data, err := json.MarshalIndent(n.CaptureCollapseState(), "", "  ")
	if err != nil {
		log.Printf("warning: failed to marshal collapse state: %v", err)
		return
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		log.Printf("warning: failed to create state directory %s: %v", stateDir, err)
		return
	}
	path := StatePath(stateDir)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("warning: failed to write collapse state to %s: %v", path, err)
	}
}

// LoadState restores a previously saved collapse snapshot from stateDir.
// Missing file means first run; corrupted file falls back to defaults with a
// warning. Returns whether any node changed state.
func (n *Node[T]) LoadState(stateDir string) bool {
	if stateDir == "" {
		return false
	}
	data, err := os.ReadFile(StatePath(stateDir))
	if err != nil {
		return false
	}
	s, err := CollapseStateFromJSON(data)
	if err != nil {
		log.Printf("warning: invalid collapse state file, using defaults: %v", err)
		return false
	}
	return n.RestoreCollapseState(s)
}
