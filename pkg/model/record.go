// Package model defines Record, the concrete item type flowing through the
// engine: the datasource loads Records, the collection pipeline groups and
// sorts them, the demo renders them.
package model

import (
	"strings"
	"time"

	"github.com/vanderheijden86/arbor/pkg/collection"
)

// Status is a Record's lifecycle state.
type Status string

// Valid statuses.
const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusClosed     Status = "closed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusClosed:
		return true
	}
	return false
}

// Record is one engine item. ID is the item key: stable, unique, never
// changed by in-place updates. Category is a '/'-separated path like
// "infra/network"; Priority 0 is the highest.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Status    Status    `json:"status"`
	Priority  int       `json:"priority"`
	Value     float64   `json:"value"`
	Owner     string    `json:"owner,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the item key used across the tree.
func Key(r Record) string { return r.ID }

// CategoryPath splits the '/'-separated category into group-path segments.
// Empty category means ungrouped.
func CategoryPath(r Record) []string {
	if r.Category == "" {
		return nil
	}
	return strings.Split(r.Category, "/")
}

// StatusPath groups records one level deep by status.
func StatusPath(r Record) []string {
	return []string{string(r.Status)}
}

// OwnerPath groups records one level deep by owner, with unassigned records
// under "unowned".
func OwnerPath(r Record) []string {
	if r.Owner == "" {
		return []string{"unowned"}
	}
	return []string{r.Owner}
}

// GroupOptions returns the standard grouping options for Records.
func GroupOptions() []collection.GroupOption[Record] {
	return []collection.GroupOption[Record]{
		{ID: "status", Label: "Status", Keys: StatusPath},
		{ID: "category", Label: "Category", Keys: CategoryPath},
		{ID: "owner", Label: "Owner", Keys: OwnerPath},
	}
}

// SortFields returns the standard sort chain for Records: priority (highest
// first), then most recently updated.
func SortFields() []collection.SortField[Record] {
	return []collection.SortField[Record]{
		{ID: "priority", Compare: ByPriority, Direction: collection.Ascending},
		{ID: "updated", Compare: ByUpdatedAt, Direction: collection.Descending},
	}
}

// AggregateSpecs returns the standard header rollups for Records.
func AggregateSpecs() []collection.AggregateSpec[Record] {
	return []collection.AggregateSpec[Record]{
		{Name: "count", Kind: collection.AggregateCount},
		{Name: "value", Kind: collection.AggregateSum, Value: func(r Record) float64 { return r.Value }},
	}
}

// ByPriority compares by priority, 0 first.
func ByPriority(a, b Record) int { return a.Priority - b.Priority }

// ByTitle compares titles case-insensitively.
func ByTitle(a, b Record) int {
	return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}

// ByCreatedAt compares creation times, oldest first.
func ByCreatedAt(a, b Record) int { return a.CreatedAt.Compare(b.CreatedAt) }

// ByUpdatedAt compares update times, oldest first.
func ByUpdatedAt(a, b Record) int { return a.UpdatedAt.Compare(b.UpdatedAt) }

// ByValue compares values, smallest first.
func ByValue(a, b Record) int {
	switch {
	case a.Value < b.Value:
		return -1
	case a.Value > b.Value:
		return 1
	default:
		return 0
	}
}
