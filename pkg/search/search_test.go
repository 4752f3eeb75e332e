package search

import (
	"testing"

	"github.com/vanderheijden86/arbor/pkg/model"
)

func sample() model.Record {
	return model.Record{
		ID:       "net-001",
		Title:    "Gateway timeouts under load",
		Category: "infra/network",
		Status:   model.StatusOpen,
		Priority: 1,
		Value:    13,
		Owner:    "Ana",
		Tags:     []string{"latency", "p99"},
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"bogus:x",
		"status:wip",
		"priority:high",
		"value:>abc",
		"owner:",
	} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
}

func TestEmptyQueryMatchesEverything(t *testing.T) {
	q, err := Parse("   ")
	if err != nil {
		t.Fatal(err)
	}
	if !q.IsEmpty() || !q.Match(sample()) {
		t.Error("blank query should be empty and match")
	}
}

func TestClauseMatching(t *testing.T) {
	r := sample()
	tests := []struct {
		query string
		want  bool
	}{
		{"status:open", true},
		{"status:closed", false},
		{"owner:ana", true}, // case-insensitive
		{"owner:ben", false},
		{"category:infra", true}, // path prefix
		{"category:infra/network", true},
		{"category:infrastructure", false},
		{"tag:latency", true},
		{"tag:p50", false},
		{"priority:1", true},
		{"priority:<2", true},
		{"priority:<1", false},
		{"priority:>=1", true},
		{"value:>10", true},
		{"value:<=12", false},
		{"gateway", true}, // free text against the title
		{"net-0", true},   // free text against the id
		{"p99", true},     // free text against tags
		{"widget", false},
		{"status:open priority:<2 gateway", true},
		{"status:open priority:<2 widget", false},
	}
	for _, tc := range tests {
		q, err := Parse(tc.query)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.query, err)
			continue
		}
		if got := q.Match(r); got != tc.want {
			t.Errorf("Match(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestPredicate(t *testing.T) {
	q, err := Parse("status:open")
	if err != nil {
		t.Fatal(err)
	}
	pred := q.Predicate()
	if !pred(sample()) {
		t.Error("predicate diverged from Match")
	}
	if q.Raw() != "status:open" {
		t.Errorf("raw = %q", q.Raw())
	}
}
