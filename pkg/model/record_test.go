package model

import (
	"reflect"
	"testing"
	"time"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusOpen, StatusInProgress, StatusBlocked, StatusClosed} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Status("wip").Valid() || Status("").Valid() {
		t.Error("unknown status accepted")
	}
}

func TestGroupPaths(t *testing.T) {
	r := Record{ID: "r1", Category: "infra/network", Status: StatusOpen}

	if got := CategoryPath(r); !reflect.DeepEqual(got, []string{"infra", "network"}) {
		t.Errorf("category path = %v", got)
	}
	if got := CategoryPath(Record{}); got != nil {
		t.Errorf("empty category path = %v, want nil", got)
	}
	if got := StatusPath(r); !reflect.DeepEqual(got, []string{"open"}) {
		t.Errorf("status path = %v", got)
	}
	if got := OwnerPath(Record{Owner: "ana"}); !reflect.DeepEqual(got, []string{"ana"}) {
		t.Errorf("owner path = %v", got)
	}
	if got := OwnerPath(Record{}); !reflect.DeepEqual(got, []string{"unowned"}) {
		t.Errorf("ownerless path = %v", got)
	}
}

func TestComparators(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	a := Record{Title: "Alpha", Priority: 0, Value: 1, CreatedAt: early, UpdatedAt: late}
	b := Record{Title: "beta", Priority: 2, Value: 5, CreatedAt: late, UpdatedAt: early}

	if ByPriority(a, b) >= 0 {
		t.Error("priority 0 should sort before 2")
	}
	if ByTitle(a, b) >= 0 {
		t.Error("title compare should be case-insensitive")
	}
	if ByCreatedAt(a, b) >= 0 || ByUpdatedAt(a, b) <= 0 {
		t.Error("time comparators inverted")
	}
	if ByValue(a, b) >= 0 || ByValue(b, a) <= 0 || ByValue(a, a) != 0 {
		t.Error("value comparator wrong")
	}
}

func TestStandardOptionSets(t *testing.T) {
	if got := len(GroupOptions()); got != 3 {
		t.Errorf("group options = %d, want 3", got)
	}
	fields := SortFields()
	if len(fields) != 2 || fields[0].ID != "priority" || fields[1].ID != "updated" {
		t.Errorf("sort fields = %+v", fields)
	}
	if got := len(AggregateSpecs()); got != 2 {
		t.Errorf("aggregate specs = %d, want 2", got)
	}
}
