package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/arbor/pkg/model"
)

func sampleRecords() []model.Record {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	return []model.Record{
		{ID: "r1", Title: "quoted, title", Category: "infra/network", Status: model.StatusOpen,
			Priority: 0, Value: 2.5, Owner: "ana", Tags: []string{"a", "b"}, CreatedAt: base, UpdatedAt: base},
		{ID: "r2", Title: "plain", Status: model.StatusClosed, Priority: 3, CreatedAt: base, UpdatedAt: base.Add(time.Hour)},
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf strings.Builder
	if err := WriteJSON(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	var got []model.Record
	if err := json.Unmarshal([]byte(buf.String()), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r1" || got[0].Value != 2.5 {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf strings.Builder
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty export = %q, want []", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf strings.Builder
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "id" || rows[0][7] != "tags" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "quoted, title" {
		t.Errorf("comma in title not preserved: %q", rows[1][1])
	}
	if rows[1][7] != "a;b" {
		t.Errorf("tags cell = %q, want a;b", rows[1][7])
	}
	if rows[2][4] != "3" || rows[2][7] != "" {
		t.Errorf("second row = %v", rows[2])
	}
}

func TestWriteDispatch(t *testing.T) {
	var buf strings.Builder
	if err := Write(&buf, "JSON", sampleRecords()); err != nil {
		t.Errorf("format dispatch should be case-insensitive: %v", err)
	}
	if err := Write(&buf, "xml", nil); err == nil {
		t.Error("unknown format should fail")
	}
}
