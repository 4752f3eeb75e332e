// Package export writes record sets to interchange formats for piping into
// other tools.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// Formats supported by Write.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Write dispatches to the named format.
func Write(w io.Writer, format string, records []model.Record) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	default:
		return fmt.Errorf("unknown export format %q (expected json|csv)", format)
	}
}

// WriteJSON writes the records as an indented JSON array.
func WriteJSON(w io.Writer, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// csvHeader is the fixed CSV column set, one record per row. Tags are
// semicolon-joined inside their cell.
var csvHeader = []string{
	"id", "title", "category", "status", "priority", "value",
	"owner", "tags", "created_at", "updated_at",
}

// WriteCSV writes the records as CSV with a header row.
func WriteCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.Title,
			r.Category,
			string(r.Status),
			strconv.Itoa(r.Priority),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			r.Owner,
			strings.Join(r.Tags, ";"),
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
