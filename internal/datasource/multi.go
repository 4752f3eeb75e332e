package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/model"
)

// loadPageSize is the page size used when draining a whole store.
const loadPageSize = 500

// LoadAll drains one store into memory.
func LoadAll(ctx context.Context, s *Store) ([]model.Record, error) {
	var out []model.Record
	for offset := 0; ; {
		page, total, err := s.LoadPage(ctx, offset, loadPageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		offset += len(page)
		if len(page) == 0 || offset >= total {
			return out, nil
		}
	}
}

// LoadMerged loads every database concurrently and merges the results by
// record id, keeping the most recently updated copy of each record. The
// merged list is sorted by id.
func LoadMerged(ctx context.Context, paths ...string) ([]model.Record, error) {
	var (
		mu     sync.Mutex
		merged = make(map[string]model.Record)
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			s, err := OpenReadOnly(path)
			if err != nil {
				return fmt.Errorf("source %s: %w", path, err)
			}
			defer s.Close()

			records, err := LoadAll(ctx, s)
			if err != nil {
				return fmt.Errorf("source %s: %w", path, err)
			}

			mu.Lock()
			defer mu.Unlock()
			for _, r := range records {
				if prev, ok := merged[r.ID]; !ok || r.UpdatedAt.After(prev.UpdatedAt) {
					merged[r.ID] = r
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.Record, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	debug.Log("datasource: merged %d records from %d sources", len(out), len(paths))
	return out, nil
}

// MergedLoader adapts a set of database paths to the collection pipeline's
// paged Loader. Pages are cut from the merged, id-sorted record list.
type MergedLoader struct {
	Paths []string
}

// LoadPage implements collection.Loader.
func (l MergedLoader) LoadPage(ctx context.Context, offset, limit int) ([]model.Record, int, error) {
	all, err := LoadMerged(ctx, l.Paths...)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}
