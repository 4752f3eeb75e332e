package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanderheijden86/arbor/pkg/metrics"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 200

// ErrNoLoader is returned by load operations when no loader is bound.
var ErrNoLoader = errors.New("no loader configured")

// Loader supplies items page by page. Implementations report the total item
// count alongside each page so callers can tell when they are done.
type Loader[T any] interface {
	// LoadPage returns up to limit items starting at offset, plus the total
	// number of items available.
	LoadPage(ctx context.Context, offset, limit int) (items []T, total int, err error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc[T any] func(ctx context.Context, offset, limit int) ([]T, int, error)

// LoadPage implements Loader.
func (f LoaderFunc[T]) LoadPage(ctx context.Context, offset, limit int) ([]T, int, error) {
	return f(ctx, offset, limit)
}

// PaginationManager accumulates pages from a Loader into one in-memory item
// list for the controller to project.
type PaginationManager[T any] struct {
	loader   Loader[T]
	pageSize int
	items    []T
	total    int
	loaded   bool
}

// NewPaginationManager binds a loader. pageSize <= 0 falls back to
// DefaultPageSize.
func NewPaginationManager[T any](loader Loader[T], pageSize int) *PaginationManager[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PaginationManager[T]{loader: loader, pageSize: pageSize}
}

// PageSize returns the configured page size.
func (p *PaginationManager[T]) PageSize() int { return p.pageSize }

// Items returns a copy of everything loaded so far.
func (p *PaginationManager[T]) Items() []T {
	return append([]T(nil), p.items...)
}

// Loaded reports whether at least one page was fetched.
func (p *PaginationManager[T]) Loaded() bool { return p.loaded }

// Total returns the loader-reported total, 0 before the first page.
func (p *PaginationManager[T]) Total() int { return p.total }

// HasMore reports whether pages remain beyond what was loaded.
func (p *PaginationManager[T]) HasMore() bool {
	return p.loaded && len(p.items) < p.total
}

// Reset discards all loaded pages.
func (p *PaginationManager[T]) Reset() {
	p.items = nil
	p.total = 0
	p.loaded = false
}

// LoadFirst resets and fetches the first page.
func (p *PaginationManager[T]) LoadFirst(ctx context.Context) error {
	p.Reset()
	_, err := p.LoadMore(ctx)
	return err
}

// LoadMore fetches the next page and returns how many items arrived. Zero
// with a nil error means the loader is exhausted.
func (p *PaginationManager[T]) LoadMore(ctx context.Context) (int, error) {
	if p.loader == nil {
		return 0, ErrNoLoader
	}
	if p.loaded && !p.HasMore() {
		return 0, nil
	}
	defer metrics.Timer(metrics.PageLoad)()
	page, total, err := p.loader.LoadPage(ctx, len(p.items), p.pageSize)
	if err != nil {
		return 0, fmt.Errorf("load page at offset %d: %w", len(p.items), err)
	}
	p.items = append(p.items, page...)
	p.total = total
	p.loaded = true
	return len(page), nil
}

// LoadAll fetches pages until the loader is exhausted.
func (p *PaginationManager[T]) LoadAll(ctx context.Context) error {
	if err := p.LoadFirst(ctx); err != nil {
		return err
	}
	for p.HasMore() {
		n, err := p.LoadMore(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			break // loader under-reported; don't spin
		}
	}
	return nil
}
