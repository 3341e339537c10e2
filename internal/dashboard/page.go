// Package dashboard coordinates the filter state of one dashboard page against its store.
package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/govbilling/billdash/internal/filters"
	"github.com/govbilling/billdash/internal/platform/httpx"
	"github.com/govbilling/billdash/internal/store"
)

const defaultMemoSize = 64

// Options tunes a page coordinator.
type Options struct {
	// Strict rejects filter values outside the current option set.
	Strict   bool
	MemoSize int
	Logger   *slog.Logger
}

// FilterView is the serialisable filter panel of a page.
type FilterView struct {
	Selections []filters.Selection `json:"selections"`
	Options    []filters.OptionSet `json:"options"`
}

// Page owns the filter state of one page and derives views from its store.
type Page[T any] struct {
	name   string
	store  *store.Store[T]
	strict bool
	logger *slog.Logger

	mu    sync.Mutex
	state *filters.State[T]
	memo  *lru.Cache[string, []T]
}

// NewPage declares a page over st with the given dimensions.
func NewPage[T any](name string, st *store.Store[T], dims []filters.Dimension[T], opts Options) (*Page[T], error) {
	if st == nil {
		return nil, errors.New("dashboard: store required")
	}
	state, err := filters.NewState(dims...)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %s: %w", name, err)
	}
	size := opts.MemoSize
	if size <= 0 {
		size = defaultMemoSize
	}
	memo, err := lru.New[string, []T](size)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %s: memo: %w", name, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Page[T]{
		name:   name,
		store:  st,
		strict: opts.Strict,
		logger: logger.With(slog.String("page", name)),
		state:  state,
		memo:   memo,
	}, nil
}

// Name identifies the page in logs and metrics.
func (p *Page[T]) Name() string {
	return p.name
}

// Store exposes the backing store.
func (p *Page[T]) Store() *store.Store[T] {
	return p.store
}

// Set applies a cascading selection on one dimension.
func (p *Page[T]) Set(dimension string, values ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.apply(p.state, p.store.All(), dimension, values)
}

// Replace clears every dimension and applies selections in order. Nothing
// changes unless every selection is accepted.
func (p *Page[T]) Replace(selections []filters.Selection) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.state.Clone()
	next.ClearAll()
	items := p.store.All()
	for _, sel := range selections {
		if err := p.apply(next, items, sel.Dimension, sel.Values); err != nil {
			return err
		}
	}
	p.state = next
	return nil
}

func (p *Page[T]) apply(state *filters.State[T], items []T, dimension string, values []string) error {
	if _, err := state.Position(dimension); err != nil {
		return fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	}
	if err := state.Validate(items, dimension, values...); err != nil {
		if p.strict {
			return fmt.Errorf("%w: %w", httpx.ErrValidation, err)
		}
		p.logger.Warn("filter value outside option set", slog.String("dimension", dimension), slog.Any("error", err))
	}
	if err := state.Set(dimension, values...); err != nil {
		return fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	}
	return nil
}

// ClearAll resets every dimension.
func (p *Page[T]) ClearAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.ClearAll()
}

// Selected returns the values chosen for a dimension.
func (p *Page[T]) Selected(dimension string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Values(dimension)
}

// Filters returns the current selections with their option lists.
func (p *Page[T]) Filters() FilterView {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := p.store.All()
	return FilterView{
		Selections: p.state.Selections(),
		Options:    p.state.Options(items),
	}
}

// Filtered returns the records matching the current selections.
func (p *Page[T]) Filtered() ([]T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	items, generation := p.store.Snapshot()
	if generation == 0 {
		return nil, httpx.ErrUnavailable
	}
	key := strconv.FormatUint(generation, 10) + "|" + p.state.Key()
	if cached, ok := p.memo.Get(key); ok {
		return cached, nil
	}
	out := p.state.Filter(items)
	p.memo.Add(key, out)
	return out, nil
}
