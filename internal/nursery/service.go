package nursery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/govbilling/billdash/internal/aggregate"
	"github.com/govbilling/billdash/internal/dashboard"
	"github.com/govbilling/billdash/internal/platform/httpx"
	"github.com/govbilling/billdash/internal/shared"
	"github.com/govbilling/billdash/internal/store"
)

// Gateway is the nursery part of the billing API.
type Gateway interface {
	ListNurseryEntries(ctx context.Context, q ListQuery) ([]*Entry, error)
	CreateNurseryEntry(ctx context.Context, in Input) (*Entry, error)
	UpdateNurseryEntry(ctx context.Context, id string, in Input) (*Entry, error)
	DeleteNurseryEntry(ctx context.Context, id string) error
}

// Invalidator drops cached upstream responses.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service owns the nursery page state.
type Service struct {
	gateway  Gateway
	store    *store.Store[*Entry]
	page     *dashboard.Page[*Entry]
	pageSize int
	logger   *slog.Logger

	mu    sync.Mutex
	query ListQuery
}

// NewService wires the nursery page.
func NewService(gateway Gateway, pageSize int, strict bool, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = shared.DefaultPageSize
	}
	st := store.New(EntryID)
	page, err := dashboard.NewPage("nursery", st, Dimensions(), dashboard.Options{Strict: strict, Logger: logger})
	if err != nil {
		return nil, err
	}
	return &Service{
		gateway:  gateway,
		store:    st,
		page:     page,
		pageSize: pageSize,
		logger:   logger.With(slog.String("page", "nursery")),
	}, nil
}

// Page exposes the filter coordinator.
func (s *Service) Page() *dashboard.Page[*Entry] {
	return s.page
}

// Refresh reloads entries from upstream using q as the server-side filter.
func (s *Service) Refresh(ctx context.Context, q ListQuery) error {
	token := s.store.Begin()
	entries, err := s.gateway.ListNurseryEntries(ctx, q)
	if err != nil {
		return err
	}
	if err := s.store.Commit(token, entries); err != nil {
		if errors.Is(err, store.ErrStale) {
			s.logger.Debug("discarded stale nursery response", slog.Uint64("token", uint64(token)))
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
	s.logger.Info("nursery entries loaded", slog.Int("count", len(entries)))
	return nil
}

// ForceRefresh drops cached upstream responses, when the gateway caches,
// before refetching with q.
func (s *Service) ForceRefresh(ctx context.Context, q ListQuery) error {
	if inv, ok := s.gateway.(Invalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			s.logger.Warn("invalidate nursery cache", slog.Any("error", err))
		}
	}
	return s.Refresh(ctx, q)
}

// Ensure loads entries when nothing is loaded yet or the upstream filter changed.
func (s *Service) Ensure(ctx context.Context, q ListQuery) error {
	s.mu.Lock()
	same := sameQuery(s.query, q)
	s.mu.Unlock()
	if same && s.store.Loaded() {
		return nil
	}
	return s.Refresh(ctx, q)
}

// Reload refetches with the last upstream filter. It is a no-op before the
// first load so a cache invalidation never triggers an unrequested fetch.
func (s *Service) Reload(ctx context.Context) error {
	if !s.store.Loaded() {
		return nil
	}
	s.mu.Lock()
	q := s.query
	s.mu.Unlock()
	return s.Refresh(ctx, q)
}

func (s *Service) reload(ctx context.Context) {
	s.mu.Lock()
	q := s.query
	s.mu.Unlock()
	if err := s.Refresh(ctx, q); err != nil {
		s.logger.Warn("reload after write failed", slog.Any("error", err))
	}
}

func sameQuery(a, b ListQuery) bool {
	return slices.Equal(a.NurseryNames, b.NurseryNames) && slices.Equal(a.StandardItems, b.StandardItems)
}

// EntriesView is one page of the nursery table.
type EntriesView struct {
	Items      []*Entry          `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
	Totals     aggregate.Totals  `json:"totals"`
}

// Entries returns one page of the locally filtered entries.
func (s *Service) Entries(page, size int) (EntriesView, error) {
	if size <= 0 {
		size = s.pageSize
	}
	filtered, err := s.page.Filtered()
	if err != nil {
		return EntriesView{}, err
	}
	paged := shared.Paginate(filtered, size, page)
	return EntriesView{
		Items:      paged.Items,
		Pagination: paged.Pagination,
		Totals:     aggregate.Total(filtered, Measure),
	}, nil
}

// Filtered returns every locally filtered entry.
func (s *Service) Filtered() ([]*Entry, error) {
	return s.page.Filtered()
}

// Create validates and posts a new entry, then reloads.
func (s *Service) Create(ctx context.Context, in Input) (*Entry, error) {
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	entry, err := s.gateway.CreateNurseryEntry(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create nursery entry: %w", err)
	}
	s.reload(ctx)
	return entry, nil
}

// Update validates and replaces an entry, then reloads.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Entry, error) {
	if err := s.known(id); err != nil {
		return nil, err
	}
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	entry, err := s.gateway.UpdateNurseryEntry(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update nursery entry %s: %w", id, err)
	}
	s.reload(ctx)
	return entry, nil
}

// Delete removes an entry, then reloads.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.known(id); err != nil {
		return err
	}
	if err := s.gateway.DeleteNurseryEntry(ctx, id); err != nil {
		return fmt.Errorf("delete nursery entry %s: %w", id, err)
	}
	s.reload(ctx)
	return nil
}

// known rejects ids absent from a loaded dataset; before the first load the
// upstream API decides.
func (s *Service) known(id string) error {
	if !s.store.Loaded() {
		return nil
	}
	if _, ok := s.store.Find(id); !ok {
		return fmt.Errorf("%w: nursery entry %s", httpx.ErrNotFound, id)
	}
	return nil
}

// SummaryRow aggregates one nursery.
type SummaryRow struct {
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	Allocated float64 `json:"allocated_amount"`
	Spent     float64 `json:"spent_amount"`
	Remaining float64 `json:"remaining_amount"`
}

// Summary groups the filtered entries by the given dimension.
type Summary struct {
	GroupBy string           `json:"group_by"`
	Rows    []SummaryRow     `json:"rows"`
	Totals  aggregate.Totals `json:"totals"`
}

// Summary aggregates the filtered entries, largest allocation first.
func (s *Service) Summary(groupBy string) (Summary, error) {
	var key func(*Entry) string
	switch groupBy {
	case "", DimNurseryName:
		groupBy = DimNurseryName
		key = func(e *Entry) string { return e.NurseryName }
	case DimStandardItem:
		key = func(e *Entry) string { return e.StandardItem }
	default:
		return Summary{}, fmt.Errorf("%w: unknown group_by %q", httpx.ErrValidation, groupBy)
	}
	filtered, err := s.page.Filtered()
	if err != nil {
		return Summary{}, err
	}
	rows := aggregate.Compare(aggregate.Aggregate(filtered, key, Measure), aggregate.KindQuantity)
	out := Summary{GroupBy: groupBy, Rows: make([]SummaryRow, len(rows)), Totals: aggregate.Total(filtered, Measure)}
	for i, r := range rows {
		out.Rows[i] = SummaryRow{Name: r.Name, Count: len(r.Items), Allocated: r.Allocated, Spent: r.Sold, Remaining: r.Remaining}
	}
	return out, nil
}
