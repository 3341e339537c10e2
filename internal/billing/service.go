// Package billing coordinates the billing management page: filtered item
// listing, pending cut edits and their submission upstream.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/govbilling/billdash/internal/aggregate"
	"github.com/govbilling/billdash/internal/dashboard"
	"github.com/govbilling/billdash/internal/mutation"
	"github.com/govbilling/billdash/internal/platform/httpx"
	"github.com/govbilling/billdash/internal/records"
	"github.com/govbilling/billdash/internal/shared"
	"github.com/govbilling/billdash/internal/store"
)

// Gateway is the subset of the billing API used by the page.
type Gateway interface {
	FetchBillingItems(ctx context.Context) ([]*records.Record, error)
	SubmitBillingUpdate(ctx context.Context, sub mutation.Submission) error
}

// Invalidator drops cached upstream responses. Gateways backed by a shared
// cache implement it so an explicit refresh reads fresh data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Config tunes the service.
type Config struct {
	FallbackUserID string
	PageSize       int
	Strict         bool
}

// Service owns the billing page state.
type Service struct {
	gateway Gateway
	store   *store.Store[*records.Record]
	page    *dashboard.Page[*records.Record]
	tracker *mutation.Tracker
	cfg     Config
	logger  *slog.Logger
	refresh singleflight.Group
}

// NewService wires the page over a shared record store.
func NewService(gateway Gateway, st *store.Store[*records.Record], cfg Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = shared.DefaultPageSize
	}
	page, err := dashboard.NewPage("billing", st, records.BillingDimensions(), dashboard.Options{Strict: cfg.Strict, Logger: logger})
	if err != nil {
		return nil, err
	}
	return &Service{
		gateway: gateway,
		store:   st,
		page:    page,
		tracker: mutation.NewTracker(st),
		cfg:     cfg,
		logger:  logger.With(slog.String("page", "billing")),
	}, nil
}

// Page exposes the filter coordinator.
func (s *Service) Page() *dashboard.Page[*records.Record] {
	return s.page
}

// Refresh reloads the dataset. Concurrent calls share one upstream fetch.
func (s *Service) Refresh(ctx context.Context) error {
	_, err, _ := s.refresh.Do("refresh", func() (any, error) {
		return nil, s.reload(ctx)
	})
	return err
}

// ForceRefresh drops cached upstream responses before reloading. A failed
// invalidation is logged and the reload still runs.
func (s *Service) ForceRefresh(ctx context.Context) error {
	if inv, ok := s.gateway.(Invalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			s.logger.Warn("invalidate billing cache", slog.Any("error", err))
		}
	}
	return s.Refresh(ctx)
}

func (s *Service) reload(ctx context.Context) error {
	token := s.store.Begin()
	items, err := s.gateway.FetchBillingItems(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Commit(token, items); err != nil {
		if errors.Is(err, store.ErrStale) {
			s.logger.Debug("discarded stale billing response", slog.Uint64("token", uint64(token)))
			return nil
		}
		return err
	}
	s.logger.Info("billing items loaded", slog.Int("count", len(items)), slog.Uint64("generation", s.store.Generation()))
	return nil
}

// Totals sums the filtered set, including pending cuts.
type Totals struct {
	aggregate.Totals
	Cut      float64 `json:"cut"`
	CutValue float64 `json:"cut_value"`
}

// ItemsView is one page of the billing table.
type ItemsView struct {
	Items      []records.Enriched `json:"items"`
	Pagination shared.Pagination  `json:"pagination"`
	Totals     Totals             `json:"totals"`
	Dirty      int                `json:"dirty"`
}

// Items returns the enriched rows of one page of the filtered set.
func (s *Service) Items(page, size int) (ItemsView, error) {
	if size <= 0 {
		size = s.cfg.PageSize
	}
	filtered, err := s.page.Filtered()
	if err != nil {
		return ItemsView{}, err
	}
	paged := shared.Paginate(filtered, size, page)
	view := ItemsView{
		Items:      make([]records.Enriched, len(paged.Items)),
		Pagination: paged.Pagination,
		Totals:     s.totals(filtered),
		Dirty:      len(s.tracker.Dirty()),
	}
	for i, r := range paged.Items {
		view.Items[i] = records.Enrich(r, s.tracker.Cut(r.ID))
	}
	return view, nil
}

// Enriched returns every filtered row joined with its pending cut.
func (s *Service) Enriched() ([]records.Enriched, error) {
	filtered, err := s.page.Filtered()
	if err != nil {
		return nil, err
	}
	out := make([]records.Enriched, len(filtered))
	for i, r := range filtered {
		out[i] = records.Enrich(r, s.tracker.Cut(r.ID))
	}
	return out, nil
}

func (s *Service) totals(items []*records.Record) Totals {
	t := Totals{Totals: aggregate.Total(items, records.Measure)}
	for _, r := range items {
		cut := s.tracker.Cut(r.ID)
		t.Cut += cut
		t.CutValue += cut * r.Rate
	}
	return t
}

// SetCut records a pending cut and returns the re-derived row.
func (s *Service) SetCut(id, raw string) (records.Enriched, error) {
	if !s.store.Loaded() {
		return records.Enriched{}, httpx.ErrUnavailable
	}
	if _, err := s.tracker.SetCut(id, raw); err != nil {
		return records.Enriched{}, err
	}
	rec, _ := s.store.Find(id)
	return records.Enrich(rec, s.tracker.Cut(id)), nil
}

// ResetCuts discards every pending edit.
func (s *Service) ResetCuts() {
	s.tracker.Reset()
}

// Pending lists the dirty edits in first-edit order.
func (s *Service) Pending() []mutation.Entry {
	return s.tracker.Dirty()
}

// Preview builds the submission payload without sending it.
func (s *Service) Preview() (mutation.Submission, error) {
	return s.tracker.BuildSubmission(s.resolveUserID())
}

// SubmitResult reports a successful submission.
type SubmitResult struct {
	Submitted int  `json:"submitted"`
	Reloaded  bool `json:"reloaded"`
}

// Submit sends pending cuts upstream. Edits survive a failed submission.
func (s *Service) Submit(ctx context.Context) (SubmitResult, error) {
	sub, err := s.Preview()
	if err != nil {
		return SubmitResult{}, err
	}
	if err := s.gateway.SubmitBillingUpdate(ctx, sub); err != nil {
		return SubmitResult{}, fmt.Errorf("submit billing update: %w", err)
	}
	s.tracker.Reset()
	res := SubmitResult{Submitted: len(sub.MultipleBills)}
	if err := s.reload(ctx); err != nil {
		s.logger.Warn("reload after submit failed", slog.Any("error", err))
		return res, nil
	}
	res.Reloaded = true
	return res, nil
}

// resolveUserID picks the receiving user: the selected source first, then
// the first edited record, then the configured fallback.
func (s *Service) resolveUserID() string {
	if selected := s.page.Selected(records.DimSource); len(selected) > 0 {
		for _, r := range s.store.All() {
			if r.Source == selected[0] {
				if uid := r.ReceiptUserID(); uid != "" {
					return uid
				}
			}
		}
	}
	if uid := s.tracker.FirstDirtyUserID(); uid != "" {
		return uid
	}
	if s.cfg.FallbackUserID != "" {
		s.logger.Warn("submitting with fallback user id", slog.String("user_id", s.cfg.FallbackUserID))
		return s.cfg.FallbackUserID
	}
	return ""
}
