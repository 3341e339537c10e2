// Package graph serves the billing graph page: grouped, scaled chart rows
// over the multi-select filtered billing items.
package graph

import (
	"fmt"

	"github.com/govbilling/billdash/internal/aggregate"
	"github.com/govbilling/billdash/internal/dashboard"
	"github.com/govbilling/billdash/internal/platform/httpx"
	"github.com/govbilling/billdash/internal/records"
	"github.com/govbilling/billdash/internal/shared"
)

// Modes of the series endpoint.
const (
	ModeSingle     = "single"
	ModeComparison = "comparison"
)

// Query selects how the filtered set is charted.
type Query struct {
	GroupBy string
	View    aggregate.View
	Kind    aggregate.Kind
	Mode    string
}

// ParseQuery validates raw request values, applying defaults for empty ones.
func ParseQuery(groupBy, view, kind, mode string) (Query, error) {
	if groupBy == "" {
		groupBy = records.DimCenter
	}
	if _, ok := records.GroupBy(groupBy); !ok {
		return Query{}, fmt.Errorf("%w: unknown group_by %q", httpx.ErrValidation, groupBy)
	}
	v, err := aggregate.ParseView(view)
	if err != nil {
		return Query{}, fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	}
	k, err := aggregate.ParseKind(kind)
	if err != nil {
		return Query{}, fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	}
	switch mode {
	case "":
		mode = ModeSingle
	case ModeSingle, ModeComparison:
	default:
		return Query{}, fmt.Errorf("%w: unknown mode %q", httpx.ErrValidation, mode)
	}
	return Query{GroupBy: groupBy, View: v, Kind: k, Mode: mode}, nil
}

// Row is one scaled chart bar group. Single mode fills Value, comparison mode the three amounts.
type Row struct {
	Name      string  `json:"name"`
	Count     int     `json:"count"`
	Value     float64 `json:"value"`
	Allocated float64 `json:"allocated"`
	Sold      float64 `json:"sold"`
	Remaining float64 `json:"remaining"`
}

// Series is the chart payload.
type Series struct {
	GroupBy string           `json:"group_by"`
	View    aggregate.View   `json:"view"`
	Kind    aggregate.Kind   `json:"type"`
	Mode    string           `json:"mode"`
	Unit    aggregate.Unit   `json:"unit"`
	Rows    []Row            `json:"rows"`
	Totals  aggregate.Totals `json:"totals"`
}

// Service derives chart data from the graph page.
type Service struct {
	page *dashboard.Page[*records.Record]
}

// NewService constructs the graph service over its page coordinator.
func NewService(page *dashboard.Page[*records.Record]) *Service {
	return &Service{page: page}
}

// Page exposes the filter coordinator.
func (s *Service) Page() *dashboard.Page[*records.Record] {
	return s.page
}

// Series groups the filtered set and scales every value by one shared unit.
func (s *Service) Series(q Query) (Series, error) {
	items, err := s.page.Filtered()
	if err != nil {
		return Series{}, err
	}
	key, _ := records.GroupBy(q.GroupBy)
	groups := aggregate.Aggregate(items, key, records.Measure)
	out := Series{
		GroupBy: q.GroupBy,
		View:    q.View,
		Kind:    q.Kind,
		Mode:    q.Mode,
		Rows:    make([]Row, 0, len(groups)),
		Totals:  aggregate.Total(items, records.Measure),
	}

	if q.Mode == ModeComparison {
		rows := aggregate.Compare(groups, q.Kind)
		peak := 0.0
		for _, r := range rows {
			peak = aggregate.MaxOf(peak, r.Allocated, r.Sold, r.Remaining)
		}
		out.Unit = aggregate.ScaleFor(peak)
		for _, r := range rows {
			out.Rows = append(out.Rows, Row{
				Name:      r.Name,
				Count:     len(r.Items),
				Allocated: out.Unit.Apply(r.Allocated),
				Sold:      out.Unit.Apply(r.Sold),
				Remaining: out.Unit.Apply(r.Remaining),
			})
		}
		return out, nil
	}

	points := aggregate.Single(groups, q.View, q.Kind)
	peak := 0.0
	for _, p := range points {
		peak = aggregate.MaxOf(peak, p.Value)
	}
	out.Unit = aggregate.ScaleFor(peak)
	for _, p := range points {
		out.Rows = append(out.Rows, Row{Name: p.Name, Count: len(p.Items), Value: out.Unit.Apply(p.Value)})
	}
	return out, nil
}

// GroupItems is one page of the records behind a chart bar.
type GroupItems struct {
	Name string         `json:"name"`
	Sums aggregate.Sums `json:"sums"`
	shared.Page[*records.Record]
}

// Drill returns the records of one group, in filtered order.
func (s *Service) Drill(groupBy, name string, page, size int) (GroupItems, error) {
	if groupBy == "" {
		groupBy = records.DimCenter
	}
	key, ok := records.GroupBy(groupBy)
	if !ok {
		return GroupItems{}, fmt.Errorf("%w: unknown group_by %q", httpx.ErrValidation, groupBy)
	}
	items, err := s.page.Filtered()
	if err != nil {
		return GroupItems{}, err
	}
	for _, g := range aggregate.Aggregate(items, key, records.Measure) {
		if g.Name == name {
			return GroupItems{Name: g.Name, Sums: g.Sums, Page: shared.Paginate(g.Items, size, page)}, nil
		}
	}
	return GroupItems{}, fmt.Errorf("%w: group %q", httpx.ErrNotFound, name)
}
