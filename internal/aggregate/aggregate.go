// Package aggregate groups filtered records into chart and summary rows.
package aggregate

import (
	"fmt"
	"sort"
)

// UnknownKey labels records whose group key is empty.
const UnknownKey = "Unknown"

// View selects which quantity a single-metric chart shows.
type View string

// Supported views.
const (
	ViewAllocated View = "allocated"
	ViewSold      View = "sold"
	ViewRemaining View = "remaining"
)

// Kind selects between raw quantities and monetary values.
type Kind string

// Supported kinds.
const (
	KindQuantity Kind = "quantity"
	KindValue    Kind = "value"
)

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewAllocated, ViewSold, ViewRemaining:
		return View(s), nil
	case "":
		return ViewAllocated, nil
	}
	return "", fmt.Errorf("aggregate: unknown view %q", s)
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindQuantity, KindValue:
		return Kind(s), nil
	case "":
		return KindQuantity, nil
	}
	return "", fmt.Errorf("aggregate: unknown type %q", s)
}

// Measure is what one record contributes to a group.
type Measure struct {
	Allocated float64
	Sold      float64
	Rate      float64
}

// Sums accumulates quantities and their monetary values.
type Sums struct {
	Allocated      float64 `json:"allocated"`
	Sold           float64 `json:"sold"`
	Remaining      float64 `json:"remaining"`
	AllocatedValue float64 `json:"allocated_value"`
	SoldValue      float64 `json:"sold_value"`
	RemainingValue float64 `json:"remaining_value"`
}

// Add folds one record's measure into the sums.
func (s Sums) Add(m Measure) Sums {
	remaining := m.Allocated - m.Sold
	return Sums{
		Allocated:      s.Allocated + m.Allocated,
		Sold:           s.Sold + m.Sold,
		Remaining:      s.Remaining + remaining,
		AllocatedValue: s.AllocatedValue + m.Allocated*m.Rate,
		SoldValue:      s.SoldValue + m.Sold*m.Rate,
		RemainingValue: s.RemainingValue + remaining*m.Rate,
	}
}

// Metric picks one of the six accumulated fields.
func (s Sums) Metric(view View, kind Kind) float64 {
	value := kind == KindValue
	switch view {
	case ViewSold:
		if value {
			return s.SoldValue
		}
		return s.Sold
	case ViewRemaining:
		if value {
			return s.RemainingValue
		}
		return s.Remaining
	default:
		if value {
			return s.AllocatedValue
		}
		return s.Allocated
	}
}

// Group is the aggregate of every record sharing one key.
type Group[T any] struct {
	Name string
	Sums
	Items []T
}

// Totals is the fold over an entire filtered set.
type Totals struct {
	Count int `json:"count"`
	Sums
}

// Aggregate partitions items by key, keeping groups in first-seen order.
func Aggregate[T any](items []T, key func(T) string, measure func(T) Measure) []Group[T] {
	positions := map[string]int{}
	groups := make([]Group[T], 0)
	for _, item := range items {
		name := key(item)
		if name == "" {
			name = UnknownKey
		}
		i, ok := positions[name]
		if !ok {
			i = len(groups)
			positions[name] = i
			groups = append(groups, Group[T]{Name: name})
		}
		groups[i].Sums = groups[i].Sums.Add(measure(item))
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// Total folds every item into grand totals.
func Total[T any](items []T, measure func(T) Measure) Totals {
	totals := Totals{}
	for _, item := range items {
		totals.Sums = totals.Sums.Add(measure(item))
		totals.Count++
	}
	return totals
}

// Point is one bar of a single-metric chart.
type Point[T any] struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Items []T     `json:"items,omitempty"`
}

// Comparison is one allocated/sold/remaining bar triple.
type Comparison[T any] struct {
	Name      string  `json:"name"`
	Allocated float64 `json:"allocated"`
	Sold      float64 `json:"sold"`
	Remaining float64 `json:"remaining"`
	Items     []T     `json:"items,omitempty"`
}

// Single projects groups onto one metric, largest first.
func Single[T any](groups []Group[T], view View, kind Kind) []Point[T] {
	points := make([]Point[T], len(groups))
	for i, g := range groups {
		points[i] = Point[T]{Name: g.Name, Value: g.Metric(view, kind), Items: g.Items}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Value > points[j].Value
	})
	return points
}

// Compare projects groups onto the three-way comparison, largest allocation first.
func Compare[T any](groups []Group[T], kind Kind) []Comparison[T] {
	rows := make([]Comparison[T], len(groups))
	for i, g := range groups {
		rows[i] = Comparison[T]{
			Name:      g.Name,
			Allocated: g.Metric(ViewAllocated, kind),
			Sold:      g.Metric(ViewSold, kind),
			Remaining: g.Metric(ViewRemaining, kind),
			Items:     g.Items,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Allocated > rows[j].Allocated
	})
	return rows
}
