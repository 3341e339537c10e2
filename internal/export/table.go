// Package export renders filtered dashboard rows as CSV, XLSX or PDF tables.
package export

import (
	"fmt"
	"strings"

	"github.com/govbilling/billdash/internal/platform/httpx"
)

// Column describes one exported column. Exactly one of Text or Number is set.
// NoTotal leaves a numeric column blank in the totals row, as for unit prices.
type Column[T any] struct {
	Key     string
	Header  string
	Text    func(T) string
	Number  func(T) float64
	NoTotal bool
}

// Cell is one rendered value.
type Cell struct {
	Text    string
	Number  float64
	Numeric bool
}

// Table is a format-neutral export.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]Cell
	Totals  []Cell
}

// Select narrows columns to the comma separated keys, keeping the requested order.
// An empty selection returns every column.
func Select[T any](columns []Column[T], keys string) ([]Column[T], error) {
	keys = strings.TrimSpace(keys)
	if keys == "" {
		return columns, nil
	}
	byKey := make(map[string]Column[T], len(columns))
	for _, c := range columns {
		byKey[c.Key] = c
	}
	var out []Column[T]
	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		c, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown export column %q", httpx.ErrValidation, key)
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no export columns selected", httpx.ErrValidation)
	}
	return out, nil
}

// Build renders items through columns. Summable numeric columns are totalled
// into a row labelled in the first text column.
func Build[T any](title string, columns []Column[T], items []T) Table {
	t := Table{Title: title, Headers: make([]string, len(columns)), Rows: make([][]Cell, 0, len(items))}
	sums := make([]float64, len(columns))
	summable := false
	for i, c := range columns {
		t.Headers[i] = c.Header
		if c.Number != nil && !c.NoTotal {
			summable = true
		}
	}
	for _, item := range items {
		row := make([]Cell, len(columns))
		for i, c := range columns {
			if c.Number != nil {
				v := c.Number(item)
				row[i] = Cell{Number: v, Numeric: true}
				sums[i] += v
				continue
			}
			if c.Text != nil {
				row[i] = Cell{Text: c.Text(item)}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if !summable {
		return t
	}
	t.Totals = make([]Cell, len(columns))
	labelled := false
	for i, c := range columns {
		if c.Number != nil {
			if !c.NoTotal {
				t.Totals[i] = Cell{Number: sums[i], Numeric: true}
			}
			continue
		}
		if !labelled {
			t.Totals[i] = Cell{Text: "Total"}
			labelled = true
		}
	}
	return t
}
