package filters

import (
	"fmt"
	"strconv"
	"strings"
)

// State holds the current selections across an ordered list of dimensions.
type State[T any] struct {
	dims     []Dimension[T]
	index    map[string]int
	selected [][]string
}

// NewState declares the dimensions in dependency order.
func NewState[T any](dims ...Dimension[T]) (*State[T], error) {
	if len(dims) == 0 {
		return nil, ErrNoDimensions
	}
	index := make(map[string]int, len(dims))
	for i, d := range dims {
		if d.Name == "" || d.Value == nil {
			return nil, fmt.Errorf("filters: dimension %d needs a name and accessor", i)
		}
		if _, dup := index[d.Name]; dup {
			return nil, fmt.Errorf("filters: duplicate dimension %q", d.Name)
		}
		index[d.Name] = i
	}
	return &State[T]{dims: dims, index: index, selected: make([][]string, len(dims))}, nil
}

// Dimensions returns the declared dimensions in order.
func (s *State[T]) Dimensions() []Dimension[T] {
	return s.dims
}

// Position returns the declared position of a dimension.
func (s *State[T]) Position(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownDimension, name)
	}
	return i, nil
}

// Set selects values for a dimension and resets every later dimension.
// Calling Set without values unsets the dimension.
func (s *State[T]) Set(name string, values ...string) error {
	i, err := s.Position(name)
	if err != nil {
		return err
	}
	cleaned := dedupe(values)
	if !s.dims[i].Multi && len(cleaned) > 1 {
		return fmt.Errorf("%w: %s", ErrSingleValue, name)
	}
	s.selected[i] = cleaned
	for j := i + 1; j < len(s.selected); j++ {
		s.selected[j] = nil
	}
	return nil
}

// ClearAll resets every dimension.
func (s *State[T]) ClearAll() {
	for i := range s.selected {
		s.selected[i] = nil
	}
}

// Values returns the current selection of a dimension.
func (s *State[T]) Values(name string) []string {
	i, ok := s.index[name]
	if !ok {
		return nil
	}
	return append([]string(nil), s.selected[i]...)
}

// Clone copies the selections; dimensions are shared.
func (s *State[T]) Clone() *State[T] {
	selected := make([][]string, len(s.selected))
	for i, values := range s.selected {
		selected[i] = append([]string(nil), values...)
	}
	return &State[T]{dims: s.dims, index: s.index, selected: selected}
}

// Selections snapshots every dimension in declared order.
func (s *State[T]) Selections() []Selection {
	out := make([]Selection, len(s.dims))
	for i, d := range s.dims {
		values := append([]string{}, s.selected[i]...)
		out[i] = Selection{Dimension: d.Name, Multi: d.Multi, Values: values}
	}
	return out
}

// Match reports whether item satisfies every non-empty selection.
func (s *State[T]) Match(item T) bool {
	return s.matchUpTo(item, len(s.dims))
}

func (s *State[T]) matchUpTo(item T, upto int) bool {
	for i := 0; i < upto; i++ {
		if len(s.selected[i]) == 0 {
			continue
		}
		if !contains(s.selected[i], s.dims[i].Value(item)) {
			return false
		}
	}
	return true
}

// Filter returns the items matching the current selections, preserving order.
func (s *State[T]) Filter(items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if s.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Key is a canonical encoding of the selections, usable as a memo key.
func (s *State[T]) Key() string {
	var b strings.Builder
	for i, d := range s.dims {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(d.Name)
		b.WriteByte('=')
		for j, v := range s.selected[i] {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(v))
		}
	}
	return b.String()
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
