package filters

import (
	"fmt"
	"sort"
)

// Options derives the option set of every dimension, left to right.
func (s *State[T]) Options(items []T) []OptionSet {
	out := make([]OptionSet, len(s.dims))
	for i := range s.dims {
		out[i] = s.optionsAt(items, i)
	}
	return out
}

// OptionsFor derives the option set of a single dimension.
func (s *State[T]) OptionsFor(items []T, name string) (OptionSet, error) {
	i, err := s.Position(name)
	if err != nil {
		return OptionSet{}, err
	}
	return s.optionsAt(items, i), nil
}

// Validate checks that every value is currently offered for the dimension.
func (s *State[T]) Validate(items []T, name string, values ...string) error {
	set, err := s.OptionsFor(items, name)
	if err != nil {
		return err
	}
	for _, v := range values {
		if !contains(set.Values, v) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidOption, name, v)
		}
	}
	return nil
}

func (s *State[T]) optionsAt(items []T, i int) OptionSet {
	d := s.dims[i]
	set := OptionSet{Dimension: d.Name, Enumerable: true, Values: []string{}}
	upto := i
	switch d.Mode {
	case Independent:
		upto = 0
	case Gated:
		for j := 0; j < i; j++ {
			if len(s.selected[j]) == 0 {
				set.Enumerable = false
				return set
			}
		}
	}
	seen := map[string]struct{}{}
	for _, item := range items {
		if upto > 0 && !s.matchUpTo(item, upto) {
			continue
		}
		v := d.Value(item)
		if v == "" && d.SkipEmpty {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		set.Values = append(set.Values, v)
	}
	if d.Sorted {
		sort.Strings(set.Values)
	}
	return set
}
