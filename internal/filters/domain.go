// Package filters implements ordered, cascading filter selections and the
// option sets each dimension offers given the selections before it.
package filters

import "errors"

var (
	// ErrUnknownDimension is returned for a dimension name not declared on the state.
	ErrUnknownDimension = errors.New("filters: unknown dimension")
	// ErrSingleValue is returned when a single-select dimension receives several values.
	ErrSingleValue = errors.New("filters: dimension accepts a single value")
	// ErrInvalidOption is returned by strict validation for values outside the option set.
	ErrInvalidOption = errors.New("filters: value not in option set")
	// ErrNoDimensions is returned when a state is declared without dimensions.
	ErrNoDimensions = errors.New("filters: at least one dimension required")
)

// Mode controls which records feed a dimension's option set.
type Mode int

const (
	// Cascade derives options from records matching the selected ancestors.
	Cascade Mode = iota
	// Gated offers no options until every ancestor has a selection.
	Gated
	// Independent always derives options from the full dataset.
	Independent
)

// Dimension declares one filterable field of T.
type Dimension[T any] struct {
	Name      string
	Value     func(T) string
	Multi     bool
	Mode      Mode
	SkipEmpty bool
	Sorted    bool
}

// Selection is the chosen values for one dimension.
type Selection struct {
	Dimension string   `json:"dimension"`
	Multi     bool     `json:"multi"`
	Values    []string `json:"values"`
}

// OptionSet lists the valid choices of one dimension.
type OptionSet struct {
	Dimension  string   `json:"dimension"`
	Enumerable bool     `json:"enumerable"`
	Values     []string `json:"values"`
}
