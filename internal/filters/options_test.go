package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsCascadeFromSelectedAncestors(t *testing.T) {
	state := newTestState(t, false)

	opts := state.Options(rows())
	assert.Equal(t, []string{"A", "B"}, opts[0].Values)
	assert.Equal(t, []string{"S1", "S2", ""}, opts[1].Values, "empty values are kept unless skipped")

	require.NoError(t, state.Set("center", "B"))
	opts = state.Options(rows())
	assert.Equal(t, []string{"A", "B"}, opts[0].Values, "first dimension always uses the full set")
	assert.Equal(t, []string{"S1", ""}, opts[1].Values)
	assert.Equal(t, []string{"C3", "C1"}, opts[2].Values)

	require.NoError(t, state.Set("source", "S1"))
	set, err := state.OptionsFor(rows(), "component")
	require.NoError(t, err)
	assert.Equal(t, []string{"C3"}, set.Values)
}

func TestOptionsSkipEmptyAndSorted(t *testing.T) {
	state, err := NewState(
		Dimension[row]{Name: "center", Value: func(r row) string { return r.center }, Multi: true},
		Dimension[row]{Name: "source", Value: func(r row) string { return r.source }, Multi: true, SkipEmpty: true, Sorted: true},
	)
	require.NoError(t, err)
	require.NoError(t, state.Set("center", "B", "A"))

	set, err := state.OptionsFor(rows(), "source")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, set.Values)
}

func TestOptionsGatedAndIndependent(t *testing.T) {
	state, err := NewState(
		Dimension[row]{Name: "center", Value: func(r row) string { return r.center }},
		Dimension[row]{Name: "source", Value: func(r row) string { return r.source }, Mode: Gated},
		Dimension[row]{Name: "component", Value: func(r row) string { return r.component }, Mode: Independent},
	)
	require.NoError(t, err)

	opts := state.Options(rows())
	assert.False(t, opts[1].Enumerable)
	assert.Empty(t, opts[1].Values)
	assert.Equal(t, []string{"C1", "C2", "C3", "C4"}, opts[2].Values)

	require.NoError(t, state.Set("center", "A"))
	opts = state.Options(rows())
	assert.True(t, opts[1].Enumerable)
	assert.Equal(t, []string{"S1", "S2"}, opts[1].Values)
	assert.Equal(t, []string{"C1", "C2", "C3", "C4"}, opts[2].Values, "independent ignores ancestors")
}

func TestValidateRejectsValuesOutsideOptions(t *testing.T) {
	state := newTestState(t, false)
	require.NoError(t, state.Set("center", "B"))

	assert.NoError(t, state.Validate(rows(), "source", "S1"))
	assert.ErrorIs(t, state.Validate(rows(), "source", "S2"), ErrInvalidOption)
	assert.ErrorIs(t, state.Validate(rows(), "nope", "x"), ErrUnknownDimension)
}
