package dashboard

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govbilling/billdash/internal/filters"
	"github.com/govbilling/billdash/internal/platform/httpx"
	"github.com/govbilling/billdash/internal/store"
)

type row struct {
	id, center, source string
}

func dims() []filters.Dimension[row] {
	return []filters.Dimension[row]{
		{Name: "center", Value: func(r row) string { return r.center }},
		{Name: "source", Value: func(r row) string { return r.source }},
	}
}

func newPage(t *testing.T, strict bool) *Page[row] {
	t.Helper()
	st := store.New(func(r row) string { return r.id })
	st.Load([]row{
		{"1", "North", "State"},
		{"2", "North", "Central"},
		{"3", "South", "State"},
	})
	p, err := NewPage("test", st, dims(), Options{Strict: strict, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)
	return p
}

func TestFilteredUnavailableBeforeLoad(t *testing.T) {
	st := store.New(func(r row) string { return r.id })
	p, err := NewPage("empty", st, dims(), Options{})
	require.NoError(t, err)

	_, err = p.Filtered()
	assert.ErrorIs(t, err, httpx.ErrUnavailable)
}

func TestFilteredFollowsSelectionsAndGeneration(t *testing.T) {
	p := newPage(t, true)

	items, err := p.Filtered()
	require.NoError(t, err)
	assert.Len(t, items, 3)

	require.NoError(t, p.Set("center", "North"))
	items, err = p.Filtered()
	require.NoError(t, err)
	assert.Len(t, items, 2)

	p.Store().Load([]row{{"9", "North", "State"}})
	items, err = p.Filtered()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "9", items[0].id)
}

func TestStrictRejectsUnknownValue(t *testing.T) {
	p := newPage(t, true)
	require.NoError(t, p.Set("center", "South"))

	err := p.Set("source", "Central")
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.ErrorIs(t, err, filters.ErrInvalidOption)
	assert.Empty(t, p.Selected("source"))
}

func TestLenientAcceptsUnknownValue(t *testing.T) {
	p := newPage(t, false)
	require.NoError(t, p.Set("center", "West"))
	items, err := p.Filtered()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReplaceAppliesAllOrNothing(t *testing.T) {
	p := newPage(t, true)
	require.NoError(t, p.Set("center", "South"))

	err := p.Replace([]filters.Selection{
		{Dimension: "center", Values: []string{"North"}},
		{Dimension: "source", Values: []string{"Nope"}},
	})
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Equal(t, []string{"South"}, p.Selected("center"))
	items, err := p.Filtered()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "3", items[0].id)

	require.NoError(t, p.Replace([]filters.Selection{
		{Dimension: "center", Values: []string{"North"}},
		{Dimension: "source", Values: []string{"Central"}},
	}))
	assert.Equal(t, []string{"North"}, p.Selected("center"))
	assert.Equal(t, []string{"Central"}, p.Selected("source"))
}

func TestUnknownDimensionIsValidationError(t *testing.T) {
	p := newPage(t, false)
	assert.ErrorIs(t, p.Set("nope", "x"), httpx.ErrValidation)
}

func TestFilterRoutes(t *testing.T) {
	p := newPage(t, true)
	r := chi.NewRouter()
	MountFilterRoutes(r, p)

	req := httptest.NewRequest(http.MethodPut, "/filters/center", strings.NewReader(`{"values":["North"]}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var view FilterView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	require.Len(t, view.Options, 2)
	assert.Equal(t, []string{"North"}, view.Selections[0].Values)
	assert.Equal(t, []string{"State", "Central"}, view.Options[1].Values)

	req = httptest.NewRequest(http.MethodPut, "/filters/source", strings.NewReader(`{"values":["Nope"]}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/filters", strings.NewReader(`{"selections":[{"dimension":"center","values":["South"]},{"dimension":"source","values":["State"]}]}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"State"}, p.Selected("source"))

	req = httptest.NewRequest(http.MethodPut, "/filters", strings.NewReader(`{"selections":[{"dimension":"center","values":["North"]},{"dimension":"source","values":["Nope"]}]}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"South"}, p.Selected("center"))
	assert.Equal(t, []string{"State"}, p.Selected("source"))

	req = httptest.NewRequest(http.MethodDelete, "/filters", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, p.Selected("center"))
}
