package shared

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginateSlicesPages(t *testing.T) {
	items := seq(120)

	page := Paginate(items, 50, 2)
	require.Len(t, page.Items, 50)
	assert.Equal(t, 50, page.Items[0])
	assert.Equal(t, 50, page.FirstIndex)
	assert.Equal(t, 100, page.LastIndex)
	assert.Equal(t, 3, page.TotalPages)

	page = Paginate(items, 50, 3)
	require.Len(t, page.Items, 20)
	assert.Equal(t, 100, page.Items[0])

	page = Paginate(items, 50, 4)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalPages)
}

func TestPaginateEmptyAndInvalid(t *testing.T) {
	page := Paginate([]int{}, 50, 1)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)

	page = Paginate(seq(10), 50, 0)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.FirstIndex)

	page = Paginate(seq(120), 50, math.MaxInt64/25)
	assert.Empty(t, page.Items)
	assert.Equal(t, 120, page.FirstIndex)
	assert.Equal(t, 120, page.LastIndex)
	assert.Equal(t, 3, page.TotalPages)

	page = Paginate(seq(120), 50, math.MaxInt)
	assert.Empty(t, page.Items)
	assert.NotEmpty(t, page.Window)

	page = Paginate(seq(10), 0, 1)
	assert.Equal(t, DefaultPageSize, page.PerPage)
	assert.Len(t, page.Items, 10)
}

func pages(links []PageLink) []int {
	out := make([]int, len(links))
	for i, l := range links {
		if l.Ellipsis {
			out[i] = -1
			continue
		}
		out[i] = l.Page
	}
	return out
}

func TestPageWindow(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, pages(PageWindow(2, 3)))
	assert.Equal(t, []int{1, 2, 3, 4, 5, -1, 10}, pages(PageWindow(1, 10)))
	assert.Equal(t, []int{1, -1, 4, 5, 6, 7, 8, -1, 10}, pages(PageWindow(6, 10)))
	assert.Equal(t, []int{1, -1, 6, 7, 8, 9, 10}, pages(PageWindow(10, 10)))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, pages(PageWindow(4, 7)))

	links := PageWindow(3, 10)
	for _, l := range links {
		if l.Page == 3 {
			assert.True(t, l.Current)
		} else {
			assert.False(t, l.Current)
		}
	}
}
