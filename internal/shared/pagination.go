package shared

import "math"

// DefaultPageSize is used when a caller does not pick a page size.
const DefaultPageSize = 50

// windowSize is the number of contiguous page buttons shown.
const windowSize = 5

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
	FirstIndex int        `json:"first_index"`
	LastIndex  int        `json:"last_index"`
	Window     []PageLink `json:"window"`
}

// PageLink is one entry of the page-number bar; Ellipsis entries carry no page.
type PageLink struct {
	Page     int  `json:"page,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// Page is one slice of an ordered collection.
type Page[T any] struct {
	Items []T `json:"items"`
	Pagination
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages < 1 {
		totalPages = 1
	}
	var first, last int
	switch {
	case page < 1:
	case page-1 > (total-1)/perPage:
		first, last = total, total
	default:
		first = (page - 1) * perPage
		last = first + min(perPage, total-first)
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		FirstIndex: first,
		LastIndex:  last,
		Window:     PageWindow(page, totalPages),
	}
}

// Paginate slices items for the requested page. Pages outside the range are
// returned empty rather than clamped.
func Paginate[T any](items []T, perPage, page int) Page[T] {
	meta := NewPagination(page, perPage, len(items))
	out := Page[T]{Items: []T{}, Pagination: meta}
	if meta.LastIndex > meta.FirstIndex {
		out.Items = items[meta.FirstIndex:meta.LastIndex]
	}
	return out
}

// PageWindow builds the page-number bar: at most five contiguous pages centred
// on current, with the first and last pages pinned outside the window.
func PageWindow(current, totalPages int) []PageLink {
	if totalPages < 1 {
		return nil
	}
	start, end := 1, totalPages
	if totalPages > windowSize {
		start = min(current, totalPages) - windowSize/2
		if start < 1 {
			start = 1
		}
		end = start + windowSize - 1
		if end > totalPages {
			end = totalPages
			start = end - windowSize + 1
		}
	}
	links := make([]PageLink, 0, windowSize+4)
	if start > 1 {
		links = append(links, PageLink{Page: 1, Current: current == 1})
		if start > 2 {
			links = append(links, PageLink{Ellipsis: true})
		}
	}
	for p := start; p <= end; p++ {
		links = append(links, PageLink{Page: p, Current: p == current})
	}
	if end < totalPages {
		if end < totalPages-1 {
			links = append(links, PageLink{Ellipsis: true})
		}
		links = append(links, PageLink{Page: totalPages, Current: current == totalPages})
	}
	return links
}
