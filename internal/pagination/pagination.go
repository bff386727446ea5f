// Package pagination provides the fixed-size page window used by listing
// handlers.
package pagination

import (
	"strconv"
)

// PageSize is the number of items per page window.
const PageSize = 10

// Window is a bounded, offset-selected slice of an ordered result set.
type Window struct {
	Number      int   `json:"number"`
	TotalPages  int   `json:"total_pages"`
	Count       int64 `json:"count"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// ParsePage parses a raw `page` query value. Missing, non-numeric or
// non-positive values select page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate computes the window for the requested page over a result set of
// `count` items. Requests past the end clamp to the last page; an empty
// result set yields a single empty page.
func Paginate(requested int, count int64) Window {
	if requested < 1 {
		requested = 1
	}

	totalPages := int((count + PageSize - 1) / PageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	if requested > totalPages {
		requested = totalPages
	}

	return Window{
		Number:      requested,
		TotalPages:  totalPages,
		Count:       count,
		HasNext:     requested < totalPages,
		HasPrevious: requested > 1,
	}
}

// Offset is the database offset of the window's first item.
func (w Window) Offset() int {
	return (w.Number - 1) * PageSize
}

// Limit is the maximum number of items in the window.
func (w Window) Limit() int {
	return PageSize
}
