package models

import (
	"fmt"
	"math"
	"strings"
)

// SortKey orders a page by one account property.
type SortKey struct {
	Property   string
	Descending bool
}

// ParseSortKey parses the "property[,asc|desc]" form used by the list
// endpoint.
func ParseSortKey(s string) (SortKey, error) {
	property, direction, _ := strings.Cut(s, ",")
	property = strings.TrimSpace(property)
	if property == "" {
		return SortKey{}, fmt.Errorf("%w: empty sort property", ErrBadRequest)
	}

	key := SortKey{Property: property}
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "", "asc":
	case "desc":
		key.Descending = true
	default:
		return SortKey{}, fmt.Errorf("%w: invalid sort direction %q", ErrBadRequest, direction)
	}
	return key, nil
}

// PageRequest selects one page of a sorted result.
type PageRequest struct {
	Page int // zero-based
	Size int
	Sort []SortKey
}

// Offset is the number of rows skipped before this page. It is only
// meaningful when InRange reports true.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// InRange reports whether the page index and size are usable, including
// whether Offset fits in an int.
func (r PageRequest) InRange() bool {
	return r.Page >= 0 && r.Size >= 1 && r.Page <= math.MaxInt/r.Size
}

// Page is one bounded slice of a larger result.
type Page[T any] struct {
	Items []T
	Page  int
	Size  int
	Total int64
}

// TotalPages is the number of pages needed for Total items.
func (p *Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

// HasNext reports whether a page follows this one.
func (p *Page[T]) HasNext() bool {
	if p.Size <= 0 {
		return false
	}
	return int64(p.Page+1)*int64(p.Size) < p.Total
}
