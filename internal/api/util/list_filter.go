package util

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 25
	MaxPerPage     = 500

	// MaxPage keeps (page-1)*per_page inside int.
	MaxPage = math.MaxInt / MaxPerPage
)

// ListFilter holds the filtering, ordering and pagination of a list request.
type ListFilter struct {
	Filters []QueryFilter
	Order   []OrderClause
	Page    int
	PerPage int
}

// Accessor reads a named field of an item. ok is false when the field is
// absent (null).
type Accessor[T any] func(item T, field string) (value string, ok bool)

// ParsePage turns page and per_page query values into sane numbers.
func ParsePage(pageStr, perPageStr string) (page, perPage int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	perPage, err = strconv.Atoi(perPageStr)
	if err != nil || perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Apply filters, sorts and pages items. It returns the page and the number
// of items that matched before paging.
func Apply[T any](items []T, f ListFilter, get Accessor[T]) ([]T, int) {
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, f.Filters, get) {
			matched = append(matched, item)
		}
	}

	if len(f.Order) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, o := range f.Order {
				a, _ := get(matched[i], o.Field)
				b, _ := get(matched[j], o.Field)
				if a == b {
					continue
				}
				if o.Direction == OrderDesc {
					return a > b
				}
				return a < b
			}
			return false
		})
	}

	total := len(matched)
	if f.PerPage <= 0 {
		return matched, total
	}
	if f.Page < 1 || f.Page-1 >= (total+f.PerPage-1)/f.PerPage {
		return []T{}, total
	}
	start := (f.Page - 1) * f.PerPage
	end := start + f.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total
}

// TotalPages is the number of pages needed for total items.
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func matches[T any](item T, filters []QueryFilter, get Accessor[T]) bool {
	for _, f := range filters {
		value, ok := get(item, f.Field)
		switch f.Operator {
		case OpIsNull:
			if ok {
				return false
			}
		case OpIsNotNull:
			if !ok {
				return false
			}
		case OpEq:
			if !ok || value != f.Value {
				return false
			}
		case OpNe:
			if ok && value == f.Value {
				return false
			}
		case OpContains:
			if !ok || !strings.Contains(strings.ToLower(value), strings.ToLower(f.Value)) {
				return false
			}
		}
	}
	return true
}
