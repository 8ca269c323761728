package pagination

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Compare orders two items, returning a negative, zero or positive number.
type Compare[T any] func(a, b T) int

// Sorter sorts items of one type by named fields.
type Sorter[T any] struct {
	fields map[string]Compare[T]
}

// NewSorter creates a Sorter over the given fields.
func NewSorter[T any](fields map[string]Compare[T]) *Sorter[T] {
	return &Sorter[T]{fields: fields}
}

// By returns a Compare for a field of an ordered type.
func By[T any, K cmp.Ordered](key func(T) K) Compare[T] {
	return func(a, b T) int { return cmp.Compare(key(a), key(b)) }
}

// IsValidField reports whether field can be sorted on.
func (s *Sorter[T]) IsValidField(field string) bool {
	_, ok := s.fields[field]
	return ok
}

// Fields returns the sortable fields in alphabetical order.
func (s *Sorter[T]) Fields() []string {
	return slices.Sorted(maps.Keys(s.fields))
}

// Sort returns a stably sorted copy of items for the expression "field" or
// "field:order". An empty expression returns items unchanged.
func (s *Sorter[T]) Sort(items []T, expr string) ([]T, error) {
	field, order, err := ParseSort(expr)
	if err != nil {
		return nil, err
	}
	if field == "" {
		return items, nil
	}
	compare, ok := s.fields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, field, strings.Join(s.Fields(), ", "))
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		if order == SortOrderDesc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return sorted, nil
}
