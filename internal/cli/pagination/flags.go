package pagination

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// Pagination defaults and limits.
const (
	DefaultLimit     = 0
	MaxLimit         = 10000
	DefaultPageSize  = 50
	MaxPageSize      = 1000
	DefaultSortOrder = SortOrderAsc
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"

	sortPartsMax = 2
)

// Validation errors.
var (
	ErrInvalidLimit         = fmt.Errorf("limit must be between 0 and %d", MaxLimit)
	ErrInvalidPageSize      = fmt.Errorf("page-size must be between 1 and %d", MaxPageSize)
	ErrInvalidOffset        = errors.New("offset must be non-negative")
	ErrInvalidPage          = errors.New("page must be >= 1")
	ErrInvalidSortOrder     = errors.New("sort order must be 'asc' or 'desc'")
	ErrMixedPaginationModes = errors.New("--page and --offset are mutually exclusive")
	ErrInvalidSortFormat    = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'cost:desc')")
	ErrEmptySortField       = errors.New("sort field cannot be empty")
	ErrInvalidSortField     = errors.New("invalid sort field")
)

// PaginationParams holds the pagination flags of one command. Page-based
// (--page, --page-size) and offset-based (--limit, --offset) modes are
// mutually exclusive.
//
//nolint:revive // PaginationParams is the canonical name for this exported type.
type PaginationParams struct {
	Limit    int
	Offset   int
	Page     int
	PageSize int
	Sort     string
}

// Bind registers the pagination flags on cmd.
func (p *PaginationParams) Bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.Page, "page", 0, "page number to return (1-based)")
	cmd.Flags().IntVar(&p.PageSize, "page-size", DefaultPageSize, "items per page, used with --page")
	cmd.Flags().IntVar(&p.Limit, "limit", DefaultLimit, "maximum number of items (0 = all)")
	cmd.Flags().IntVar(&p.Offset, "offset", 0, "number of items to skip")
	cmd.Flags().StringVar(&p.Sort, "sort", "", "sort by field, as field or field:asc|desc")
}

// Validate checks bounds and mode exclusivity.
func (p PaginationParams) Validate() error {
	switch {
	case p.Limit < 0 || p.Limit > MaxLimit:
		return ErrInvalidLimit
	case p.Offset < 0:
		return ErrInvalidOffset
	case p.Page < 0:
		return ErrInvalidPage
	case p.Page > 0 && p.Offset > 0:
		return ErrMixedPaginationModes
	case p.Page > 0 && (p.PageSize < 1 || p.PageSize > MaxPageSize):
		return ErrInvalidPageSize
	}
	if p.Sort != "" {
		if _, _, err := ParseSort(p.Sort); err != nil {
			return err
		}
	}
	return nil
}

// IsPageBased reports whether --page was given.
func (p PaginationParams) IsPageBased() bool {
	return p.Page > 0
}

// IsEnabled reports whether any slicing applies.
func (p PaginationParams) IsEnabled() bool {
	return p.Page > 0 || p.Limit > 0 || p.Offset > 0
}

// CalculateOffsetLimit returns the effective offset and limit. A zero limit
// means no upper bound.
//
//nolint:nonamedreturns // Named returns document the pair.
func (p PaginationParams) CalculateOffsetLimit() (offset, limit int) {
	if p.IsPageBased() {
		return (p.Page - 1) * p.PageSize, p.PageSize
	}
	return p.Offset, p.Limit
}

// ServerPage returns the page number and size to request from an endpoint
// that paginates server-side, or zeros to use the server default.
//
//nolint:nonamedreturns // Named returns document the pair.
func (p PaginationParams) ServerPage() (number, size int) {
	if !p.IsPageBased() {
		return 0, 0
	}
	return p.Page, p.PageSize
}

// Apply returns the page of items selected by p. A page past the end yields
// the last page; an offset past the end yields nothing.
func Apply[T any](p PaginationParams, items []T) []T {
	if len(items) == 0 || !p.IsEnabled() {
		return items
	}

	offset, limit := p.CalculateOffsetLimit()
	if p.IsPageBased() && offset >= len(items) {
		offset = ((len(items) - 1) / p.PageSize) * p.PageSize
	}
	if offset >= len(items) {
		return []T{}
	}

	end := len(items)
	if limit > 0 {
		end = min(offset+limit, len(items))
	}
	return items[offset:end]
}

// ParseSort parses "field" or "field:order". An empty string yields an empty
// field and the default order.
//
//nolint:nonamedreturns // Named returns document the pair.
func ParseSort(sortStr string) (field, order string, err error) {
	if sortStr == "" {
		return "", DefaultSortOrder, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field, order = strings.TrimSpace(parts[0]), DefaultSortOrder
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return field, order, nil
}
