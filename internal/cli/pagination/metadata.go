package pagination

// PaginationMeta describes the page returned to the user.
//
//nolint:revive // PaginationMeta is the canonical name for this exported type.
type PaginationMeta struct {
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
}

// NewPaginationMeta derives page metadata from params and the total item count.
// Without any pagination the whole result is a single page.
func NewPaginationMeta(params PaginationParams, totalCount int) PaginationMeta {
	offset, size := params.CalculateOffsetLimit()
	if size == 0 {
		offset, size = 0, totalCount
	}

	current, total := 1, 0
	if size > 0 {
		current = offset/size + 1
		total = (totalCount + size - 1) / size
	}

	return PaginationMeta{
		CurrentPage: current,
		PageSize:    size,
		TotalPages:  total,
		TotalItems:  totalCount,
		HasPrevious: current > 1,
		HasNext:     current < total,
	}
}
