package domain

// PaginationParams selects one page of an ordered list. Page is 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset is the number of rows before the first row of the page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Limit is the maximum number of rows on the page.
func (p PaginationParams) Limit() int {
	return max(p.PageSize, 0)
}
