package usecase

// Pagination defaults and bounds shared by every list operation.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest selects one page of a list. Pages are 1-based.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps the request to sane values: page defaults to 1, page size
// to DefaultPageSize, capped at MaxPageSize.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}

	return p
}

// Offset returns the row offset of a normalized request.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageInfo describes the page actually returned.
type PageInfo struct {
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int
}

// NewPageInfo computes the page metadata; TotalPages is the ceiling of
// total/pageSize and 0 for an empty result set.
func NewPageInfo(req PageRequest, total int64) PageInfo {
	totalPages := int((total + int64(req.PageSize) - 1) / int64(req.PageSize))

	return PageInfo{
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
