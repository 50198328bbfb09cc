package paginate

// Page is the pagination envelope returned to callers. Total and
// TotalPages are omitted entirely when counting is disabled; reporting
// zero would be a silently wrong answer rather than an absence signal.
type Page[T any] struct {
	Records    []T    `json:"records"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	Total      *int64 `json:"total,omitempty"`
	TotalPages *int64 `json:"total_pages,omitempty"`
}
