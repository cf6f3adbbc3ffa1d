package response

// PageResponse is the standard wrapper for page-numbered list endpoints.
type PageResponse[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewPageResponse is a helper to quickly create a response
func NewPageResponse[T any](items []T, page, limit, total int) PageResponse[T] {
	// Handle empty slice to avoid JSON outputting null
	if items == nil {
		items = make([]T, 0)
	}

	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return PageResponse[T]{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// ListResponse is the wrapper for offset-paginated list endpoints.
type ListResponse[T any] struct {
	Items     []T `json:"items"`
	Total     int `json:"total"`
	Limit     int `json:"limit"`
	Offset    int `json:"offset"`
	Remaining int `json:"remaining"`
}

// NewListResponse computes the remaining count from total, limit and offset.
func NewListResponse[T any](items []T, total, limit, offset int) ListResponse[T] {
	if items == nil {
		items = make([]T, 0)
	}

	remaining := total - (offset + limit)
	if remaining < 0 {
		remaining = 0
	}

	return ListResponse[T]{
		Items:     items,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
		Remaining: remaining,
	}
}
