package service

// Pagination defaults applied when the caller omits or zeroes the options.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PageOptions selects a window of a resource collection. Sort maps DTO
// field names (e.g. "createdAt") to "asc" or "desc"; fields are translated
// to columns through the entity descriptor and unknown fields are rejected.
type PageOptions struct {
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Sort  map[string]string `json:"sort,omitempty"`
}

// normalized returns the options with defaults filled in.
func (o PageOptions) normalized() PageOptions {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	return o
}

// PageMeta is the computed metadata accompanying one page of items.
type PageMeta struct {
	Total           int64 `json:"total"`
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	TotalPages      int64 `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// Paginated is one page of projected items plus its metadata.
type Paginated[R any] struct {
	Items []R      `json:"items"`
	Meta  PageMeta `json:"meta"`
}

// pageMeta derives the metadata for a page: totalPages = ceil(total/limit),
// hasNextPage = page*limit < total, hasPreviousPage = page > 1.
func pageMeta(total int64, page, limit int) PageMeta {
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return PageMeta{
		Total:           total,
		Page:            page,
		Limit:           limit,
		TotalPages:      totalPages,
		HasNextPage:     int64(page)*int64(limit) < total,
		HasPreviousPage: page > 1,
	}
}
