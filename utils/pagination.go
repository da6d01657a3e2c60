package utils

import (
	"net/http"
	"strconv"

	"github.com/kelydev/apiTramite/models"
)

// Pagination defaults, overridable from config.
var (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// GetPaginationParams parses page and pageSize query parameters from a request.
// "limit" is accepted as an alias of pageSize. Returns page (default 1) and
// size (default DefaultPageSize, max MaxPageSize).
func GetPaginationParams(r *http.Request) (page, size int) {
	q := r.URL.Query()
	sizeStr := q.Get("pageSize")
	if sizeStr == "" {
		sizeStr = q.Get("limit")
	}

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	size, err = strconv.Atoi(sizeStr)
	if err != nil || size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// TotalPages returns ceil(totalItems/pageSize), 0 when there are no items.
func TotalPages(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// ClampPage keeps page inside [1, max(totalPages,1)].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Offset returns the row offset of a page.
func Offset(page, size int) int {
	return (page - 1) * size
}

// NewPage wraps a slice of rows with its pagination metadata.
func NewPage[T any](data []T, totalItems, page, size int) models.Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := TotalPages(totalItems, size)
	return models.Page[T]{
		Data: data,
		Pagination: models.PaginationMetadata{
			CurrentPage: ClampPage(page, totalPages),
			PageSize:    size,
			TotalItems:  totalItems,
			TotalPages:  totalPages,
		},
	}
}
