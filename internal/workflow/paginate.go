package workflow

import "github.com/noah-isme/transport-request-api/internal/models"

// DefaultPageSize matches the 10-row tables of the dashboards.
const DefaultPageSize = 10

// Paginate returns one page of items and its metadata. Pages start at 1.
func Paginate[T any](items []T, page, size int) ([]T, models.Pagination) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = DefaultPageSize
	}
	meta := models.Pagination{Page: page, PageSize: size, TotalCount: len(items)}

	start := (page - 1) * size
	if start >= len(items) {
		return []T{}, meta
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}
