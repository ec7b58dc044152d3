// Package store provides database access methods for all ToolHub
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import "errors"

// Sentinel errors returned by mutation methods. Handlers map these onto
// field-level validation messages or HTTP statuses.
var (
	// ErrNotFound is returned by mutations targeting an id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSlug is returned when a category slug is already taken.
	ErrDuplicateSlug = errors.New("slug already in use")

	// ErrCategoryNotFound is returned when a tool references a category
	// that does not exist.
	ErrCategoryNotFound = errors.New("category does not exist")

	// ErrCategoryInUse is returned when deleting a category that still
	// has tools referencing it.
	ErrCategoryInUse = errors.New("category still has tools")
)

// PageMeta describes one page of a paginated listing.
type PageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// newPageMeta computes page metadata from a total row count.
func newPageMeta(page, perPage, total int) PageMeta {
	if page < 1 {
		page = 1
	}
	totalPages := (total + perPage - 1) / perPage
	return PageMeta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// pageOffset returns the SQL OFFSET for a 1-based page number.
func pageOffset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
