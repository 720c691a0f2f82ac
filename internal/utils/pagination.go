// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PageMeta is the pagination metadata attached to every list response.
// HasNext/HasPrevious follow offset pagination over a total count:
// has_next when page*pageSize < total, has_previous when page > 1.
type PageMeta struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	Total       int64 `json:"total"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// NewPageMeta computes pagination metadata for a page of a listing with the
// given total size.
func NewPageMeta(page, pageSize int, total int64) PageMeta {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return PageMeta{
		Page:        page,
		PageSize:    pageSize,
		Total:       total,
		HasNext:     int64(page)*int64(pageSize) < total,
		HasPrevious: page > 1,
	}
}
