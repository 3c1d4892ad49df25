package utils

import (
	"strconv" // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
)

// Pagination defaults
const (
	DefaultPage  = 1   // First page
	DefaultLimit = 10  // Default page size
	MaxLimit     = 100 // Largest allowed page size
)

// PageParams holds parsed page and limit values
type PageParams struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Result builds the pagination block for a total row count
func (p PageParams) Result(total int64) Pagination {
	totalPages := (int(total) + p.Limit - 1) / p.Limit // Calculate total pages
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: totalPages}
}

// ParsePagination reads page and limit from the query string
func ParsePagination(c *gin.Context) PageParams {
	params := PageParams{Page: DefaultPage, Limit: DefaultLimit}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		params.Page = v // Set page if valid
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		params.Limit = min(v, MaxLimit) // Clamp page size
	}
	return params
}

// ParseID reads a positive numeric path parameter
func ParseID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
