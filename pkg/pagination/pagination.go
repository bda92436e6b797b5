package pagination

import (
	"strconv"

	"github.com/narwhalmedia/wrongopinions/pkg/errors"
)

const (
	// DefaultPage is the first page.
	DefaultPage = 1
	// DefaultPageSize applies when page_size is absent.
	DefaultPageSize = 20
	// MaxPageSize bounds page_size.
	MaxPageSize = 100
)

// Params contains page-number pagination parameters
type Params struct {
	Page     int
	PageSize int
}

// Query is the subset of a request's query string pagination needs.
type Query interface {
	Query(key string) string
}

// FromQuery parses page and page_size. Missing values take defaults;
// malformed or out-of-range values are rejected.
func FromQuery(q Query) (Params, error) {
	p := Params{Page: DefaultPage, PageSize: DefaultPageSize}

	if raw := q.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return Params{}, errors.BadRequest("page must be a positive integer")
		}
		p.Page = page
	}

	if raw := q.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > MaxPageSize {
			return Params{}, errors.BadRequest("page_size must be between 1 and 100")
		}
		p.PageSize = size
	}

	return p, nil
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the number of rows to fetch.
func (p Params) Limit() int {
	return p.PageSize
}

// Page is one page of a list response
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Pages    int   `json:"pages"`
}

// NewPage builds a page, never returning a nil Items slice.
func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if p.PageSize > 0 {
		pages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return Page[T]{
		Items:    items,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
		Pages:    pages,
	}
}

// Map converts the items of a page.
func Map[T, U any](in Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(in.Items))
	for i, item := range in.Items {
		out[i] = fn(item)
	}
	return Page[U]{Items: out, Total: in.Total, Page: in.Page, PageSize: in.PageSize, Pages: in.Pages}
}
