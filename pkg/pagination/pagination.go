package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPageSize is used when the request does not specify page_size.
	DefaultPageSize = 20
	// MaxPageSize caps page_size; larger values are clamped down.
	MaxPageSize = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Offset   int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:     1,
		PageSize: DefaultPageSize,
		Offset:   0,
	}
}

// FromRequest extracts pagination parameters from an HTTP request.
// Values that fail to parse fall back to the defaults; page_size is
// clamped to MaxPageSize.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if size := r.URL.Query().Get("page_size"); size != "" {
		if v, err := strconv.Atoi(size); err == nil && v > 0 {
			if v > MaxPageSize {
				v = MaxPageSize
			}
			p.PageSize = v
		}
	}

	p.Offset = (p.Page - 1) * p.PageSize
	return p
}

// Result wraps a paginated response.
type Result[T any] struct {
	Count      int  `json:"count"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
	Results    []T  `json:"results"`
}

// NewResult creates a paginated result.
func NewResult[T any](results []T, count int, params Params) Result[T] {
	totalPages := count / params.PageSize
	if count%params.PageSize > 0 {
		totalPages++
	}

	if results == nil {
		results = []T{}
	}

	return Result[T]{
		Count:      count,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
		Results:    results,
	}
}
