package model

import "time"

// Response is the standard API response envelope.
type Response struct {
	Status     string      `json:"status"`
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error"`
}

// Pagination holds pagination metadata for list endpoints.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// RunFilter selects a page of ledger runs. Empty State and DAGPath match
// every run.
type RunFilter struct {
	State   RunState
	DAGPath string
	Limit   int
	Offset  int
}

// Normalized returns f with Limit in [1, MaxPageSize] and a non-negative
// Offset. A non-positive Limit becomes DefaultPageSize.
func (f RunFilter) Normalized() RunFilter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultPageSize
	case f.Limit > MaxPageSize:
		f.Limit = MaxPageSize
	}
	f.Offset = max(f.Offset, 0)
	return f
}

// Page describes the page f selects out of total matching runs.
func (f RunFilter) Page(total int) *Pagination {
	f = f.Normalized()
	return &Pagination{
		Total:   total,
		Limit:   f.Limit,
		Offset:  f.Offset,
		HasMore: f.Offset+f.Limit < total,
	}
}
