package domain

import "fmt"

// PageResult is one page of a paginated listing
type PageResult struct {
	Items    []Post `json:"data"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	LastPage int    `json:"lastPage"`
}

// Validate checks the envelope invariants. A limit of zero skips the size check.
func (r PageResult) Validate(limit int) error {
	if limit > 0 && len(r.Items) > limit {
		return fmt.Errorf("%w: %d items exceed limit %d", ErrMalformedPage, len(r.Items), limit)
	}
	if r.Total > 0 && (r.Page < 1 || r.Page > r.LastPage) {
		return fmt.Errorf("%w: page %d outside 1..%d", ErrMalformedPage, r.Page, r.LastPage)
	}
	if r.Total < 0 || r.LastPage < 0 {
		return fmt.Errorf("%w: negative counters", ErrMalformedPage)
	}
	return nil
}

// HasNext reports whether a page after this one exists
func (r PageResult) HasNext() bool { return r.Page < r.LastPage }

// HasPrev reports whether a page before this one exists
func (r PageResult) HasPrev() bool { return r.Page > 1 }

// IsEmpty reports a successful page with no items
func (r PageResult) IsEmpty() bool { return len(r.Items) == 0 }
