package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Params is a requested page. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// ParseQueryParams reads the page and limit query parameters, falling back
// to the configured defaults when they are absent.
func ParseQueryParams(r *http.Request, config Config) (Params, error) {
	params := Params{Page: config.DefaultPage, Limit: config.DefaultLimit}
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("invalid query parameter: page %q is not a number", raw)
		}
		params.Page = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("invalid query parameter: limit %q is not a number", raw)
		}
		params.Limit = n
	}

	if err := params.Validate(config); err != nil {
		return Params{}, fmt.Errorf("invalid query parameter: %w", err)
	}
	return params, nil
}

// Validate rejects a page below 1 or a limit outside [1, config.MaxLimit].
func (p Params) Validate(config Config) error {
	if p.Page < 1 {
		return fmt.Errorf("page must be a positive integer")
	}
	if p.Limit < 1 || p.Limit > config.MaxLimit {
		return fmt.Errorf("limit must be between 1 and %d", config.MaxLimit)
	}
	return nil
}

// WithDefaults fills a missing page or limit from config and caps the limit
// at config.MaxLimit.
func (p Params) WithDefaults(config Config) Params {
	if p.Page <= 0 {
		p.Page = config.DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = config.DefaultLimit
	}
	p.Limit = min(p.Limit, config.MaxLimit)
	return p
}

// Offset returns the row offset of the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}
