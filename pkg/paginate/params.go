package paginate

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Bounds and defaults applied during parameter normalization.
const (
	DefaultPage       = 1
	MinPageSize       = 10
	MaxPageSize       = 50
	MaxFieldLength    = 100
	DefaultSortColumn = "created_at"
	DefaultDateColumn = "created_at"
)

// DefaultSearchColumns are searched when the request does not name any.
var DefaultSearchColumns = []string{"name", "description"}

// SortDirection is the requested ordering of the result set.
type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// ParseSortDirection maps raw input to a sort direction. Anything that is
// not recognizably ascending falls back to Descending.
func ParseSortDirection(raw string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ascending", "asc":
		return Ascending
	default:
		return Descending
	}
}

// QueryParams is the normalized, bounded configuration for one request.
// Values are already cleaned and clamped; column references are still
// unvalidated and are checked against the ColumnSpec at build time.
type QueryParams struct {
	Page          int
	PageSize      int
	SortColumn    string
	SortDirection SortDirection
	Search        string
	SearchColumns []string
	DateColumn    string
	DateAfter     *time.Time
	DateBefore    *time.Time
	Filters       map[string]string
}

// DefaultParams returns the configuration used when no parameters are
// supplied: page 1, page size 10, created_at descending.
func DefaultParams() QueryParams {
	return QueryParams{
		Page:          DefaultPage,
		PageSize:      MinPageSize,
		SortColumn:    DefaultSortColumn,
		SortDirection: Descending,
		SearchColumns: append([]string(nil), DefaultSearchColumns...),
		DateColumn:    DefaultDateColumn,
		Filters:       map[string]string{},
	}
}

// reservedKeys are consumed by the engine itself; every other key in the
// inbound parameter map is treated as a dynamic column filter.
var reservedKeys = map[string]bool{
	"page":           true,
	"page_size":      true,
	"sort_column":    true,
	"sort_direction": true,
	"search":         true,
	"search_columns": true,
	"date_column":    true,
	"date_after":     true,
	"date_before":    true,
}

// ParseParams normalizes a flat parameter map into QueryParams. It never
// fails: malformed, missing, or out-of-range fields fall back to their
// defaults so a bad client request still produces a valid page.
func ParseParams(values url.Values) QueryParams {
	p := DefaultParams()
	for key := range values {
		raw := values.Get(key)
		switch key {
		case "page":
			p.Page = parsePage(raw)
		case "page_size":
			p.PageSize = parsePageSize(raw)
		case "sort_column":
			if v := strings.TrimSpace(raw); v != "" {
				p.SortColumn = v
			}
		case "sort_direction":
			p.SortDirection = ParseSortDirection(raw)
		case "search":
			p.Search = CleanSearchTerm(raw)
		case "search_columns":
			if columns := splitColumns(raw); len(columns) > 0 {
				p.SearchColumns = columns
			}
		case "date_column":
			if v := strings.TrimSpace(raw); v != "" {
				p.DateColumn = v
			}
		case "date_after":
			p.DateAfter = parseTimestamp(raw)
		case "date_before":
			p.DateBefore = parseTimestamp(raw)
		default:
			p.Filters[key] = truncate(strings.TrimSpace(raw), MaxFieldLength)
		}
	}
	return p
}

// WithPagination returns a copy with page and page size applied, coerced
// into their valid ranges.
func (p QueryParams) WithPagination(page, pageSize int) QueryParams {
	if page < DefaultPage {
		page = DefaultPage
	}
	p.Page = page
	p.PageSize = clampPageSize(pageSize)
	return p
}

// WithSort returns a copy sorted by the given column and direction.
func (p QueryParams) WithSort(column string, direction SortDirection) QueryParams {
	p.SortColumn = column
	p.SortDirection = direction
	return p
}

// WithSearch returns a copy searching for term across the given columns.
// The term is cleaned the same way inbound request parameters are.
func (p QueryParams) WithSearch(term string, columns ...string) QueryParams {
	p.Search = CleanSearchTerm(term)
	if len(columns) > 0 {
		p.SearchColumns = append([]string(nil), columns...)
	}
	return p
}

// WithDateRange returns a copy bounded by the given inclusive timestamps.
// Either bound may be nil. An empty column keeps the current date column.
func (p QueryParams) WithDateRange(after, before *time.Time, column string) QueryParams {
	p.DateAfter = after
	p.DateBefore = before
	if column != "" {
		p.DateColumn = column
	}
	return p
}

// WithFilter returns a copy with an equality filter on the given column.
// The filter map is cloned so the receiver stays unchanged.
func (p QueryParams) WithFilter(column, value string) QueryParams {
	filters := make(map[string]string, len(p.Filters)+1)
	for k, v := range p.Filters {
		filters[k] = v
	}
	filters[column] = truncate(value, MaxFieldLength)
	p.Filters = filters
	return p
}

// parsePage extracts the digits from raw ("page=5", "2abc" and plain "2"
// all work) and coerces anything below 1 to the first page.
func parsePage(raw string) int {
	n, err := strconv.Atoi(extractDigits(raw))
	if err != nil || n < DefaultPage {
		return DefaultPage
	}
	return n
}

func parsePageSize(raw string) int {
	n, err := strconv.Atoi(extractDigits(raw))
	if err != nil {
		return MinPageSize
	}
	return clampPageSize(n)
}

func clampPageSize(n int) int {
	if n < MinPageSize {
		return MinPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

func extractDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseTimestamp accepts RFC 3339 timestamps and plain dates. Anything
// else is treated as absent.
func parseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}

func splitColumns(raw string) []string {
	var columns []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			columns = append(columns, trimmed)
		}
	}
	return columns
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
