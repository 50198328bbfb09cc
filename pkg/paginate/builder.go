package paginate

import (
	"fmt"
	"sort"
	"strings"
)

// Builder accumulates WHERE-clause fragments and their positional bind
// values for one request. The bind index is always len(args)+1, so
// fragments from successive calls never collide. A Builder is request-local
// and must not be shared across goroutines.
type Builder struct {
	conditions []string
	args       []any
	spec       *ColumnSpec
	dialect    Dialect
	protection bool
}

// NewBuilder returns a Builder targeting Postgres with the denylist
// backstop enabled.
func NewBuilder(spec *ColumnSpec) *Builder {
	return NewBuilderWithDialect(spec, Postgres{})
}

// NewBuilderWithDialect returns a Builder for the given dialect.
func NewBuilderWithDialect(spec *ColumnSpec, dialect Dialect) *Builder {
	return &Builder{spec: spec, dialect: dialect, protection: true}
}

// columnSafe applies the two-layer policy: the struct-derived allowlist
// always applies; the denylist backstop applies unless protection was
// explicitly disabled.
func (b *Builder) columnSafe(column string) bool {
	if !b.spec.Has(column) || !ValidIdentifier(column) {
		return false
	}
	if b.protection && identifierDenied(column) {
		return false
	}
	return true
}

// WithSearch appends one case-insensitive partial-match fragment that ORs
// over every allowlisted search column. The cleaned search term is bound
// once and re-referenced per column on numbered dialects; positional
// dialects re-bind it per column. If no search column survives validation
// the search silently has no effect.
func (b *Builder) WithSearch(params QueryParams) *Builder {
	term := strings.TrimSpace(params.Search)
	if term == "" {
		return b
	}
	var safe []string
	for _, column := range params.SearchColumns {
		if b.columnSafe(column) {
			safe = append(safe, column)
		}
	}
	if len(safe) == 0 {
		return b
	}

	pattern := "%" + term + "%"
	predicates := make([]string, 0, len(safe))
	if b.dialect.Numbered() {
		placeholder := b.dialect.Placeholder(len(b.args) + 1)
		b.args = append(b.args, pattern)
		for _, column := range safe {
			predicates = append(predicates,
				fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", b.dialect.QuoteIdentifier(column), placeholder))
		}
	} else {
		for _, column := range safe {
			b.args = append(b.args, pattern)
			predicates = append(predicates,
				fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", b.dialect.QuoteIdentifier(column), b.dialect.Placeholder(len(b.args))))
		}
	}
	b.conditions = append(b.conditions, "("+strings.Join(predicates, " OR ")+")")
	return b
}

// WithDateRange appends inclusive bounds on the date column for whichever
// of DateAfter/DateBefore are present. The bounds are applied literally;
// an inverted range is the caller's responsibility and simply matches
// nothing. The whole fragment is omitted when the column fails validation.
func (b *Builder) WithDateRange(params QueryParams) *Builder {
	if params.DateColumn == "" || !b.columnSafe(params.DateColumn) {
		return b
	}
	if params.DateAfter == nil && params.DateBefore == nil {
		return b
	}
	column := b.dialect.QuoteIdentifier(params.DateColumn)
	if params.DateAfter != nil {
		b.args = append(b.args, *params.DateAfter)
		b.conditions = append(b.conditions,
			fmt.Sprintf("%s >= %s", column, b.dialect.Placeholder(len(b.args))))
	}
	if params.DateBefore != nil {
		b.args = append(b.args, *params.DateBefore)
		b.conditions = append(b.conditions,
			fmt.Sprintf("%s <= %s", column, b.dialect.Placeholder(len(b.args))))
	}
	return b
}

// WithFilters appends one equality fragment per dynamic filter whose key
// passes validation and whose value coerces to the column's tagged type.
// Keys are visited in sorted order so identical parameters always produce
// identical SQL. A key that fails either check is dropped individually;
// the remaining filters still apply.
func (b *Builder) WithFilters(params QueryParams) *Builder {
	keys := make([]string, 0, len(params.Filters))
	for key := range params.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := params.Filters[key]
		if raw == "" || !b.columnSafe(key) {
			continue
		}
		columnType, _ := b.spec.Type(key)
		value, ok := coerceFilterValue(raw, columnType)
		if !ok {
			continue
		}
		b.args = append(b.args, value)
		b.conditions = append(b.conditions,
			fmt.Sprintf("%s = %s", b.dialect.QuoteIdentifier(key), b.dialect.Placeholder(len(b.args))))
	}
	return b
}

// WithCondition appends a single validated predicate with a caller-chosen
// operator. The value is always bound, never interpolated.
func (b *Builder) WithCondition(column, operator string, value any) *Builder {
	if !b.columnSafe(column) {
		return b
	}
	b.args = append(b.args, value)
	b.conditions = append(b.conditions,
		fmt.Sprintf("%s %s %s", b.dialect.QuoteIdentifier(column), operator, b.dialect.Placeholder(len(b.args))))
	return b
}

// WithRawCondition appends a SQL predicate verbatim, bypassing the
// allowlist, the denylist, and identifier validation. The fragment is
// trusted developer input; passing anything derived from a request here is
// an injection hole by definition.
func (b *Builder) WithRawCondition(condition string) *Builder {
	if strings.TrimSpace(condition) == "" {
		return b
	}
	b.conditions = append(b.conditions, condition)
	return b
}

// DisableProtection turns off the system-identifier denylist backstop.
// The struct-derived allowlist still applies.
func (b *Builder) DisableProtection() *Builder {
	b.protection = false
	return b
}

// Build returns the accumulated predicate fragments and bind values.
// Fragments compose with AND; bind values are ordered to match the
// placeholders already written into the fragments.
func (b *Builder) Build() ([]string, []any) {
	return b.conditions, b.args
}

// coerceFilterValue resolves a raw filter value against the column's
// tagged type. Booleans accept true/false/t/f (any case); timestamps
// accept RFC 3339 or a plain date. A value that cannot be represented
// drops the filter.
func coerceFilterValue(raw string, columnType ColumnType) (any, bool) {
	switch columnType {
	case ColumnBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "t":
			return true, true
		case "false", "f":
			return false, true
		}
		return nil, false
	case ColumnTimestamp:
		if ts := parseTimestamp(raw); ts != nil {
			return *ts, true
		}
		return nil, false
	default:
		return raw, true
	}
}
