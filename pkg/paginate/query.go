package paginate

import (
	"context"
	"strings"
)

// ConditionsFunc builds the WHERE fragments and bind values for a request.
// Callers can replace the default to add custom conditions or the raw
// escape hatch.
type ConditionsFunc func(params QueryParams, spec *ColumnSpec, dialect Dialect) ([]string, []any)

// DefaultConditions applies search, date range, and dynamic filters in
// that fixed order, so identical parameters always assemble byte-identical
// SQL.
func DefaultConditions(params QueryParams, spec *ColumnSpec, dialect Dialect) ([]string, []any) {
	return NewBuilderWithDialect(spec, dialect).
		WithSearch(params).
		WithDateRange(params).
		WithFilters(params).
		Build()
}

// PaginatedQuery assembles a paginated SELECT plus an optional COUNT query
// from a caller-supplied base statement. The base SQL is developer-authored
// and trusted verbatim; everything derived from request parameters is
// validated or bound.
type PaginatedQuery[T any] struct {
	baseSQL      string
	spec         *ColumnSpec
	dialect      Dialect
	params       QueryParams
	totalsCount  bool
	conditionsFn ConditionsFunc
}

// NewQuery creates a PaginatedQuery for the record type T over the given
// base SELECT body. Defaults: Postgres dialect, default params, totals
// counting enabled.
func NewQuery[T any](baseSQL string) *PaginatedQuery[T] {
	var model T
	return &PaginatedQuery[T]{
		baseSQL:      baseSQL,
		spec:         ColumnsOf(model),
		dialect:      Postgres{},
		params:       DefaultParams(),
		totalsCount:  true,
		conditionsFn: DefaultConditions,
	}
}

// WithParams sets the normalized request parameters.
func (q *PaginatedQuery[T]) WithParams(params QueryParams) *PaginatedQuery[T] {
	q.params = params
	return q
}

// WithDialect overrides the target dialect.
func (q *PaginatedQuery[T]) WithDialect(dialect Dialect) *PaginatedQuery[T] {
	q.dialect = dialect
	return q
}

// WithConditions replaces the default condition pipeline.
func (q *PaginatedQuery[T]) WithConditions(fn ConditionsFunc) *PaginatedQuery[T] {
	q.conditionsFn = fn
	return q
}

// DisableTotalsCount skips the COUNT query. Counting dominates the cost of
// listing large tables; when disabled, total and total_pages are omitted
// from the envelope rather than reported as zero.
func (q *PaginatedQuery[T]) DisableTotalsCount() *PaginatedQuery[T] {
	q.totalsCount = false
	return q
}

// AssembledQuery is the final parameterized SQL for one request.
type AssembledQuery struct {
	SelectSQL  string
	CountSQL   string // empty when totals counting is disabled
	SelectArgs []any
	CountArgs  []any
}

// Build assembles the SELECT and COUNT statements. The base query is
// wrapped in a CTE and never parsed; the WHERE clause AND-joins every
// generated fragment; LIMIT and OFFSET are bound as the final two
// parameters. The COUNT statement shares the WHERE bind values and carries
// no ORDER BY, LIMIT, or OFFSET.
func (q *PaginatedQuery[T]) Build() AssembledQuery {
	conditions, args := q.conditionsFn(q.params, q.spec, q.dialect)

	var where string
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	base := "WITH base_query AS (" + q.baseSQL + ")"

	var assembled AssembledQuery
	if q.totalsCount {
		assembled.CountSQL = base + " SELECT COUNT(*) FROM base_query" + where
		assembled.CountArgs = args
	}

	assembled.SelectSQL = base + " SELECT * FROM base_query" + where + q.orderClause() +
		" LIMIT " + q.dialect.Placeholder(len(args)+1) +
		" OFFSET " + q.dialect.Placeholder(len(args)+2)
	assembled.SelectArgs = append(args[:len(args):len(args)],
		q.params.PageSize, (q.params.Page-1)*q.params.PageSize)
	return assembled
}

// orderClause validates the sort column against the allowlist, falling
// back to the default column when the request names one it may not use.
func (q *PaginatedQuery[T]) orderClause() string {
	column := q.params.SortColumn
	if !q.spec.Allowed(column) {
		column = DefaultSortColumn
	}
	direction := "DESC"
	if q.params.SortDirection == Ascending {
		direction = "ASC"
	}
	return " ORDER BY " + q.dialect.QuoteIdentifier(column) + " " + direction
}

// Fetch executes the assembled queries through the executor and wraps the
// rows in a pagination envelope. Execution errors are returned unchanged;
// the engine has nothing transient to retry.
func (q *PaginatedQuery[T]) Fetch(ctx context.Context, exec Executor) (*Page[T], error) {
	assembled := q.Build()
	page := &Page[T]{
		Records:  []T{},
		Page:     q.params.Page,
		PageSize: q.params.PageSize,
	}

	if q.totalsCount {
		var total int64
		if err := exec.Get(ctx, &total, assembled.CountSQL, assembled.CountArgs...); err != nil {
			return nil, err
		}
		var totalPages int64
		if total > 0 {
			totalPages = (total + int64(q.params.PageSize) - 1) / int64(q.params.PageSize)
		}
		page.Total = &total
		page.TotalPages = &totalPages
	}

	if err := exec.Select(ctx, &page.Records, assembled.SelectSQL, assembled.SelectArgs...); err != nil {
		return nil, err
	}
	return page, nil
}
