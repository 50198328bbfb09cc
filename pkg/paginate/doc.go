// Package paginate turns a flat set of untrusted request parameters
// (pagination, search, sort, date range, column filters) into a safe,
// parameterized SELECT plus an optional row-count query.
//
// Column references are validated against an allowlist derived from the
// record struct and a denylist of database system identifiers; scalar
// values are always bound positionally, never interpolated. Malformed or
// unauthorized input degrades the affected clause to a no-op instead of
// failing the request.
//
// Query construction is purely functional: a ColumnSpec is built once per
// record type and is safe for unsynchronized concurrent reads, while every
// other value is request-local. Execution happens through the Executor
// boundary, which is implemented by an external database client.
package paginate
