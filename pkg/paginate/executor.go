package paginate

import "context"

// Executor is the boundary to the external database client. Implementations
// own connection management, transaction context, and row mapping; the
// engine only hands over SQL text and bind values.
type Executor interface {
	// Select runs a query and scans all result rows into dest, a pointer
	// to a slice of the record type.
	Select(ctx context.Context, dest any, query string, args ...any) error
	// Get runs a query expected to produce a single value (such as a row
	// count) and scans it into dest.
	Get(ctx context.Context, dest any, query string, args ...any) error
}
