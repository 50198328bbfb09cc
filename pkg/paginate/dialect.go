package paginate

import "strconv"

// Dialect abstracts the placeholder and quoting syntax of the target
// database. Postgres is the primary target; SQLite exists for the test
// path and for callers running against embedded databases.
type Dialect interface {
	// Placeholder returns the bind placeholder for a 1-based position.
	Placeholder(position int) string
	// QuoteIdentifier quotes an identifier for interpolation into SQL text.
	QuoteIdentifier(name string) string
	// Numbered reports whether placeholders reference argument positions
	// and may therefore be repeated to re-bind the same value.
	Numbered() bool
}

// Postgres emits $1-style numbered placeholders.
type Postgres struct{}

func (Postgres) Placeholder(position int) string { return "$" + strconv.Itoa(position) }

func (Postgres) QuoteIdentifier(name string) string { return QuoteIdentifier(name) }

func (Postgres) Numbered() bool { return true }

// SQLite emits anonymous ? placeholders, bound strictly in order.
type SQLite struct{}

func (SQLite) Placeholder(int) string { return "?" }

func (SQLite) QuoteIdentifier(name string) string { return QuoteIdentifier(name) }

func (SQLite) Numbered() bool { return false }
