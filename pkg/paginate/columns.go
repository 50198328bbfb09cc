package paginate

import (
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"
)

// ColumnType tags a column with the scalar kind used to coerce dynamic
// filter values.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnBoolean
	ColumnTimestamp
)

// blockedIdentifierPatterns is the denylist backstop: substrings that mark
// a column reference as a database system identifier regardless of what the
// record shape declares. Matching is case-insensitive.
var blockedIdentifierPatterns = []string{
	// System schemas and tables
	"pg_",
	"information_schema.",
	// System pseudo-columns
	"oid",
	"tableoid",
	"xmin",
	"xmax",
	"cmin",
	"cmax",
	"ctid",
	// Other sensitive prefixes
	"pg_catalog",
	"pg_toast",
	"pg_temp",
	"pg_internal",
}

// ColumnSpec is the immutable set of queryable columns derived from a
// record shape. Build it once per record type and share it freely; it is
// never mutated after construction, so concurrent reads need no locking.
type ColumnSpec struct {
	types map[string]ColumnType
}

var timeType = reflect.TypeOf(time.Time{})

// ColumnsOf derives a ColumnSpec from a record struct (or pointer to one).
// Column names come from the `gorm` column tag when present, then the
// `json` tag, then the snake_case form of the field name. Fields tagged
// `json:"-"` and unexported fields are excluded; anonymous embedded
// structs are flattened.
func ColumnsOf(model any) *ColumnSpec {
	spec := &ColumnSpec{types: make(map[string]ColumnType)}
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Kind() == reflect.Struct {
		collectColumns(t, spec.types)
	}
	return spec
}

func collectColumns(t reflect.Type, out map[string]ColumnType) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		ft := field.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if field.Anonymous && ft.Kind() == reflect.Struct && ft != timeType {
			collectColumns(ft, out)
			continue
		}
		name := columnName(field)
		if name == "" {
			continue
		}
		out[name] = columnTypeOf(ft)
	}
}

func columnName(field reflect.StructField) string {
	if tag := field.Tag.Get("gorm"); tag != "" {
		for _, part := range strings.Split(tag, ";") {
			if strings.HasPrefix(part, "column:") {
				return strings.TrimPrefix(part, "column:")
			}
		}
	}
	if tag := field.Tag.Get("json"); tag != "" {
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return snakeCase(field.Name)
}

func columnTypeOf(t reflect.Type) ColumnType {
	switch {
	case t.Kind() == reflect.Bool:
		return ColumnBoolean
	case t == timeType:
		return ColumnTimestamp
	default:
		return ColumnText
	}
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Has reports whether the record shape declares the column.
func (s *ColumnSpec) Has(name string) bool {
	_, ok := s.types[name]
	return ok
}

// Type returns the tagged type of a declared column.
func (s *ColumnSpec) Type(name string) (ColumnType, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Allowed reports whether a column reference may appear in generated SQL.
// The column must be declared by the record shape, be a syntactically valid
// identifier, and not match the system-identifier denylist. The allowlist
// check runs first; the denylist is a backstop that rejects system columns
// even when a record shape (incorrectly) declares one.
func (s *ColumnSpec) Allowed(name string) bool {
	return s.Has(name) && ValidIdentifier(name) && !identifierDenied(name)
}

// Columns returns the declared column names in sorted order.
func (s *ColumnSpec) Columns() []string {
	columns := make([]string, 0, len(s.types))
	for name := range s.types {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}

func identifierDenied(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range blockedIdentifierPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
