package paginate

import (
	"strings"
	"unicode"
)

// CleanSearchTerm normalizes free-text search input. Characters outside
// letters, digits, spaces, and hyphens are stripped, runs of whitespace
// collapse to a single space, and the result is truncated to
// MaxFieldLength runes.
func CleanSearchTerm(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Join(strings.Fields(b.String()), " ")
	return truncate(cleaned, MaxFieldLength)
}

// ValidIdentifier reports whether name is safe to interpolate into SQL
// text as a column reference. Only ASCII letters, digits, underscores, and
// dots are accepted; each dot-separated part must be non-empty and must
// not start with a digit. SQL metacharacters (`;`, `--`, `/*`, quotes,
// backslashes) are rejected by construction.
func ValidIdentifier(name string) bool {
	if name == "" || strings.Contains(name, "..") ||
		strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		for i, r := range part {
			switch {
			case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			case r >= '0' && r <= '9':
				if i == 0 {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}

// QuoteIdentifier double-quotes each dot-separated part of an identifier,
// doubling embedded quotes. Identifiers cannot be parameter-bound, so
// every one that reaches SQL text goes through validation plus quoting.
func QuoteIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
