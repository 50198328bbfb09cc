package paginate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanSearchTerm(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "john", "john"},
		{"trims and collapses whitespace", "  john   smith ", "john smith"},
		{"strips quotes and metacharacters", `jo'hn"; DROP`, "john DROP"},
		{"keeps hyphens", "jean-luc", "jean-luc"},
		{"keeps unicode letters", "müller", "müller"},
		{"empty", "", ""},
		{"only junk", "';--/*", "--"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanSearchTerm(tc.in))
		})
	}
}

func TestCleanSearchTermTruncates(t *testing.T) {
	long := strings.Repeat("a", 250)
	assert.Len(t, CleanSearchTerm(long), MaxFieldLength)
}

func TestValidIdentifier(t *testing.T) {
	valid := []string{
		"name", "first_name", "table_123", "_private",
		"public.users", "public.users.id",
	}
	for _, name := range valid {
		assert.True(t, ValidIdentifier(name), "%q should be valid", name)
	}

	invalid := []string{
		"",
		"1name",
		"users.1col",
		"name;",
		"name--",
		"name/*",
		"na'me",
		`na\me`,
		"name column",
		".users",
		"users.",
		"a..b",
		"col$",
		"col@db",
	}
	for _, name := range invalid {
		assert.False(t, ValidIdentifier(name), "%q should be invalid", name)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"name"`, QuoteIdentifier("name"))
	assert.Equal(t, `"public"."users"`, QuoteIdentifier("public.users"))
	assert.Equal(t, `"public"."users"."id"`, QuoteIdentifier("public.users.id"))
	// Embedded quotes double, so the identifier can never close itself.
	assert.Equal(t, `"user""name"`, QuoteIdentifier(`user"name`))
}
