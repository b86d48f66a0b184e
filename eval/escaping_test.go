package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	cases := []string{
		"plain text",
		"50%",
		"a;b",
		"$(Foo)",
		"@(Bar)",
		"it's a 'quote'",
	}
	for _, s := range cases {
		escaped := Escape(s)
		assert.Equal(t, s, Unescape(escaped))
	}
}

func TestEscapeLeavesPlainTextUnchanged(t *testing.T) {
	assert.Equal(t, "no special chars here", Escape("no special chars here"))
}

func TestEscapeEncodesReservedChars(t *testing.T) {
	assert.Equal(t, "100%25", Escape("100%"))
}

func TestIsEscaped(t *testing.T) {
	assert.True(t, IsEscaped("plain"))
	assert.True(t, IsEscaped(Escape("50%")))
	assert.False(t, IsEscaped("50%"))
	assert.False(t, IsEscaped("$(Foo)"))
}

func TestSplitSemicolons(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitSemicolons("a;b;c"))
	assert.Equal(t, []string{"a"}, SplitSemicolons("a"))
	assert.Equal(t, []string{"@(Foo->'a;b')"}, SplitSemicolons("@(Foo->'a;b')"))
}
