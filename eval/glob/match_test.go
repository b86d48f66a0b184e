package glob

import "testing"

func TestHasWildcard(t *testing.T) {
	cases := map[string]bool{
		"Foo.cs":     false,
		"*.cs":       true,
		"src/**/*.cs": true,
		"a?c.txt":    true,
	}
	for s, want := range cases {
		if got := HasWildcard(s); got != want {
			t.Errorf("HasWildcard(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, candidate string
		want               bool
	}{
		{"*.cs", "Foo.cs", true},
		{"*.cs", "Foo.txt", false},
		{"src/*.cs", "src/Foo.cs", true},
		{"src/*.cs", "src/sub/Foo.cs", false},
		{"src/**/*.cs", "src/sub/Foo.cs", true},
		{"src/**/*.cs", "src/sub/deeper/Foo.cs", true},
		{"src/**/*.cs", "src/Foo.cs", true},
		{"a?c.txt", "abc.txt", true},
		{"a?c.txt", "abbc.txt", false},
		{"**", "anything/at/all.cs", true},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.candidate); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.candidate, got, c.want)
		}
	}
}
