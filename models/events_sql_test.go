package models

import "testing"

// Usernames are bound into a LIKE pattern, so %, _ and backslash in them
// must come out as literals or "a%" would match every participant list.
func TestEscapeLike(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"alice", "alice"},
		{"a%", `a\%`},
		{"a_b", `a\_b`},
		{`a\b`, `a\\b`},
		{`%_\`, `\%\_\\`},
	}
	for _, c := range cases {
		if got := escapeLike(c.in); got != c.want {
			t.Errorf("escapeLike(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
