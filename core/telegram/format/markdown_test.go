package format

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	cases := map[string]string{
		"plain":        "plain",
		"snake_case":   `snake\_case`,
		"*bold* [x]":   `\*bold\* \[x]`,
		"a`b":          "a\\`b",
		"Анна_Ким":     `Анна\_Ким`,
	}
	for in, want := range cases {
		if got := EscapeMarkdown(in); got != want {
			t.Errorf("EscapeMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}
