package rpmts

import "testing"

func TestParseLabelKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"name(1:2.3-4)", "name-2.3-4"},
		{"name(2.3-4)", "name-2.3-4"},
		{"name", "name"},
		{"foo-1.0-1.x86_64", "foo-1.0-1.x86_64"},
	}

	for _, c := range cases {
		got, err := parseLabelKey(c.in)
		if err != nil {
			t.Errorf("parseLabelKey(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseLabelKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseLabelKeyErrors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"name((bad)", "extra '(' in package label"},
		{"name)bad", "missing '(' in package label"},
		{"name(bad", "missing ')' in package label"},
	}

	for _, c := range cases {
		_, err := parseLabelKey(c.in)
		if err == nil {
			t.Errorf("parseLabelKey(%q): expected error", c.in)
			continue
		}
		if got := err.Error(); len(got) < len(c.want) || got[:len(c.want)] != c.want {
			t.Errorf("parseLabelKey(%q) error = %q, want prefix %q", c.in, got, c.want)
		}
	}
}
