package util

import "testing"

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Jane Doe", "janedoe"},
		{"  JANE   DOE ", "janedoe"},
		{"O'Hara", "ohara"},
		{"Mary-Anne", "maryanne"},
		{"J. D.", "jd"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeKey(tc.in); got != tc.want {
			t.Fatalf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := CollapseWhitespace("  Jane \n\t Doe \n ")
	if got != "Jane Doe" {
		t.Fatalf("expected collapsed text, got %q", got)
	}

	if CollapseWhitespace("   ") != "" {
		t.Fatalf("expected empty result for blank input")
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("abcdef", 4); got != "abcd..." {
		t.Fatalf("expected truncated string, got %q", got)
	}
	if got := TruncateString("abc", 4); got != "abc" {
		t.Fatalf("expected unchanged string, got %q", got)
	}
}

func TestContains(t *testing.T) {
	slice := []string{"NEW", "BUSTY"}
	if !Contains(slice, "NEW") {
		t.Fatalf("expected slice to contain NEW")
	}
	if Contains(slice, "PETITE") {
		t.Fatalf("did not expect slice to contain PETITE")
	}
}
