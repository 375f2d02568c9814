package common

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  https://fonts.googleapis.com/css2?family=Inter  ", "https://fonts.googleapis.com/css2?family=Inter"},
		{"[fonts](https://fonts.googleapis.com/css?family=Lato)", "https://fonts.googleapis.com/css?family=Lato"},
		{"<https://example.com/a.css>", "https://example.com/a.css"},
		{"https://example.com/a.css,", "https://example.com/a.css"},
	}
	for _, tt := range tests {
		if got := SanitizeURL(tt.in); got != tt.want {
			t.Errorf("SanitizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeAndValidateURLs(t *testing.T) {
	in := []string{
		"https://fonts.googleapis.com/css2?family=Open+Sans:wght@400;700&display=swap",
		"https://fonts.googleapis.com/css?family=Roboto|Lato",
		"http://localhost:8080/fonts.css",
		"ftp://example.com/a.css",
		"https://exa mple.com/a.css",
		"not a url",
		"",
	}
	valid, invalid := SanitizeAndValidateURLs(in)

	wantValid := []string{
		"https://fonts.googleapis.com/css2?family=Open+Sans:wght@400;700&display=swap",
		"https://fonts.googleapis.com/css?family=Roboto|Lato",
		"http://localhost:8080/fonts.css",
	}
	if diff := cmp.Diff(wantValid, valid); diff != "" {
		t.Errorf("valid mismatch (-want +got):\n%s", diff)
	}
	if len(invalid) != 4 {
		t.Errorf("invalid = %q, want 4 entries", invalid)
	}
}

func TestNonEmpty(t *testing.T) {
	got := NonEmpty([]string{" https://fonts.googleapis.com/css?family=Roboto:400,700 ", "", "  ", "https://c.example/css"})
	want := []string{"https://fonts.googleapis.com/css?family=Roboto:400,700", "https://c.example/css"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NonEmpty() mismatch (-want +got):\n%s", diff)
	}
}
