package provider

import "testing"

func TestRecognizes(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"css endpoint", "https://fonts.googleapis.com/css?family=Roboto", true},
		{"css2 endpoint", "https://fonts.googleapis.com/css2?family=Inter:wght@400;700", true},
		{"other host", "https://example.com/fonts.css", false},
		{"http scheme", "http://fonts.googleapis.com/css?family=Roboto", false},
		{"prefix not at start", "https://proxy.example/https://fonts.googleapis.com/css", false},
		{"empty", "", false},
	}

	p := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Recognizes(tt.url); got != tt.want {
				t.Errorf("Recognizes(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestRecognizes_CustomPrefix(t *testing.T) {
	p := Provider{Prefix: "http://127.0.0.1:8080/css"}
	if !p.Recognizes("http://127.0.0.1:8080/css?family=Lato") {
		t.Error("custom prefix not recognized")
	}
	if p.Recognizes(GoogleFontsPrefix + "?family=Lato") {
		t.Error("default prefix recognized by custom provider")
	}
}
