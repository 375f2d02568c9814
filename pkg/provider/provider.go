// Package provider classifies stylesheet URLs and holds the client signatures
// used when talking to the font stylesheet provider.
package provider

import "strings"

const (
	// GoogleFontsPrefix is the URL prefix of stylesheets served by Google Fonts.
	GoogleFontsPrefix = "https://fonts.googleapis.com/css"

	// LegacyUserAgent makes the provider answer with woff/ttf sources.
	LegacyUserAgent = "Mozilla/5.0 (Windows NT 10.0; Trident/7.0; rv:11.0) like Gecko"
	// ModernUserAgent makes the provider answer with woff2 sources.
	ModernUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/83.0.4103.61 Safari/537.36"
)

// Provider identifies a font stylesheet service by URL prefix.
type Provider struct {
	Prefix string
}

// Default returns the Google Fonts provider.
func Default() Provider {
	return Provider{Prefix: GoogleFontsPrefix}
}

// Recognizes reports whether url is served by the provider.
func (p Provider) Recognizes(url string) bool {
	return strings.HasPrefix(url, p.Prefix)
}
