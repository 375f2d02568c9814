package parser

import (
	"regexp"
	"strings"
)

// fontFamilyPattern matches the declarations the provider emits. The key is
// matched literally: lowercase, one space after the colon.
var fontFamilyPattern = regexp.MustCompile(`font-family: ([^;]*)`)

// ExtractFontNames returns the distinct font-family values declared in css,
// in first-seen order. One layer of surrounding quotes is removed from each
// value. Malformed input yields a partial or empty result.
func ExtractFontNames(css string) []string {
	matches := fontFamilyPattern.FindAllStringSubmatch(css, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))

	for _, m := range matches {
		name := unquote(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// unquote strips a single leading and a single trailing quote. The two ends
// are handled independently, so mismatched quotes are removed too.
func unquote(s string) string {
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "'") {
		s = s[1:]
	}
	if strings.HasSuffix(s, `"`) || strings.HasSuffix(s, "'") {
		s = s[:len(s)-1]
	}
	return s
}
