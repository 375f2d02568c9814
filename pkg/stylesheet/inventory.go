// Package stylesheet walks font stylesheets with a real CSS grammar and
// reports the @font-face rules they declare.
package stylesheet

import (
	"bytes"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Source is one entry of an @font-face src list.
type Source struct {
	Local  bool   `yaml:"local,omitempty"`
	Value  string `yaml:"value"`
	Format string `yaml:"format,omitempty"`
}

// Face is a parsed @font-face rule.
type Face struct {
	Family       string   `yaml:"family"`
	Style        string   `yaml:"style,omitempty"`
	Weight       string   `yaml:"weight,omitempty"`
	UnicodeRange string   `yaml:"unicode_range,omitempty"`
	Display      string   `yaml:"display,omitempty"`
	Sources      []Source `yaml:"sources,omitempty"`
}

// Inventory returns the @font-face rules of data in source order, including
// rules nested in @media or @supports blocks. The grammar is error tolerant;
// a non-EOF error is returned together with the faces read so far.
func Inventory(data []byte) ([]Face, error) {
	p := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)

	var faces []Face
	for {
		gt, _, name := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && err != io.EOF {
				return faces, err
			}
			return faces, nil
		case css.BeginAtRuleGrammar:
			if strings.EqualFold(string(name), "@font-face") {
				faces = append(faces, parseFace(p))
			}
		}
	}
}

func parseFace(p *css.Parser) Face {
	var f Face
	for {
		gt, _, name := p.Next()
		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return f
		case css.DeclarationGrammar:
			values := p.Values()
			switch strings.ToLower(string(name)) {
			case "font-family":
				f.Family = unquote(joinValues(values))
			case "font-style":
				f.Style = joinValues(values)
			case "font-weight":
				f.Weight = joinValues(values)
			case "unicode-range":
				f.UnicodeRange = joinValues(values)
			case "font-display":
				f.Display = joinValues(values)
			case "src":
				f.Sources = parseSources(values)
			}
		}
	}
}

// parseSources splits a src value into its comma separated entries.
func parseSources(values []css.Token) []Source {
	var sources []Source
	var cur *Source
	pending := "" // function awaiting its argument

	for _, v := range values {
		switch v.TokenType {
		case css.URLToken:
			sources = append(sources, Source{Value: urlValue(v.Data)})
			cur = &sources[len(sources)-1]
		case css.FunctionToken:
			pending = strings.ToLower(strings.TrimSuffix(string(v.Data), "("))
			switch pending {
			case "local":
				sources = append(sources, Source{Local: true})
				cur = &sources[len(sources)-1]
			case "url":
				sources = append(sources, Source{})
				cur = &sources[len(sources)-1]
			}
		case css.StringToken, css.IdentToken:
			if cur == nil {
				continue
			}
			switch pending {
			case "format":
				cur.Format = unquote(string(v.Data))
			case "url":
				cur.Value = unquote(string(v.Data))
			case "local":
				if cur.Value != "" {
					cur.Value += " "
				}
				cur.Value += unquote(string(v.Data))
			}
		case css.RightParenthesisToken:
			pending = ""
		case css.CommaToken:
			if pending == "" {
				cur = nil
			}
		}
	}
	return sources
}

// Formats returns the distinct src formats of faces in first-seen order.
func Formats(faces []Face) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range faces {
		for _, s := range f.Sources {
			if s.Format == "" || seen[s.Format] {
				continue
			}
			seen[s.Format] = true
			out = append(out, s.Format)
		}
	}
	return out
}

// Families returns the distinct families of faces in first-seen order.
func Families(faces []Face) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range faces {
		if f.Family == "" || seen[f.Family] {
			continue
		}
		seen[f.Family] = true
		out = append(out, f.Family)
	}
	return out
}

// joinValues renders declaration tokens with single spaces and a space after
// each comma.
func joinValues(values []css.Token) string {
	var sb strings.Builder
	space := false
	for _, v := range values {
		switch v.TokenType {
		case css.WhitespaceToken:
			space = true
			continue
		case css.CommaToken:
			sb.WriteByte(',')
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.Write(v.Data)
	}
	return sb.String()
}

func urlValue(data []byte) string {
	s := string(data)
	if len(s) >= 5 && strings.EqualFold(s[:4], "url(") && strings.HasSuffix(s, ")") {
		s = s[4 : len(s)-1]
	}
	return unquote(strings.TrimSpace(s))
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
