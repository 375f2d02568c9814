// Package metrics holds the per-font metric table and turns a font family
// name into ascent/descent/line-gap override percentages.
package metrics

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the typographic category of a font family.
type Category string

const (
	CategorySerif       Category = "serif"
	CategorySansSerif   Category = "sans-serif"
	CategoryMonospace   Category = "monospace"
	CategoryDisplay     Category = "display"
	CategoryHandwriting Category = "handwriting"
)

const (
	DefaultSerifFont     = "Times New Roman"
	DefaultSansSerifFont = "Arial"
)

var (
	// ErrUnknownFont is returned when a family has no record in the table.
	ErrUnknownFont = errors.New("unknown font")
	// ErrMalformedRecord is returned when a family's record is null or lacks
	// one of the override ratios.
	ErrMalformedRecord = errors.New("malformed font metrics record")
)

//go:embed data/google-font-metrics.json
var defaultTableJSON []byte

// Record is the metric data for one font family. Override values are
// fractions of the em square.
type Record struct {
	Category        Category `json:"category"`
	AscentOverride  float64  `json:"ascentOverride"`
	DescentOverride float64  `json:"descentOverride"`
	LineGapOverride float64  `json:"lineGapOverride"`

	// ratio fields absent from the decoded JSON
	missing []string
}

// UnmarshalJSON decodes a record and remembers which ratios were absent so
// Lookup can reject it.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category        Category `json:"category"`
		AscentOverride  *float64 `json:"ascentOverride"`
		DescentOverride *float64 `json:"descentOverride"`
		LineGapOverride *float64 `json:"lineGapOverride"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record{Category: raw.Category}
	for _, f := range []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"ascentOverride", raw.AscentOverride, &r.AscentOverride},
		{"descentOverride", raw.DescentOverride, &r.DescentOverride},
		{"lineGapOverride", raw.LineGapOverride, &r.LineGapOverride},
	} {
		if f.src == nil {
			r.missing = append(r.missing, f.name)
			continue
		}
		*f.dst = *f.src
	}
	return nil
}

// Table maps normalized font names to their metrics. A nil entry is a record
// given as null. It is never mutated after loading and may be shared between
// goroutines.
type Table map[string]*Record

// Fallbacks names the locally installed font used for each category.
type Fallbacks struct {
	Serif     string `yaml:"serif"`
	SansSerif string `yaml:"sans_serif"`
}

// DefaultFallbacks returns Times New Roman for serif faces and Arial for the rest.
func DefaultFallbacks() Fallbacks {
	return Fallbacks{Serif: DefaultSerifFont, SansSerif: DefaultSansSerifFont}
}

// For returns the fallback font for a category.
func (f Fallbacks) For(c Category) string {
	if c == CategorySerif {
		return f.Serif
	}
	return f.SansSerif
}

// NormalizeKey lowercases and trims name and drops every space.
func NormalizeKey(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(name)), " ", "")
}

// LoadTable decodes a JSON metrics table.
func LoadTable(r io.Reader) (Table, error) {
	var t Table
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode metrics table: %w", err)
	}
	return t, nil
}

// LoadTableFile reads a JSON metrics table from path.
func LoadTableFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics table: %w", err)
	}
	defer f.Close()
	return LoadTable(f)
}

// DefaultTable returns the table compiled into the binary.
func DefaultTable() Table {
	var t Table
	if err := json.Unmarshal(defaultTableJSON, &t); err != nil {
		panic(fmt.Sprintf("embedded metrics table is invalid: %v", err))
	}
	return t
}

// Lookup returns the record for a family name. A missing record wraps
// ErrUnknownFont, a null or incomplete one wraps ErrMalformedRecord.
func (t Table) Lookup(family string) (Record, error) {
	rec, ok := t[NormalizeKey(family)]
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownFont, family)
	}
	if rec == nil {
		return Record{}, fmt.Errorf("%w: %q is null", ErrMalformedRecord, family)
	}
	if len(rec.missing) > 0 {
		return Record{}, fmt.Errorf("%w: %q lacks %s", ErrMalformedRecord, family, strings.Join(rec.missing, ", "))
	}
	return *rec, nil
}

// Override holds the computed percentages, formatted with two decimals.
type Override struct {
	Ascent       string `yaml:"ascent" json:"ascent"`
	Descent      string `yaml:"descent" json:"descent"`
	LineGap      string `yaml:"line_gap" json:"lineGap"`
	FallbackFont string `yaml:"fallback_font" json:"fallbackFont"`
}

// Calculator computes overrides against a fixed table and fallback set.
type Calculator struct {
	table     Table
	fallbacks Fallbacks
}

func NewCalculator(table Table, fallbacks Fallbacks) *Calculator {
	return &Calculator{table: table, fallbacks: fallbacks}
}

// Compute returns the override values for family. A family missing from the
// table yields an error wrapping ErrUnknownFont, a malformed record one
// wrapping ErrMalformedRecord.
func (c *Calculator) Compute(family string) (Override, error) {
	rec, err := c.table.Lookup(family)
	if err != nil {
		return Override{}, err
	}
	return Override{
		Ascent:       Percent(rec.AscentOverride),
		Descent:      Percent(rec.DescentOverride),
		LineGap:      Percent(rec.LineGapOverride),
		FallbackFont: c.fallbacks.For(rec.Category),
	}, nil
}

// ComputeOverride is Compute with the default fallbacks.
func ComputeOverride(family string, table Table) (Override, error) {
	return NewCalculator(table, DefaultFallbacks()).Compute(family)
}

// Percent scales ratio to a percentage with two decimals, rounding half away
// from zero: 0.905 -> "90.50".
func Percent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(2)
}
