package fetch

import (
	"github.com/dtnitsch/fontfallback/pkg/metrics"
	"github.com/dtnitsch/fontfallback/pkg/stylesheet"
)

// Stylesheet sources reported by inspect.
const (
	SourceManifest = "manifest"
	SourceNetwork  = "network"
)

// FamilyReport is the override outcome for one family.
type FamilyReport struct {
	Family   string            `yaml:"family"`
	Fallback string            `yaml:"fallback_name"`
	Override *metrics.Override `yaml:"override,omitempty"`
	Error    string            `yaml:"error,omitempty"`
}

// InspectReport is the YAML document printed by the inspect command.
type InspectReport struct {
	URL             string            `yaml:"url"`
	Provider        bool              `yaml:"provider"`
	Source          string            `yaml:"source"`
	Available       bool              `yaml:"available"`
	SizeBytes       int               `yaml:"size_bytes"`
	Formats         []string          `yaml:"formats,omitempty"`
	Families        []FamilyReport    `yaml:"families,omitempty"`
	OverrideApplied bool              `yaml:"override_applied"`
	Faces           []stylesheet.Face `yaml:"faces,omitempty"`
	ParseError      string            `yaml:"parse_error,omitempty"`
}
