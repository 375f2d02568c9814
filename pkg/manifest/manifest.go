package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/dtnitsch/fontfallback/pkg/storage"
)

// DefaultFileName is the name the build step writes the manifest under.
const DefaultFileName = "font-manifest.json"

// Entry is one pre-fetched stylesheet.
type Entry struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Manifest is the ordered list of pre-fetched stylesheets. URLs are expected
// to be unique but this is not enforced.
type Manifest []Entry

// Lookup returns the content of the first entry whose URL equals url exactly,
// or "" if there is none. It never modifies the manifest.
func Lookup(url string, m Manifest) string {
	for _, e := range m {
		if e.URL == url {
			return e.Content
		}
	}
	return ""
}

// Lookup is the method form of the package-level Lookup.
func (m Manifest) Lookup(url string) string {
	return Lookup(url, m)
}

// Parse decodes a JSON manifest.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("error decoding manifest: %w", err)
	}
	return m, nil
}

// Load reads a manifest file.
func Load(s *storage.Storage, path string) (Manifest, error) {
	if !s.HasFile(path) {
		return nil, fmt.Errorf("manifest %s does not exist", path)
	}
	data, err := s.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Save writes m as indented JSON.
func Save(s *storage.Storage, path string, m Manifest) error {
	if m == nil {
		m = Manifest{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling manifest: %w", err)
	}
	if err := s.SaveFile(path, data); err != nil {
		return fmt.Errorf("error saving manifest: %w", err)
	}
	return nil
}
