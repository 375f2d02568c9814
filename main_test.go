package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dtnitsch/fontfallback/pkg/manifest"
	"github.com/dtnitsch/fontfallback/pkg/provider"
	"github.com/dtnitsch/fontfallback/pkg/storage"
)

const robotoURL = "https://fonts.googleapis.com/css2?family=Roboto&display=swap"

const robotoCSS = `@font-face {
  font-family: 'Roboto';
  font-style: normal;
  font-weight: 400;
  src: url(https://fonts.gstatic.com/s/roboto/v30/roboto.woff2) format('woff2');
}
`

// run executes the app with a config path that does not exist, so defaults
// apply, and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	base := []string{"fontfallback", "--config", filepath.Join(t.TempDir(), "none.yaml"), "--quiet"}
	err := app.Run(append(base, args...))
	return out.String(), err
}

func writeManifest(t *testing.T, m manifest.Manifest) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), manifest.DefaultFileName)
	if err := manifest.Save(&storage.Storage{}, path, m); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return path
}

func TestOverrideCommand_FromManifest(t *testing.T) {
	path := writeManifest(t, manifest.Manifest{{URL: robotoURL, Content: robotoCSS}})

	out, err := run(t, "override", "--manifest", path, "--url", robotoURL)
	if err != nil {
		t.Fatalf("override error = %v", err)
	}
	for _, want := range []string{`font-family: "roboto-fallback";`, "ascent-override: 92.77%;", `src: local("Arial");`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectCommand_FromManifest(t *testing.T) {
	path := writeManifest(t, manifest.Manifest{{URL: robotoURL, Content: robotoCSS}})

	out, err := run(t, "inspect", "--manifest", path, "--url", robotoURL)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{"provider: true", "source: manifest", "- woff2", "override_applied: true", "fallback_name: roboto-fallback"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestManifestBuildAndExport(t *testing.T) {
	var mu sync.Mutex
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.Header.Get("User-Agent"))
		mu.Unlock()
		fmt.Fprint(w, robotoCSS)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "fonts.db")
	outPath := filepath.Join(dir, "out", manifest.DefaultFileName)
	url := srv.URL + "/fonts.css"

	if _, err := run(t, "--database", dbPath, "manifest", "build", "--url", url, "--out", outPath, "--workers", "2"); err != nil {
		t.Fatalf("manifest build error = %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(agents) != 1 || agents[0] != provider.ModernUserAgent {
		t.Errorf("agents = %q, want one modern request", agents)
	}

	m, err := manifest.Load(&storage.Storage{}, outPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Lookup(url) != robotoCSS {
		t.Errorf("manifest content = %q", m.Lookup(url))
	}

	exportPath := filepath.Join(dir, "export.json")
	if _, err := run(t, "--database", dbPath, "manifest", "export", "--out", exportPath); err != nil {
		t.Fatalf("manifest export error = %v", err)
	}
	exported, err := manifest.Load(&storage.Storage{}, exportPath)
	if err != nil {
		t.Fatalf("Load() export error = %v", err)
	}
	if len(exported) != 1 || exported[0].URL != url {
		t.Errorf("exported manifest = %+v", exported)
	}

	listing, err := run(t, "--database", dbPath, "db", "list")
	if err != nil {
		t.Fatalf("db list error = %v", err)
	}
	if !strings.Contains(listing, url) || !strings.Contains(listing, "woff2") {
		t.Errorf("listing missing stylesheet:\n%s", listing)
	}

	shown, err := run(t, "--database", dbPath, "db", "show", "--url", url)
	if err != nil {
		t.Fatalf("db show error = %v", err)
	}
	if shown != robotoCSS {
		t.Errorf("db show = %q, want %q", shown, robotoCSS)
	}
	if _, err := run(t, "--database", dbPath, "db", "show", "--url", robotoURL); err == nil {
		t.Error("db show succeeded for a URL that was never stored")
	}
}

func TestInlineCommand(t *testing.T) {
	path := writeManifest(t, manifest.Manifest{{URL: robotoURL, Content: robotoCSS}})
	dir := t.TempDir()
	in := filepath.Join(dir, "index.html")
	page := `<html><head><link rel="stylesheet" href="https://fonts.googleapis.com/css2?family=Roboto&amp;display=swap"></head><body></body></html>`
	if err := os.WriteFile(in, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "inline", "--in", in, "--manifest", path)
	if err != nil {
		t.Fatalf("inline error = %v", err)
	}
	if !strings.Contains(out, "<style data-href=") || !strings.Contains(out, "roboto-fallback") {
		t.Errorf("page not inlined:\n%s", out)
	}
}

func TestFetchCommand_RejectsMalformedURL(t *testing.T) {
	if _, err := run(t, "fetch", "--url", "not a url"); err == nil {
		t.Error("fetch accepted a malformed URL")
	}
}

func TestOverrideCommands_DocumentMetricsFlag(t *testing.T) {
	app := newApp()
	for _, name := range []string{"override", "inspect", "inline"} {
		cmd := app.Command(name)
		if cmd == nil {
			t.Fatalf("command %q not registered", name)
		}
		if !strings.Contains(cmd.Description, "--metrics") || !strings.Contains(cmd.Description, "Open Sans") {
			t.Errorf("%s description does not explain the metrics table:\n%s", name, cmd.Description)
		}
	}
}

func TestOverrideCommand_UnknownFamilyNeedsMetricsFile(t *testing.T) {
	css := "@font-face { font-family: 'Comic Neue'; }"
	url := "https://fonts.googleapis.com/css2?family=Comic+Neue"
	path := writeManifest(t, manifest.Manifest{{URL: url, Content: css}})

	out, err := run(t, "override", "--manifest", path, "--url", url)
	if err != nil {
		t.Fatalf("override error = %v", err)
	}
	if out != "" {
		t.Errorf("override without a metrics record printed:\n%s", out)
	}

	table := filepath.Join(t.TempDir(), "metrics.json")
	data := `{"comicneue": {"category": "handwriting", "ascentOverride": 0.9, "descentOverride": 0.25, "lineGapOverride": 0}}`
	if err := os.WriteFile(table, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "--metrics", table, "override", "--manifest", path, "--url", url)
	if err != nil {
		t.Fatalf("override error = %v", err)
	}
	if !strings.Contains(out, `"comic-neue-fallback"`) || !strings.Contains(out, "ascent-override: 90.00%;") {
		t.Errorf("override with --metrics missing block:\n%s", out)
	}
}
