package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dtnitsch/fontfallback/pkg/provider"
)

// uaServer answers with a body chosen by the request's User-Agent and
// records the agents it saw, in arrival order.
type uaServer struct {
	mu     sync.Mutex
	agents []string
	bodies map[string]string
	status int
}

func (s *uaServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ua := r.Header.Get("User-Agent")
	s.mu.Lock()
	s.agents = append(s.agents, ua)
	s.mu.Unlock()
	if s.status != 0 {
		w.WriteHeader(s.status)
	}
	_, _ = w.Write([]byte(s.bodies[ua]))
}

func (s *uaServer) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.agents...)
}

func newUAServer(t *testing.T, status int) (*uaServer, *httptest.Server) {
	t.Helper()
	h := &uaServer{
		status: status,
		bodies: map[string]string{
			provider.LegacyUserAgent: "/* legacy */ src: url(a.woff) format('woff');",
			provider.ModernUserAgent: "/* modern */ src: url(a.woff2) format('woff2');",
		},
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, srv
}

func TestFetch_ProviderURL(t *testing.T) {
	h, srv := newUAServer(t, 0)
	f := NewFetcher(WithProvider(provider.Provider{Prefix: srv.URL + "/css"}))

	got := f.Fetch(context.Background(), srv.URL+"/css2?family=Roboto")
	if !got.OK {
		t.Fatal("Fetch() failed, want OK")
	}
	want := h.bodies[provider.LegacyUserAgent] + h.bodies[provider.ModernUserAgent]
	if got.String() != want {
		t.Errorf("Fetch() = %q, want %q", got.String(), want)
	}

	agents := h.seen()
	if len(agents) != 2 || agents[0] != provider.LegacyUserAgent || agents[1] != provider.ModernUserAgent {
		t.Errorf("request order = %q, want legacy then modern", agents)
	}
}

func TestFetch_GenericURL(t *testing.T) {
	h, srv := newUAServer(t, 0)
	f := NewFetcher()

	got := f.Fetch(context.Background(), srv.URL+"/styles.css")
	if !got.OK {
		t.Fatal("Fetch() failed, want OK")
	}
	if want := h.bodies[provider.ModernUserAgent]; got.Text != want {
		t.Errorf("Fetch() = %q, want %q", got.Text, want)
	}
	if agents := h.seen(); len(agents) != 1 || agents[0] != provider.ModernUserAgent {
		t.Errorf("requests = %q, want one modern request", agents)
	}
}

func TestFetch_NonSuccessStatusStillRead(t *testing.T) {
	h, srv := newUAServer(t, http.StatusNotFound)
	f := NewFetcher()

	got := f.Fetch(context.Background(), srv.URL+"/missing.css")
	if !got.OK || got.Text != h.bodies[provider.ModernUserAgent] {
		t.Errorf("Fetch() = %+v, want body of 404 response", got)
	}
}

type failingDoer struct {
	calls   int
	failOn  int
	agents  []string
	handler http.Handler
}

func (d *failingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls++
	d.agents = append(d.agents, req.Header.Get("User-Agent"))
	if d.calls == d.failOn {
		return nil, errors.New("connection reset by peer")
	}
	rec := httptest.NewRecorder()
	d.handler.ServeHTTP(rec, req)
	return rec.Result(), nil
}

func TestFetch_FailureIsSoft(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		failOn    int
		wantCalls int
	}{
		{name: "provider legacy request fails", url: provider.GoogleFontsPrefix + "?family=Lato", failOn: 1, wantCalls: 1},
		{name: "provider modern request fails", url: provider.GoogleFontsPrefix + "?family=Lato", failOn: 2, wantCalls: 2},
		{name: "generic request fails", url: "https://cdn.example.com/fonts.css", failOn: 1, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &failingDoer{failOn: tt.failOn, handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("body"))
			})}
			core, logs := observer.New(zapcore.WarnLevel)
			f := NewFetcher(WithClient(d), WithLogger(zap.New(core)))

			got := f.Fetch(context.Background(), tt.url)
			if got.OK || got.String() != "" {
				t.Errorf("Fetch() = %+v, want failed empty stylesheet", got)
			}
			if d.calls != tt.wantCalls {
				t.Errorf("made %d requests, want %d", d.calls, tt.wantCalls)
			}
			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("got %d warnings, want 1", len(entries))
			}
			if entries[0].ContextMap()["url"] != tt.url {
				t.Errorf("warning url = %v, want %q", entries[0].ContextMap()["url"], tt.url)
			}
		})
	}
}

func TestFetch_CustomUserAgents(t *testing.T) {
	d := &failingDoer{handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})}
	f := NewFetcher(WithClient(d), WithUserAgents("old-agent", "new-agent"))

	f.Fetch(context.Background(), provider.GoogleFontsPrefix+"?family=Lato")
	if len(d.agents) != 2 || d.agents[0] != "old-agent" || d.agents[1] != "new-agent" {
		t.Errorf("agents = %q", d.agents)
	}
}

func TestFetch_CanceledContext(t *testing.T) {
	_, srv := newUAServer(t, 0)
	f := NewFetcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := f.Fetch(ctx, srv.URL); got.OK {
		t.Errorf("Fetch() with canceled context = %+v, want failure", got)
	}
}
