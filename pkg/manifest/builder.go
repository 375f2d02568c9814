package manifest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dtnitsch/fontfallback/pkg/fetcher"
)

// ErrFetchSkipped marks a URL whose stylesheet could not be downloaded.
var ErrFetchSkipped = errors.New("stylesheet download skipped")

type job struct {
	index int
	url   string
}

type result struct {
	index int
	sheet fetcher.Stylesheet
}

// Builder produces a manifest by downloading stylesheets ahead of time.
type Builder struct {
	source  fetcher.Source
	workers int
	log     *zap.Logger
}

func NewBuilder(source fetcher.Source, workers int, log *zap.Logger) *Builder {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{source: source, workers: workers, log: log.Named("manifest")}
}

// Build fetches every distinct URL, several URLs at a time. Entries keep the
// order of urls. URLs whose download failed are left out and reported in
// the returned error; the manifest is usable either way.
func (b *Builder) Build(ctx context.Context, urls []string) (Manifest, error) {
	distinct := dedupe(urls)
	jobs := make(chan job, len(distinct))
	results := make(chan result, len(distinct))

	b.log.Info("Starting stylesheet fetch phase", zap.Int("url_count", len(distinct)), zap.Int("workers", b.workers))
	var wg sync.WaitGroup
	for w := 1; w <= b.workers; w++ {
		wg.Add(1)
		go b.worker(ctx, w, &wg, jobs, results)
	}
	for i, u := range distinct {
		jobs <- job{index: i, url: u}
	}
	close(jobs)

	wg.Wait()
	close(results)

	sheets := make([]fetcher.Stylesheet, len(distinct))
	for r := range results {
		sheets[r.index] = r.sheet
	}

	m := make(Manifest, 0, len(distinct))
	var err error
	for i, u := range distinct {
		if !sheets[i].OK {
			err = multierr.Append(err, fmt.Errorf("%s: %w", u, ErrFetchSkipped))
			continue
		}
		m = append(m, Entry{URL: u, Content: sheets[i].Text})
	}
	b.log.Info("All stylesheet fetches finished", zap.Int("entries", len(m)), zap.Int("failed", len(multierr.Errors(err))))
	return m, err
}

func (b *Builder) worker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan job, results chan<- result) {
	defer wg.Done()
	for j := range jobs {
		b.log.Debug("Fetching stylesheet", zap.Int("worker_id", id), zap.String("url", j.url))
		results <- result{index: j.index, sheet: b.source.Fetch(ctx, j.url)}
	}
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
