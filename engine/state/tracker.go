// Package state persists resumable harvest progress for one collection:
// which URLs were parsed or failed, which sources are embedded, and the raw
// search dumps that let an interrupted run pick up where it stopped.
package state

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/wildscope-ai/wildscope/engine/domain"
)

const (
	configFile      = "config.json"
	parsedURLsFile  = "parsed_urls.json"
	failedURLsFile  = "failed_urls.json"
	parsedItemsFile = "parsed_news_items.csv"
	embeddedFile    = "embedded_sources.csv"
	serpFile        = "serp_results.json"
	tempDir         = "temp_files"
)

// EnsureCollection initializes a collection directory: config.json plus
// empty state files and the temp dir, created together. The presence of
// config.json marks the collection as initialized; an existing config is
// never rewritten, so calling this on a live collection is a no-op.
func EnsureCollection(dir string, cfg any) error {
	if err := os.MkdirAll(filepath.Join(dir, tempDir), 0o755); err != nil {
		return fmt.Errorf("state: ensure collection: %w", err)
	}
	if _, err := os.Stat(filepath.Join(dir, configFile)); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("state: ensure collection: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, parsedURLsFile), []string{}); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, failedURLsFile), []string{}); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, parsedItemsFile), [][]string{domain.NewsCSVColumns}); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, embeddedFile), [][]string{{"Sources"}}); err != nil {
		return err
	}
	// config.json goes last: its presence marks initialization complete
	return writeJSON(filepath.Join(dir, configFile), cfg)
}

// Tracker is the in-memory view of a collection's state files. Not safe for
// concurrent use; the harvest loop is sequential.
type Tracker struct {
	dir      string
	logger   *slog.Logger
	parsed   []string
	parsedAt map[string]struct{}
	failed   map[string]struct{}
	embedded map[string]struct{}
}

// Open loads a collection's state. Missing state files default to empty so
// a tracker can be opened on a bare directory.
func Open(dir string, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		dir:      dir,
		logger:   logger,
		parsedAt: make(map[string]struct{}),
		failed:   make(map[string]struct{}),
		embedded: make(map[string]struct{}),
	}

	var parsed []string
	if err := readJSON(filepath.Join(dir, parsedURLsFile), &parsed); err != nil {
		return nil, err
	}
	for _, u := range parsed {
		if _, ok := t.parsedAt[u]; !ok {
			t.parsedAt[u] = struct{}{}
			t.parsed = append(t.parsed, u)
		}
	}

	var failed []string
	if err := readJSON(filepath.Join(dir, failedURLsFile), &failed); err != nil {
		return nil, err
	}
	for _, u := range failed {
		t.failed[u] = struct{}{}
	}

	embedded, err := readCSVColumn(filepath.Join(dir, embeddedFile))
	if err != nil {
		return nil, err
	}
	for _, s := range embedded {
		t.embedded[s] = struct{}{}
	}
	return t, nil
}

// Dir returns the collection directory.
func (t *Tracker) Dir() string { return t.dir }

// AlreadyParsed reports whether the URL succeeded in a previous run; such
// records are skipped without a fetch.
func (t *Tracker) AlreadyParsed(url string) bool {
	_, ok := t.parsedAt[url]
	return ok
}

// MarkParsed records a successful scrape. The article row is appended to
// the parsed-items CSV first; only then does the URL join the parsed set on
// disk and leave the failed set. A crash between the two writes leaves the
// URL unparsed, so it is retried on the next run rather than skipped with
// its row missing.
func (t *Tracker) MarkParsed(url string, art domain.ParsedArticle) error {
	if err := appendCSVRow(filepath.Join(t.dir, parsedItemsFile), art.CSVRow()); err != nil {
		return err
	}

	if _, ok := t.parsedAt[url]; !ok {
		t.parsedAt[url] = struct{}{}
		t.parsed = append(t.parsed, url)
	}
	delete(t.failed, url)
	return writeJSON(filepath.Join(t.dir, parsedURLsFile), t.parsed)
}

// MarkFailed records an unsuccessful attempt. Failures are persisted in
// batch by SaveFailed.
func (t *Tracker) MarkFailed(url string) {
	t.failed[url] = struct{}{}
}

// FailedCount returns the current failed-set size.
func (t *Tracker) FailedCount() int { return len(t.failed) }

// SaveFailed writes the failed set to disk, sorted and deduplicated.
// Repeated failures of one URL across runs converge to a single entry.
func (t *Tracker) SaveFailed() error {
	urls := make([]string, 0, len(t.failed))
	for u := range t.failed {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return writeJSON(filepath.Join(t.dir, failedURLsFile), urls)
}

// IsEmbedded reports whether a source already went through the embed
// pipeline.
func (t *Tracker) IsEmbedded(source string) bool {
	_, ok := t.embedded[source]
	return ok
}

// MarkEmbedded adds a source to the embedded set.
func (t *Tracker) MarkEmbedded(source string) {
	t.embedded[source] = struct{}{}
}

// DropEmbedded removes a source from the embedded set, after its vectors
// were deleted.
func (t *Tracker) DropEmbedded(source string) {
	delete(t.embedded, source)
}

// SaveEmbedded rewrites the embedded-sources CSV from the set.
func (t *Tracker) SaveEmbedded() error {
	sources := make([]string, 0, len(t.embedded))
	for s := range t.embedded {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	rows := [][]string{{"Sources"}}
	for _, s := range sources {
		rows = append(rows, []string{s})
	}
	return writeCSV(filepath.Join(t.dir, embeddedFile), rows)
}

// ParsedItemsPath returns the path of the parsed-articles CSV.
func (t *Tracker) ParsedItemsPath() string {
	return filepath.Join(t.dir, parsedItemsFile)
}

// LoadSerpResults returns the combined search dump from a previous run, or
// nil when none exists.
func (t *Tracker) LoadSerpResults() ([]domain.SearchHit, error) {
	var hits []domain.SearchHit
	if err := readJSON(filepath.Join(t.dir, serpFile), &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

// SaveSerpResults writes the combined search dump.
func (t *Tracker) SaveSerpResults(hits []domain.SearchHit) error {
	return writeJSON(filepath.Join(t.dir, serpFile), hits)
}

// SaveTempWindow dumps one window's raw hits under temp_files, so a crashed
// search phase leaves per-window evidence behind.
func (t *Tracker) SaveTempWindow(period string, hits []domain.SearchHit) error {
	name := filepath.Join(t.dir, tempDir, sanitize(period)+".json")
	return writeJSON(name, hits)
}

// SaveJSON writes an arbitrary document into the collection directory,
// used for cleaned/removed scholar lists and download bookkeeping.
func (t *Tracker) SaveJSON(name string, v any) error {
	return writeJSON(filepath.Join(t.dir, sanitize(name)), v)
}

func sanitize(name string) string {
	out := []rune(name)
	for i, r := range out {
		if r == '/' || r == '\\' {
			out[i] = '_'
		}
	}
	return string(out)
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("state: read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("state: parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("state: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("state: write %s: %w", path, err)
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("state: write %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("state: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("state: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("state: write %s: %w", path, err)
	}
	return nil
}

func appendCSVRow(path string, row []string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("state: append %s: %w", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("state: append %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("state: append %s: %w", path, err)
	}
	return nil
}

func readCSVColumn(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: read %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("state: parse %s: %w", path, err)
	}
	var out []string
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue // header
		}
		out = append(out, row[0])
	}
	return out, nil
}
