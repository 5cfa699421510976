package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/wildscope-ai/wildscope/engine/dedup"
	"github.com/wildscope-ai/wildscope/engine/domain"
	"github.com/wildscope-ai/wildscope/engine/ingest"
	"github.com/wildscope-ai/wildscope/engine/rag"
	"github.com/wildscope-ai/wildscope/engine/search"
	"github.com/wildscope-ai/wildscope/engine/semantic"
	"github.com/wildscope-ai/wildscope/engine/state"
)

// NewsSearcher is the news-search surface of the search client.
type NewsSearcher interface {
	FetchNewsWindow(ctx context.Context, keyphrase string, w search.Window) ([]domain.SearchHit, error)
}

// ArticleScraper is the scrape surface the crawl loop needs.
type ArticleScraper interface {
	Scrape(ctx context.Context, hit domain.SearchHit) (domain.ParsedArticle, error)
}

// VectorStore is the store surface a harvest needs. Satisfied by
// *semantic.VectorStore.
type VectorStore interface {
	EnsureCollection(ctx context.Context, dims int) error
	Upsert(ctx context.Context, records []semantic.VectorRecord) error
	SearchFiltered(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]semantic.SearchResult, error)
}

// Embedder is the embedding surface shared by ingest and rag. Satisfied by
// *openai.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Chatter mirrors rag.Chatter for dependency wiring.
type Chatter interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// NewsDeps are the collaborators of a news harvest.
type NewsDeps struct {
	Search   NewsSearcher
	Scraper  ArticleScraper
	Store    VectorStore
	Embedder Embedder
	Chat     Chatter
	Events   *Events
	Metrics  *Metrics
	Logger   *slog.Logger
	// Delay is the politeness pause between fetches; defaults to
	// DefaultCrawlDelay.
	Delay time.Duration
	// VectorDims defaults to DefaultVectorDims.
	VectorDims int
}

// NewsHarvest runs the full news flow: fetch → dedup → crawl → embed →
// extract, resumable at every step through the state tracker.
type NewsHarvest struct {
	deps NewsDeps
}

// NewNewsHarvest applies defaults and builds a harvest.
func NewNewsHarvest(deps NewsDeps) *NewsHarvest {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}
	if deps.Delay <= 0 {
		deps.Delay = DefaultCrawlDelay
	}
	if deps.VectorDims <= 0 {
		deps.VectorDims = DefaultVectorDims
	}
	return &NewsHarvest{deps: deps}
}

// Run executes one news harvest end to end.
func (h *NewsHarvest) Run(ctx context.Context, cfg NewsConfig) error {
	dir := filepath.Join(cfg.DataDir, cfg.Collection)
	if err := state.EnsureCollection(dir, cfg); err != nil {
		return err
	}
	tracker, err := state.Open(dir, h.deps.Logger)
	if err != nil {
		return err
	}

	hits, err := h.FetchRange(ctx, tracker, cfg)
	if err != nil {
		return err
	}
	unique := h.Dedup(hits, cfg)
	if err := h.Crawl(ctx, tracker, unique, cfg); err != nil {
		return err
	}
	if err := h.Embed(ctx, tracker, cfg); err != nil {
		return err
	}
	return h.Extract(ctx, tracker, cfg)
}

// FetchRange collects raw hits for every half-month window of the run. A
// previous run's combined dump short-circuits the whole phase; otherwise
// each window is dumped to temp_files as it completes.
func (h *NewsHarvest) FetchRange(ctx context.Context, tracker *state.Tracker, cfg NewsConfig) ([]domain.SearchHit, error) {
	if prior, err := tracker.LoadSerpResults(); err != nil {
		return nil, err
	} else if len(prior) > 0 {
		h.deps.Logger.Info("reusing search dump from previous run", "hits", len(prior))
		return prior, nil
	}

	start, err := search.ParseMonthYear(cfg.StartMonth)
	if err != nil {
		return nil, err
	}
	end, err := search.ParseMonthYear(cfg.EndMonth)
	if err != nil {
		return nil, err
	}

	var all []domain.SearchHit
	for _, w := range search.Windows(start, end) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		hits, err := h.deps.Search.FetchNewsWindow(ctx, cfg.Keyphrase, w)
		if err != nil {
			return nil, err
		}
		if err := tracker.SaveTempWindow(w.Period(), hits); err != nil {
			return nil, err
		}
		all = append(all, hits...)
		h.deps.Metrics.WindowsFetched.Inc()
		h.deps.Metrics.HitsTotal.Add(int64(len(hits)))
		h.deps.Events.WindowFetched(ctx, WindowFetchedEvent{
			Collection: cfg.Collection, Period: w.Period(), Hits: len(hits),
		})
		h.deps.Logger.Info("window fetched", "period", w.Period(), "hits", len(hits))
	}

	if err := tracker.SaveSerpResults(all); err != nil {
		return nil, err
	}
	return all, nil
}

// Dedup removes duplicate links and logs the dominant publishers.
func (h *NewsHarvest) Dedup(hits []domain.SearchHit, cfg NewsConfig) []domain.SearchHit {
	unique := dedup.News(hits)
	h.deps.Metrics.DedupDropped.Add(int64(len(hits) - len(unique)))
	for _, sc := range dedup.TopSources(unique, 20) {
		h.deps.Logger.Info("source frequency", "source", sc.Source, "count", sc.Count)
	}
	h.deps.Logger.Info("dedup complete", "raw", len(hits), "unique", len(unique))
	return unique
}

// Crawl scrapes every unique hit sequentially with a politeness delay.
// Hits parsed by a previous run are skipped without a fetch; failures land
// in the failed set, which is saved once at the end.
func (h *NewsHarvest) Crawl(ctx context.Context, tracker *state.Tracker, hits []domain.SearchHit, cfg NewsConfig) error {
	for i, hit := range hits {
		if err := ctx.Err(); err != nil {
			return err
		}
		if tracker.AlreadyParsed(hit.Link) {
			h.deps.Metrics.ScrapeSkipped.Inc()
			continue
		}
		if i > 0 {
			select {
			case <-time.After(h.deps.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		start := time.Now()
		art, err := h.deps.Scraper.Scrape(ctx, hit)
		h.deps.Metrics.CrawlSeconds.Since(start)

		switch {
		case errors.Is(err, domain.ErrNoRecipe):
			h.deps.Metrics.ScrapeSkipped.Inc()
			h.deps.Logger.Debug("no recipe for source, skipping", "source", hit.Source, "url", hit.Link)

		case err != nil:
			tracker.MarkFailed(hit.Link)
			h.deps.Metrics.ScrapeFailed.Inc()
			h.deps.Events.ArticleFailed(ctx, ArticleEvent{Collection: cfg.Collection, URL: hit.Link, Source: hit.Source})
			h.deps.Logger.Warn("scrape failed", "url", hit.Link, "error", err)

		default:
			if err := tracker.MarkParsed(hit.Link, art); err != nil {
				return err
			}
			h.deps.Metrics.ScrapeParsed.Inc()
			h.deps.Events.ArticleParsed(ctx, ArticleEvent{Collection: cfg.Collection, URL: hit.Link, Source: hit.Source})
			h.deps.Logger.Info("article parsed", "url", hit.Link, "source", hit.Source)
		}
	}
	return tracker.SaveFailed()
}

// Embed pushes every parsed article through the chunk/embed pipeline.
func (h *NewsHarvest) Embed(ctx context.Context, tracker *state.Tracker, cfg NewsConfig) error {
	if err := h.deps.Store.EnsureCollection(ctx, h.deps.VectorDims); err != nil {
		return err
	}

	loader := ingest.NewLoader(nil, nil, h.deps.Logger)
	docs, err := loader.FromCSV(tracker.ParsedItemsPath(), "google_news")
	if err != nil {
		return err
	}

	pipeline := ingest.NewPipeline(h.deps.Embedder, h.deps.Store, tracker, h.deps.Logger)
	added := pipeline.AddDocuments(ctx, docs, cfg.Update)
	h.deps.Metrics.DocsEmbedded.Add(int64(len(added)))
	for _, src := range added {
		h.deps.Events.SourceEmbedded(ctx, SourceEmbeddedEvent{Collection: cfg.Collection, Source: src})
	}
	h.deps.Logger.Info("embedding complete", "documents", len(docs), "embedded", len(added))
	return tracker.SaveEmbedded()
}

// Extract runs field extraction over every parsed article, retrieval
// filtered to the article's own URL. Only enriched records are kept and
// written to enriched_news_items.json.
func (h *NewsHarvest) Extract(ctx context.Context, tracker *state.Tracker, cfg NewsConfig) error {
	loader := ingest.NewLoader(nil, nil, h.deps.Logger)
	docs, err := loader.FromCSV(tracker.ParsedItemsPath(), "google_news")
	if err != nil {
		return err
	}

	extractor := rag.NewExtractor(h.deps.Embedder, h.deps.Store, h.deps.Chat, h.deps.Logger)
	var enriched []map[string]string
	for _, doc := range docs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		record := map[string]string{
			"title": doc.Meta["title"],
			"url":   doc.Source,
			"date":  doc.Meta["date"],
		}
		out, ok := extractor.ExtractFields(ctx, rag.NewsItemFields, record, map[string]string{"url": doc.Source})
		if !ok {
			continue
		}
		enriched = append(enriched, out)
		h.deps.Metrics.RecordsEnriched.Inc()
		h.deps.Events.RecordEnriched(ctx, RecordEnrichedEvent{Collection: cfg.Collection, Key: doc.Source})
	}

	h.deps.Logger.Info("extraction complete", "records", len(docs), "enriched", len(enriched))
	if err := tracker.SaveJSON("enriched_news_items.json", enriched); err != nil {
		return fmt.Errorf("harvest: save enriched records: %w", err)
	}
	return nil
}
