package harvest

import "github.com/wildscope-ai/wildscope/pkg/metrics"

// Metrics are the counters a harvest run maintains.
type Metrics struct {
	WindowsFetched  *metrics.Counter
	HitsTotal       *metrics.Counter
	DedupDropped    *metrics.Counter
	ScrapeParsed    *metrics.Counter
	ScrapeFailed    *metrics.Counter
	ScrapeSkipped   *metrics.Counter
	DocsEmbedded    *metrics.Counter
	RecordsEnriched *metrics.Counter
	CrawlSeconds    *metrics.Histogram
}

// NewMetrics registers the harvest counters on a registry. A nil registry
// yields counters that still count but are never exported.
func NewMetrics(reg *metrics.Registry) *Metrics {
	if reg == nil {
		reg = metrics.New()
	}
	return &Metrics{
		WindowsFetched:  reg.Counter("harvest_windows_fetched_total", "search windows fetched"),
		HitsTotal:       reg.Counter("harvest_hits_total", "raw search hits accumulated"),
		DedupDropped:    reg.Counter("harvest_dedup_dropped_total", "hits dropped as duplicates or out of scope"),
		ScrapeParsed:    reg.Counter("harvest_scrape_parsed_total", "articles scraped successfully"),
		ScrapeFailed:    reg.Counter("harvest_scrape_failed_total", "scrape attempts that failed"),
		ScrapeSkipped:   reg.Counter("harvest_scrape_skipped_total", "hits skipped for lack of a recipe or prior success"),
		DocsEmbedded:    reg.Counter("harvest_docs_embedded_total", "documents embedded into the vector store"),
		RecordsEnriched: reg.Counter("harvest_records_enriched_total", "records enriched with extracted fields"),
		CrawlSeconds:    reg.Histogram("harvest_crawl_seconds", "per-url crawl duration", nil),
	}
}
