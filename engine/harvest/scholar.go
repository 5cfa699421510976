package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/wildscope-ai/wildscope/engine/dedup"
	"github.com/wildscope-ai/wildscope/engine/domain"
	"github.com/wildscope-ai/wildscope/engine/ingest"
	"github.com/wildscope-ai/wildscope/engine/rag"
	"github.com/wildscope-ai/wildscope/engine/search"
	"github.com/wildscope-ai/wildscope/engine/state"
)

// ScholarSearcher is the scholar-search surface of the search client.
type ScholarSearcher interface {
	FetchScholarYear(ctx context.Context, keyphrase string, year, pages int) ([]domain.ScholarHit, error)
}

// AbstractLookup finds paper metadata by title. Satisfied by
// *search.SemanticScholarClient.
type AbstractLookup interface {
	LookupAbstract(ctx context.Context, title string) (search.PaperInfo, bool, error)
}

// PDFSource discovers and downloads full-text PDFs. Satisfied by
// *scrape.PDFCollector.
type PDFSource interface {
	FindPDFLinks(ctx context.Context, pageURL string) ([]string, error)
	DownloadPDF(ctx context.Context, pdfURL, destDir, name string) (string, error)
}

// ScholarDeps are the collaborators of a scholar harvest. Abstracts and
// PDFs are optional enrichments; a nil field skips that step.
type ScholarDeps struct {
	Search     ScholarSearcher
	Abstracts  AbstractLookup
	PDFs       PDFSource
	Parser     ingest.DocParser
	Store      VectorStore
	Embedder   Embedder
	Chat       Chatter
	Events     *Events
	Metrics    *Metrics
	Logger     *slog.Logger
	VectorDims int
}

// ScholarHarvest runs the scholarly flow: search → cleanup → abstract
// enrichment → PDF collection → embed → extract.
type ScholarHarvest struct {
	deps ScholarDeps
}

// NewScholarHarvest applies defaults and builds a harvest.
func NewScholarHarvest(deps ScholarDeps) *ScholarHarvest {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}
	if deps.VectorDims <= 0 {
		deps.VectorDims = DefaultVectorDims
	}
	return &ScholarHarvest{deps: deps}
}

// Run executes one scholar harvest end to end.
func (h *ScholarHarvest) Run(ctx context.Context, cfg ScholarConfig) error {
	dir := filepath.Join(cfg.DataDir, cfg.Collection)
	if err := state.EnsureCollection(dir, cfg); err != nil {
		return err
	}
	tracker, err := state.Open(dir, h.deps.Logger)
	if err != nil {
		return err
	}

	hits, err := h.Search(ctx, tracker, cfg)
	if err != nil {
		return err
	}
	kept := h.Cleanup(tracker, hits, cfg)
	kept = h.EnrichAbstracts(ctx, kept)
	kept, err = h.CollectPDFs(ctx, tracker, kept, cfg)
	if err != nil {
		return err
	}
	if err := h.Embed(ctx, tracker, kept, cfg); err != nil {
		return err
	}
	return h.Extract(ctx, tracker, kept, cfg)
}

// Search pages through every year of the configured range and dumps the
// raw results.
func (h *ScholarHarvest) Search(ctx context.Context, tracker *state.Tracker, cfg ScholarConfig) ([]domain.ScholarHit, error) {
	var all []domain.ScholarHit
	for year := cfg.StartYear; year <= cfg.EndYear; year++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		hits, err := h.deps.Search.FetchScholarYear(ctx, cfg.Keyphrase, year, cfg.PagesPerYear)
		if err != nil {
			return nil, err
		}
		all = append(all, hits...)
		h.deps.Metrics.HitsTotal.Add(int64(len(hits)))
		h.deps.Logger.Info("scholar year fetched", "year", year, "hits", len(hits))
	}
	if err := tracker.SaveJSON("scholar_results.json", all); err != nil {
		return nil, err
	}
	return all, nil
}

// Cleanup filters hits to the year range and mandatory keywords, splitting
// survivors and rejects into cleaned/removed dumps.
func (h *ScholarHarvest) Cleanup(tracker *state.Tracker, hits []domain.ScholarHit, cfg ScholarConfig) []domain.ScholarHit {
	filter := dedup.ScholarFilter{
		StartYear:         cfg.StartYear,
		EndYear:           cfg.EndYear,
		MandatoryKeywords: cfg.MandatoryKeywords,
	}
	kept, removed := filter.Apply(hits)
	h.deps.Metrics.DedupDropped.Add(int64(len(removed)))
	h.deps.Logger.Info("scholar cleanup", "kept", len(kept), "removed", len(removed))

	if err := tracker.SaveJSON("cleaned_results.json", kept); err != nil {
		h.deps.Logger.Warn("could not save cleaned results", "error", err)
	}
	if err := tracker.SaveJSON("removed_results.json", removed); err != nil {
		h.deps.Logger.Warn("could not save removed results", "error", err)
	}
	return kept
}

// EnrichAbstracts fills in missing abstracts from the title-lookup service.
// Lookup failures leave the hit untouched.
func (h *ScholarHarvest) EnrichAbstracts(ctx context.Context, hits []domain.ScholarHit) []domain.ScholarHit {
	if h.deps.Abstracts == nil {
		return hits
	}
	for i := range hits {
		if ctx.Err() != nil {
			return hits
		}
		if hits[i].Abstract != "" {
			continue
		}
		info, found, err := h.deps.Abstracts.LookupAbstract(ctx, hits[i].Title)
		if err != nil {
			h.deps.Logger.Warn("abstract lookup failed", "title", hits[i].Title, "error", err)
			continue
		}
		if !found {
			continue
		}
		hits[i].Abstract = info.Abstract
		hits[i].SemanticScholarURL = info.URL
		if hits[i].Publisher == "" {
			hits[i].Publisher = info.Venue
		}
		h.deps.Logger.Info("abstract recovered", "title", hits[i].Title)
	}
	return hits
}

// CollectPDFs tries to find and download full text for each hit, recording
// new downloads in the collection directory.
func (h *ScholarHarvest) CollectPDFs(ctx context.Context, tracker *state.Tracker, hits []domain.ScholarHit, cfg ScholarConfig) ([]domain.ScholarHit, error) {
	if h.deps.PDFs == nil || cfg.PDFDir == "" {
		return hits, nil
	}
	var downloaded []string
	for i := range hits {
		if ctx.Err() != nil {
			return hits, ctx.Err()
		}
		if hits[i].URL == "" || hits[i].Filepath != "" {
			continue
		}
		links, err := h.deps.PDFs.FindPDFLinks(ctx, hits[i].URL)
		if err != nil || len(links) == 0 {
			continue
		}
		path, err := h.deps.PDFs.DownloadPDF(ctx, links[0], cfg.PDFDir, hits[i].Title)
		if err != nil {
			h.deps.Logger.Warn("pdf download failed", "title", hits[i].Title, "error", err)
			continue
		}
		hits[i].Filepath = path
		downloaded = append(downloaded, path)
		h.deps.Logger.Info("pdf downloaded", "title", hits[i].Title, "path", path)
	}
	if err := tracker.SaveJSON("new_downloads.json", downloaded); err != nil {
		return hits, err
	}
	return hits, nil
}

// Embed pushes each paper through the pipeline: the downloaded PDF when one
// exists, the abstract otherwise. Papers with neither are skipped.
func (h *ScholarHarvest) Embed(ctx context.Context, tracker *state.Tracker, hits []domain.ScholarHit, cfg ScholarConfig) error {
	if err := h.deps.Store.EnsureCollection(ctx, h.deps.VectorDims); err != nil {
		return err
	}

	loader := ingest.NewLoader(h.deps.Parser, nil, h.deps.Logger)
	var docs []ingest.Document
	for _, hit := range hits {
		switch {
		case hit.Filepath != "":
			doc, err := loader.FromFile(ctx, hit.Filepath)
			if err != nil {
				h.deps.Logger.Warn("pdf load failed, falling back to abstract", "title", hit.Title, "error", err)
				if hit.Abstract == "" {
					continue
				}
				doc = ingest.FromAbstract(hit)
			} else {
				doc.Type = "research_article"
				doc.Meta["title"] = hit.Title
				doc.Meta["url"] = hit.URL
			}
			docs = append(docs, doc)

		case hit.Abstract != "":
			docs = append(docs, ingest.FromAbstract(hit))

		default:
			h.deps.Logger.Debug("no full text or abstract, skipping", "title", hit.Title)
		}
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

// Extract enriches each paper's record, retrieval filtered by title, and
// writes the enriched list.
func (h *ScholarHarvest) Extract(ctx context.Context, tracker *state.Tracker, hits []domain.ScholarHit, cfg ScholarConfig) error {
	extractor := rag.NewExtractor(h.deps.Embedder, h.deps.Store, h.deps.Chat, h.deps.Logger)
	var enriched []map[string]string
	for _, hit := range hits {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if hit.Abstract == "" && hit.Filepath == "" {
			continue
		}
		record := map[string]string{
			"title":     hit.Title,
			"url":       hit.URL,
			"authors":   hit.Authors,
			"publisher": hit.Publisher,
			"year":      fmt.Sprintf("%d", hit.Year),
		}
		out, ok := extractor.ExtractFields(ctx, rag.ResearchArticleFields, record, map[string]string{"title": hit.Title})
		if !ok {
			continue
		}
		enriched = append(enriched, out)
		h.deps.Metrics.RecordsEnriched.Inc()
		h.deps.Events.RecordEnriched(ctx, RecordEnrichedEvent{Collection: cfg.Collection, Key: hit.Title})
	}

	h.deps.Logger.Info("extraction complete", "papers", len(hits), "enriched", len(enriched))
	return tracker.SaveJSON("enriched_research_articles.json", enriched)
}
