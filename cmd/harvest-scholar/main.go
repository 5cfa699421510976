// Command harvest-scholar runs one scholarly harvest: search a keyphrase
// year by year, filter and dedupe the papers, recover abstracts and
// full-text PDFs, embed them into Qdrant, and extract fields of interest.
//
// The run configuration is a single JSON argument:
//
//	harvest-scholar '{"keyphrase":"tiger corridors india","start_year":2018,"end_year":2023,"mandatory_keywords":["tiger"],"data_dir":"./data","collection":"tiger-papers","pdf_dir":"./data/pdfs"}'
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"

	"github.com/wildscope-ai/wildscope/engine/harvest"
	"github.com/wildscope-ai/wildscope/engine/ingest"
	"github.com/wildscope-ai/wildscope/engine/scrape"
	"github.com/wildscope-ai/wildscope/engine/search"
	"github.com/wildscope-ai/wildscope/engine/semantic"
	"github.com/wildscope-ai/wildscope/pkg/metrics"
	"github.com/wildscope-ai/wildscope/pkg/openai"
)

var met = metrics.New()

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	var (
		serpKey     = flag.String("serp-key", envOr("SERPAPI_KEY", ""), "search API key")
		location    = flag.String("location", envOr("SEARCH_LOCATION", "India"), "search location bias")
		qdrantAddr  = flag.String("qdrant", envOr("QDRANT_URL", "localhost:6334"), "Qdrant gRPC address")
		parseURL    = flag.String("parse", envOr("PARSE_URL", ""), "PDF parse service URL (optional)")
		openaiURL   = flag.String("openai", envOr("OPENAI_BASE_URL", "https://api.openai.com"), "OpenAI-compatible base URL")
		openaiKey   = flag.String("openai-key", envOr("OPENAI_API_KEY", ""), "OpenAI API key")
		embedModel  = flag.String("embed-model", envOr("EMBED_MODEL", "text-embedding-3-small"), "embedding model")
		chatModel   = flag.String("chat-model", envOr("CHAT_MODEL", "gpt-4o-mini"), "chat model")
		natsURL     = flag.String("nats", envOr("NATS_URL", ""), "NATS URL for progress events (optional)")
		metricsPort = flag.Int("metrics-port", 9094, "Prometheus metrics port")
	)
	flag.Parse()

	log := slog.Default()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: harvest-scholar '<run config JSON>'")
		os.Exit(2)
	}
	cfg, err := harvest.ParseScholarConfig([]byte(flag.Arg(0)))
	if err != nil {
		log.Error("bad run config", "error", err)
		os.Exit(1)
	}

	met.ServeAsync(*metricsPort)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	vs, err := semantic.New(*qdrantAddr, cfg.Collection)
	if err != nil {
		log.Error("qdrant connect failed", "error", err)
		os.Exit(1)
	}
	defer vs.Close()

	var parser ingest.DocParser
	if *parseURL != "" {
		parser = ingest.NewHTTPDocParser(*parseURL)
	}

	var nc *nats.Conn
	if *natsURL != "" {
		if nc, err = nats.Connect(*natsURL); err != nil {
			log.Warn("nats connect failed, running without events", "error", err)
		} else {
			defer nc.Close()
		}
	}

	h := harvest.NewScholarHarvest(harvest.ScholarDeps{
		Search:    search.New(*serpKey, *location, log),
		Abstracts: search.NewSemanticScholarClient(log),
		PDFs:      scrape.NewPDFCollector(scrape.NewHTTPFetcher()),
		Parser:    parser,
		Store:     vs,
		Embedder:  openai.New(*openaiURL, *openaiKey, *embedModel, *chatModel),
		Chat:      openai.New(*openaiURL, *openaiKey, *embedModel, *chatModel),
		Events:    harvest.NewEvents(nc, log),
		Metrics:   harvest.NewMetrics(met),
		Logger:    log,
	})

	log.Info("starting scholar harvest",
		"keyphrase", cfg.Keyphrase, "years", fmt.Sprintf("%d-%d", cfg.StartYear, cfg.EndYear), "collection", cfg.Collection)
	if err := h.Run(ctx, cfg); err != nil {
		log.Error("harvest failed", "error", err)
		os.Exit(1)
	}
	log.Info("harvest complete", "collection", cfg.Collection)
}
