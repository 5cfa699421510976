// Command harvest-news runs one news harvest: search a keyphrase over a
// month range, scrape the hits with per-publisher recipes, embed the
// accepted articles into Qdrant, and extract fields of interest.
//
// The run configuration is a single JSON argument:
//
//	harvest-news '{"keyphrase":"human wildlife conflict","start_month":"Jan 2023","end_month":"Jun 2023","data_dir":"./data","collection":"hwc-2023"}'
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
		recipesPath = flag.String("recipes", envOr("RECIPES_FILE", "recipes.yaml"), "extraction recipe file")
		renderURL   = flag.String("render", envOr("RENDER_URL", ""), "headless render service URL (optional)")
		qdrantAddr  = flag.String("qdrant", envOr("QDRANT_URL", "localhost:6334"), "Qdrant gRPC address")
		openaiURL   = flag.String("openai", envOr("OPENAI_BASE_URL", "https://api.openai.com"), "OpenAI-compatible base URL")
		openaiKey   = flag.String("openai-key", envOr("OPENAI_API_KEY", ""), "OpenAI API key")
		embedModel  = flag.String("embed-model", envOr("EMBED_MODEL", "text-embedding-3-small"), "embedding model")
		chatModel   = flag.String("chat-model", envOr("CHAT_MODEL", "gpt-4o-mini"), "chat model")
		natsURL     = flag.String("nats", envOr("NATS_URL", ""), "NATS URL for progress events (optional)")
		metricsPort = flag.Int("metrics-port", 9093, "Prometheus metrics port")
	)
	flag.Parse()

	log := slog.Default()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: harvest-news '<run config JSON>'")
		os.Exit(2)
	}
	cfg, err := harvest.ParseNewsConfig([]byte(flag.Arg(0)))
	if err != nil {
		log.Error("bad run config", "error", err)
		os.Exit(1)
	}

	met.ServeAsync(*metricsPort)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry, err := scrape.LoadRegistry(*recipesPath)
	if err != nil {
		log.Error("recipe registry load failed", "error", err)
		os.Exit(1)
	}
	var render scrape.Fetcher
	if *renderURL != "" {
		render = scrape.NewRenderFetcher(*renderURL, nil)
	}
	scraper := scrape.New(registry, scrape.NewHTTPFetcher(), render, log)

	vs, err := semantic.New(*qdrantAddr, cfg.Collection)
	if err != nil {
		log.Error("qdrant connect failed", "error", err)
		os.Exit(1)
	}
	defer vs.Close()

	var nc *nats.Conn
	if *natsURL != "" {
		if nc, err = nats.Connect(*natsURL); err != nil {
			log.Warn("nats connect failed, running without events", "error", err)
		} else {
			defer nc.Close()
		}
	}

	h := harvest.NewNewsHarvest(harvest.NewsDeps{
		Search:   search.New(*serpKey, *location, log),
		Scraper:  scraper,
		Store:    vs,
		Embedder: openai.New(*openaiURL, *openaiKey, *embedModel, *chatModel),
		Chat:     openai.New(*openaiURL, *openaiKey, *embedModel, *chatModel),
		Events:   harvest.NewEvents(nc, log),
		Metrics:  harvest.NewMetrics(met),
		Logger:   log,
	})

	log.Info("starting news harvest",
		"keyphrase", cfg.Keyphrase, "range", cfg.StartMonth+" - "+cfg.EndMonth, "collection", cfg.Collection)
	if err := h.Run(ctx, cfg); err != nil {
		log.Error("harvest failed", "error", err)
		os.Exit(1)
	}
	log.Info("harvest complete", "collection", cfg.Collection)
}
