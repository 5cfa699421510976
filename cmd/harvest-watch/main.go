// Command harvest-watch tails harvest progress events from NATS and logs
// them, for keeping an eye on a long-running harvest from another terminal.
//
//	harvest-watch -nats nats://localhost:4222
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"

	"github.com/wildscope-ai/wildscope/engine/harvest"
	"github.com/wildscope-ai/wildscope/pkg/natsutil"
)

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	natsURL := flag.String("nats", envOr("NATS_URL", nats.DefaultURL), "NATS URL")
	flag.Parse()

	log := slog.Default()
	nc, err := nats.Connect(*natsURL)
	if err != nil {
		log.Error("nats connect failed", "url", *natsURL, "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	subscribe := func(err error) {
		if err != nil {
			log.Error("subscribe failed", "error", err)
			os.Exit(1)
		}
	}

	_, err = natsutil.Subscribe(nc, harvest.SubjectWindowFetched, func(_ context.Context, ev harvest.WindowFetchedEvent) {
		log.Info("window fetched", "collection", ev.Collection, "period", ev.Period, "hits", ev.Hits)
	})
	subscribe(err)
	_, err = natsutil.Subscribe(nc, harvest.SubjectArticleParsed, func(_ context.Context, ev harvest.ArticleEvent) {
		log.Info("article parsed", "collection", ev.Collection, "url", ev.URL, "source", ev.Source)
	})
	subscribe(err)
	_, err = natsutil.Subscribe(nc, harvest.SubjectArticleFailed, func(_ context.Context, ev harvest.ArticleEvent) {
		log.Warn("article failed", "collection", ev.Collection, "url", ev.URL, "source", ev.Source)
	})
	subscribe(err)
	_, err = natsutil.Subscribe(nc, harvest.SubjectSourceEmbedded, func(_ context.Context, ev harvest.SourceEmbeddedEvent) {
		log.Info("source embedded", "collection", ev.Collection, "source", ev.Source)
	})
	subscribe(err)
	_, err = natsutil.Subscribe(nc, harvest.SubjectRecordEnriched, func(_ context.Context, ev harvest.RecordEnrichedEvent) {
		log.Info("record enriched", "collection", ev.Collection, "key", ev.Key)
	})
	subscribe(err)

	log.Info("watching harvest events", "url", *natsURL)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-ctx.Done()
}
