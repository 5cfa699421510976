package harvest

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/wildscope-ai/wildscope/pkg/natsutil"
)

// NATS subjects for harvest progress events.
const (
	SubjectWindowFetched  = "harvest.news.window"
	SubjectArticleParsed  = "harvest.news.parsed"
	SubjectArticleFailed  = "harvest.news.failed"
	SubjectSourceEmbedded = "harvest.embedded"
	SubjectRecordEnriched = "harvest.enriched"
)

// WindowFetchedEvent reports one completed search window.
type WindowFetchedEvent struct {
	Collection string `json:"collection"`
	Period     string `json:"period"`
	Hits       int    `json:"hits"`
}

// ArticleEvent reports a scrape outcome for one URL.
type ArticleEvent struct {
	Collection string `json:"collection"`
	URL        string `json:"url"`
	Source     string `json:"source,omitempty"`
}

// SourceEmbeddedEvent reports one source written to the vector store.
type SourceEmbeddedEvent struct {
	Collection string `json:"collection"`
	Source     string `json:"source"`
}

// RecordEnrichedEvent reports one record gaining extracted fields.
type RecordEnrichedEvent struct {
	Collection string `json:"collection"`
	Key        string `json:"key"`
}

// Events publishes harvest progress to NATS. A nil *Events or an Events
// without a connection is a no-op, so event publishing never gates a run.
type Events struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewEvents wraps a NATS connection; nc may be nil.
func NewEvents(nc *nats.Conn, logger *slog.Logger) *Events {
	if logger == nil {
		logger = slog.Default()
	}
	return &Events{nc: nc, logger: logger}
}

func publish[T any](ctx context.Context, e *Events, subject string, v T) {
	if e == nil || e.nc == nil {
		return
	}
	if err := natsutil.Publish(ctx, e.nc, subject, v); err != nil {
		e.logger.Debug("event publish failed", "subject", subject, "error", err)
	}
}

// WindowFetched publishes a WindowFetchedEvent.
func (e *Events) WindowFetched(ctx context.Context, ev WindowFetchedEvent) {
	publish(ctx, e, SubjectWindowFetched, ev)
}

// ArticleParsed publishes a successful scrape.
func (e *Events) ArticleParsed(ctx context.Context, ev ArticleEvent) {
	publish(ctx, e, SubjectArticleParsed, ev)
}

// ArticleFailed publishes a failed scrape.
func (e *Events) ArticleFailed(ctx context.Context, ev ArticleEvent) {
	publish(ctx, e, SubjectArticleFailed, ev)
}

// SourceEmbedded publishes an embedded source.
func (e *Events) SourceEmbedded(ctx context.Context, ev SourceEmbeddedEvent) {
	publish(ctx, e, SubjectSourceEmbedded, ev)
}

// RecordEnriched publishes an enriched record.
func (e *Events) RecordEnriched(ctx context.Context, ev RecordEnrichedEvent) {
	publish(ctx, e, SubjectRecordEnriched, ev)
}
