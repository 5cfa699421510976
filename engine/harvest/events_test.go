package harvest

import (
	"context"
	"testing"
)

func TestEventsNilSafe(t *testing.T) {
	ctx := context.Background()

	var e *Events
	e.WindowFetched(ctx, WindowFetchedEvent{Period: "p"})
	e.ArticleParsed(ctx, ArticleEvent{URL: "u"})

	// connected-less Events is equally inert
	e = NewEvents(nil, nil)
	e.SourceEmbedded(ctx, SourceEmbeddedEvent{Source: "s"})
	e.RecordEnriched(ctx, RecordEnrichedEvent{Key: "k"})
}
