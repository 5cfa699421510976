// Package ingest chunks documents, embeds the chunks, and upserts them into
// the vector store, tracking which sources are already done.
package ingest

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wildscope-ai/wildscope/engine/semantic"
	"github.com/wildscope-ai/wildscope/pkg/fn"
)

// EmbedBatchSize caps chunks per embedding request.
const EmbedBatchSize = 100

// Embedder produces one vector per input text.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Store receives embedded chunks. Satisfied by *semantic.VectorStore.
type Store interface {
	Upsert(ctx context.Context, records []semantic.VectorRecord) error
}

// EmbeddedSet tracks which sources already went through the pipeline.
// Satisfied by *state.Tracker.
type EmbeddedSet interface {
	IsEmbedded(source string) bool
	MarkEmbedded(source string)
}

// Pipeline is the chunk → embed → store flow for one collection.
type Pipeline struct {
	embedder  Embedder
	store     Store
	set       EmbeddedSet
	logger    *slog.Logger
	chunkSize int
	overlap   int
	stage     fn.Stage[Document, string]
}

// NewPipeline wires a pipeline with default chunking parameters.
func NewPipeline(embedder Embedder, store Store, set EmbeddedSet, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		embedder:  embedder,
		store:     store,
		set:       set,
		logger:    logger,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	chunk := fn.TracedStage("ingest.chunk", p.chunkStage())
	embed := fn.TracedStage("ingest.embed", p.embedStage())
	persist := fn.TracedStage("ingest.store", p.storeStage())
	p.stage = fn.Then(fn.Then(chunk, embed), persist)
	return p
}

func (p *Pipeline) chunkStage() fn.Stage[Document, EmbeddedDoc] {
	return func(_ context.Context, doc Document) fn.Result[EmbeddedDoc] {
		chunks := ChunkDocument(doc, p.chunkSize, p.overlap)
		if len(chunks) == 0 {
			return fn.Errf[EmbeddedDoc]("ingest: %s: no text to embed", doc.Source)
		}
		return fn.Ok(EmbeddedDoc{Doc: doc, Chunks: chunks})
	}
}

func (p *Pipeline) embedStage() fn.Stage[EmbeddedDoc, EmbeddedDoc] {
	return func(ctx context.Context, d EmbeddedDoc) fn.Result[EmbeddedDoc] {
		d.Vecs = make([][]float32, len(d.Chunks))
		for i := 0; i < len(d.Chunks); i += EmbedBatchSize {
			end := min(i+EmbedBatchSize, len(d.Chunks))
			texts := make([]string, end-i)
			for j, c := range d.Chunks[i:end] {
				texts[j] = c.Text
			}
			vecs, err := p.embedder.EmbedBatch(ctx, texts)
			if err != nil {
				return fn.Errf[EmbeddedDoc]("ingest: embed %s: %w", d.Doc.Source, err)
			}
			copy(d.Vecs[i:end], vecs)
		}
		return fn.Ok(d)
	}
}

func (p *Pipeline) storeStage() fn.Stage[EmbeddedDoc, string] {
	return func(ctx context.Context, d EmbeddedDoc) fn.Result[string] {
		records := make([]semantic.VectorRecord, len(d.Chunks))
		for i, chunk := range d.Chunks {
			payload := map[string]any{
				"content":  chunk.Text,
				"source":   d.Doc.Source,
				"type":     d.Doc.Type,
				"chunk_id": chunk.ID,
			}
			for k, v := range d.Doc.Meta {
				if _, taken := payload[k]; !taken && v != "" {
					payload[k] = v
				}
			}
			records[i] = semantic.VectorRecord{
				ID:        PointID(chunk.ID),
				Embedding: d.Vecs[i],
				Payload:   payload,
			}
		}
		if err := p.store.Upsert(ctx, records); err != nil {
			return fn.Errf[string]("ingest: store %s: %w", d.Doc.Source, err)
		}
		return fn.Ok(d.Doc.Source)
	}
}

// PointID derives the stable vector-store point id for a chunk id. Qdrant
// wants UUIDs; hashing the chunk id keeps re-upserts overwriting the same
// point.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

// AddDocuments runs each document through the pipeline. Sources already in
// the embedded set are skipped unless update is true; one source failing
// does not stop the rest. Returns the sources that were actually embedded,
// excluding the skipped and the failed.
func (p *Pipeline) AddDocuments(ctx context.Context, docs []Document, update bool) []string {
	var added []string
	for _, doc := range docs {
		if ctx.Err() != nil {
			return added
		}
		if !update && p.set.IsEmbedded(doc.Source) {
			p.logger.Debug("source already embedded, skipping", "source", doc.Source)
			continue
		}
		if _, err := p.stage(ctx, doc).Unwrap(); err != nil {
			p.logger.Warn("document skipped", "source", doc.Source, "error", err)
			continue
		}
		p.set.MarkEmbedded(doc.Source)
		added = append(added, doc.Source)
		p.logger.Info("document embedded", "source", doc.Source, "type", doc.Type)
	}
	return added
}
