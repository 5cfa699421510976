package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wildscope-ai/wildscope/engine/semantic"
)

// Embedder turns a query into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever is the similarity-search surface of the vector store.
type Retriever interface {
	SearchFiltered(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]semantic.SearchResult, error)
}

// Chatter is the LLM completion surface.
type Chatter interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// DefaultTopK is how many chunks each field query retrieves.
const DefaultTopK = 3

const extractSystemPrompt = `You extract structured information from wildlife conservation documents. Answer only from the provided context. Respond with a single JSON object and nothing else. Use the string "Not found" for any field the context does not answer.`

// Extractor runs field-extraction-by-retrieval: one retrieval query per
// field, one LLM call per record.
type Extractor struct {
	embedder Embedder
	store    Retriever
	chat     Chatter
	logger   *slog.Logger
	topK     int
}

// NewExtractor wires an extractor with the default retrieval depth.
func NewExtractor(embedder Embedder, store Retriever, chat Chatter, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{embedder: embedder, store: store, chat: chat, logger: logger, topK: DefaultTopK}
}

// ExtractFields enriches a record with the given fields. The filters
// restrict retrieval to the record's own chunks, one query per field. A
// single chat call then answers all fields at once. When the LLM reply is
// not valid JSON the record comes back unchanged with enriched false; a
// reply whose JSON carries the location key counts as enriched even if
// every value is "Not found".
func (e *Extractor) ExtractFields(ctx context.Context, fields []Field, record map[string]string, filters map[string]string) (map[string]string, bool) {
	var contextParts []string
	for _, f := range fields {
		vec, err := e.embedder.Embed(ctx, f.Description)
		if err != nil {
			e.logger.Warn("field query embed failed", "field", f.Name, "error", err)
			continue
		}
		results, err := e.store.SearchFiltered(ctx, vec, e.topK, filters)
		if err != nil {
			e.logger.Warn("field retrieval failed", "field", f.Name, "error", err)
			continue
		}
		for _, r := range results {
			contextParts = append(contextParts, r.Content)
		}
	}

	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString(strings.Join(contextParts, "\n\n"))
	sb.WriteString("\n\nExtract the following fields:\n")
	for _, f := range fields {
		fmt.Fprintf(&sb, "- %q: %s\n", f.Name, f.Description)
	}
	sb.WriteString("\nReturn a JSON object with exactly those keys.")

	reply, err := e.chat.Chat(ctx, extractSystemPrompt, sb.String())
	if err != nil {
		e.logger.Warn("extraction chat failed", "error", err)
		return record, false
	}

	var extracted map[string]string
	if err := json.Unmarshal([]byte(StripFences(reply)), &extracted); err != nil {
		e.logger.Warn("extraction reply is not valid JSON, keeping record unchanged", "error", err)
		return record, false
	}

	out := make(map[string]string, len(record)+len(extracted))
	for k, v := range record {
		out[k] = v
	}
	for _, f := range fields {
		if v, ok := extracted[f.Name]; ok {
			out[f.Name] = v
		}
	}
	_, enriched := extracted["location"]
	return out, enriched
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, from an LLM reply.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "json" || first == "" {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
