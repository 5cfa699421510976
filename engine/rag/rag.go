package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

const answerSystemPrompt = `You answer questions about wildlife conservation using only the provided context. If the context does not contain the answer, say so. Be concise and cite the facts you use.`

// Service answers free-form questions over one or more collections.
type Service struct {
	embedder Embedder
	stores   []Retriever
	chat     Chatter
	logger   *slog.Logger
}

// NewService wires a QA service over the given retrievers.
func NewService(embedder Embedder, stores []Retriever, chat Chatter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{embedder: embedder, stores: stores, chat: chat, logger: logger}
}

// Answer retrieves topK chunks from every collection, appends the unique
// source list to the context, and asks the LLM. The returned sources are
// the unique chunk sources that fed the answer, sorted.
func (s *Service) Answer(ctx context.Context, question string, topK int) (string, []string, error) {
	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return "", nil, fmt.Errorf("rag: embed question: %w", err)
	}

	var parts []string
	sourceSet := make(map[string]struct{})
	for i, store := range s.stores {
		results, err := store.SearchFiltered(ctx, vec, topK, nil)
		if err != nil {
			s.logger.Warn("retrieval failed for one collection", "collection", i, "error", err)
			continue
		}
		for _, r := range results {
			parts = append(parts, r.Content)
			if r.Source != "" {
				sourceSet[r.Source] = struct{}{}
			}
		}
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("rag: no context retrieved for question")
	}

	sources := make([]string, 0, len(sourceSet))
	for src := range sourceSet {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	var sb strings.Builder
	sb.WriteString("Context:\n")
	sb.WriteString(strings.Join(parts, "\n\n"))
	sb.WriteString("\n\nSources:\n")
	sb.WriteString(strings.Join(sources, "\n"))
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)

	answer, err := s.chat.Chat(ctx, answerSystemPrompt, sb.String())
	if err != nil {
		return "", nil, fmt.Errorf("rag: chat: %w", err)
	}
	return answer, sources, nil
}
