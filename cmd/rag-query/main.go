// Command rag-query answers questions over one or more collections from an
// interactive prompt. Each question is embedded, the top chunks from every
// collection become the context, and the answer is printed with the sources
// that fed it.
//
//	rag-query -collections hwc-2023,tiger-papers
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/wildscope-ai/wildscope/engine/rag"
	"github.com/wildscope-ai/wildscope/engine/semantic"
	"github.com/wildscope-ai/wildscope/pkg/openai"
)

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	var (
		collections = flag.String("collections", "", "comma-separated collection names")
		topK        = flag.Int("top-k", 5, "chunks retrieved per collection")
		qdrantAddr  = flag.String("qdrant", envOr("QDRANT_URL", "localhost:6334"), "Qdrant gRPC address")
		openaiURL   = flag.String("openai", envOr("OPENAI_BASE_URL", "https://api.openai.com"), "OpenAI-compatible base URL")
		openaiKey   = flag.String("openai-key", envOr("OPENAI_API_KEY", ""), "OpenAI API key")
		embedModel  = flag.String("embed-model", envOr("EMBED_MODEL", "text-embedding-3-small"), "embedding model")
		chatModel   = flag.String("chat-model", envOr("CHAT_MODEL", "gpt-4o-mini"), "chat model")
	)
	flag.Parse()

	log := slog.Default()
	names := strings.Split(*collections, ",")
	if *collections == "" || len(names) == 0 {
		fmt.Fprintln(os.Stderr, "usage: rag-query -collections <name>[,<name>...]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var stores []rag.Retriever
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		vs, err := semantic.New(*qdrantAddr, name)
		if err != nil {
			log.Error("qdrant connect failed", "collection", name, "error", err)
			os.Exit(1)
		}
		defer vs.Close()
		stores = append(stores, vs)
	}

	llm := openai.New(*openaiURL, *openaiKey, *embedModel, *chatModel)
	svc := rag.NewService(llm, stores, llm, log)

	fmt.Printf("querying %s; empty line or ctrl-d exits\n", *collections)
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		question := strings.TrimSpace(in.Text())
		if question == "" {
			break
		}

		answer, sources, err := svc.Answer(ctx, question, *topK)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error("query failed", "error", err)
			continue
		}
		fmt.Println()
		fmt.Println(answer)
		fmt.Println()
		fmt.Println("Sources:")
		for _, src := range sources {
			fmt.Println("  -", src)
		}
		fmt.Println()
	}
	if err := in.Err(); err != nil {
		log.Error("stdin read failed", "error", err)
		os.Exit(1)
	}
}
