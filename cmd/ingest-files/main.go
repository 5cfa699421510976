// Command ingest-files embeds custom data into a collection: every .txt and
// .pdf file under a directory, or a single web page. Sources already in the
// collection's embedded set are skipped unless -update is given.
//
//	ingest-files -collection field-notes -dir ./notes
//	ingest-files -collection field-notes -url https://example.org/report
//	ingest-files -collection field-notes -delete "survey 2021.pdf"
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/wildscope-ai/wildscope/engine/harvest"
	"github.com/wildscope-ai/wildscope/engine/ingest"
	"github.com/wildscope-ai/wildscope/engine/semantic"
	"github.com/wildscope-ai/wildscope/engine/state"
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
		collection = flag.String("collection", "", "target collection name")
		dataDir    = flag.String("data-dir", envOr("DATA_DIR", "./data"), "collection state directory")
		srcDir     = flag.String("dir", "", "directory of .txt/.pdf files to embed")
		srcURL     = flag.String("url", "", "web page to embed")
		delSource  = flag.String("delete", "", "source to remove from the collection")
		update     = flag.Bool("update", false, "re-embed sources already in the collection")
		qdrantAddr = flag.String("qdrant", envOr("QDRANT_URL", "localhost:6334"), "Qdrant gRPC address")
		parseURL   = flag.String("parse", envOr("PARSE_URL", ""), "PDF parse service URL (optional)")
		openaiURL  = flag.String("openai", envOr("OPENAI_BASE_URL", "https://api.openai.com"), "OpenAI-compatible base URL")
		openaiKey  = flag.String("openai-key", envOr("OPENAI_API_KEY", ""), "OpenAI API key")
		embedModel = flag.String("embed-model", envOr("EMBED_MODEL", "text-embedding-3-small"), "embedding model")
	)
	flag.Parse()

	log := slog.Default()
	if *collection == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest-files -collection <name> (-dir <path> | -url <page> | -delete <source>)")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dir := filepath.Join(*dataDir, *collection)
	if err := state.EnsureCollection(dir, map[string]string{"collection": *collection}); err != nil {
		log.Error("collection init failed", "error", err)
		os.Exit(1)
	}
	tracker, err := state.Open(dir, log)
	if err != nil {
		log.Error("state open failed", "error", err)
		os.Exit(1)
	}

	vs, err := semantic.New(*qdrantAddr, *collection)
	if err != nil {
		log.Error("qdrant connect failed", "error", err)
		os.Exit(1)
	}
	defer vs.Close()

	if *delSource != "" {
		if err := vs.DeleteBySource(ctx, *delSource); err != nil {
			log.Error("delete failed", "source", *delSource, "error", err)
			os.Exit(1)
		}
		tracker.DropEmbedded(*delSource)
		if err := tracker.SaveEmbedded(); err != nil {
			log.Error("state save failed", "error", err)
			os.Exit(1)
		}
		log.Info("source removed", "source", *delSource, "collection", *collection)
		return
	}

	if err := vs.EnsureCollection(ctx, harvest.DefaultVectorDims); err != nil {
		log.Error("collection create failed", "error", err)
		os.Exit(1)
	}

	var parser ingest.DocParser
	if *parseURL != "" {
		parser = ingest.NewHTTPDocParser(*parseURL)
	}
	loader := ingest.NewLoader(parser, nil, log)

	var docs []ingest.Document
	switch {
	case *srcDir != "":
		docs, err = loadDir(ctx, loader, *srcDir, log)
		if err != nil {
			log.Error("directory load failed", "dir", *srcDir, "error", err)
			os.Exit(1)
		}
	case *srcURL != "":
		doc, err := loader.FromURL(ctx, *srcURL)
		if err != nil {
			log.Error("page load failed", "url", *srcURL, "error", err)
			os.Exit(1)
		}
		docs = append(docs, doc)
	default:
		fmt.Fprintln(os.Stderr, "usage: ingest-files -collection <name> (-dir <path> | -url <page> | -delete <source>)")
		os.Exit(2)
	}

	pipeline := ingest.NewPipeline(
		openai.New(*openaiURL, *openaiKey, *embedModel, ""), vs, tracker, log)
	added := pipeline.AddDocuments(ctx, docs, *update)
	if err := tracker.SaveEmbedded(); err != nil {
		log.Error("state save failed", "error", err)
		os.Exit(1)
	}
	log.Info("ingest complete", "collection", *collection, "loaded", len(docs), "embedded", len(added))
}

// loadDir collects every .txt and .pdf under root. Files that fail to load
// are logged and skipped.
func loadDir(ctx context.Context, loader *ingest.Loader, root string, log *slog.Logger) ([]ingest.Document, error) {
	var docs []ingest.Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".pdf":
		default:
			return nil
		}
		doc, err := loader.FromFile(ctx, path)
		if err != nil {
			log.Warn("file skipped", "path", path, "error", err)
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
