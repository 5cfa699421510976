package ingest

import (
	"fmt"

	"github.com/wildscope-ai/wildscope/engine/domain"
)

// Page is one unit of extracted text. Plain sources have a single page;
// parsed PDFs keep their page structure so chunk ids stay stable.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Document is an embeddable source. Source is the normalized identity used
// for skip-if-embedded checks and vector payload filtering: the full URL
// for web content and CSV rows, the file base name for local files, and
// "Abstract: <title>" for literal abstracts.
type Document struct {
	Source string
	Type   string
	Pages  []Page
	Meta   map[string]string
}

// Chunk is one splitter output with its stable id.
type Chunk struct {
	ID   string
	Text string
	Page int
}

// EmbeddedDoc pairs a document's chunks with their vectors.
type EmbeddedDoc struct {
	Doc    Document
	Chunks []Chunk
	Vecs   [][]float32
}

// FromArticle builds a document from a scraped news article. The article
// URL is the source identity.
func FromArticle(art domain.ParsedArticle, typ string) Document {
	text := art.Title
	if art.Synopsis != "" {
		text += "\n\n" + art.Synopsis
	}
	text += "\n\n" + art.Content
	return Document{
		Source: art.URL,
		Type:   typ,
		Pages:  []Page{{Number: 1, Text: text}},
		Meta: map[string]string{
			"title": art.Title,
			"url":   art.URL,
			"date":  art.Date,
		},
	}
}

// FromAbstract builds a document from a scholar hit that has an abstract
// but no retrievable full text.
func FromAbstract(hit domain.ScholarHit) Document {
	text := hit.Title + "\n\n" + hit.Abstract
	return Document{
		Source: "Abstract: " + hit.Title,
		Type:   "research_article",
		Pages:  []Page{{Number: 1, Text: text}},
		Meta: map[string]string{
			"title": hit.Title,
			"url":   hit.URL,
		},
	}
}

// ChunkDocument splits every page and assigns ids of the form
// {source}_page-{n}_chunk-{k}. Chunk ids are unique within a document and
// stable across runs, which is what makes re-upserts overwrite.
func ChunkDocument(doc Document, size, overlap int) []Chunk {
	var chunks []Chunk
	for _, page := range doc.Pages {
		for k, text := range SplitText(page.Text, size, overlap) {
			chunks = append(chunks, Chunk{
				ID:   chunkID(doc.Source, page.Number, k),
				Text: text,
				Page: page.Number,
			})
		}
	}
	return chunks
}

func chunkID(source string, page, k int) string {
	return fmt.Sprintf("%s_page-%d_chunk-%d", source, page, k)
}
