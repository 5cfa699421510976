package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wildscope-ai/wildscope/engine/domain"
	"github.com/wildscope-ai/wildscope/engine/semantic"
)

type fakeEmbedder struct {
	calls int
	fail  bool
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("embedder down")
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

type fakeStore struct {
	upserts int
	records []semantic.VectorRecord
	fail    bool
}

func (f *fakeStore) Upsert(_ context.Context, records []semantic.VectorRecord) error {
	if f.fail {
		return errors.New("store down")
	}
	f.upserts++
	f.records = append(f.records, records...)
	return nil
}

type fakeSet struct {
	embedded map[string]struct{}
}

func newFakeSet(sources ...string) *fakeSet {
	s := &fakeSet{embedded: make(map[string]struct{})}
	for _, src := range sources {
		s.embedded[src] = struct{}{}
	}
	return s
}

func (f *fakeSet) IsEmbedded(source string) bool {
	_, ok := f.embedded[source]
	return ok
}

func (f *fakeSet) MarkEmbedded(source string) {
	f.embedded[source] = struct{}{}
}

func testDoc(source string) Document {
	return Document{
		Source: source,
		Type:   "google_news",
		Pages:  []Page{{Number: 1, Text: "some article text about tigers"}},
		Meta:   map[string]string{"title": "t", "url": source},
	}
}

func TestAddDocumentsEmbedsAndMarks(t *testing.T) {
	emb := &fakeEmbedder{}
	store := &fakeStore{}
	set := newFakeSet()
	p := NewPipeline(emb, store, set, nil)

	added := p.AddDocuments(context.Background(), []Document{testDoc("https://a.example/1")}, false)
	if len(added) != 1 || added[0] != "https://a.example/1" {
		t.Fatalf("added = %v", added)
	}
	if !set.IsEmbedded("https://a.example/1") {
		t.Fatal("source not marked embedded")
	}
	if store.upserts != 1 || len(store.records) == 0 {
		t.Fatalf("upserts = %d", store.upserts)
	}
	r := store.records[0]
	if r.Payload["source"] != "https://a.example/1" || r.Payload["type"] != "google_news" {
		t.Errorf("payload = %v", r.Payload)
	}
	if r.Payload["chunk_id"] != "https://a.example/1_page-1_chunk-0" {
		t.Errorf("chunk_id = %v", r.Payload["chunk_id"])
	}
}

func TestAddDocumentsSkipsEmbedded(t *testing.T) {
	emb := &fakeEmbedder{}
	store := &fakeStore{}
	set := newFakeSet("https://a.example/1")
	p := NewPipeline(emb, store, set, nil)

	added := p.AddDocuments(context.Background(), []Document{testDoc("https://a.example/1")}, false)
	if len(added) != 0 {
		t.Fatalf("added = %v, want none", added)
	}
	if emb.calls != 0 || store.upserts != 0 {
		t.Fatalf("work done for an already-embedded source: embed=%d upsert=%d", emb.calls, store.upserts)
	}
}

func TestAddDocumentsUpdateReembeds(t *testing.T) {
	emb := &fakeEmbedder{}
	store := &fakeStore{}
	set := newFakeSet("https://a.example/1")
	p := NewPipeline(emb, store, set, nil)

	added := p.AddDocuments(context.Background(), []Document{testDoc("https://a.example/1")}, true)
	if len(added) != 1 || store.upserts != 1 {
		t.Fatalf("added=%v upserts=%d", added, store.upserts)
	}
}

func TestAddDocumentsIsolatesFailures(t *testing.T) {
	emb := &fakeEmbedder{}
	store := &fakeStore{}
	set := newFakeSet()
	p := NewPipeline(emb, store, set, nil)

	docs := []Document{
		testDoc("https://a.example/ok"),
		{Source: "https://a.example/empty", Type: "google_news"}, // no pages
		testDoc("https://a.example/also-ok"),
	}
	added := p.AddDocuments(context.Background(), docs, false)
	// the failed source must not be reported as embedded
	if len(added) != 2 || added[0] != "https://a.example/ok" || added[1] != "https://a.example/also-ok" {
		t.Fatalf("added = %v", added)
	}
	if set.IsEmbedded("https://a.example/empty") {
		t.Fatal("failed source marked embedded")
	}
}

func TestAddDocumentsEmbedderFailureNotMarked(t *testing.T) {
	emb := &fakeEmbedder{fail: true}
	store := &fakeStore{}
	set := newFakeSet()
	p := NewPipeline(emb, store, set, nil)

	added := p.AddDocuments(context.Background(), []Document{testDoc("https://a.example/1")}, false)
	if len(added) != 0 || store.upserts != 0 || set.IsEmbedded("https://a.example/1") {
		t.Fatalf("embed failure leaked: added=%v upserts=%d", added, store.upserts)
	}
}

func TestChunkIDsUniqueAndStable(t *testing.T) {
	long := strings.Repeat("tiger habitat connectivity analysis paragraph. ", 200)
	doc := Document{
		Source: "report.pdf",
		Type:   "file",
		Pages:  []Page{{Number: 1, Text: long}, {Number: 2, Text: long}},
	}
	chunks := ChunkDocument(doc, 1500, 200)
	if len(chunks) < 4 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	seen := make(map[string]struct{})
	for _, c := range chunks {
		if _, dup := seen[c.ID]; dup {
			t.Fatalf("duplicate chunk id %s", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	if chunks[0].ID != "report.pdf_page-1_chunk-0" {
		t.Errorf("id = %s", chunks[0].ID)
	}

	again := ChunkDocument(doc, 1500, 200)
	for i := range chunks {
		if chunks[i].ID != again[i].ID {
			t.Fatalf("chunk ids not stable across runs")
		}
	}
}

func TestPointIDDeterministic(t *testing.T) {
	a := PointID("src_page-1_chunk-0")
	b := PointID("src_page-1_chunk-0")
	c := PointID("src_page-1_chunk-1")
	if a != b {
		t.Fatal("point id not deterministic")
	}
	if a == c {
		t.Fatal("distinct chunks collide")
	}
}

func TestFromAbstractSource(t *testing.T) {
	doc := FromAbstract(domain.ScholarHit{Title: "Gaur movement ecology", Abstract: "We tracked gaur."})
	if doc.Source != "Abstract: Gaur movement ecology" {
		t.Fatalf("source = %q", doc.Source)
	}
	if len(doc.Pages) != 1 || !strings.Contains(doc.Pages[0].Text, "We tracked gaur.") {
		t.Fatalf("pages = %v", doc.Pages)
	}
}
