package ingest

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/wildscope-ai/wildscope/engine/domain"
)

func TestFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(f)
	w.Write(domain.NewsCSVColumns)
	w.Write([]string{"Tiger spotted", "Jan 01, 2024", "The Hindu", "Body text.", "Syn.", "https://hindu.example/1"})
	w.Write([]string{"short row"})
	w.Write([]string{"Leopard count up", "Feb 02, 2024", "NDTV", "More text.", "", "https://ndtv.example/2"})
	w.Flush()
	f.Close()

	l := NewLoader(nil, nil, nil)
	docs, err := l.FromCSV(path, "google_news")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs", len(docs))
	}
	if docs[0].Source != "https://hindu.example/1" || docs[0].Type != "google_news" {
		t.Errorf("doc = %+v", docs[0])
	}
	if docs[0].Meta["title"] != "Tiger spotted" {
		t.Errorf("meta = %v", docs[0].Meta)
	}
}

func TestFromFileTxt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("field notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(nil, nil, nil)
	doc, err := l.FromFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Source != "notes.txt" || doc.Pages[0].Text != "field notes" {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestFromFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(nil, nil, nil)
	if _, err := l.FromFile(context.Background(), path); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestFromFilePDFWithoutParser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(nil, nil, nil)
	if _, err := l.FromFile(context.Background(), path); err == nil {
		t.Fatal("expected error without a parser")
	}
}

func TestFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><head><title>Sanctuary report</title></head>
<body><script>ignore()</script><p>Visible   body</p><p>text.</p></body></html>`))
	}))
	defer srv.Close()

	l := NewLoader(nil, srv.Client(), nil)
	doc, err := l.FromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Source != srv.URL || doc.Type != "web" {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.Pages[0].Text != "Visible body text." {
		t.Errorf("text = %q", doc.Pages[0].Text)
	}
	if doc.Meta["title"] != "Sanctuary report" {
		t.Errorf("title = %q", doc.Meta["title"])
	}
}

func TestHTTPDocParser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		if _, hdr, err := r.FormFile("file"); err != nil || hdr.Filename != "paper.pdf" {
			t.Errorf("file upload: %v %v", hdr, err)
		}
		w.Write([]byte(`{"pages":[{"number":1,"text":"page one"},{"number":2,"text":"page two"}]}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("%PDF fake"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewHTTPDocParserWith(srv.URL, srv.Client())
	pages, err := p.Parse(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 || pages[1].Text != "page two" {
		t.Fatalf("pages = %v", pages)
	}
}
