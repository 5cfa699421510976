package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wildscope-ai/wildscope/engine/domain"
)

// DocParser turns a binary document into page texts. PDFs go through a
// parse service; everything else is read directly.
type DocParser interface {
	Parse(ctx context.Context, path string) ([]Page, error)
}

// HTTPDocParser posts files to a parse service that returns page texts.
type HTTPDocParser struct {
	parseURL string
	hc       *http.Client
}

// NewHTTPDocParser creates a parser client for the given endpoint.
func NewHTTPDocParser(parseURL string) *HTTPDocParser {
	hc := &http.Client{
		Timeout:   120 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return NewHTTPDocParserWith(parseURL, hc)
}

// NewHTTPDocParserWith creates a parser client with a caller-supplied
// http.Client.
func NewHTTPDocParserWith(parseURL string, hc *http.Client) *HTTPDocParser {
	return &HTTPDocParser{parseURL: parseURL, hc: hc}
}

type parseResponse struct {
	Pages []Page `json:"pages"`
}

// Parse implements DocParser by uploading the file as multipart form data.
func (p *HTTPDocParser) Parse(ctx context.Context, path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.parseURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ingest: parse %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("ingest: parse %s: status %d", path, resp.StatusCode)
	}
	var out parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ingest: parse %s: decode: %w", path, err)
	}
	return out.Pages, nil
}

// Loader builds documents from files, URLs, and harvest CSVs.
type Loader struct {
	parser DocParser
	hc     *http.Client
	logger *slog.Logger
}

// NewLoader creates a loader. parser may be nil when no PDF sources are
// expected.
func NewLoader(parser DocParser, hc *http.Client, logger *slog.Logger) *Loader {
	if hc == nil {
		hc = &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{parser: parser, hc: hc, logger: logger}
}

// FromFile loads a local .txt or .pdf file. The file's base name is the
// source identity.
func (l *Loader) FromFile(ctx context.Context, path string) (Document, error) {
	name := filepath.Base(path)
	doc := Document{
		Source: name,
		Type:   "file",
		Meta:   map[string]string{"title": name},
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		raw, err := os.ReadFile(path)
		if err != nil {
			return Document{}, fmt.Errorf("ingest: read %s: %w", path, err)
		}
		doc.Pages = []Page{{Number: 1, Text: string(raw)}}

	case ".pdf":
		if l.parser == nil {
			return Document{}, fmt.Errorf("ingest: %s: no document parser configured", path)
		}
		pages, err := l.parser.Parse(ctx, path)
		if err != nil {
			return Document{}, err
		}
		doc.Pages = pages

	default:
		return Document{}, fmt.Errorf("ingest: %s: unsupported file type", path)
	}
	return doc, nil
}

var spaceRe = regexp.MustCompile(`\s+`)

// FromURL fetches a web page and uses its visible body text. The URL is the
// source identity.
func (l *Loader) FromURL(ctx context.Context, pageURL string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return Document{}, err
	}
	resp, err := l.hc.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("ingest: fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return Document{}, fmt.Errorf("ingest: fetch %s: status %d", pageURL, resp.StatusCode)
	}
	gq, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("ingest: parse %s: %w", pageURL, err)
	}
	gq.Find("script, style, noscript").Remove()
	var parts []string
	gq.Find("p, h1, h2, h3, li").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	text := strings.Join(parts, " ")
	if text == "" {
		text = gq.Find("body").Text()
	}
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	title := strings.TrimSpace(gq.Find("title").First().Text())

	return Document{
		Source: pageURL,
		Type:   "web",
		Pages:  []Page{{Number: 1, Text: text}},
		Meta:   map[string]string{"title": title, "url": pageURL},
	}, nil
}

// FromCSV reads a parsed-articles CSV and builds one document per row. Rows
// that do not match the expected column count are logged and skipped.
func (l *Loader) FromCSV(path, typ string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: parse %s: %w", path, err)
	}

	var docs []Document
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) != len(domain.NewsCSVColumns) {
			l.logger.Warn("skipping malformed csv row", "file", path, "row", i, "columns", len(row))
			continue
		}
		art := domain.ParsedArticle{
			Title: row[0], Date: row[1], Source: row[2],
			Content: row[3], Synopsis: row[4], URL: row[5],
		}
		docs = append(docs, FromArticle(art, typ))
	}
	return docs, nil
}
