package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// PDFCollector finds and downloads PDF links from article pages.
type PDFCollector struct {
	fetch   Fetcher
	hc      *http.Client
	limiter *rate.Limiter
}

// NewPDFCollector creates a collector reusing a page fetcher for link
// discovery.
func NewPDFCollector(fetch Fetcher) *PDFCollector {
	hc := &http.Client{
		Timeout:   120 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return NewPDFCollectorWith(fetch, hc)
}

// NewPDFCollectorWith creates a collector with a caller-supplied download
// client.
func NewPDFCollectorWith(fetch Fetcher, hc *http.Client) *PDFCollector {
	return &PDFCollector{
		fetch:   fetch,
		hc:      hc,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// FindPDFLinks fetches a page and returns every anchor target ending in
// .pdf, resolved against the page URL and deduplicated in document order.
func (c *PDFCollector) FindPDFLinks(ctx context.Context, pageURL string) ([]string, error) {
	doc, err := c.fetch.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("scrape: bad page url %s: %w", pageURL, err)
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if !strings.HasSuffix(strings.ToLower(abs.Path), ".pdf") {
			return
		}
		s := abs.String()
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		links = append(links, s)
	})
	return links, nil
}

// DownloadPDF saves a PDF to destDir under the given file name, returning
// the written path. An existing file of the same name is kept untouched.
func (c *PDFCollector) DownloadPDF(ctx context.Context, pdfURL, destDir, name string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	dest := filepath.Join(destDir, sanitizeFilename(name))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, "GET", pdfURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("scrape: download %s: %w", pdfURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("scrape: download %s: status %d", pdfURL, resp.StatusCode)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(destDir, ".download-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("scrape: download %s: %w", pdfURL, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return dest, nil
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
