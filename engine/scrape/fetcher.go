package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Fetcher retrieves a page and parses it into a goquery document.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// HTTPFetcher fetches pages with a plain GET, rate limited.
type HTTPFetcher struct {
	hc      *http.Client
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a fetcher with production defaults.
func NewHTTPFetcher() *HTTPFetcher {
	hc := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return NewHTTPFetcherWith(hc)
}

// NewHTTPFetcherWith creates a fetcher with a caller-supplied http.Client.
func NewHTTPFetcherWith(hc *http.Client) *HTTPFetcher {
	return &HTTPFetcher{
		hc:      hc,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape: fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("scrape: fetch %s: status %d", pageURL, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scrape: parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// RenderFetcher asks a headless render service to load the page, returning
// the post-JavaScript HTML.
type RenderFetcher struct {
	renderURL string
	hc        *http.Client
	limiter   *rate.Limiter
}

// NewRenderFetcher creates a fetcher against a render service endpoint.
func NewRenderFetcher(renderURL string, hc *http.Client) *RenderFetcher {
	if hc == nil {
		hc = &http.Client{
			Timeout:   90 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &RenderFetcher{
		renderURL: renderURL,
		hc:        hc,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Fetch implements Fetcher.
func (f *RenderFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, _ := json.Marshal(map[string]string{"url": pageURL})
	req, err := http.NewRequestWithContext(ctx, "POST", f.renderURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape: render %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("scrape: render %s: status %d", pageURL, resp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("scrape: parse rendered %s: %w", pageURL, err)
	}
	return doc, nil
}
