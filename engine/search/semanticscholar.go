package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const semanticScholarBase = "https://api.semanticscholar.org/graph/v1"

// PaperInfo is the enrichment payload returned by a Semantic Scholar lookup.
type PaperInfo struct {
	Abstract string
	Venue    string
	URL      string
	Authors  []string
}

// SemanticScholarClient looks up paper metadata by title. Requests are rate
// limited to stay inside the unauthenticated API quota.
type SemanticScholarClient struct {
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewSemanticScholarClient creates a client against the public API.
func NewSemanticScholarClient(logger *slog.Logger) *SemanticScholarClient {
	hc := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return NewSemanticScholarClientWith(semanticScholarBase, hc, logger)
}

// NewSemanticScholarClientWith creates a client with a custom base URL and
// http.Client.
func NewSemanticScholarClientWith(baseURL string, hc *http.Client, logger *slog.Logger) *SemanticScholarClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &SemanticScholarClient{
		baseURL: baseURL,
		hc:      hc,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
	}
}

type paperSearchResponse struct {
	Data []struct {
		Title    string `json:"title"`
		Abstract string `json:"abstract"`
		Venue    string `json:"venue"`
		URL      string `json:"url"`
		Authors  []struct {
			Name string `json:"name"`
		} `json:"authors"`
	} `json:"data"`
}

// normalizeTitle lowercases and strips the trailing period so serpapi and
// Semantic Scholar renderings of the same title compare equal.
func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), "."))
}

// LookupAbstract searches for a paper by title and returns its metadata when
// a result's title matches exactly after normalization. found is false when
// no result matches.
func (c *SemanticScholarClient) LookupAbstract(ctx context.Context, title string) (info PaperInfo, found bool, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return PaperInfo{}, false, err
	}

	params := url.Values{}
	params.Set("query", title)
	params.Set("fields", "title,abstract,venue,url,authors")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/paper/search?"+params.Encode(), nil)
	if err != nil {
		return PaperInfo{}, false, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return PaperInfo{}, false, fmt.Errorf("semanticscholar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return PaperInfo{}, false, fmt.Errorf("semanticscholar: status %d", resp.StatusCode)
	}

	var body paperSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return PaperInfo{}, false, fmt.Errorf("semanticscholar: decode: %w", err)
	}

	want := normalizeTitle(title)
	for _, p := range body.Data {
		if normalizeTitle(p.Title) != want {
			continue
		}
		info := PaperInfo{Abstract: p.Abstract, Venue: p.Venue, URL: p.URL}
		for _, a := range p.Authors {
			info.Authors = append(info.Authors, a.Name)
		}
		return info, true, nil
	}
	return PaperInfo{}, false, nil
}
