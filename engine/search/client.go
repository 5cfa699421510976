// Package search wraps the SerpApi-compatible search endpoints used to
// harvest news and scholar results for a keyphrase.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/wildscope-ai/wildscope/engine/domain"
)

const (
	defaultBaseURL = "https://serpapi.com/search.json"
	newsPageSize   = 10
)

// Client queries a SerpApi-compatible search service.
type Client struct {
	apiKey   string
	baseURL  string
	location string
	hc       *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New creates a search client with production defaults.
func New(apiKey, location string, logger *slog.Logger) *Client {
	hc := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return NewWithClient(apiKey, defaultBaseURL, location, hc, logger)
}

// NewWithClient creates a search client with a caller-supplied base URL and
// http.Client, for tests and self-hosted proxies.
func NewWithClient(apiKey, baseURL, location string, hc *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		location: location,
		hc:       hc,
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		logger:   logger,
	}
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("search: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("search: decode: %w", err)
	}
	return nil
}

type newsResponse struct {
	NewsResults []domain.SearchHit `json:"news_results"`
}

// FetchNewsWindow pages through news results for one date window, advancing
// the offset by the page size until a short page or a request error. Request
// errors are logged and the partial accumulation is returned; a non-nil
// error is reported only when ctx is done.
func (c *Client) FetchNewsWindow(ctx context.Context, keyphrase string, w Window) ([]domain.SearchHit, error) {
	var hits []domain.SearchHit
	for offset := 0; ; offset += newsPageSize {
		if ctx.Err() != nil {
			return hits, ctx.Err()
		}

		params := url.Values{}
		params.Set("engine", "google")
		params.Set("q", keyphrase)
		params.Set("tbm", "nws")
		params.Set("location", c.location)
		params.Set("tbs", fmt.Sprintf("cdr:1,cd_min:%s,cd_max:%s", w.Start, w.End))
		params.Set("start", strconv.Itoa(offset))

		var page newsResponse
		if err := c.get(ctx, params, &page); err != nil {
			c.logger.Warn("news page fetch failed, keeping partial results",
				"window", w.Start+"-"+w.End, "offset", offset, "error", err)
			return hits, nil
		}
		hits = append(hits, page.NewsResults...)
		if len(page.NewsResults) < newsPageSize {
			return hits, nil
		}
	}
}
