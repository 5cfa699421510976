package search

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/wildscope-ai/wildscope/engine/domain"
)

const scholarPageSize = 10

type scholarResponse struct {
	OrganicResults []struct {
		Title           string `json:"title"`
		Link            string `json:"link"`
		Snippet         string `json:"snippet"`
		PublicationInfo struct {
			Summary string `json:"summary"`
		} `json:"publication_info"`
	} `json:"organic_results"`
}

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// FetchScholarYear pages through scholar results for one publication year.
// Pagination stops after the requested page count, on a short page, or on a
// request error (partial results returned).
func (c *Client) FetchScholarYear(ctx context.Context, keyphrase string, year, pages int) ([]domain.ScholarHit, error) {
	var hits []domain.ScholarHit
	for p := 0; p < pages; p++ {
		if ctx.Err() != nil {
			return hits, ctx.Err()
		}

		params := url.Values{}
		params.Set("engine", "google_scholar")
		params.Set("q", keyphrase)
		params.Set("as_ylo", strconv.Itoa(year))
		params.Set("as_yhi", strconv.Itoa(year))
		params.Set("start", strconv.Itoa(p*scholarPageSize))

		var page scholarResponse
		if err := c.get(ctx, params, &page); err != nil {
			c.logger.Warn("scholar page fetch failed, keeping partial results",
				"year", year, "page", p, "error", err)
			return hits, nil
		}
		for _, r := range page.OrganicResults {
			authors, publisher, parsedYear := parseSummary(r.PublicationInfo.Summary, year)
			hits = append(hits, domain.ScholarHit{
				Title:     strings.TrimSuffix(strings.TrimSpace(r.Title), "."),
				URL:       r.Link,
				Snippet:   r.Snippet,
				Summary:   r.PublicationInfo.Summary,
				Authors:   authors,
				Publisher: publisher,
				Year:      parsedYear,
			})
		}
		if len(page.OrganicResults) < scholarPageSize {
			break
		}
	}
	return hits, nil
}

// parseSummary splits a publication-info summary of the shape
// "authors - venue, year - publisher" into its parts. The year is the first
// four-digit year anywhere in the summary; fallbackYear is used when none is
// present.
func parseSummary(summary string, fallbackYear int) (authors, publisher string, year int) {
	year = fallbackYear
	if m := yearRe.FindString(summary); m != "" {
		if y, err := strconv.Atoi(m); err == nil {
			year = y
		}
	}
	parts := strings.Split(summary, " - ")
	if len(parts) >= 2 {
		authors = strings.TrimSpace(parts[0])
		publisher = strings.TrimSpace(parts[len(parts)-1])
	}
	return authors, publisher, year
}
