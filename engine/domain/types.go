// Package domain defines the core record types and validation for the
// Wildscope harvesting pipeline. It acts as the validation gate between the
// scraper and everything downstream of it.
package domain

// SearchHit is one raw result from the news search API for a time window.
// Position and Thumbnail are volatile across identical queries and are
// stripped during deduplication.
type SearchHit struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Snippet   string `json:"snippet,omitempty"`
	Date      string `json:"date,omitempty"`
	Position  int    `json:"position,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// ScholarHit is one raw result from the scholar search API. Authors,
// Publisher, and Year are parsed out of the publication-info summary line.
// Abstract, SemanticScholarURL, and Filepath are filled in by later
// enrichment stages when available.
type ScholarHit struct {
	Title              string `json:"title"`
	URL                string `json:"url"`
	Snippet            string `json:"snippet"`
	Summary            string `json:"summary"`
	Authors            string `json:"authors_serpapi,omitempty"`
	Publisher          string `json:"publisher,omitempty"`
	Year               int    `json:"year,omitempty"`
	Abstract           string `json:"abstract,omitempty"`
	SemanticScholarURL string `json:"semantic_scholar_url,omitempty"`
	Filepath           string `json:"filepath,omitempty"`
}

// ParsedArticle is the enriched output of scraping one news URL. Title,
// Source, and URL are always overlaid from the originating search hit;
// search metadata is trusted over whatever the page markup says.
type ParsedArticle struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Source   string `json:"source"`
	Content  string `json:"content"`
	Synopsis string `json:"synopsis"`
	URL      string `json:"url"`
}

// NewsRequiredKeys is the acceptance gate for news articles: a scraped
// candidate is persisted only if every one of these maps to a non-empty
// value.
var NewsRequiredKeys = []string{"title", "date", "source", "content", "synopsis", "url"}

// NewsCSVColumns is the fixed column order of the parsed-articles CSV.
var NewsCSVColumns = []string{"title", "date", "source", "content", "synopsis", "url"}

// Fields returns the article as a key/value map keyed by CSV column name.
func (a ParsedArticle) Fields() map[string]string {
	return map[string]string{
		"title":    a.Title,
		"date":     a.Date,
		"source":   a.Source,
		"content":  a.Content,
		"synopsis": a.Synopsis,
		"url":      a.URL,
	}
}

// CSVRow returns the article's values in NewsCSVColumns order.
func (a ParsedArticle) CSVRow() []string {
	fields := a.Fields()
	row := make([]string, len(NewsCSVColumns))
	for i, col := range NewsCSVColumns {
		row[i] = fields[col]
	}
	return row
}
