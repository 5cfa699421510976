// Package harvest orchestrates full collection runs: search, dedup, scrape,
// state tracking, embedding, and field extraction.
package harvest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wildscope-ai/wildscope/engine/search"
)

// NewsConfig is the run configuration for a news harvest, passed to the cmd
// as one JSON blob and stored as the collection's config.json.
type NewsConfig struct {
	Keyphrase  string `json:"keyphrase"`
	StartMonth string `json:"start_month"` // "Jan 2023"
	EndMonth   string `json:"end_month"`
	DataDir    string `json:"data_dir"`
	Collection string `json:"collection"`
	Update     bool   `json:"update,omitempty"`
}

// ParseNewsConfig decodes and validates a news run configuration.
func ParseNewsConfig(raw []byte) (NewsConfig, error) {
	var cfg NewsConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return NewsConfig{}, fmt.Errorf("harvest: bad run config: %w", err)
	}
	if cfg.Keyphrase == "" || cfg.Collection == "" || cfg.DataDir == "" {
		return NewsConfig{}, fmt.Errorf("harvest: run config needs keyphrase, collection, and data_dir")
	}
	if _, err := search.ParseMonthYear(cfg.StartMonth); err != nil {
		return NewsConfig{}, err
	}
	if _, err := search.ParseMonthYear(cfg.EndMonth); err != nil {
		return NewsConfig{}, err
	}
	return cfg, nil
}

// ScholarConfig is the run configuration for a scholar harvest.
type ScholarConfig struct {
	Keyphrase         string   `json:"keyphrase"`
	StartYear         int      `json:"start_year"`
	EndYear           int      `json:"end_year"`
	PagesPerYear      int      `json:"pages_per_year,omitempty"`
	MandatoryKeywords []string `json:"mandatory_keywords,omitempty"`
	DataDir           string   `json:"data_dir"`
	Collection        string   `json:"collection"`
	PDFDir            string   `json:"pdf_dir,omitempty"`
	Update            bool     `json:"update,omitempty"`
}

// ParseScholarConfig decodes and validates a scholar run configuration.
func ParseScholarConfig(raw []byte) (ScholarConfig, error) {
	var cfg ScholarConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return ScholarConfig{}, fmt.Errorf("harvest: bad run config: %w", err)
	}
	if cfg.Keyphrase == "" || cfg.Collection == "" || cfg.DataDir == "" {
		return ScholarConfig{}, fmt.Errorf("harvest: run config needs keyphrase, collection, and data_dir")
	}
	if cfg.StartYear == 0 || cfg.EndYear == 0 || cfg.EndYear < cfg.StartYear {
		return ScholarConfig{}, fmt.Errorf("harvest: run config needs a valid start_year..end_year range")
	}
	if cfg.PagesPerYear <= 0 {
		cfg.PagesPerYear = 3
	}
	return cfg, nil
}

// DefaultCrawlDelay is the politeness pause between page fetches.
const DefaultCrawlDelay = 2 * time.Second

// DefaultVectorDims matches the embedding model's output size.
const DefaultVectorDims = 1536
