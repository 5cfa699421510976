// Package dedup removes duplicate and out-of-scope search results before
// they reach the scraper.
package dedup

import (
	"sort"
	"strings"

	"github.com/wildscope-ai/wildscope/engine/domain"
)

// News returns hits unique by link in first-seen order. Position and
// Thumbnail vary across identical queries and are zeroed so two harvests of
// the same range produce identical output. Idempotent.
func News(hits []domain.SearchHit) []domain.SearchHit {
	seen := make(map[string]struct{}, len(hits))
	out := make([]domain.SearchHit, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.Link]; ok {
			continue
		}
		seen[h.Link] = struct{}{}
		h.Position = 0
		h.Thumbnail = ""
		out = append(out, h)
	}
	return out
}

// SourceCount is one publisher's article count in a hit set.
type SourceCount struct {
	Source string
	Count  int
}

// TopSources returns the n most frequent sources, ties broken by name.
func TopSources(hits []domain.SearchHit, n int) []SourceCount {
	counts := make(map[string]int)
	for _, h := range hits {
		counts[h.Source]++
	}
	out := make([]SourceCount, 0, len(counts))
	for s, c := range counts {
		out = append(out, SourceCount{Source: s, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Source < out[j].Source
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ScholarFilter drops scholar hits outside a year range, missing every
// mandatory keyword, or repeating an already-kept (title, year) pair.
type ScholarFilter struct {
	StartYear         int
	EndYear           int
	MandatoryKeywords []string
}

type titleYear struct {
	title string
	year  int
}

// Apply partitions hits into kept and removed. A hit is removed when its
// year is outside [StartYear, EndYear], when neither its title nor snippet
// contains any mandatory keyword (case-insensitive substring), or when its
// (title, year) pair repeats an earlier kept hit. Order is preserved on both
// sides. Idempotent over the kept list.
func (f ScholarFilter) Apply(hits []domain.ScholarHit) (kept, removed []domain.ScholarHit) {
	seen := make(map[titleYear]struct{}, len(hits))
	for _, h := range hits {
		if h.Year < f.StartYear || h.Year > f.EndYear {
			removed = append(removed, h)
			continue
		}
		if len(f.MandatoryKeywords) > 0 && !containsAnyKeyword(h, f.MandatoryKeywords) {
			removed = append(removed, h)
			continue
		}
		key := titleYear{title: h.Title, year: h.Year}
		if _, ok := seen[key]; ok {
			removed = append(removed, h)
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, h)
	}
	return kept, removed
}

func containsAnyKeyword(h domain.ScholarHit, keywords []string) bool {
	haystack := strings.ToLower(h.Title + " " + h.Snippet)
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
