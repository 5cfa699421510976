package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wildscope-ai/wildscope/engine/domain"
)

// Scraper extracts articles from publisher pages using registry recipes.
type Scraper struct {
	registry *Registry
	fetch    Fetcher
	render   Fetcher
	logger   *slog.Logger
}

// New creates a scraper. render may be nil, in which case recipes asking for
// rendering fall back to the plain fetcher.
func New(registry *Registry, fetch, render Fetcher, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{registry: registry, fetch: fetch, render: render, logger: logger}
}

// Scrape fetches the hit's URL and extracts one article using the source's
// recipe. It returns domain.ErrNoRecipe when the source is not in the
// registry and domain.ErrNoArticle when no candidate on the page passes the
// acceptance gate. Title, Source, and URL always come from the search hit.
func (s *Scraper) Scrape(ctx context.Context, hit domain.SearchHit) (domain.ParsedArticle, error) {
	rec, key, ok := s.registry.Lookup(hit.Source, hit.Link)
	if !ok {
		return domain.ParsedArticle{}, fmt.Errorf("scrape: source %q: %w", hit.Source, domain.ErrNoRecipe)
	}

	fetcher := s.fetch
	if rec.Render && s.render != nil {
		fetcher = s.render
	}
	doc, err := fetcher.Fetch(ctx, hit.Link)
	if err != nil {
		return domain.ParsedArticle{}, err
	}

	var candidates []*goquery.Selection
	if rec.Article == "" {
		candidates = []*goquery.Selection{doc.Selection}
	} else {
		doc.Find(rec.Article).Each(func(_ int, sel *goquery.Selection) {
			candidates = append(candidates, sel)
		})
	}

	for i, sel := range candidates {
		art, err := s.extract(sel, rec, hit)
		if err != nil {
			s.logger.Debug("candidate rejected",
				"url", hit.Link, "recipe", key, "candidate", i, "error", err)
			continue
		}
		return art, nil
	}
	return domain.ParsedArticle{}, fmt.Errorf("scrape: %s: %w", hit.Link, domain.ErrNoArticle)
}

// extract builds one candidate article from an article node. The first
// structurally valid candidate wins, so any error here just moves the
// scraper to the next node.
func (s *Scraper) extract(sel *goquery.Selection, rec Recipe, hit domain.SearchHit) (domain.ParsedArticle, error) {
	art := domain.ParsedArticle{
		Title:  hit.Title,
		Source: hit.Source,
		URL:    hit.Link,
	}

	if rule, ok := rec.Fields["date"]; ok {
		art.Date = extractText(sel, rule)
	}
	if rule, ok := rec.Fields["synopsis"]; ok {
		art.Synopsis = extractText(sel, rule)
	}

	rule, ok := rec.Fields["content"]
	if !ok {
		return domain.ParsedArticle{}, fmt.Errorf("recipe has no content rule: %w", domain.ErrMissingField)
	}
	content, err := extractContent(sel, rule)
	if err != nil {
		return domain.ParsedArticle{}, err
	}
	art.Content = content

	if strings.Contains(strings.ToLower(art.Date), "ago") {
		fallback := ""
		if rule, ok := rec.Fields["date_fallback"]; ok {
			fallback = extractText(sel, rule)
		}
		art.Date = RecoverDate(art.Date, fallback)
	}

	if err := domain.ValidateArticle(art, domain.NewsRequiredKeys); err != nil {
		return domain.ParsedArticle{}, err
	}
	return art, nil
}

func extractText(sel *goquery.Selection, rule FieldRule) string {
	found := sel.Find(rule.Selector).First()
	if rule.Kind == "attr" {
		v, _ := found.Attr(rule.Attr)
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(found.Text())
}

// extractContent assembles the content fragments a rule selects and
// flattens them to a single string. Shapes the flattener does not recognize
// surface as domain.ErrMalformedContent and drop the candidate.
func extractContent(sel *goquery.Selection, rule FieldRule) (string, error) {
	switch rule.Kind {
	case "", "text":
		return strings.TrimSpace(sel.Find(rule.Selector).First().Text()), nil

	case "paragraphs":
		var content domain.Content
		sel.Find(rule.Selector).Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				content.Fragments = append(content.Fragments, domain.Fragment{Para: text})
			}
		})
		return content.Flatten()

	case "sections":
		itemSel := rule.ItemSelector
		if itemSel == "" {
			itemSel = "p"
		}
		var content domain.Content
		sel.Find(rule.Selector).Each(func(_ int, section *goquery.Selection) {
			var inner []domain.Fragment
			section.Find(itemSel).Each(func(_ int, p *goquery.Selection) {
				if text := strings.TrimSpace(p.Text()); text != "" {
					inner = append(inner, domain.Fragment{Para: text})
				}
			})
			if len(inner) > 0 {
				content.Fragments = append(content.Fragments, domain.Fragment{Section: inner})
			}
		})
		return content.Flatten()

	default:
		return "", fmt.Errorf("scrape: unknown content kind %q: %w", rule.Kind, errors.ErrUnsupported)
	}
}
