package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/wildscope-ai/wildscope/engine/domain"
)

// staticFetcher serves fixed HTML per URL.
type staticFetcher struct {
	pages map[string]string
}

func (f *staticFetcher) Fetch(_ context.Context, pageURL string) (*goquery.Document, error) {
	html, ok := f.pages[pageURL]
	if !ok {
		return nil, errors.New("not found")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func testRegistry() *Registry {
	return NewRegistry(map[string]Recipe{
		"The Hindu": {
			Article: "div.article",
			Fields: map[string]FieldRule{
				"date":          {Selector: "span.pub-date"},
				"date_fallback": {Selector: "meta[itemprop=datePublished]", Kind: "attr", Attr: "content"},
				"synopsis":      {Selector: "h2.intro"},
				"content":       {Selector: "div.body p", Kind: "paragraphs"},
			},
		},
		"India Today": {
			Article: "article",
			Fields: map[string]FieldRule{
				"date":     {Selector: "span.date"},
				"synopsis": {Selector: "h2.summary"},
				"content":  {Selector: "div.description p", Kind: "paragraphs"},
			},
		},
		"India Today Video": {
			Article: "div.video-page",
			Fields: map[string]FieldRule{
				"date":     {Selector: "span.date"},
				"synopsis": {Selector: "h2.summary"},
				"content":  {Selector: "div.transcript p", Kind: "paragraphs"},
			},
		},
	})
}

const hinduHTML = `<html><body>
<div class="article">
  <span class="pub-date">Nov 12, 2024</span>
  <h2 class="intro">A short standfirst.</h2>
  <div class="body"><p>First para.</p><p>Second para.</p></div>
</div>
</body></html>`

func TestScrapeExtractsAndOverlays(t *testing.T) {
	hit := domain.SearchHit{
		Title:  "Leopard rescued from well",
		Source: "The Hindu",
		Link:   "https://hindu.example/leopard",
	}
	s := New(testRegistry(), &staticFetcher{pages: map[string]string{hit.Link: hinduHTML}}, nil, nil)

	art, err := s.Scrape(context.Background(), hit)
	if err != nil {
		t.Fatal(err)
	}
	if art.Title != hit.Title || art.Source != hit.Source || art.URL != hit.Link {
		t.Errorf("search metadata not overlaid: %+v", art)
	}
	if art.Date != "Nov 12, 2024" {
		t.Errorf("date = %q", art.Date)
	}
	if art.Synopsis != "A short standfirst." {
		t.Errorf("synopsis = %q", art.Synopsis)
	}
	if art.Content != "First para. Second para." {
		t.Errorf("content = %q", art.Content)
	}
}

func TestScrapeNoRecipe(t *testing.T) {
	s := New(testRegistry(), &staticFetcher{}, nil, nil)
	_, err := s.Scrape(context.Background(), domain.SearchHit{Source: "Unknown Gazette", Link: "https://x.example/1"})
	if !errors.Is(err, domain.ErrNoRecipe) {
		t.Fatalf("expected ErrNoRecipe, got %v", err)
	}
}

func TestScrapeIndiaTodayVideoKey(t *testing.T) {
	hit := domain.SearchHit{
		Title:  "Tiger sighting on camera",
		Source: "India Today",
		Link:   "https://indiatoday.example/video/tiger-clip",
	}
	videoHTML := `<html><body><div class="video-page">
<span class="date">Mar 01, 2023</span>
<h2 class="summary">Clip summary.</h2>
<div class="transcript"><p>Transcript text.</p></div>
</div></body></html>`
	s := New(testRegistry(), &staticFetcher{pages: map[string]string{hit.Link: videoHTML}}, nil, nil)

	art, err := s.Scrape(context.Background(), hit)
	if err != nil {
		t.Fatal(err)
	}
	if art.Content != "Transcript text." {
		t.Errorf("video recipe not used: %+v", art)
	}
}

func TestScrapeFirstValidCandidateWins(t *testing.T) {
	hit := domain.SearchHit{Title: "t", Source: "The Hindu", Link: "https://hindu.example/multi"}
	html := `<html><body>
<div class="article"><span class="pub-date">Jan 01, 2024</span></div>
<div class="article">
  <span class="pub-date">Feb 02, 2024</span>
  <h2 class="intro">Second standfirst.</h2>
  <div class="body"><p>Real content.</p></div>
</div>
<div class="article">
  <span class="pub-date">Mar 03, 2024</span>
  <h2 class="intro">Third standfirst.</h2>
  <div class="body"><p>Later content.</p></div>
</div>
</body></html>`
	s := New(testRegistry(), &staticFetcher{pages: map[string]string{hit.Link: html}}, nil, nil)

	art, err := s.Scrape(context.Background(), hit)
	if err != nil {
		t.Fatal(err)
	}
	// first candidate has no content and is skipped; second wins, third ignored
	if art.Date != "Feb 02, 2024" || art.Content != "Real content." {
		t.Errorf("got %+v", art)
	}
}

func TestScrapeNoValidCandidate(t *testing.T) {
	hit := domain.SearchHit{Title: "t", Source: "The Hindu", Link: "https://hindu.example/empty"}
	html := `<html><body><div class="article"><span class="pub-date">Jan 01, 2024</span></div></body></html>`
	s := New(testRegistry(), &staticFetcher{pages: map[string]string{hit.Link: html}}, nil, nil)

	_, err := s.Scrape(context.Background(), hit)
	if !errors.Is(err, domain.ErrNoArticle) {
		t.Fatalf("expected ErrNoArticle, got %v", err)
	}
}

func TestScrapeRecoversRelativeDate(t *testing.T) {
	hit := domain.SearchHit{Title: "t", Source: "The Hindu", Link: "https://hindu.example/ago"}
	html := `<html><body>
<div class="article">
  <span class="pub-date">3 hours ago</span>
  <meta itemprop="datePublished" content="2024-11-12T09:30:00+05:30">
  <h2 class="intro">Standfirst.</h2>
  <div class="body"><p>Body.</p></div>
</div>
</body></html>`
	s := New(testRegistry(), &staticFetcher{pages: map[string]string{hit.Link: html}}, nil, nil)

	art, err := s.Scrape(context.Background(), hit)
	if err != nil {
		t.Fatal(err)
	}
	if art.Date != "Nov 12, 2024" {
		t.Errorf("date not recovered: %q", art.Date)
	}
}

func TestScrapeEmptySynopsisRejected(t *testing.T) {
	hit := domain.SearchHit{Title: "t", Source: "India Today", Link: "https://indiatoday.example/story"}
	// no summary node: every required key must be non-empty, so the
	// candidate is rejected
	html := `<html><body><article>
<span class="date">Apr 05, 2023</span>
<div class="description"><p>Story body.</p></div>
</article></body></html>`
	s := New(testRegistry(), &staticFetcher{pages: map[string]string{hit.Link: html}}, nil, nil)

	_, err := s.Scrape(context.Background(), hit)
	if !errors.Is(err, domain.ErrNoArticle) {
		t.Fatalf("expected ErrNoArticle for empty synopsis, got %v", err)
	}
}

func TestExtractContentSections(t *testing.T) {
	html := `<div><section class="part"><p>A</p><p>B</p></section><section class="part"><p>C</p></section></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	got, err := extractContent(doc.Selection, FieldRule{Selector: "section.part", Kind: "sections", ItemSelector: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "A B C" {
		t.Fatalf("got %q", got)
	}
}
