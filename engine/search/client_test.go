package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/wildscope-ai/wildscope/engine/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithClient("test-key", srv.URL, "India", srv.Client(), nil)
}

func hitsPage(n, offset int) []domain.SearchHit {
	out := make([]domain.SearchHit, n)
	for i := range out {
		out[i] = domain.SearchHit{
			Title: fmt.Sprintf("article %d", offset+i),
			Link:  fmt.Sprintf("https://example.com/a/%d", offset+i),
		}
	}
	return out
}

func TestFetchNewsWindowStopsOnShortPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("start"))
		n := newsPageSize
		if offset >= 20 {
			n = 3 // short page ends pagination
		}
		json.NewEncoder(w).Encode(map[string]any{"news_results": hitsPage(n, offset)})
	})

	hits, err := c.FetchNewsWindow(context.Background(), "tiger conservation", Window{Start: "01/01/2023", End: "01/15/2023"})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 23 {
		t.Fatalf("got %d hits, want 23", len(hits))
	}
}

func TestFetchNewsWindowKeepsPartialOnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("start"))
		if offset >= 10 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"news_results": hitsPage(newsPageSize, offset)})
	})

	hits, err := c.FetchNewsWindow(context.Background(), "tiger", Window{Start: "01/01/2023", End: "01/15/2023"})
	if err != nil {
		t.Fatalf("request errors must be swallowed, got %v", err)
	}
	if len(hits) != newsPageSize {
		t.Fatalf("got %d hits, want the first full page", len(hits))
	}
}

func TestFetchNewsWindowSendsDateRange(t *testing.T) {
	var gotTBS, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotTBS = r.URL.Query().Get("tbs")
		gotKey = r.URL.Query().Get("api_key")
		json.NewEncoder(w).Encode(map[string]any{"news_results": []domain.SearchHit{}})
	})

	if _, err := c.FetchNewsWindow(context.Background(), "q", Window{Start: "03/16/2022", End: "03/31/2022"}); err != nil {
		t.Fatal(err)
	}
	if gotTBS != "cdr:1,cd_min:03/16/2022,cd_max:03/31/2022" {
		t.Errorf("tbs = %q", gotTBS)
	}
	if gotKey != "test-key" {
		t.Errorf("api_key = %q", gotKey)
	}
}

func TestWindows(t *testing.T) {
	start, err := ParseMonthYear("Jan 2023")
	if err != nil {
		t.Fatal(err)
	}
	end, err := ParseMonthYear("Feb 2023")
	if err != nil {
		t.Fatal(err)
	}

	got := Windows(start, end)
	want := []Window{
		{Start: "01/01/2023", End: "01/15/2023"},
		{Start: "01/16/2023", End: "01/31/2023"},
		{Start: "02/01/2023", End: "02/15/2023"},
		{Start: "02/16/2023", End: "02/28/2023"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d windows, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("window %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWindowsLeapYear(t *testing.T) {
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	got := Windows(feb, feb)
	if got[1].End != "02/29/2024" {
		t.Fatalf("second half of Feb 2024 ends %s", got[1].End)
	}
}

func TestParseMonthYearInvalid(t *testing.T) {
	if _, err := ParseMonthYear("sometime 2023"); err == nil {
		t.Fatal("expected error")
	}
}
