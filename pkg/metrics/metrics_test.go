package metrics

import (
	"strings"
	"testing"
)

func TestCounterAndGauge(t *testing.T) {
	reg := New()
	c := reg.Counter("items_total", "items processed")
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Fatalf("counter = %d, want 5", c.Value())
	}

	g := reg.Gauge("inflight", "")
	g.Set(3)
	g.Dec()
	if g.Value() != 2 {
		t.Fatalf("gauge = %d, want 2", g.Value())
	}

	if got := reg.Counter("items_total", ""); got != c {
		t.Fatal("expected same counter instance on repeat lookup")
	}
}

func TestWithLabels(t *testing.T) {
	got := WithLabels("requests_total", "status", "ok", "publisher", "toi")
	want := `requests_total{status="ok",publisher="toi"}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if WithLabels("x", "odd") != "x" {
		t.Fatal("odd label count should return the bare name")
	}
}

func TestRender(t *testing.T) {
	reg := New()
	reg.Counter(WithLabels("requests_total", "status", "ok"), "total requests").Add(7)
	reg.Counter(WithLabels("requests_total", "status", "err"), "").Inc()
	reg.Gauge("queue_depth", "").Set(2)
	h := reg.Histogram("duration_seconds", "", []float64{1, 10})
	h.Observe(0.5)
	h.Observe(5)
	h.Observe(100)

	out := reg.Render()
	for _, want := range []string{
		"# HELP requests_total total requests",
		"# TYPE requests_total counter",
		`requests_total{status="err"} 1`,
		`requests_total{status="ok"} 7`,
		"queue_depth 2",
		`duration_seconds_bucket{le="1"} 1`,
		`duration_seconds_bucket{le="10"} 2`,
		`duration_seconds_bucket{le="+Inf"} 3`,
		"duration_seconds_count 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}
