package fn

import (
	"context"
	"errors"
	"testing"
)

func TestResultOkErr(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("expected ok")
	}
	v, err := r.Unwrap()
	if v != 42 || err != nil {
		t.Fatalf("unwrap: %v %v", v, err)
	}

	e := Err[int](errors.New("boom"))
	if e.IsOk() {
		t.Fatal("expected error")
	}
	if got := e.UnwrapOr(7); got != 7 {
		t.Fatalf("UnwrapOr: %d", got)
	}
}

func TestFromPair(t *testing.T) {
	if r := FromPair(1, nil); r.IsErr() {
		t.Fatal("expected ok")
	}
	if r := FromPair(0, errors.New("x")); r.IsOk() {
		t.Fatal("expected err")
	}
}

func TestThenShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	first := func(_ context.Context, n int) Result[int] { return Err[int](boom) }
	called := false
	second := func(_ context.Context, n int) Result[string] {
		called = true
		return Ok("never")
	}
	r := Then(first, second)(context.Background(), 1)
	if !r.IsErr() {
		t.Fatal("expected error")
	}
	if called {
		t.Fatal("second stage must not run after failure")
	}
	_, err := r.Unwrap()
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestThenComposes(t *testing.T) {
	double := MapStage(func(n int) int { return n * 2 })
	str := MapStage(func(n int) int { return n + 1 })
	r := Then(double, str)(context.Background(), 10)
	v, _ := r.Unwrap()
	if v != 21 {
		t.Fatalf("got %d", v)
	}
}

func TestTapStage(t *testing.T) {
	seen := 0
	tap := TapStage(func(_ context.Context, n int) { seen = n })
	r := tap(context.Background(), 5)
	if v, _ := r.Unwrap(); v != 5 || seen != 5 {
		t.Fatalf("tap: v=%d seen=%d", v, seen)
	}
}

func TestTracedStagePassesThrough(t *testing.T) {
	stage := TracedStage("test", MapStage(func(n int) int { return n + 1 }))
	r := stage(context.Background(), 1)
	if v, _ := r.Unwrap(); v != 2 {
		t.Fatalf("got %d", v)
	}
}
