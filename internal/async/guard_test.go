package async

import (
	"sync"
	"testing"
)

func TestGuardLatestWins(t *testing.T) {
	var g Guard

	a := g.Begin()
	b := g.Begin()

	// B resolves first and applies.
	got := ""
	if ok := g.Apply(b, func() { got = "b" }); !ok {
		t.Fatal("latest token must apply")
	}
	// A arrives late and is dropped.
	if ok := g.Apply(a, func() { got = "a" }); ok {
		t.Fatal("stale token must not apply")
	}
	if got != "b" {
		t.Fatalf("got = %q, want b", got)
	}
}

func TestGuardCurrent(t *testing.T) {
	var g Guard
	a := g.Begin()
	if !g.Current(a) {
		t.Fatal("a should be current")
	}
	b := g.Begin()
	if g.Current(a) {
		t.Fatal("a should be superseded")
	}
	if !g.Current(b) {
		t.Fatal("b should be current")
	}
}

func TestGuardConcurrentBegin(t *testing.T) {
	var g Guard
	var wg sync.WaitGroup
	tokens := make([]uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i] = g.Begin()
		}(i)
	}
	wg.Wait()

	seen := map[uint64]bool{}
	for _, tok := range tokens {
		if seen[tok] {
			t.Fatalf("duplicate token %d", tok)
		}
		seen[tok] = true
	}
}
