package testutil

import (
	"testing"
	"time"
)

func TestDeterministicClock_StrictlyIncreasing(t *testing.T) {
	c := NewDeterministicClock()
	prev := c.Now()
	for i := 0; i < 10; i++ {
		next := c.Now()
		if !next.After(prev) {
			t.Fatalf("clock went backwards: %v -> %v", prev, next)
		}
		prev = next
	}
}

func TestDeterministicClock_ResetReproduces(t *testing.T) {
	c := NewDeterministicClock()
	first := c.Now()
	c.Now()
	c.Reset()
	if got := c.Now(); !got.Equal(first) {
		t.Errorf("after Reset, Now() = %v, want %v", got, first)
	}
}

func TestDeterministicClock_StartsAtEpochPlusStep(t *testing.T) {
	c := NewDeterministicClock()
	want := Epoch.Add(time.Second)
	if got := c.Now(); !got.Equal(want) {
		t.Errorf("first Now() = %v, want %v", got, want)
	}
}

func TestSequentialIDs(t *testing.T) {
	gen := SequentialIDs("tag")
	if got := gen(); got != "tag-1" {
		t.Errorf("first id = %q, want tag-1", got)
	}
	if got := gen(); got != "tag-2" {
		t.Errorf("second id = %q, want tag-2", got)
	}
}
