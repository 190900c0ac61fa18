package cache

import (
	"testing"
)

func TestLRUPolicy(t *testing.T) {
	p := newPolicy(LRU)

	p.onInsert("a")
	p.onInsert("b")
	p.onInsert("c")

	// Refresh a: b becomes the coldest.
	p.onAccess("a")

	victim, ok := p.victim()
	if !ok || victim != "b" {
		t.Errorf("Expected victim b, got %q (ok=%v)", victim, ok)
	}

	p.onRemove("b")
	victim, ok = p.victim()
	if !ok || victim != "c" {
		t.Errorf("Expected victim c after removing b, got %q (ok=%v)", victim, ok)
	}
}

func TestLRUPolicy_ReinsertRefreshes(t *testing.T) {
	p := newPolicy(LRU)

	p.onInsert("a")
	p.onInsert("b")
	p.onInsert("a") // re-Set counts as a fresh insert

	victim, ok := p.victim()
	if !ok || victim != "b" {
		t.Errorf("Expected victim b after re-inserting a, got %q (ok=%v)", victim, ok)
	}
}

func TestFIFOPolicy_IgnoresAccess(t *testing.T) {
	p := newPolicy(FIFO)

	p.onInsert("a")
	p.onInsert("b")
	p.onInsert("c")

	// Access must not save the oldest insertion.
	p.onAccess("a")
	p.onAccess("a")

	victim, ok := p.victim()
	if !ok || victim != "a" {
		t.Errorf("Expected victim a, got %q (ok=%v)", victim, ok)
	}
}

func TestLFUPolicy_FrequencyOrder(t *testing.T) {
	p := newPolicy(LFU)

	p.onInsert("a")
	p.onInsert("b")
	p.onInsert("c")

	p.onAccess("a")
	p.onAccess("a")
	p.onAccess("b")

	victim, ok := p.victim()
	if !ok || victim != "c" {
		t.Errorf("Expected victim c (never accessed), got %q (ok=%v)", victim, ok)
	}
}

func TestLFUPolicy_TieBreaksTowardOldestInsertion(t *testing.T) {
	p := newPolicy(LFU)

	p.onInsert("first")
	p.onInsert("second")
	p.onInsert("third")

	// All frequencies equal: the oldest insertion loses, deterministically.
	for i := 0; i < 10; i++ {
		victim, ok := p.victim()
		if !ok || victim != "first" {
			t.Fatalf("Expected victim first on attempt %d, got %q (ok=%v)", i, victim, ok)
		}
	}
}

func TestLFUPolicy_ReinsertResetsFrequency(t *testing.T) {
	p := newPolicy(LFU)

	p.onInsert("a")
	p.onAccess("a")
	p.onAccess("a")
	p.onInsert("b")
	p.onAccess("b")

	// Re-Set a: frequency back to zero, and now the youngest insertion.
	p.onInsert("a")

	victim, ok := p.victim()
	if !ok || victim != "a" {
		t.Errorf("Expected victim a after re-insert reset, got %q (ok=%v)", victim, ok)
	}
}

func TestPolicy_EmptyVictim(t *testing.T) {
	for _, strategy := range []Strategy{LRU, LFU, FIFO} {
		t.Run(string(strategy), func(t *testing.T) {
			p := newPolicy(strategy)
			if _, ok := p.victim(); ok {
				t.Error("Expected no victim from an empty policy")
			}

			p.onInsert("a")
			p.onRemove("a")
			if _, ok := p.victim(); ok {
				t.Error("Expected no victim after removing the only key")
			}
		})
	}
}
