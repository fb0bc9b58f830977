package session

import "testing"

func TestBindEvictsPriorSessionForSameUser(t *testing.T) {
	r := NewRegistry()
	first := New(42, "alice")
	second := New(42, "alice")

	if _, existed := r.Bind(first); existed {
		t.Fatal("expected no prior session on first bind")
	}

	evicted, existed := r.Bind(second)
	if !existed || evicted != first {
		t.Fatalf("expected second bind to evict first, got existed=%v evicted=%v", existed, evicted)
	}

	current, ok := r.Get(42)
	if !ok || current != second {
		t.Fatal("expected second session to be the current one")
	}
}

func TestUnbindIgnoresStaleSession(t *testing.T) {
	r := NewRegistry()
	first := New(42, "alice")
	second := New(42, "alice")

	r.Bind(first)
	r.Bind(second)

	// Tearing down the evicted first connection must not remove second.
	r.Unbind(first)

	current, ok := r.Get(42)
	if !ok || current != second {
		t.Fatal("stale unbind removed the current session")
	}
}

func TestUnbindRemovesCurrentSession(t *testing.T) {
	r := NewRegistry()
	sess := New(1, "bob")
	r.Bind(sess)
	r.Unbind(sess)

	if _, ok := r.Get(1); ok {
		t.Fatal("expected session to be gone after unbind")
	}
}

func TestRegistryCountAndAll(t *testing.T) {
	r := NewRegistry()
	r.Bind(New(1, "a"))
	r.Bind(New(2, "b"))

	if r.Count() != 2 {
		t.Fatalf("count = %d, want 2", r.Count())
	}
	if len(r.All()) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(r.All()))
	}
}
