package cache

import (
	"bytes"
	"testing"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU(4, 1024)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned ok")
	}

	c.Set("a", []byte("alpha"))
	got, ok := c.Get("a")
	if !ok || !bytes.Equal(got, []byte("alpha")) {
		t.Errorf("Get(a) = %q, %v", got, ok)
	}

	c.Set("a", []byte("alpha2"))
	got, _ = c.Get("a")
	if !bytes.Equal(got, []byte("alpha2")) {
		t.Errorf("Get(a) after update = %q", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if c.Size() != 6 {
		t.Errorf("Size = %d, want 6", c.Size())
	}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU(2, 1024)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Get("a") // a is now the most recent
	c.Set("c", []byte("3"))

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived")
	}
}

func TestLRUSizeBound(t *testing.T) {
	c := NewLRU(100, 10)

	c.Set("a", []byte("12345"))
	c.Set("b", []byte("12345"))
	c.Set("c", []byte("12345")) // pushes out a

	if _, ok := c.Get("a"); ok {
		t.Error("a should have been evicted on size pressure")
	}
	if c.Size() > 10 {
		t.Errorf("Size = %d exceeds bound", c.Size())
	}

	// oversized entries are ignored outright
	c.Set("huge", make([]byte, 64))
	if _, ok := c.Get("huge"); ok {
		t.Error("oversized entry was cached")
	}
}

func TestLRUDelete(t *testing.T) {
	c := NewLRU(4, 1024)
	c.Set("a", []byte("1"))
	c.Delete("a")
	c.Delete("a") // idempotent

	if _, ok := c.Get("a"); ok {
		t.Error("a still present after Delete")
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d, want 0", c.Size())
	}
}
