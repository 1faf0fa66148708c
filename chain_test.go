package sharedtable

import (
	"errors"
	"testing"
)

func TestBasicSetGetKeys(t *testing.T) {
	tbl, err := New(16, 32, 32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	entries := map[string]string{
		"alpha": "1",
		"beta":  "2",
		"gamma": "3",
	}
	for k, v := range entries {
		if err := tbl.Set(k, v); err != nil {
			t.Fatalf("Set(%q, %q): %v", k, v, err)
		}
	}
	if tbl.Len() != len(entries) {
		t.Fatalf("Len() = %d, want %d", tbl.Len(), len(entries))
	}

	for k, want := range entries {
		got, ok, err := tbl.Get(k)
		if err != nil {
			t.Fatalf("Get(%q): %v", k, err)
		}
		if !ok {
			t.Fatalf("Get(%q): not found", k)
		}
		if got != want {
			t.Fatalf("Get(%q) = %q, want %q", k, got, want)
		}
	}

	seen := map[string]string{}
	c := tbl.Keys()
	for c.Next() {
		seen[c.Key()] = c.Value()
	}
	if len(seen) != len(entries) {
		t.Fatalf("Keys() yielded %d entries, want %d", len(seen), len(entries))
	}
	for k, v := range entries {
		if seen[k] != v {
			t.Fatalf("Keys() entry %q = %q, want %q", k, seen[k], v)
		}
	}
}

// collisionHash sends "a" and "b" to slot 0 and everything else to slot 1,
// forcing "a" and "b" onto one chain regardless of table size, mirroring
// the forced-collision scenario spec.md walks through by hand.
func collisionHash(key string, n int) int {
	if key == "a" || key == "b" {
		return 0
	}
	if n == 1 {
		return 0
	}
	return 1
}

func TestForcedCollisionChaining(t *testing.T) {
	tbl, err := New(4, 8, 8, WithHash(collisionHash))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := tbl.Set("a", "1"); err != nil {
		t.Fatalf("Set(a): %v", err)
	}
	if err := tbl.Set("b", "2"); err != nil {
		t.Fatalf("Set(b): %v", err)
	}

	va, ok, err := tbl.Get("a")
	if err != nil || !ok || va != "1" {
		t.Fatalf("Get(a) = (%q, %v, %v), want (1, true, nil)", va, ok, err)
	}
	vb, ok, err := tbl.Get("b")
	if err != nil || !ok || vb != "2" {
		t.Fatalf("Get(b) = (%q, %v, %v), want (2, true, nil)", vb, ok, err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
}

func TestForcedCollisionThenDeleteRechains(t *testing.T) {
	tbl, err := New(4, 8, 8, WithHash(collisionHash))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tbl.Set("a", "1"); err != nil {
		t.Fatalf("Set(a): %v", err)
	}
	if err := tbl.Set("b", "2"); err != nil {
		t.Fatalf("Set(b): %v", err)
	}

	deleted, err := tbl.Delete("a")
	if err != nil || !deleted {
		t.Fatalf("Delete(a) = (%v, %v), want (true, nil)", deleted, err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
	_, ok, err := tbl.Get("a")
	if err != nil || ok {
		t.Fatalf("Get(a) after delete = (found=%v, err=%v), want (false, nil)", ok, err)
	}
	vb, ok, err := tbl.Get("b")
	if err != nil || !ok || vb != "2" {
		t.Fatalf("Get(b) after deleting a = (%q, %v, %v), want (2, true, nil)", vb, ok, err)
	}
}

func TestFillToCapacityThenTableFull(t *testing.T) {
	const n = 8
	tbl, err := New(n, 8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < n; i++ {
		key := string(rune('a' + i))
		if err := tbl.Set(key, "v"); err != nil {
			t.Fatalf("Set(%q) #%d: %v", key, i, err)
		}
	}
	if tbl.Len() != n {
		t.Fatalf("Len() = %d, want %d", tbl.Len(), n)
	}

	err = tbl.Set("overflow", "v")
	if err == nil {
		t.Fatalf("Set on a full table succeeded, want ErrTableFull")
	}
	if !errors.Is(err, ErrTableFull) {
		t.Fatalf("Set on a full table returned %v, want ErrTableFull", err)
	}
}

func TestSetOverwritesExistingKey(t *testing.T) {
	tbl, err := New(8, 8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tbl.Set("k", "first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tbl.Set("k", "second"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after overwrite", tbl.Len())
	}
	got, ok, err := tbl.Get("k")
	if err != nil || !ok || got != "second" {
		t.Fatalf("Get(k) = (%q, %v, %v), want (second, true, nil)", got, ok, err)
	}
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	tbl, err := New(8, 8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	deleted, err := tbl.Delete("missing")
	if err != nil || deleted {
		t.Fatalf("Delete(missing) = (%v, %v), want (false, nil)", deleted, err)
	}
}
