package sharedtable

import (
	"errors"
	"strings"
	"testing"
)

func TestNewValidatesParameters(t *testing.T) {
	cases := []struct {
		name    string
		n, k, v int
	}{
		{"zero capacity", 0, 4, 4},
		{"negative capacity", -1, 4, 4},
		{"zero key width", 4, 0, 4},
		{"zero value width", 4, 4, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.n, tc.k, tc.v); err == nil {
				t.Fatalf("New(%d, %d, %d) succeeded, want an error", tc.n, tc.k, tc.v)
			}
		})
	}
}

func TestSetEmptyKeyIsInvalid(t *testing.T) {
	tbl, err := New(8, 8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tbl.Set("", "v"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Set(\"\", ...) = %v, want ErrInvalidKey", err)
	}
	if _, _, err := tbl.Get(""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Get(\"\") = %v, want ErrInvalidKey", err)
	}
	if _, err := tbl.Delete(""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("Delete(\"\") = %v, want ErrInvalidKey", err)
	}
}

func TestSetKeyTooLong(t *testing.T) {
	const k = 4
	tbl, err := New(8, k, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	atLimit := strings.Repeat("x", k)
	if err := tbl.Set(atLimit, "v"); err != nil {
		t.Fatalf("Set at exactly K=%d code units failed: %v", k, err)
	}

	overLimit := strings.Repeat("x", k+1)
	if err := tbl.Set(overLimit, "v"); !errors.Is(err, ErrKeyTooLong) {
		t.Fatalf("Set at K+1=%d code units = %v, want ErrKeyTooLong", k+1, err)
	}
}

func TestSetValueTooLong(t *testing.T) {
	const v = 4
	tbl, err := New(8, 8, v)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := tbl.Set("k1", strings.Repeat("x", v)); err != nil {
		t.Fatalf("Set at exactly V=%d code units failed: %v", v, err)
	}
	if err := tbl.Set("k2", strings.Repeat("x", v+1)); !errors.Is(err, ErrValueTooLong) {
		t.Fatalf("Set at V+1=%d code units = %v, want ErrValueTooLong", v+1, err)
	}
}

func TestClearResetsTable(t *testing.T) {
	tbl, err := New(8, 8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := tbl.Set(k, "v"); err != nil {
			t.Fatalf("Set(%q): %v", k, err)
		}
	}
	tbl.Clear()
	if !tbl.IsZero() {
		t.Fatalf("IsZero() = false after Clear")
	}
	if tbl.Len() != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", tbl.Len())
	}
	if _, ok, _ := tbl.Get("a"); ok {
		t.Fatalf("Get(a) found an entry after Clear")
	}
	if err := tbl.Set("a", "v2"); err != nil {
		t.Fatalf("Set after Clear failed: %v", err)
	}
}

func TestLockWriteExcludesOtherOperations(t *testing.T) {
	tbl, err := New(8, 8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tbl.LockWrite()

	done := make(chan struct{})
	go func() {
		_ = tbl.Set("k", "v")
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("Set completed while LockWrite was held")
	default:
	}

	tbl.UnlockWrite()
	<-done

	got, ok, err := tbl.Get("k")
	if err != nil || !ok || got != "v" {
		t.Fatalf("Get(k) after UnlockWrite = (%q, %v, %v), want (v, true, nil)", got, ok, err)
	}
}
