package sharedtable

// This file implements spec.md §4.5's traversal operations: a lazy,
// weakly-consistent key sequence, and Map/Reduce helpers built on top of
// it. Traversal order follows physical slot index, not chain or insertion
// order (spec.md §4.5: "order is unspecified beyond 'every key present for
// the whole traversal is yielded at least once'"). Each yielded slot is
// protected by its own momentary shared line lock, taken fresh at the
// point of yield and released before the callback runs, so a traversal
// never holds a line lock across caller-supplied code (spec.md §4.5: "the
// lock is released before control returns to the caller's callback").
//
// Every traversal step also takes the global gate in shared mode (spec.md
// §4.4 lists "traversal step" alongside get/set/delete as a shared-mode
// gate acquirer) so that Clear, which takes the gate exclusively, can never
// run concurrently with a Keys/Map/Reduce pass. As with the other public
// operations, WithCallerLock skips both the gate and the per-slot line
// lock for a caller that already holds LockWrite.

// readSlot reads slot i's occupancy/key/value under a momentary shared
// line lock and the global gate held shared for the duration, honoring
// bypass exactly like the other operations in this package. ok is false
// only when the line lock timed out, in which case the slot is skipped
// rather than stalling the whole traversal (spec.md §4.5 tolerates missing
// a concurrently-mutated entry).
func (t *SharedTable) readSlot(i int, bypass bool) (key, val string, occ, ok bool) {
	t.acquireGateShared(bypass)
	defer t.releaseGateShared(bypass)

	if !t.slotLockShared(i, bypass) {
		return "", "", false, false
	}
	occ = t.occupied(i)
	if occ {
		key = t.readKey(i)
		val = t.readValue(i)
	}
	t.slotUnlockShared(i, bypass)
	return key, val, occ, true
}

// writeBack overwrites slot i's value if it is still occupied by key,
// under the global gate held shared (matching Set's gate discipline) and
// the slot's own momentary exclusive line lock.
func (t *SharedTable) writeBack(i int, key string, newUnits []uint16, bypass bool) {
	t.acquireGateShared(bypass)
	defer t.releaseGateShared(bypass)

	if !t.slotLockExclusive(i, bypass) {
		return
	}
	if t.occupied(i) && t.readKey(i) == key {
		t.overwriteValue(i, newUnits)
	}
	t.slotUnlockExclusive(i, bypass)
}

// Cursor iterates a SharedTable's entries in slot order. It is the
// concrete sequence type spec.md §9 calls for "in a language without
// first-class lazy sequences": construct with Keys, then repeatedly call
// Next until it returns false.
//
// A Cursor is not safe for concurrent use by multiple goroutines, though
// the table it iterates may be mutated concurrently by others (spec.md
// §4.5: traversal is weakly consistent under concurrent mutation).
type Cursor struct {
	t      *SharedTable
	pos    int
	bypass bool
	key    string
	val    string
}

// Keys returns a Cursor positioned before the table's first slot. It
// accepts WithCallerLock like the other public operations.
func (t *SharedTable) Keys(opts ...CallOption) *Cursor {
	o := resolveCallOpts(opts)
	return &Cursor{t: t, bypass: o.callerLock}
}

// Next advances the cursor to the next occupied slot and reports whether
// one was found. Key and Value report the entry found there.
func (c *Cursor) Next() bool {
	t := c.t
	for c.pos < t.n {
		i := c.pos
		c.pos++
		key, val, occ, ok := t.readSlot(i, c.bypass)
		if !ok {
			continue
		}
		if occ {
			c.key, c.val = key, val
			return true
		}
	}
	return false
}

// Key returns the key at the cursor's current position.
func (c *Cursor) Key() string { return c.key }

// Value returns the value at the cursor's current position.
func (c *Cursor) Value() string { return c.val }

// Map calls fn for every entry currently in the table, in slot order
// (spec.md §4.5: Map). fn's return value replaces the entry's value; if it
// differs from the value fn was given, the new value is written back
// under the slot's own momentary exclusive lock (spec.md §4.5: "Map's
// write-back, if any, is a separate locked step from the read that fed
// it"). Returning an error from fn stops the traversal and Map returns
// that error. Map accepts WithCallerLock like the other public operations.
//
// fn runs with no line lock or gate held by Map. Calls from fn back into
// the same table are not detected; when Map is called with WithCallerLock,
// such calls must pass WithCallerLock too, or they block on the gate the
// caller holds.
func (t *SharedTable) Map(fn func(key, value string) (string, error), opts ...CallOption) error {
	o := resolveCallOpts(opts)
	for i := 0; i < t.n; i++ {
		key, val, occ, ok := t.readSlot(i, o.callerLock)
		if !ok || !occ {
			continue
		}

		newVal, err := fn(key, val)
		if err != nil {
			return err
		}
		if newVal == val {
			continue
		}
		newUnits := encodeUTF16(newVal)
		if len(newUnits) > t.v {
			return valueTooLong(key, len(newUnits), t.v)
		}
		t.writeBack(i, key, newUnits, o.callerLock)
	}
	return nil
}

// Reduce folds fn over every entry currently in the table, in slot order,
// starting from init (spec.md §4.5: Reduce). Each entry is read under its
// own momentary shared line lock, released before fn runs, matching Map
// and Keys. Reduce accepts WithCallerLock like the other public
// operations. Calls from fn back into the same table are treated as for
// Map: not detected, and they must pass WithCallerLock when Reduce did.
func (t *SharedTable) Reduce(init any, fn func(acc any, key, value string) (any, error), opts ...CallOption) (any, error) {
	o := resolveCallOpts(opts)
	acc := init
	for i := 0; i < t.n; i++ {
		key, val, occ, ok := t.readSlot(i, o.callerLock)
		if !ok || !occ {
			continue
		}

		var err error
		acc, err = fn(acc, key, val)
		if err != nil {
			return acc, err
		}
	}
	return acc, nil
}
