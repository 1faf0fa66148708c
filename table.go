package sharedtable

import "time"

// withRetry runs op until it reports no restart is needed, backing off
// between attempts, and surfaces ErrDeadlock once cfg.lineLockMaxRetries is
// exhausted (spec.md §4.4/§7: deadlock recovery is "release everything,
// back off, retry", bounded so a pathologically unlucky caller eventually
// gets a real error instead of spinning forever).
func (t *SharedTable) withRetry(op func() (restart bool, err error)) error {
	for attempt := 0; attempt < t.cfg.lineLockMaxRetries; attempt++ {
		restart, err := op()
		if !restart {
			return err
		}
		t.stats.restarts.Add(1)
		time.Sleep(backoffDuration(attempt))
	}
	return ErrDeadlock
}

// Set inserts key with value, or overwrites value if key is already
// present (spec.md §4.3/§6: Set/Insert). It returns ErrInvalidKey for the
// empty key, ErrKeyTooLong/ErrValueTooLong if either exceeds the table's
// configured K/V, and ErrTableFull if no free slot remains for a new key.
//
// Set accepts WithCallerLock (spec.md §4.4/§6/§8 scenario 6): pass it when
// the calling goroutine already holds LockWrite, and Set will skip both the
// global gate and every per-slot line lock it would otherwise take.
func (t *SharedTable) Set(key, value string, opts ...CallOption) error {
	if key == "" {
		return ErrInvalidKey
	}
	keyUnits := encodeUTF16(key)
	if len(keyUnits) > t.k {
		return keyTooLong(key, len(keyUnits), t.k)
	}
	valUnits := encodeUTF16(value)
	if len(valUnits) > t.v {
		return valueTooLong(key, len(valUnits), t.v)
	}

	o := resolveCallOpts(opts)
	t.acquireGateShared(o.callerLock)
	defer t.releaseGateShared(o.callerLock)

	return t.withRetry(func() (bool, error) {
		return t.insert(key, keyUnits, valUnits, o.callerLock)
	})
}

// Get returns the value stored for key and whether key was present
// (spec.md §4.3/§6: Lookup). It accepts WithCallerLock like Set.
func (t *SharedTable) Get(key string, opts ...CallOption) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}

	o := resolveCallOpts(opts)
	t.acquireGateShared(o.callerLock)
	defer t.releaseGateShared(o.callerLock)

	var value string
	var found bool
	err := t.withRetry(func() (bool, error) {
		idx, ok, restart := t.lookup(key, o.callerLock)
		if restart {
			return true, nil
		}
		found = ok
		if ok {
			if !t.slotLockShared(idx, o.callerLock) {
				found = false
				return true, nil
			}
			if t.occupied(idx) && t.readKey(idx) == key {
				value = t.readValue(idx)
			} else {
				found = false
			}
			t.slotUnlockShared(idx, o.callerLock)
		}
		return false, nil
	})
	return value, found, err
}

// Has reports whether key is present. It runs the same lookup as Get
// (which also reads the value; Has discards it) and accepts WithCallerLock
// like Set.
func (t *SharedTable) Has(key string, opts ...CallOption) (bool, error) {
	_, found, err := t.Get(key, opts...)
	return found, err
}

// Delete removes key if present and reports whether it was removed
// (spec.md §4.3/§6: Delete). Delete takes the global gate exclusively,
// since its rechaining step may touch several slots across the affected
// chain (spec.md §4.4), unless WithCallerLock says the caller already
// holds it.
func (t *SharedTable) Delete(key string, opts ...CallOption) (bool, error) {
	if key == "" {
		return false, ErrInvalidKey
	}

	o := resolveCallOpts(opts)
	t.acquireGateExclusive(o.callerLock)
	defer t.releaseGateExclusive(o.callerLock)

	var deleted bool
	err := t.withRetry(func() (bool, error) {
		d, restart := t.deleteKey(key, o.callerLock)
		deleted = d
		return restart, nil
	})
	return deleted, err
}

// LockWrite takes the global gate exclusively and holds it until
// UnlockWrite is called, giving the caller a stable, non-moving view of
// the table for the duration (spec.md §4.4/§6: "a caller-scoped override
// that excludes all other readers and writers"). Concurrent Set/Get/
// Delete/traversal calls from other goroutines block until UnlockWrite.
// Operations called from the same goroutine while the gate is held must
// pass WithCallerLock, or they self-deadlock against this call.
func (t *SharedTable) LockWrite() {
	t.gate.acquireExclusive()
}

// UnlockWrite releases a lock taken by LockWrite.
func (t *SharedTable) UnlockWrite() {
	t.gate.releaseExclusive()
}

// Clear removes every entry, resetting the table to its just-constructed
// state (spec.md §6). It takes the global gate exclusively for the
// duration; per spec.md §6's interface table, clear has no caller-scoped
// override (it is always exclusive). It still takes each slot's own line
// lock in turn and resets state through the same atomic accessors every
// other operation uses, for consistency: the gate already excludes every
// other line-lock user, so each acquisition below succeeds immediately.
func (t *SharedTable) Clear() {
	t.gate.acquireExclusive()
	defer t.gate.releaseExclusive()

	invalid := t.invalid()
	for i := 0; i < t.n; i++ {
		t.locks[i].acquireExclusive(t.cfg.lineLockTimeout)
		t.storeKeyLen(i, 0)
		t.storeValLen(i, 0)
		t.storeNext(i, invalid)
		t.locks[i].unlockExclusive()
	}
	t.size.Store(0)
	t.cursor.Store(0)
}
