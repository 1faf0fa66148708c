package sharedtable

import "sync/atomic"

// The three per-slot scalar arrays (keyLen, next, valLen) are read by the
// free-slot scanner and by chain walks that haven't yet taken a line lock
// on the slot they're inspecting (spec.md §9: the free-slot cursor's scan
// is "advisory only"). Every access therefore goes through sync/atomic,
// even the ones taken while already holding the slot's line lock, so that
// no access is a data race under Go's memory model regardless of whether
// the caller currently holds the lock.

func (t *SharedTable) loadKeyLen(i int) int32   { return atomic.LoadInt32(&t.keyLen[i]) }
func (t *SharedTable) storeKeyLen(i int, v int32) { atomic.StoreInt32(&t.keyLen[i], v) }

func (t *SharedTable) loadNext(i int) int32   { return atomic.LoadInt32(&t.next[i]) }
func (t *SharedTable) storeNext(i int, v int32) { atomic.StoreInt32(&t.next[i], v) }

func (t *SharedTable) loadValLen(i int) int32   { return atomic.LoadInt32(&t.valLen[i]) }
func (t *SharedTable) storeValLen(i int, v int32) { atomic.StoreInt32(&t.valLen[i], v) }

func (t *SharedTable) occupied(i int) bool { return t.loadKeyLen(i) != 0 }

// readKey returns the decoded string key stored in slot i. Callers must
// hold at least a shared line lock on i and must have already confirmed
// occupancy.
func (t *SharedTable) readKey(i int) string {
	n := int(t.loadKeyLen(i))
	units := t.keyCells[i*t.k : i*t.k+n]
	return decodeUTF16(units)
}

// readValue returns the decoded string value stored in slot i. Callers
// must hold at least a shared line lock on i and must have already
// confirmed occupancy.
func (t *SharedTable) readValue(i int) string {
	n := int(t.loadValLen(i))
	units := t.valCells[i*t.v : i*t.v+n]
	return decodeUTF16(units)
}

// writeEntry writes key/value/next into slot i and marks it occupied.
// Callers must hold the slot's line lock exclusively.
func (t *SharedTable) writeEntry(i int, keyUnits, valUnits []uint16, next int32) {
	copy(t.keyCells[i*t.k:], keyUnits)
	copy(t.valCells[i*t.v:], valUnits)
	t.storeValLen(i, int32(len(valUnits)))
	t.storeNext(i, next)
	// keyLen is written last: it is the occupancy flag (spec.md §3
	// invariant 1), so every other field must already be in place before
	// a concurrent reader that observes keyLen != 0 can see them.
	t.storeKeyLen(i, int32(len(keyUnits)))
}

// overwriteValue replaces slot i's value in place without touching its key
// or next pointer. Callers must hold the slot's line lock exclusively.
func (t *SharedTable) overwriteValue(i int, valUnits []uint16) {
	copy(t.valCells[i*t.v:], valUnits)
	t.storeValLen(i, int32(len(valUnits)))
}

// clearSlot resets slot i to empty. Callers must hold the slot's line lock
// exclusively.
func (t *SharedTable) clearSlot(i int) {
	t.storeKeyLen(i, 0)
	t.storeValLen(i, 0)
	t.storeNext(i, t.invalid())
}

// moveEntry copies slot src's full content (key, value, next) into slot
// dst and clears src. Callers must hold exclusive line locks on both src
// and dst.
func (t *SharedTable) moveEntry(dst, src int) {
	n := int(t.loadKeyLen(src))
	m := int(t.loadValLen(src))
	copy(t.keyCells[dst*t.k:], t.keyCells[src*t.k:src*t.k+n])
	copy(t.valCells[dst*t.v:], t.valCells[src*t.v:src*t.v+m])
	t.storeValLen(dst, int32(m))
	t.storeNext(dst, t.loadNext(src))
	t.storeKeyLen(dst, int32(n))
	t.clearSlot(src)
}
