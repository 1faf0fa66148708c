package sharedtable

import (
	"sync/atomic"
	"time"
)

// lineLock is a single slot's "line-lock word" (spec.md §3): zero means
// unlocked, a positive value means writer-held (exclusive), a negative
// value is the (negated) count of shared readers currently holding it.
//
// This is the same encoding trick the teacher uses for bucketOf's spinlock
// (a single word doubling as lock state), adapted from a single stolen bit
// to a full shared/exclusive counter since spec.md's line locks need real
// reader/writer semantics, not just mutual exclusion.
type lineLock struct {
	// CacheLineSize padding around the word itself, exactly as the teacher
	// pads bucketOf/flatBucketOf (sized via golang.org/x/sys/cpu in
	// layout.go's CacheLineSize) to keep two goroutines contending on
	// adjacent slots from thrashing the same cache line.
	_    [CacheLineSize - 4]byte
	word atomic.Int32
}

// tryLockShared attempts to add one more shared holder. Fails if a writer
// currently holds the lock.
func (l *lineLock) tryLockShared() bool {
	for {
		cur := l.word.Load()
		if cur > 0 {
			return false
		}
		if l.word.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// tryLockExclusive attempts to take the lock for exclusive (writer) use.
// Fails if any reader or writer currently holds it.
func (l *lineLock) tryLockExclusive() bool {
	return l.word.CompareAndSwap(0, 1)
}

func (l *lineLock) unlockShared() {
	l.word.Add(1)
}

func (l *lineLock) unlockExclusive() {
	l.word.Store(0)
}

// acquireShared spins/backs off until it holds the lock or timeout elapses,
// returning false on timeout. This is the bounded-timeout acquisition
// spec.md §4.4 requires for deadlock recovery: an operation that can't get
// every line lock it needs within the deadline releases everything it holds
// and restarts (see table.go's withRetry), rather than blocking forever.
func (l *lineLock) acquireShared(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	spins := 0
	for {
		if l.tryLockShared() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		spinThenBackoff(&spins)
	}
}

func (l *lineLock) acquireExclusive(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	spins := 0
	for {
		if l.tryLockExclusive() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		spinThenBackoff(&spins)
	}
}

// slotLockShared/slotLockExclusive and their unlock counterparts are the
// caller-scoped-override-aware entry points chain.go and traverse.go use
// instead of calling t.locks[i] directly. When bypass is true the calling
// goroutine already holds the global gate exclusively (spec.md §4.4's
// lockWrite option), which already serializes out every other writer and
// reader, so taking the slot's own line lock on top of that is redundant
// and is skipped.
func (t *SharedTable) slotLockShared(i int, bypass bool) bool {
	if bypass {
		return true
	}
	return t.locks[i].acquireShared(t.cfg.lineLockTimeout)
}

func (t *SharedTable) slotUnlockShared(i int, bypass bool) {
	if !bypass {
		t.locks[i].unlockShared()
	}
}

func (t *SharedTable) slotLockExclusive(i int, bypass bool) bool {
	if bypass {
		return true
	}
	return t.locks[i].acquireExclusive(t.cfg.lineLockTimeout)
}

func (t *SharedTable) slotUnlockExclusive(i int, bypass bool) {
	if !bypass {
		t.locks[i].unlockExclusive()
	}
}
