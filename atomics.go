package sharedtable

import (
	"math/rand"
	"runtime"
	"time"
)

// spinThenBackoff implements the same two-phase contention strategy the
// teacher's bucket spinlock uses: a short run of pure spinning (cheap on a
// lightly contended lock) followed by a yielding sleep once the caller has
// spun enough times to suspect real contention rather than a momentary race.
//
// Unlike the teacher's delay(), this has no runtime-internal linkname
// dependency: it uses runtime.Gosched for the spin phase, which is the
// portable stdlib equivalent for this workload (per-slot locks held for a
// handful of instructions, never across a blocking call).
func spinThenBackoff(spins *int) {
	const spinLimit = 16
	if *spins < spinLimit {
		runtime.Gosched()
		*spins++
		return
	}
	time.Sleep(backoffDuration(*spins))
	*spins++
}

// backoffDuration returns a randomized, exponentially increasing backoff
// used both by line-lock contention (spinThenBackoff) and by the
// deadlock-recovery restart loop (spec.md §4.4). Randomization is what
// keeps two competing operations from retrying in lockstep forever.
func backoffDuration(attempt int) time.Duration {
	const (
		base = 50 * time.Microsecond
		max  = 4 * time.Millisecond
	)
	d := base << min(attempt, 6)
	if d > max || d <= 0 {
		d = max
	}
	// +/- 50% jitter.
	jitter := time.Duration(rand.Int63n(int64(d))) - d/2
	return d + jitter
}
