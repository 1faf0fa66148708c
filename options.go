package sharedtable

import "time"

// config holds construction-time configuration, assembled via the
// functional Option values below. This mirrors the teacher's own
// functional-option constructors for MapOf (WithPresize, WithShrinkEnabled,
// NewMapOfWithHasher, ...): the whole configuration surface is a typed Go
// API, since spec.md §6 explicitly rules out any CLI/env/file surface.
type config struct {
	hash               HashFunc
	freeSlotScanLimit  int
	lineLockTimeout    time.Duration
	lineLockMaxRetries int
	rechainOnDelete    bool
	rechainFillRatio   float64
}

func defaultConfig() config {
	return config{
		hash:               DefaultHash,
		freeSlotScanLimit:  0, // 0 means "scan the whole table"
		lineLockTimeout:    2 * time.Millisecond,
		lineLockMaxRetries: 64,
		rechainOnDelete:    true,
		rechainFillRatio:   0.95,
	}
}

// Option configures a SharedTable at construction (New) or attach (Attach).
type Option func(*config)

// WithHash overrides the default MurmurHash2-over-UTF16 hash (spec.md §4.2,
// §9: "expose as a field or constructor parameter"). All peers sharing a
// buffer must use the same hash function or behavior is undefined.
func WithHash(h HashFunc) Option {
	return func(c *config) { c.hash = h }
}

// WithFreeSlotScanLimit bounds how many slots the free-slot allocator
// (spec.md §4.3) will scan starting from the rotating cursor before giving
// up. Zero (the default) scans the entire table, which is the only choice
// that preserves the spec's TableFull guarantee ("if a full scan returns no
// slot, the table is full"); a nonzero limit trades that guarantee for a
// bounded worst case and is intended for latency-sensitive callers who
// would rather retry than block on a long scan.
func WithFreeSlotScanLimit(n int) Option {
	return func(c *config) { c.freeSlotScanLimit = n }
}

// WithLineLockTimeout sets the per-acquisition timeout used by the
// deadlock-recovery protocol (spec.md §4.4): once a line-lock acquisition
// has been contended for this long, the operation releases everything it
// holds and restarts from scratch after a randomized backoff.
func WithLineLockTimeout(d time.Duration) Option {
	return func(c *config) { c.lineLockTimeout = d }
}

// WithLineLockMaxRetries bounds the number of restart attempts an operation
// will make before surfacing ErrDeadlock (spec.md §7).
func WithLineLockMaxRetries(n int) Option {
	return func(c *config) { c.lineLockMaxRetries = n }
}

// WithRechainOnDelete controls whether Delete performs the rechaining
// migration step described in spec.md §4.3. Disabling it entirely trades
// chain length (and therefore lookup latency) for delete throughput;
// invariant 4 (every occupied slot reachable from its home) holds either
// way, since an un-migrated successor is still reachable via the chain it
// currently sits on.
func WithRechainOnDelete(enabled bool) Option {
	return func(c *config) { c.rechainOnDelete = enabled }
}

// WithRechainFillRatio resolves the Open Question in spec.md §9: above this
// fill ratio (occupied slots / capacity), Delete skips rechaining as a
// performance tradeoff even when WithRechainOnDelete(true) (the default) is
// set, on the theory that a nearly-full table is about to receive more
// inserts that will just re-lengthen the chain anyway. Default 0.95, the
// value spec.md §9 suggests.
func WithRechainFillRatio(ratio float64) Option {
	return func(c *config) { c.rechainFillRatio = ratio }
}
