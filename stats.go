package sharedtable

import "sync/atomic"

// Stats exposes plain counters for diagnosing lock-manager contention, the
// supplemental introspection surface described in SPEC_FULL.md (mirroring
// the teacher's Size()/IsZero() style of exposing state as cheap atomic
// reads rather than logging it).
type Stats struct {
	restarts      atomic.Uint64 // deadlock-recovery restarts across all operations
	evictions     atomic.Uint64 // home-slot evictions performed by Insert
	rechains      atomic.Uint64 // successor slots migrated back to home by Delete
	rechainsSkipped atomic.Uint64 // Delete calls that skipped rechaining (fill ratio or option)
}

// StatsSnapshot is a point-in-time copy of Stats, safe to read without
// racing further updates.
type StatsSnapshot struct {
	Restarts        uint64
	Evictions       uint64
	Rechains        uint64
	RechainsSkipped uint64
}

// Stats returns a snapshot of the table's diagnostic counters.
func (t *SharedTable) Stats() StatsSnapshot {
	return StatsSnapshot{
		Restarts:        t.stats.restarts.Load(),
		Evictions:       t.stats.evictions.Load(),
		Rechains:        t.stats.rechains.Load(),
		RechainsSkipped: t.stats.rechainsSkipped.Load(),
	}
}
