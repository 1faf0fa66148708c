// Package sharedtable implements a shared-memory, fixed-capacity,
// coalesced-chaining hash map for string keys and string values, safe for
// concurrent multi-reader/multi-writer access from many goroutines sharing
// a single SharedTable value.
//
// The table is inspired by, and reuses the low-level concurrency idioms
// of, github.com/llxisdsh/pb's MapOf: cache-line-aware struct padding via
// golang.org/x/sys/cpu, per-slot spinlocks encoded in a single word, and a
// spin-then-yield contention strategy. Unlike MapOf, capacity is fixed at
// construction (no resizing), collisions are resolved with coalesced
// chaining rather than a bucket table, and the backing storage is a small
// number of parallel fixed-size arrays laid out in a specific, documented
// order so that the whole table's state can be serialized to and restored
// from a single byte buffer (Buffer/Attach) for out-of-process transport.
package sharedtable

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used to pad each lineLock to a full cache line, to
// avoid false sharing between goroutines operating on adjacent slots. It is
// computed via golang.org/x/sys/cpu exactly as the teacher's MapOf does for
// its own bucket structures.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// bufferMagic identifies a byte buffer produced by SharedTable.Buffer, and
// bufferVersion is this repo's wire format version. Both are validated by
// Attach (spec.md §4.1: "Constants are stored at fixed header offsets so
// that an independent peer can reconstruct the view from the raw buffer
// alone").
const (
	bufferMagic   uint32 = 0x53544231 // "STB1"
	bufferVersion uint32 = 1
)

// SharedTable is a shared-memory, fixed-capacity, coalesced-chaining hash
// map keyed and valued by strings. See spec.md for the full data model and
// concurrency protocol; the struct fields below are laid out in the same
// order spec.md §4.1 specifies for the logical shared region: header
// (n, k, v, size, cursor), per-slot lock words, key-length array,
// next-pointer array, value-length array, key cell matrix, value cell
// matrix.
//
// A SharedTable must not be copied after first use (like sync.Mutex and
// the teacher's MapOf).
type SharedTable struct {
	_ noCopy

	// --- header ---
	n, k, v int
	hash    HashFunc
	cfg     config

	size   atomic.Int64
	cursor atomic.Uint64 // rotating free-slot search cursor (spec.md §9: advisory only)

	gate globalGate

	stats Stats

	// --- per-slot lock words ---
	locks []lineLock

	// --- key-length / next-pointer / value-length arrays ---
	keyLen []int32 // 0 = empty slot; 1..k = occupied (spec.md §3 invariant 1)
	next   []int32 // slot index of next chain element, or invalid() if tail/empty
	valLen []int32

	// --- key cell matrix (n*k units) / value cell matrix (n*v units) ---
	keyCells []uint16
	valCells []uint16
}

// noCopy triggers `go vet`'s copylocks check on any type that embeds it,
// the same idiom the teacher's MapOf uses (via its embedded noCopy-shaped
// field comments) to document "must not be copied after first use".
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// invalid returns INVALID, the next-pointer sentinel for "chain tail" or
// "empty slot" (spec.md §3: "the sentinel INVALID (= N)").
func (t *SharedTable) invalid() int32 { return int32(t.n) }

// New constructs a SharedTable with capacity n slots, keys up to k UTF-16
// code units, and values up to v UTF-16 code units (spec.md §6:
// "Constructor parameters: (N, K, V)").
func New(n, k, v int, opts ...Option) (*SharedTable, error) {
	if n <= 0 {
		return nil, fmt.Errorf("sharedtable: capacity n must be positive, got %d", n)
	}
	if k <= 0 || v <= 0 {
		return nil, fmt.Errorf("sharedtable: key/value width must be positive, got k=%d v=%d", k, v)
	}
	if n > math.MaxInt32-1 {
		return nil, fmt.Errorf("sharedtable: capacity n=%d exceeds int32 slot-index range", n)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	t := &SharedTable{
		n:        n,
		k:        k,
		v:        v,
		hash:     cfg.hash,
		cfg:      cfg,
		locks:    make([]lineLock, n),
		keyLen:   make([]int32, n),
		next:     make([]int32, n),
		valLen:   make([]int32, n),
		keyCells: make([]uint16, n*k),
		valCells: make([]uint16, n*v),
	}
	invalid := t.invalid()
	for i := range t.next {
		t.next[i] = invalid
	}
	return t, nil
}

// N returns the table's fixed capacity in slots.
func (t *SharedTable) N() int { return t.n }

// K returns the maximum key length in UTF-16 code units.
func (t *SharedTable) K() int { return t.k }

// V returns the maximum value length in UTF-16 code units.
func (t *SharedTable) V() int { return t.v }

// Len returns the current number of occupied slots (spec.md §6 `length`):
// an unlocked snapshot, consistent with spec.md's "size: ... snapshot,
// unlocked" contract.
func (t *SharedTable) Len() int { return int(t.size.Load()) }

// IsZero reports whether the table currently holds no entries, mirroring
// the teacher's MapOf.IsZero fast path.
func (t *SharedTable) IsZero() bool { return t.Len() == 0 }

// Hash exposes the table's configured hash function (spec.md §6 `hash`).
func (t *SharedTable) Hash(key string) int { return t.hash(key, t.n) }

// Buffer serializes the table's entire state into a single byte slice
// (spec.md §4.1/§6: "the entire state is the raw shared byte buffer").
// The result can be handed to Attach, by this process or a peer that
// agrees on the hash function, to reconstruct an equivalent table.
//
// Buffer takes the global gate exclusively for the duration of the copy so
// the snapshot is internally consistent.
func (t *SharedTable) Buffer() []byte {
	t.gate.acquireExclusive()
	defer t.gate.releaseExclusive()

	headerSize := 4 + 4 + 8*3 + 8 + 8 // magic, version, n/k/v, size, cursor
	slotArrays := len(t.keyLen)*4 + len(t.next)*4 + len(t.valLen)*4
	cells := len(t.keyCells)*2 + len(t.valCells)*2
	buf := make([]byte, headerSize+slotArrays+cells)

	off := 0
	binary.LittleEndian.PutUint32(buf[off:], bufferMagic)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], bufferVersion)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], uint64(t.n))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(t.k))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(t.v))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(t.size.Load()))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], t.cursor.Load())
	off += 8

	for _, x := range t.keyLen {
		binary.LittleEndian.PutUint32(buf[off:], uint32(x))
		off += 4
	}
	for _, x := range t.next {
		binary.LittleEndian.PutUint32(buf[off:], uint32(x))
		off += 4
	}
	for _, x := range t.valLen {
		binary.LittleEndian.PutUint32(buf[off:], uint32(x))
		off += 4
	}
	for _, x := range t.keyCells {
		binary.LittleEndian.PutUint16(buf[off:], x)
		off += 2
	}
	for _, x := range t.valCells {
		binary.LittleEndian.PutUint16(buf[off:], x)
		off += 2
	}
	return buf
}

// Attach reconstructs a SharedTable from a buffer produced by Buffer,
// implementing spec.md §6's "accept a pre-existing raw buffer produced by
// a prior construction for peer attach" and §4.1's "an independent peer
// can reconstruct the view from the raw buffer alone."
//
// The hash function is not part of the wire format (spec.md §9: "all
// peers sharing a buffer must agree on the hash function"); it defaults to
// DefaultHash and can be overridden with WithHash, which the caller must do
// consistently with whoever produced the buffer if a non-default hash was
// used.
func Attach(buf []byte, opts ...Option) (*SharedTable, error) {
	const minHeader = 4 + 4 + 8*3 + 8 + 8
	if len(buf) < minHeader {
		return nil, ErrBufferTooSmall
	}

	off := 0
	magic := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if magic != bufferMagic {
		return nil, ErrBadMagic
	}
	version := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if version != bufferVersion {
		return nil, ErrVersionMismatch
	}
	n := int(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	k := int(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	v := int(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	size := int64(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	cursor := binary.LittleEndian.Uint64(buf[off:])
	off += 8

	wantLen := minHeader + n*4*3 + (n*k+n*v)*2
	if len(buf) < wantLen {
		return nil, ErrBufferTooSmall
	}

	t, err := New(n, k, v, opts...)
	if err != nil {
		return nil, err
	}
	t.size.Store(size)
	t.cursor.Store(cursor)

	for i := range t.keyLen {
		t.keyLen[i] = int32(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
	}
	for i := range t.next {
		t.next[i] = int32(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
	}
	for i := range t.valLen {
		t.valLen[i] = int32(binary.LittleEndian.Uint32(buf[off:]))
		off += 4
	}
	for i := range t.keyCells {
		t.keyCells[i] = binary.LittleEndian.Uint16(buf[off:])
		off += 2
	}
	for i := range t.valCells {
		t.valCells[i] = binary.LittleEndian.Uint16(buf[off:])
		off += 2
	}
	return t, nil
}
