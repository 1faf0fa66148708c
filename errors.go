package sharedtable

import (
	"errors"
	"fmt"
)

// Sentinel error kinds from spec.md §7. Callers should compare with
// errors.Is: ErrKeyTooLong and ErrValueTooLong are returned wrapped with
// extra context (the offending key, its length); the others are returned
// as is.
var (
	// ErrTableFull is returned by Set when no free slot is available for a
	// new key.
	ErrTableFull = errors.New("sharedtable: table full")

	// ErrKeyTooLong is returned by Set when the key's UTF-16 code unit
	// length exceeds the table's configured K.
	ErrKeyTooLong = errors.New("sharedtable: key too long")

	// ErrValueTooLong is returned by Set when the value's UTF-16 code unit
	// length exceeds the table's configured V.
	ErrValueTooLong = errors.New("sharedtable: value too long")

	// ErrInvalidKey is returned when the key is the empty string, which is
	// reserved as the empty-slot sentinel (spec.md §3, invariant 1).
	ErrInvalidKey = errors.New("sharedtable: invalid key")

	// ErrDeadlock is returned when line-lock deadlock recovery exhausts its
	// configured retry budget (spec.md §7). This should be exceedingly rare;
	// it exists as a circuit breaker, not a routine outcome.
	ErrDeadlock = errors.New("sharedtable: deadlock recovery exhausted retries")

	// ErrBufferTooSmall is returned by Attach when the supplied buffer is
	// shorter than the header it claims to contain.
	ErrBufferTooSmall = errors.New("sharedtable: buffer too small")

	// ErrBadMagic is returned by Attach when the buffer's magic bytes don't
	// match, i.e. it was not produced by Buffer.
	ErrBadMagic = errors.New("sharedtable: bad magic")

	// ErrVersionMismatch is returned by Attach when the buffer's format
	// version differs from what this build understands.
	ErrVersionMismatch = errors.New("sharedtable: version mismatch")
)

func keyTooLong(key string, units, k int) error {
	return fmt.Errorf("%w: key %q has %d code units, max is %d", ErrKeyTooLong, key, units, k)
}

func valueTooLong(key string, units, v int) error {
	return fmt.Errorf("%w: value for key %q has %d code units, max is %d", ErrValueTooLong, key, units, v)
}
