package sharedtable

import "unicode/utf16"

// HashFunc maps a key to a slot index in [0, n). Implementations must be
// pure and deterministic (spec.md §5): the same key must always hash to
// the same slot for the lifetime of a table, and peers attaching to the
// same buffer must agree on the hash or behavior is undefined (spec.md
// §9). n is always the table's capacity, N.
type HashFunc func(key string, n int) int

// encodeUTF16 converts a Go (UTF-8) string into its UTF-16 code units,
// which is the width spec.md's data model (§3) specifies for key/value
// cells: "K fixed-width code units (UTF-16 semantics: 16-bit unsigned
// units)". No third-party UTF-16 codec exists anywhere in the retrieval
// pack; the standard library's unicode/utf16 is the canonical, exact
// implementation of this conversion, so it is used directly rather than
// hand-rolled (see DESIGN.md).
func encodeUTF16(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func decodeUTF16(units []uint16) string {
	return string(utf16.Decode(units))
}

// DefaultHash is MurmurHash2 (32-bit, seed 0) run over the raw bytes of the
// key's UTF-16 code units, reduced modulo n, exactly as spec.md §4.2 and §6
// specify as the default pluggable hash.
func DefaultHash(key string, n int) int {
	return int(murmurHash2(utf16Bytes(encodeUTF16(key)), 0) % uint32(n))
}

// utf16Bytes reinterprets UTF-16 code units as their little-endian byte
// sequence, the byte view MurmurHash2 operates over.
func utf16Bytes(units []uint16) []byte {
	b := make([]byte, len(units)*2)
	for i, u := range units {
		b[2*i] = byte(u)
		b[2*i+1] = byte(u >> 8)
	}
	return b
}

// murmurHash2 is Austin Appleby's original 32-bit MurmurHash2 algorithm.
// It is reproduced here (rather than imported) because no MurmurHash
// library appears anywhere in the retrieval pack; this is a direct,
// literal transliteration of the reference algorithm, which spec.md §4.2
// pins as the default hash's exact definition.
func murmurHash2(data []byte, seed uint32) uint32 {
	const (
		m = 0x5bd1e995
		r = 24
	)

	h := seed ^ uint32(len(data))

	for len(data) >= 4 {
		k := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
		k *= m
		k ^= k >> r
		k *= m

		h *= m
		h ^= k

		data = data[4:]
	}

	switch len(data) {
	case 3:
		h ^= uint32(data[2]) << 16
		fallthrough
	case 2:
		h ^= uint32(data[1]) << 8
		fallthrough
	case 1:
		h ^= uint32(data[0])
		h *= m
	}

	h ^= h >> 13
	h *= m
	h ^= h >> 15

	return h
}
