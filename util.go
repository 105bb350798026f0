package objcodec

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

var (
	BE = binary.BigEndian
	LE = binary.LittleEndian
	// Order is the byte order of every fixed-width value on the wire.
	Order = BE
)

// MaxVarintLen is the longest accepted LEB128 encoding of a 64-bit value.
const MaxVarintLen = binary.MaxVarintLen64

// MaxLength bounds length prefixes for strings, byte slices and collections.
// Anything larger is treated as malformed instead of being allocated.
const MaxLength = 1 << 30

const defaultBufSize = 4096

// readChunk caps each allocation step when reading a length-prefixed run.
const readChunk = 64 << 10

func Ptr[T any](v T) *T { return &v } // ptr is a helper function to create a pointer to a value, making test setup cleaner.

// zigzag maps signed integers to unsigned ones so that small magnitudes stay short.
func zigzag[T constraints.Signed](v T) uint64 {
	x := int64(v)
	return uint64((x << 1) ^ (x >> 63))
}

func unzigzag[T constraints.Signed](u uint64) T {
	return T(int64(u>>1) ^ -int64(u&1))
}

// checkLength validates a decoded length prefix.
func checkLength(n uint64) (int, error) {
	if n > MaxLength {
		return 0, malformed("length %d exceeds limit %d", n, MaxLength)
	}
	return int(n), nil
}
