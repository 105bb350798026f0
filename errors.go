package objcodec

import "github.com/cockroachdb/errors"

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with an nil interface
	ErrNilIO = errors.New("objcodec: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrIO marks failures of the underlying stream (open, write, flush, close).
	// The original cause stays reachable through errors.Is / errors.Cause.
	ErrIO = errors.New("objcodec: i/o failure")

	// ErrUnderflow indicates that fewer bytes were available than a read demanded.
	// This is what a reader sees when the paired writer has not been flushed and
	// closed yet, or when the data was truncated.
	ErrUnderflow = errors.New("objcodec: underflow")

	// ErrMalformedData indicates that a length prefix, varint or tag value is out of range.
	ErrMalformedData = errors.New("objcodec: malformed data")

	// ErrUnregisteredType indicates a write or lookup for a type with no registration.
	ErrUnregisteredType = errors.New("objcodec: unregistered type")

	// ErrUnknownTypeID indicates a type id read from the stream has no registration
	// in the reading registry.
	ErrUnknownTypeID = errors.New("objcodec: unknown type id")

	// ErrUnsupportedType indicates a type (or one of its fields) that no codec can encode.
	ErrUnsupportedType = errors.New("objcodec: unsupported type")

	// ErrTypeMismatch indicates a value whose dynamic type differs from the expected one.
	ErrTypeMismatch = errors.New("objcodec: type mismatch")

	// ErrNilValue indicates a nil value (or nil pointer) was handed to a write.
	ErrNilValue = errors.New("objcodec: nil value")

	// ErrDepthExceeded indicates nesting deeper than the serializer's limit.
	ErrDepthExceeded = errors.New("objcodec: max depth exceeded")
)

// ioFailure marks err as an ErrIO while keeping the original cause.
func ioFailure(err error, op string) error {
	return errors.Mark(errors.Wrap(err, op), ErrIO)
}

// underflow marks err as an ErrUnderflow while keeping the original cause.
func underflow(err error, want int) error {
	return errors.Mark(errors.Wrapf(err, "need %d more bytes", want), ErrUnderflow)
}

func malformed(format string, args ...any) error {
	return errors.Wrapf(ErrMalformedData, format, args...)
}
