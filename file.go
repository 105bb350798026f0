package objcodec

import (
	"os"

	"github.com/cockroachdb/errors"
)

// CreateFile creates (or truncates) path and returns a buffered Writer over it.
// Data is only guaranteed to be on disk after Close.
func CreateFile(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "create %s", path), ErrIO)
	}
	return NewWriterSize(f, defaultBufSize)
}

// OpenFile opens path for reading and returns a buffered Reader over it.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "open %s", path), ErrIO)
	}
	return NewReaderSize(f, defaultBufSize)
}
