package objcodec

import (
	"bufio"
	"bytes"
	"io"
)

type (
	bytesReaderAdapter       struct{ *bytes.Reader }
	bytesBufferWriterAdapter struct{ *bytes.Buffer }
	bytesBufferReaderAdapter struct{ *bytes.Buffer }
	bufioWriterAdapter       struct {
		*bufio.Writer
		closer io.Closer
	}
	bufioReaderAdapter struct {
		*bufio.Reader
		closer io.Closer
	}
)

func (r *bytesReaderAdapter) Close() error       { return nil }
func (r *bytesBufferReaderAdapter) Close() error { return nil }
func (w *bytesBufferWriterAdapter) Close() error { return nil }
func (w *bytesBufferWriterAdapter) Flush() error { return nil }
func (w *bytesBufferWriterAdapter) Size() int    { return w.Available() }
func (r *bytesBufferReaderAdapter) Size() int    { return r.Len() }
func (r *bytesReaderAdapter) Size() int          { return int(r.Reader.Size()) }
func (r *bytesReaderAdapter) More() bool         { return r.Len() > 0 }
func (r *bytesBufferReaderAdapter) More() bool   { return r.Len() > 0 }

// Close closes the wrapped stream if it is an io.Closer. It does not flush;
// the owning Writer flushes before closing.
func (w *bufioWriterAdapter) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Close closes the wrapped stream if it is an io.Closer.
func (r *bufioReaderAdapter) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// More reports whether at least one byte can be read without hitting EOF.
func (r *bufioReaderAdapter) More() bool {
	_, err := r.Reader.Peek(1)
	return err == nil
}

func closerOf(v any) io.Closer {
	if c, ok := v.(io.Closer); ok {
		return c
	}
	return nil
}
