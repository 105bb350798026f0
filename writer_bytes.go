package objcodec

// BytesWriter is an io.Writer that appends to an in-memory byte slice.
// Writing past the current capacity grows the slice, so writes never fail.
type BytesWriter struct {
	B []byte // written data
}

// NewBytesWriter creates a new BytesWriter that reuses p's capacity.
func NewBytesWriter(p []byte) *BytesWriter {
	return &BytesWriter{B: p[:0]}
}

// Close does nothing; there is no underlying stream.
func (w *BytesWriter) Close() error {
	return nil
}

// Write implements the io.Writer interface.
func (w *BytesWriter) Write(p []byte) (int, error) {
	w.B = append(w.B, p...)
	return len(p), nil
}

// WriteString implements the io.StringWriter interface for efficiency.
func (w *BytesWriter) WriteString(s string) (int, error) {
	w.B = append(w.B, s...)
	return len(s), nil
}

// WriteByte implements the io.ByteWriter interface for efficiency.
func (w *BytesWriter) WriteByte(c byte) error {
	w.B = append(w.B, c)
	return nil
}

// Flush do nothing
func (w *BytesWriter) Flush() error { return nil }

// Reset allows the underlying byte slice to be reused.
func (w *BytesWriter) Reset() { w.B = w.B[:0] }

// Len returns the number of bytes written.
func (w *BytesWriter) Len() int { return len(w.B) }

// Size returns the capacity of the underlying byte slice.
func (w *BytesWriter) Size() int { return cap(w.B) }

// Available returns the number of bytes that fit before the slice must grow.
func (w *BytesWriter) Available() int { return cap(w.B) - len(w.B) }

// Bytes returns a slice view of the written data.
func (w *BytesWriter) Bytes() []byte { return w.B }
