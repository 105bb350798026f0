package objcodec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"time"
	"unicode/utf8"
)

type writer interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
	io.Closer
}

type WriterPro interface {
	writer
	Size() int
	Flush() error
}

// Writer is the byte sink of the serializer: a forward-only, buffered writer of
// primitives and length-prefixed values. It tracks the first error that occurs;
// after an error, all subsequent write operations become no-ops.
//
// A Writer is owned by a single goroutine for one serialize pass and must be
// closed on every exit path. Close flushes and then closes the underlying
// stream if it is an io.Closer.
type Writer struct {
	w      WriterPro
	count  int64 // total bytes written
	err    error // first error encountered. Subsequent writes become no-ops.
	closed bool
	depth  int // nesting of the value being encoded
	order  binary.ByteOrder
}

var _ WriterPro = (*Writer)(nil)

// NewWriterSize creates a new Writer with a specified buffer size.
// In-memory destinations are written directly without an extra buffer.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}

	switch bw := w.(type) {
	// already a sink; sharing it keeps the byte count and error state in one place.
	case *Writer:
		return bw, nil

	// prevent unpredictable double-buffering.
	case *bufio.Writer:
		return &Writer{w: &bufioWriterAdapter{Writer: bw}, order: Order}, nil

	// underlying is a buf so we don't need buffering
	case *BytesWriter:
		return &Writer{w: bw, order: Order}, nil
	case *bytes.Buffer:
		return &Writer{w: &bytesBufferWriterAdapter{bw}, order: Order}, nil
	}

	// default use bufio
	return &Writer{
		w:     &bufioWriterAdapter{Writer: bufio.NewWriterSize(w, size), closer: closerOf(w)},
		order: Order,
	}, nil
}

// NewWriter creates a new Writer with a default buffer size.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, defaultBufSize)
}

// NewBufferWriter creates a Writer over a growable in-memory buffer.
func NewBufferWriter() (*Writer, *BytesWriter) {
	buf := NewBytesWriter(nil)
	return &Writer{w: buf, order: Order}, buf
}

// Close flushes buffered data and closes the underlying writer if it implements io.Closer.
// The underlying stream is closed even when an earlier write failed.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	w.Flush()
	if err := w.w.Close(); err != nil {
		w.setError(ioFailure(err, "close"))
	}
	return w.err
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	w.count += int64(n)
	if err != nil {
		w.setError(ioFailure(err, "write"))
	}
	return n, w.err
}

// WriteString implements the io.StringWriter interface. It writes the raw
// bytes of str without a length prefix; see WriteUTF8 for the encoded form.
func (w *Writer) WriteString(str string) (int, error) {
	if str == "" || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.WriteString(str)
	w.count += int64(n)
	if err != nil {
		w.setError(ioFailure(err, "write"))
	}
	return n, w.err
}

func (w *Writer) Size() int    { return w.w.Size() }
func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.setError(ioFailure(err, "flush"))
	}
	return w.err
}

// WriteBytes writes a raw byte run with no length prefix.
func (w *Writer) WriteBytes(buf []byte) {
	if len(buf) == 0 || w.err != nil {
		return
	}
	_, _ = w.Write(buf)
}

// --- Primitive Write Operations ---

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

func (w *Writer) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.WriteByte(v); err != nil {
		w.setError(ioFailure(err, "write"))
		return w.err
	}
	w.count++
	return nil
}

func (w *Writer) WriteUint8(v uint8) {
	_ = w.WriteByte(v)
}

func (w *Writer) WriteUint16(v uint16) {
	if w.err != nil {
		return
	}
	var buf [2]byte
	w.order.PutUint16(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	w.order.PutUint32(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	w.order.PutUint64(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteInt8(v int8)   { w.WriteUint8(uint8(v)) }
func (w *Writer) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }
func (w *Writer) WriteInt32(v int32) { w.WriteUint32(uint32(v)) }
func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteVarUint writes v as an unsigned LEB128 varint (1 to 10 bytes).
func (w *Writer) WriteVarUint(v uint64) {
	if w.err != nil {
		return
	}
	var buf [MaxVarintLen]byte
	n := binary.PutUvarint(buf[:], v)
	_, _ = w.Write(buf[:n])
}

// WriteVarInt writes v zig-zag encoded, so small negative numbers stay short.
func (w *Writer) WriteVarInt(v int64) {
	w.WriteVarUint(zigzag(v))
}

// WriteUTF8 writes a string as [length uvarint][UTF-8 bytes].
// Strings that are not valid UTF-8 are rejected with ErrMalformedData.
func (w *Writer) WriteUTF8(s string) {
	if w.err != nil {
		return
	}
	if !utf8.ValidString(s) {
		w.setError(malformed("string is not valid UTF-8"))
		return
	}
	w.WriteVarUint(uint64(len(s)))
	_, _ = w.WriteString(s)
}

// WriteByteSlice writes a byte slice as [length uvarint][bytes].
func (w *Writer) WriteByteSlice(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.WriteBytes(b)
}

// WriteTime writes t as a signed 64-bit count of milliseconds since the Unix epoch.
// Sub-millisecond precision and the location are not preserved.
func (w *Writer) WriteTime(t time.Time) {
	w.WriteInt64(t.UnixMilli())
}
