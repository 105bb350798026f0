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

type reader interface {
	io.Reader
	io.ByteReader
	io.Closer
}

type ReaderPro interface {
	reader
	Size() int
	More() bool
}

// Reader is the byte source of the serializer: a forward-only, buffered reader
// of primitives and length-prefixed values. It tracks the first error;
// subsequent reads become no-ops and leave their destinations untouched.
//
// Running out of bytes is reported as ErrUnderflow, never as a zero value.
type Reader struct {
	r     ReaderPro
	count int64 // total bytes read
	err   error // first error encountered.
	depth int   // nesting of the value being decoded
	order binary.ByteOrder
}

var _ ReaderPro = (*Reader)(nil)

// NewReaderSize creates a new Reader with a specified buffer size.
func NewReaderSize(r io.Reader, size int) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}

	switch reader := r.(type) {
	case *Reader:
		return reader, nil

	// prevent unpredictable double-buffering.
	case *bufio.Reader:
		return &Reader{r: &bufioReaderAdapter{Reader: reader}, order: Order}, nil

	// underlying is a buf so we don't need buffering
	case *BytesReader:
		return &Reader{r: reader, order: Order}, nil
	case *bytes.Reader:
		return &Reader{r: &bytesReaderAdapter{reader}, order: Order}, nil
	case *bytes.Buffer:
		return &Reader{r: &bytesBufferReaderAdapter{reader}, order: Order}, nil
	}

	// default use bufio
	return &Reader{
		r:     &bufioReaderAdapter{Reader: bufio.NewReaderSize(r, size), closer: closerOf(r)},
		order: Order,
	}, nil
}

// NewReader creates a new Reader with a default buffer size.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderSize(r, defaultBufSize)
}

// NewBytesSource creates a Reader over an in-memory byte slice.
func NewBytesSource(b []byte) *Reader {
	return &Reader{r: NewBytesReader(b), order: Order}
}

// Close closes the underlying reader if it implements io.Closer.
func (r *Reader) Close() error {
	if err := r.r.Close(); err != nil {
		err = ioFailure(err, "close")
		r.setError(err)
		return err
	}
	return nil
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	if err != nil && err != io.EOF {
		r.setError(ioFailure(err, "read"))
		return n, r.err
	}
	return n, err
}

func (r *Reader) Size() int    { return r.r.Size() }
func (r *Reader) Count() int64 { return r.count }
func (r *Reader) Err() error   { return r.err }

// More reports whether another value can start at the current position:
// no error is latched and at least one unread byte remains.
func (r *Reader) More() bool { return r.err == nil && r.r.More() }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// fail classifies an error from the underlying stream.
func (r *Reader) fail(err error, want int) {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		r.setError(underflow(err, want))
		return
	}
	r.setError(ioFailure(err, "read"))
}

// Result returns the total bytes read and the final error state.
func (r *Reader) Result() (int64, error) {
	return r.count, r.err
}

// readFull is an internal helper to read an exact number of bytes.
func (r *Reader) readFull(n int) []byte {
	if r.err != nil {
		return nil
	}
	// grow as bytes arrive so a forged length cannot force a large allocation
	buf := make([]byte, 0, min(n, readChunk))
	for len(buf) < n {
		step := min(n-len(buf), readChunk)
		if cap(buf)-len(buf) < step {
			buf = append(buf[:cap(buf)], make([]byte, step)...)[:len(buf)]
		}
		read, err := io.ReadFull(r.r, buf[len(buf):len(buf)+step])
		r.count += int64(read)
		buf = buf[:len(buf)+read]
		if err != nil {
			r.fail(err, n-len(buf))
			return nil
		}
	}
	return buf
}

// ReadBytes reads exactly n raw bytes and returns a new byte slice.
func (r *Reader) ReadBytes(n int) []byte {
	if n <= 0 {
		return nil
	}
	return r.readFull(n)
}

// --- Primitive Read Operations ---

func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.ReadByte()
	if err != nil {
		r.fail(err, 1)
		return 0, r.err
	}
	r.count++
	return b, nil
}

// ReadBool reads one byte; anything other than 0 or 1 is malformed.
func (r *Reader) ReadBool(dest *bool) {
	b, err := r.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case 0:
		*dest = false
	case 1:
		*dest = true
	default:
		r.setError(malformed("invalid bool byte 0x%02x", b))
	}
}

func (r *Reader) ReadUint8(dest *uint8) {
	if b, err := r.ReadByte(); err == nil {
		*dest = b
	}
}

func (r *Reader) ReadUint16(dest *uint16) {
	buf := r.readFull(2)
	if r.err == nil {
		*dest = r.order.Uint16(buf)
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	buf := r.readFull(4)
	if r.err == nil {
		*dest = r.order.Uint32(buf)
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	buf := r.readFull(8)
	if r.err == nil {
		*dest = r.order.Uint64(buf)
	}
}

func (r *Reader) ReadInt8(dest *int8) {
	if b, err := r.ReadByte(); err == nil {
		*dest = int8(b)
	}
}

func (r *Reader) ReadInt16(dest *int16) {
	buf := r.readFull(2)
	if r.err == nil {
		*dest = int16(r.order.Uint16(buf))
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	buf := r.readFull(4)
	if r.err == nil {
		*dest = int32(r.order.Uint32(buf))
	}
}

func (r *Reader) ReadInt64(dest *int64) {
	buf := r.readFull(8)
	if r.err == nil {
		*dest = int64(r.order.Uint64(buf))
	}
}

func (r *Reader) ReadFloat32(dest *float32) {
	buf := r.readFull(4)
	if r.err == nil {
		*dest = math.Float32frombits(r.order.Uint32(buf))
	}
}

func (r *Reader) ReadFloat64(dest *float64) {
	buf := r.readFull(8)
	if r.err == nil {
		*dest = math.Float64frombits(r.order.Uint64(buf))
	}
}

// ReadVarUint reads an unsigned LEB128 varint. Encodings longer than
// MaxVarintLen bytes or overflowing 64 bits are malformed.
func (r *Reader) ReadVarUint(dest *uint64) {
	var x uint64
	var s uint
	for i := 0; i < MaxVarintLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		if b < 0x80 {
			if i == MaxVarintLen-1 && b > 1 {
				r.setError(malformed("varint overflows 64 bits"))
				return
			}
			*dest = x | uint64(b)<<s
			return
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	r.setError(malformed("varint longer than %d bytes", MaxVarintLen))
}

// ReadVarInt reads a zig-zag encoded varint.
func (r *Reader) ReadVarInt(dest *int64) {
	var u uint64
	r.ReadVarUint(&u)
	if r.err == nil {
		*dest = unzigzag[int64](u)
	}
}

// ReadLength reads a uvarint length prefix and validates it against MaxLength.
func (r *Reader) ReadLength() int {
	var u uint64
	r.ReadVarUint(&u)
	if r.err != nil {
		return 0
	}
	n, err := checkLength(u)
	if err != nil {
		r.setError(err)
		return 0
	}
	return n
}

// ReadUTF8 reads a string written by WriteUTF8.
func (r *Reader) ReadUTF8(dest *string) {
	n := r.ReadLength()
	if r.err != nil {
		return
	}
	if n == 0 {
		*dest = ""
		return
	}
	buf := r.readFull(n)
	if r.err != nil {
		return
	}
	if !utf8.Valid(buf) {
		r.setError(malformed("string of %d bytes is not valid UTF-8", n))
		return
	}
	*dest = string(buf)
}

// ReadByteSlice reads a byte slice written by WriteByteSlice. An empty slice
// decodes as nil.
func (r *Reader) ReadByteSlice(dest *[]byte) {
	n := r.ReadLength()
	if r.err != nil {
		return
	}
	if n == 0 {
		*dest = nil
		return
	}
	buf := r.readFull(n)
	if r.err == nil {
		*dest = buf
	}
}

// ReadTime reads a millisecond timestamp written by WriteTime and returns it in UTC.
func (r *Reader) ReadTime(dest *time.Time) {
	var ms int64
	r.ReadInt64(&ms)
	if r.err == nil {
		*dest = time.UnixMilli(ms).UTC()
	}
}
