package objcodec

import (
	"bytes"
	"reflect"
)

// Marshal encodes v tagged into a new byte slice.
func (s *Serializer) Marshal(v any) ([]byte, error) {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	w := &Writer{w: &bytesBufferWriterAdapter{buf}, order: Order}
	if err := s.WriteTagged(w, v); err != nil {
		return nil, err
	}
	// the pooled buffer is reused, so hand out a copy
	return bytes.Clone(buf.Bytes()), nil
}

// Unmarshal decodes a single tagged value. Bytes left over after the value
// are reported as ErrMalformedData.
func (s *Serializer) Unmarshal(data []byte) (any, error) {
	r := NewBytesSource(data)
	v, err := s.ReadTagged(r)
	if err != nil {
		return nil, err
	}
	if err := checkTrailing(r); err != nil {
		return nil, err
	}
	return v, nil
}

// MarshalObject encodes v untagged as a T.
func MarshalObject[T any](s *Serializer, v T) ([]byte, error) {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	w := &Writer{w: &bytesBufferWriterAdapter{buf}, order: Order}
	if err := s.WriteObject(w, v, reflect.TypeFor[T]()); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

// UnmarshalObject decodes an untagged T produced by MarshalObject.
func UnmarshalObject[T any](s *Serializer, data []byte) (T, error) {
	var zero T
	r := NewBytesSource(data)
	v, err := ReadObjectOf[T](s, r)
	if err != nil {
		return zero, err
	}
	if err := checkTrailing(r); err != nil {
		return zero, err
	}
	return v, nil
}

func checkTrailing(r *Reader) error {
	if r.More() {
		return malformed("%d trailing bytes after value", r.Size()-int(r.Count()))
	}
	return nil
}
