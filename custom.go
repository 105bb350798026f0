package objcodec

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// EncodeFunc writes v to w. Nested registered values can be written through s.
type EncodeFunc[T any] func(s *Serializer, w *Writer, v T) error

// DecodeFunc reads a value produced by the paired EncodeFunc.
type DecodeFunc[T any] func(s *Serializer, r *Reader) (T, error)

// TypedCodec is implemented by user codec objects that handle a single type.
type TypedCodec[T any] interface {
	Encode(s *Serializer, w *Writer, v T) error
	Decode(s *Serializer, r *Reader) (T, error)
}

// CustomCodec is an externally supplied encode/decode pair. The pairing is
// trusted: the engine does not check that decode consumes what encode wrote.
type CustomCodec struct {
	typ reflect.Type
	enc func(s *Serializer, w *Writer, v reflect.Value) error
	dec func(s *Serializer, r *Reader) (reflect.Value, error)
}

// NewCustom binds an encode/decode pair to T.
func NewCustom[T any](enc EncodeFunc[T], dec DecodeFunc[T]) *CustomCodec {
	t := reflect.TypeFor[T]()
	return &CustomCodec{
		typ: t,
		enc: func(s *Serializer, w *Writer, v reflect.Value) error {
			return enc(s, w, v.Interface().(T))
		},
		dec: func(s *Serializer, r *Reader) (reflect.Value, error) {
			v, err := dec(s, r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(&v).Elem(), nil
		},
	}
}

// FromTyped adapts a TypedCodec.
func FromTyped[T any](c TypedCodec[T]) *CustomCodec {
	return NewCustom[T](c.Encode, c.Decode)
}

func (c *CustomCodec) Kind() CodecKind    { return KindCustom }
func (c *CustomCodec) Type() reflect.Type { return c.typ }

func (c *CustomCodec) encode(s *Serializer, w *Writer, v reflect.Value) error {
	if err := c.enc(s, w, v); err != nil {
		return errors.Wrapf(err, "custom encode %s", c.typ)
	}
	return w.Err()
}

func (c *CustomCodec) decode(s *Serializer, r *Reader) (reflect.Value, error) {
	v, err := c.dec(s, r)
	if err != nil {
		return reflect.Value{}, errors.Wrapf(err, "custom decode %s", c.typ)
	}
	if err := r.Err(); err != nil {
		return reflect.Value{}, err
	}
	return v, nil
}
