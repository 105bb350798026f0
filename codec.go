package objcodec

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// CodecKind names the strategy a Codec uses.
type CodecKind uint8

const (
	KindBuiltin CodecKind = iota
	KindReflective
	KindCustom
	KindSelfDescribing
)

func (k CodecKind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindReflective:
		return "reflective"
	case KindCustom:
		return "custom"
	case KindSelfDescribing:
		return "self-describing"
	}
	return "unknown"
}

// Codec is the encoding strategy bound to a registered type. It is a closed set:
// *ReflectiveCodec, *CustomCodec, *SelfDescribingCodec and the builtin codecs
// installed by NewRegistry.
//
// Every codec is stateless. Decode consumes exactly the bytes Encode produced
// and builds a fresh value; a partially decoded value is discarded on error.
type Codec interface {
	Kind() CodecKind
	// Type is the Go type the codec encodes.
	Type() reflect.Type

	encode(s *Serializer, w *Writer, v reflect.Value) error
	decode(s *Serializer, r *Reader) (reflect.Value, error)
}

var (
	_ Codec = (*builtinCodec)(nil)
	_ Codec = (*ReflectiveCodec)(nil)
	_ Codec = (*CustomCodec)(nil)
	_ Codec = (*SelfDescribingCodec)(nil)
)

// builtinTypes are pre-registered by NewRegistry; the index is the TypeID.
var builtinTypes = [...]reflect.Type{
	reflect.TypeFor[bool](),
	reflect.TypeFor[int8](),
	reflect.TypeFor[int16](),
	reflect.TypeFor[int32](),
	reflect.TypeFor[int64](),
	reflect.TypeFor[int](),
	reflect.TypeFor[uint8](),
	reflect.TypeFor[uint16](),
	reflect.TypeFor[uint32](),
	reflect.TypeFor[uint64](),
	reflect.TypeFor[uint](),
	reflect.TypeFor[float32](),
	reflect.TypeFor[float64](),
	reflect.TypeFor[string](),
	bytesType,
	timeType,
}

// UserTypeIDBase is the first TypeID handed to a user registration.
const UserTypeIDBase TypeID = 16

func init() {
	if len(builtinTypes) != int(UserTypeIDBase) {
		panic("objcodec: builtin table does not match UserTypeIDBase")
	}
}

// builtinCodec encodes a primitive directly with the Writer/Reader helpers.
type builtinCodec struct {
	typ  reflect.Type
	kind FieldKind
}

func newBuiltin(t reflect.Type) *builtinCodec {
	k, err := kindOf(t)
	if err != nil {
		panic(err)
	}
	return &builtinCodec{typ: t, kind: k}
}

func (c *builtinCodec) Kind() CodecKind    { return KindBuiltin }
func (c *builtinCodec) Type() reflect.Type { return c.typ }

func (c *builtinCodec) encode(s *Serializer, w *Writer, v reflect.Value) error {
	return s.encodeValue(w, c.kind, v)
}

func (c *builtinCodec) decode(s *Serializer, r *Reader) (reflect.Value, error) {
	v := reflect.New(c.typ).Elem()
	if err := s.decodeValue(r, c.kind, v); err != nil {
		return reflect.Value{}, err
	}
	return v, nil
}

// defaultCodec picks the codec used when Register is called without one.
func defaultCodec(t reflect.Type) (Codec, error) {
	if implementsSelfDescriber(t) {
		return NewSelfDescribing(t)
	}
	return NewReflective(t)
}

func checkCodecType(t reflect.Type, c Codec) error {
	if c.Type() != t {
		return errors.Wrapf(ErrTypeMismatch, "%s codec for %s registered as %s", c.Kind(), c.Type(), t)
	}
	return nil
}
