package objcodec

import (
	"reflect"

	"github.com/cockroachdb/errors"
)

// SelfDescriber is implemented by types that encode and decode themselves.
// UnmarshalObject is called on a fresh zero value and must populate it from r.
type SelfDescriber interface {
	MarshalObject(s *Serializer, w *Writer) error
	UnmarshalObject(s *Serializer, r *Reader) error
}

var selfDescriberType = reflect.TypeFor[SelfDescriber]()

func implementsSelfDescriber(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer && t.Implements(selfDescriberType) {
		return true
	}
	return reflect.PointerTo(t).Implements(selfDescriberType)
}

// SelfDescribingCodec delegates to the value's own SelfDescriber methods.
type SelfDescribingCodec struct {
	typ reflect.Type
	// byPointer is set when the registered type is itself a pointer.
	byPointer bool
}

// NewSelfDescribing builds the codec for t. Either t or *t must implement SelfDescriber.
func NewSelfDescribing(t reflect.Type) (*SelfDescribingCodec, error) {
	if t == nil {
		return nil, errors.Wrap(ErrUnsupportedType, "nil type")
	}
	if reflect.PointerTo(t).Implements(selfDescriberType) {
		return &SelfDescribingCodec{typ: t}, nil
	}
	if t.Kind() == reflect.Pointer && t.Implements(selfDescriberType) {
		return &SelfDescribingCodec{typ: t, byPointer: true}, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedType, "%s does not implement SelfDescriber", t)
}

func (c *SelfDescribingCodec) Kind() CodecKind    { return KindSelfDescribing }
func (c *SelfDescribingCodec) Type() reflect.Type { return c.typ }

func (c *SelfDescribingCodec) encode(s *Serializer, w *Writer, v reflect.Value) error {
	var sd SelfDescriber
	switch {
	case c.byPointer:
		sd = v.Interface().(SelfDescriber)
	case v.CanAddr():
		sd = v.Addr().Interface().(SelfDescriber)
	default:
		p := reflect.New(c.typ)
		p.Elem().Set(v)
		sd = p.Interface().(SelfDescriber)
	}
	if err := sd.MarshalObject(s, w); err != nil {
		return errors.Wrapf(err, "marshal %s", c.typ)
	}
	return w.Err()
}

func (c *SelfDescribingCodec) decode(s *Serializer, r *Reader) (reflect.Value, error) {
	elem := c.typ
	if c.byPointer {
		elem = c.typ.Elem()
	}
	p := reflect.New(elem)
	if err := p.Interface().(SelfDescriber).UnmarshalObject(s, r); err != nil {
		return reflect.Value{}, errors.Wrapf(err, "unmarshal %s", c.typ)
	}
	if err := r.Err(); err != nil {
		return reflect.Value{}, err
	}
	if c.byPointer {
		return p, nil
	}
	return p.Elem(), nil
}
