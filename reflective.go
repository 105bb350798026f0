package objcodec

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/puzpuzpuz/xsync/v4"
)

// planCache avoids re-walking struct layouts with reflection on every
// registration. Plans depend only on the type, so they are shared by all registries.
var planCache = xsync.NewMap[reflect.Type, []Field]()

// Field is one step of a reflective plan.
type Field struct {
	Name  string
	Kind  FieldKind
	Type  reflect.Type
	index int // struct field index, -1 when the plan encodes the value itself
}

// ReflectiveCodec walks the fields of a value in declaration order.
// The field list is captured once when the codec is built; the type's layout
// cannot change afterwards.
//
// Exported fields are encoded; unexported fields and fields tagged
// `objcodec:"-"` are skipped. Nested struct fields are delegated to the
// codec registered for their type, untagged. Maps are rejected because their
// iteration order is not deterministic.
//
// Non-struct types (slices, arrays, pointers, named scalars) get a single
// unnamed field covering the value itself.
type ReflectiveCodec struct {
	typ    reflect.Type
	fields []Field
}

// NewReflective builds the field plan for t.
func NewReflective(t reflect.Type) (*ReflectiveCodec, error) {
	if t == nil {
		return nil, errors.Wrap(ErrUnsupportedType, "nil type")
	}
	if fields, ok := planCache.Load(t); ok {
		return &ReflectiveCodec{typ: t, fields: fields}, nil
	}

	fields, err := buildPlan(t)
	if err != nil {
		return nil, err
	}

	planCache.Store(t, fields)
	return &ReflectiveCodec{typ: t, fields: fields}, nil
}

func buildPlan(t reflect.Type) ([]Field, error) {
	if t.Kind() == reflect.Interface {
		return nil, errors.Wrapf(ErrUnsupportedType, "%s: interface types need a concrete registration", t)
	}
	if t.Kind() != reflect.Struct || t == timeType {
		k, err := kindOf(t)
		if err != nil {
			return nil, err
		}
		return []Field{{Kind: k, Type: t, index: -1}}, nil
	}

	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || skipField(sf) {
			continue
		}
		k, err := kindOf(sf.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", t, sf.Name)
		}
		fields = append(fields, Field{Name: sf.Name, Kind: k, Type: sf.Type, index: i})
	}
	return fields, nil
}

func skipField(sf reflect.StructField) bool {
	tag, ok := sf.Tag.Lookup("objcodec")
	if !ok {
		return false
	}
	name, _, _ := strings.Cut(tag, ",")
	return name == "-"
}

func (c *ReflectiveCodec) Kind() CodecKind    { return KindReflective }
func (c *ReflectiveCodec) Type() reflect.Type { return c.typ }

// Fields returns a copy of the plan.
func (c *ReflectiveCodec) Fields() []Field {
	return append([]Field(nil), c.fields...)
}

func (c *ReflectiveCodec) encode(s *Serializer, w *Writer, v reflect.Value) error {
	for _, f := range c.fields {
		fv := v
		if f.index >= 0 {
			fv = v.Field(f.index)
		}
		if err := s.encodeValue(w, f.Kind, fv); err != nil {
			return fieldError(err, c.typ, f)
		}
	}
	return w.Err()
}

func (c *ReflectiveCodec) decode(s *Serializer, r *Reader) (reflect.Value, error) {
	v := reflect.New(c.typ).Elem()
	for _, f := range c.fields {
		fv := v
		if f.index >= 0 {
			fv = v.Field(f.index)
		}
		if err := s.decodeValue(r, f.Kind, fv); err != nil {
			return reflect.Value{}, fieldError(err, c.typ, f)
		}
	}
	return v, r.Err()
}

func fieldError(err error, t reflect.Type, f Field) error {
	if f.index < 0 {
		return errors.Wrapf(err, "%s", t)
	}
	return errors.Wrapf(err, "%s.%s", t, f.Name)
}
