package objcodec

import (
	"reflect"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
)

// FieldKind classifies how a value of a given Go type is laid out on the wire.
type FieldKind uint8

const (
	FieldInvalid FieldKind = iota
	FieldBool
	FieldInt8
	FieldInt16
	FieldInt32
	FieldInt64
	FieldInt // zig-zag varint
	FieldUint8
	FieldUint16
	FieldUint32
	FieldUint64
	FieldUint // uvarint
	FieldFloat32
	FieldFloat64
	FieldString
	FieldBytes
	FieldTime
	FieldSlice     // [len uvarint][elems]
	FieldArray     // elems only
	FieldStruct    // delegated to the registered codec of the struct type
	FieldPointer   // [0|1][elem]
	FieldInterface // [0|1][tagged value]
)

var fieldKindNames = [...]string{
	FieldInvalid:   "invalid",
	FieldBool:      "bool",
	FieldInt8:      "int8",
	FieldInt16:     "int16",
	FieldInt32:     "int32",
	FieldInt64:     "int64",
	FieldInt:       "int",
	FieldUint8:     "uint8",
	FieldUint16:    "uint16",
	FieldUint32:    "uint32",
	FieldUint64:    "uint64",
	FieldUint:      "uint",
	FieldFloat32:   "float32",
	FieldFloat64:   "float64",
	FieldString:    "string",
	FieldBytes:     "bytes",
	FieldTime:      "time",
	FieldSlice:     "slice",
	FieldArray:     "array",
	FieldStruct:    "struct",
	FieldPointer:   "pointer",
	FieldInterface: "interface",
}

func (k FieldKind) String() string {
	if int(k) < len(fieldKindNames) {
		return fieldKindNames[k]
	}
	return "unknown"
}

var (
	timeType  = reflect.TypeFor[time.Time]()
	bytesType = reflect.TypeFor[[]byte]()
)

// kindOf maps a Go type to its FieldKind. Element types of containers and
// pointers are checked recursively; struct types are not descended into since
// their encoding is delegated.
//
// A container that reaches itself without passing through a struct, such as
// type T []T, is rejected with ErrUnsupportedType.
func kindOf(t reflect.Type) (FieldKind, error) {
	return kindOfIn(t, nil)
}

// kindOfIn carries the containers on the current path.
func kindOfIn(t reflect.Type, path []reflect.Type) (FieldKind, error) {
	if t == timeType {
		return FieldTime, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return FieldBool, nil
	case reflect.Int8:
		return FieldInt8, nil
	case reflect.Int16:
		return FieldInt16, nil
	case reflect.Int32:
		return FieldInt32, nil
	case reflect.Int64:
		return FieldInt64, nil
	case reflect.Int:
		return FieldInt, nil
	case reflect.Uint8:
		return FieldUint8, nil
	case reflect.Uint16:
		return FieldUint16, nil
	case reflect.Uint32:
		return FieldUint32, nil
	case reflect.Uint64:
		return FieldUint64, nil
	case reflect.Uint:
		return FieldUint, nil
	case reflect.Float32:
		return FieldFloat32, nil
	case reflect.Float64:
		return FieldFloat64, nil
	case reflect.String:
		return FieldString, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return FieldBytes, nil
		}
		return checkElem(t, path, FieldSlice)
	case reflect.Array:
		return checkElem(t, path, FieldArray)
	case reflect.Struct:
		return FieldStruct, nil
	case reflect.Pointer:
		return checkElem(t, path, FieldPointer)
	case reflect.Interface:
		return FieldInterface, nil
	}
	return FieldInvalid, errors.Wrapf(ErrUnsupportedType, "%s (kind %s)", t, t.Kind())
}

func checkElem(t reflect.Type, path []reflect.Type, kind FieldKind) (FieldKind, error) {
	if slices.Contains(path, t) {
		return FieldInvalid, errors.Wrapf(ErrUnsupportedType, "%s contains itself", t)
	}
	if _, err := kindOfIn(t.Elem(), append(path, t)); err != nil {
		return FieldInvalid, err
	}
	return kind, nil
}

// encodeValue writes v according to kind. v must be of a type accepted by kindOf.
func (s *Serializer) encodeValue(w *Writer, kind FieldKind, v reflect.Value) error {
	switch kind {
	case FieldBool:
		w.WriteBool(v.Bool())
	case FieldInt8:
		w.WriteInt8(int8(v.Int()))
	case FieldInt16:
		w.WriteInt16(int16(v.Int()))
	case FieldInt32:
		w.WriteInt32(int32(v.Int()))
	case FieldInt64:
		w.WriteInt64(v.Int())
	case FieldInt:
		w.WriteVarInt(v.Int())
	case FieldUint8:
		w.WriteUint8(uint8(v.Uint()))
	case FieldUint16:
		w.WriteUint16(uint16(v.Uint()))
	case FieldUint32:
		w.WriteUint32(uint32(v.Uint()))
	case FieldUint64:
		w.WriteUint64(v.Uint())
	case FieldUint:
		w.WriteVarUint(v.Uint())
	case FieldFloat32:
		w.WriteFloat32(float32(v.Float()))
	case FieldFloat64:
		w.WriteFloat64(v.Float())
	case FieldString:
		w.WriteUTF8(v.String())
	case FieldBytes:
		w.WriteByteSlice(v.Bytes())
	case FieldTime:
		w.WriteTime(v.Interface().(time.Time))
	case FieldSlice:
		n := v.Len()
		w.WriteVarUint(uint64(n))
		return s.encodeElems(w, v, n)
	case FieldArray:
		return s.encodeElems(w, v, v.Len())
	case FieldStruct:
		return s.writeNested(w, v)
	case FieldPointer:
		if v.IsNil() {
			w.WriteBool(false)
			return w.Err()
		}
		w.WriteBool(true)
		// a registered pointer type, such as a protobuf message, uses its own codec
		if reg, ok := s.reg.byType[v.Type()]; ok {
			return s.encodeWith(w, reg, v)
		}
		elem := v.Elem()
		k, err := kindOf(elem.Type())
		if err != nil {
			return err
		}
		return s.encodeValue(w, k, elem)
	case FieldInterface:
		if v.IsNil() {
			w.WriteBool(false)
			return w.Err()
		}
		w.WriteBool(true)
		return s.writeTaggedValue(w, v.Elem())
	default:
		return errors.Wrapf(ErrUnsupportedType, "%s", v.Type())
	}
	return w.Err()
}

func (s *Serializer) encodeElems(w *Writer, v reflect.Value, n int) error {
	if n == 0 {
		return w.Err()
	}
	k, err := kindOf(v.Type().Elem())
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := s.encodeValue(w, k, v.Index(i)); err != nil {
			return errors.Wrapf(err, "element %d", i)
		}
	}
	return nil
}

// decodeValue reads a value of the given kind into dst, which must be settable.
func (s *Serializer) decodeValue(r *Reader, kind FieldKind, dst reflect.Value) error {
	switch kind {
	case FieldBool:
		var b bool
		r.ReadBool(&b)
		if r.err == nil {
			dst.SetBool(b)
		}
	case FieldInt8:
		var x int8
		r.ReadInt8(&x)
		if r.err == nil {
			dst.SetInt(int64(x))
		}
	case FieldInt16:
		var x int16
		r.ReadInt16(&x)
		if r.err == nil {
			dst.SetInt(int64(x))
		}
	case FieldInt32:
		var x int32
		r.ReadInt32(&x)
		if r.err == nil {
			dst.SetInt(int64(x))
		}
	case FieldInt64:
		var x int64
		r.ReadInt64(&x)
		if r.err == nil {
			dst.SetInt(x)
		}
	case FieldInt:
		var x int64
		r.ReadVarInt(&x)
		if r.err == nil {
			if dst.OverflowInt(x) {
				return malformed("value %d overflows %s", x, dst.Type())
			}
			dst.SetInt(x)
		}
	case FieldUint8:
		var x uint8
		r.ReadUint8(&x)
		if r.err == nil {
			dst.SetUint(uint64(x))
		}
	case FieldUint16:
		var x uint16
		r.ReadUint16(&x)
		if r.err == nil {
			dst.SetUint(uint64(x))
		}
	case FieldUint32:
		var x uint32
		r.ReadUint32(&x)
		if r.err == nil {
			dst.SetUint(uint64(x))
		}
	case FieldUint64:
		var x uint64
		r.ReadUint64(&x)
		if r.err == nil {
			dst.SetUint(x)
		}
	case FieldUint:
		var x uint64
		r.ReadVarUint(&x)
		if r.err == nil {
			if dst.OverflowUint(x) {
				return malformed("value %d overflows %s", x, dst.Type())
			}
			dst.SetUint(x)
		}
	case FieldFloat32:
		var x float32
		r.ReadFloat32(&x)
		if r.err == nil {
			dst.SetFloat(float64(x))
		}
	case FieldFloat64:
		var x float64
		r.ReadFloat64(&x)
		if r.err == nil {
			dst.SetFloat(x)
		}
	case FieldString:
		var x string
		r.ReadUTF8(&x)
		if r.err == nil {
			dst.SetString(x)
		}
	case FieldBytes:
		var x []byte
		r.ReadByteSlice(&x)
		if r.err == nil && x != nil {
			dst.SetBytes(x)
		}
	case FieldTime:
		var x time.Time
		r.ReadTime(&x)
		if r.err == nil {
			dst.Set(reflect.ValueOf(x))
		}
	case FieldSlice:
		n := r.ReadLength()
		if r.err != nil || n == 0 {
			return r.err
		}
		k, err := kindOf(dst.Type().Elem())
		if err != nil {
			return err
		}
		// grow as elements arrive so a forged length cannot force a huge allocation
		out := reflect.MakeSlice(dst.Type(), 0, min(n, 1024))
		elem := reflect.New(dst.Type().Elem()).Elem()
		for i := 0; i < n; i++ {
			elem.SetZero()
			if err := s.decodeValue(r, k, elem); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
			out = reflect.Append(out, elem)
		}
		dst.Set(out)
	case FieldArray:
		k, err := kindOf(dst.Type().Elem())
		if err != nil {
			return err
		}
		for i := 0; i < dst.Len(); i++ {
			if err := s.decodeValue(r, k, dst.Index(i)); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
		}
	case FieldStruct:
		v, err := s.readNested(r, dst.Type())
		if err != nil {
			return err
		}
		dst.Set(v)
	case FieldPointer:
		var present bool
		r.ReadBool(&present)
		if r.err != nil || !present {
			return r.err
		}
		if reg, ok := s.reg.byType[dst.Type()]; ok {
			v, err := s.decodeWith(r, reg)
			if err != nil {
				return err
			}
			dst.Set(v)
			return nil
		}
		p := reflect.New(dst.Type().Elem())
		k, err := kindOf(p.Elem().Type())
		if err != nil {
			return err
		}
		if err := s.decodeValue(r, k, p.Elem()); err != nil {
			return err
		}
		dst.Set(p)
	case FieldInterface:
		var present bool
		r.ReadBool(&present)
		if r.err != nil || !present {
			return r.err
		}
		v, _, err := s.readTaggedValue(r)
		if err != nil {
			return err
		}
		v, err = assignable(v, dst.Type())
		if err != nil {
			return err
		}
		dst.Set(v)
	default:
		return errors.Wrapf(ErrUnsupportedType, "%s", dst.Type())
	}
	return r.err
}

// assignable adapts v so it can be stored in a variable of type t. A value
// whose pointer implements t is boxed into a fresh pointer.
func assignable(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if pt := reflect.PointerTo(v.Type()); pt.AssignableTo(t) {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return p, nil
	}
	return reflect.Value{}, errors.Wrapf(ErrTypeMismatch, "%s is not assignable to %s", v.Type(), t)
}
