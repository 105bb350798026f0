package objcodec

import (
	"reflect"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// DefaultMaxDepth bounds nesting of delegated values within one top-level write or read.
const DefaultMaxDepth = 64

// Observer receives one event per top-level write or read.
// n is the number of bytes the operation produced or consumed.
type Observer interface {
	ObjectWritten(reg *Registration, tagged bool, n int64)
	ObjectRead(reg *Registration, tagged bool, n int64)
	Failed(op string, err error)
}

// Serializer drives registered codecs over a Writer or Reader.
//
// It holds no per-call state, so one Serializer can serve many goroutines as
// long as each uses its own Writer/Reader and the registry is not mutated.
// Reads must mirror writes: same order, same types, same tagged/untagged choice.
type Serializer struct {
	reg      *Registry
	log      *zap.Logger
	observer Observer
	maxDepth int
}

type Option func(*Serializer)

func WithLogger(l *zap.Logger) Option {
	return func(s *Serializer) {
		if l != nil {
			s.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Serializer) { s.observer = o }
}

// WithMaxDepth limits how deeply values may nest. n <= 0 keeps the default.
func WithMaxDepth(n int) Option {
	return func(s *Serializer) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// New creates a Serializer over reg.
func New(reg *Registry, opts ...Option) *Serializer {
	if reg == nil {
		reg = NewRegistry()
	}
	s := &Serializer{reg: reg, log: zap.NewNop(), maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the serializer resolves types against.
func (s *Serializer) Registry() *Registry { return s.reg }

// WriteTagged writes the type id of v followed by its payload.
func (s *Serializer) WriteTagged(w *Writer, v any) error {
	start, top := w.count, w.depth == 0
	reg, err := s.writeTagged(w, reflect.ValueOf(v))
	if top {
		s.observeWrite(reg, true, w.count-start, err)
	}
	return err
}

// ReadTagged reads a type id and the value that follows it.
func (s *Serializer) ReadTagged(r *Reader) (any, error) {
	start, top := r.count, r.depth == 0
	v, reg, err := s.readTaggedValue(r)
	if top {
		s.observeRead(reg, true, r.count-start, err)
	}
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// WriteObject writes v without a type id. t is the registered type the reader
// will ask for; v must be of type t or *t.
func (s *Serializer) WriteObject(w *Writer, v any, t reflect.Type) error {
	start, top := w.count, w.depth == 0
	reg, err := s.writeObject(w, reflect.ValueOf(v), t)
	if top {
		s.observeWrite(reg, false, w.count-start, err)
	}
	return err
}

// ReadObject reads an untagged value of type t. If t is a pointer whose
// element type is registered, the element is read and a pointer to it returned.
func (s *Serializer) ReadObject(r *Reader, t reflect.Type) (any, error) {
	start, top := r.count, r.depth == 0
	v, reg, err := s.readObject(r, t)
	if top {
		s.observeRead(reg, false, r.count-start, err)
	}
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// WriteObjectOf writes v untagged as a T.
func WriteObjectOf[T any](s *Serializer, w *Writer, v T) error {
	return s.WriteObject(w, v, reflect.TypeFor[T]())
}

// ReadObjectOf reads an untagged T.
func ReadObjectOf[T any](s *Serializer, r *Reader) (T, error) {
	var zero T
	v, err := s.ReadObject(r, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// ReadTaggedOf reads a tagged value and asserts it is a T.
func ReadTaggedOf[T any](s *Serializer, r *Reader) (T, error) {
	var zero T
	v, err := s.ReadTagged(r)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, errors.Wrapf(ErrTypeMismatch, "read %T, want %s", v, reflect.TypeFor[T]())
	}
	return out, nil
}

func (s *Serializer) writeTagged(w *Writer, v reflect.Value) (*Registration, error) {
	if err := w.Err(); err != nil {
		return nil, err
	}
	reg, v, err := s.reg.lookupValue(v)
	if err != nil {
		return nil, err
	}
	w.WriteVarUint(uint64(reg.ID))
	err = s.encodeWith(w, reg, v)
	// the type id is already on the wire
	w.setError(err)
	return reg, err
}

// writeTaggedValue is the nested form used for interface fields.
func (s *Serializer) writeTaggedValue(w *Writer, v reflect.Value) error {
	_, err := s.writeTagged(w, v)
	return err
}

func (s *Serializer) writeObject(w *Writer, v reflect.Value, t reflect.Type) (*Registration, error) {
	if err := w.Err(); err != nil {
		return nil, err
	}
	reg, err := s.reg.RegistrationOf(t)
	if err != nil && t != nil && t.Kind() == reflect.Pointer {
		// mirror of readObject: *T is written as its registered element
		if elem, ok := s.reg.byType[t.Elem()]; ok {
			reg, t, err = elem, t.Elem(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	if !v.IsValid() {
		return reg, errors.Wrapf(ErrNilValue, "%s", t)
	}
	switch {
	case v.Type() == t:
	case v.Kind() == reflect.Pointer && v.Type().Elem() == t:
		if v.IsNil() {
			return reg, errors.Wrapf(ErrNilValue, "%s", v.Type())
		}
		v = v.Elem()
	default:
		return reg, errors.Wrapf(ErrTypeMismatch, "value of type %s written as %s", v.Type(), t)
	}
	if t.Kind() == reflect.Pointer && v.IsNil() {
		return reg, errors.Wrapf(ErrNilValue, "%s", t)
	}
	return reg, s.encodeWith(w, reg, v)
}

func (s *Serializer) readTaggedValue(r *Reader) (reflect.Value, *Registration, error) {
	var id uint64
	r.ReadVarUint(&id)
	if err := r.Err(); err != nil {
		return reflect.Value{}, nil, err
	}
	if id > uint64(^TypeID(0)) {
		return reflect.Value{}, nil, malformed("type id %d out of range", id)
	}
	reg, err := s.reg.Resolve(TypeID(id))
	if err != nil {
		return reflect.Value{}, nil, err
	}
	v, err := s.decodeWith(r, reg)
	return v, reg, err
}

func (s *Serializer) readObject(r *Reader, t reflect.Type) (reflect.Value, *Registration, error) {
	if err := r.Err(); err != nil {
		return reflect.Value{}, nil, err
	}
	if t == nil {
		return reflect.Value{}, nil, errors.Wrap(ErrUnregisteredType, "nil type")
	}
	if reg, ok := s.reg.byType[t]; ok {
		v, err := s.decodeWith(r, reg)
		return v, reg, err
	}
	if t.Kind() == reflect.Pointer {
		if reg, ok := s.reg.byType[t.Elem()]; ok {
			v, err := s.decodeWith(r, reg)
			if err != nil {
				return reflect.Value{}, reg, err
			}
			p := reflect.New(t.Elem())
			p.Elem().Set(v)
			return p, reg, nil
		}
	}
	return reflect.Value{}, nil, errors.Wrapf(ErrUnregisteredType, "%s", t)
}

// writeNested encodes a struct field untagged with the codec registered for its type.
func (s *Serializer) writeNested(w *Writer, v reflect.Value) error {
	reg, err := s.reg.RegistrationOf(v.Type())
	if err != nil {
		return err
	}
	return s.encodeWith(w, reg, v)
}

func (s *Serializer) readNested(r *Reader, t reflect.Type) (reflect.Value, error) {
	reg, err := s.reg.RegistrationOf(t)
	if err != nil {
		return reflect.Value{}, err
	}
	return s.decodeWith(r, reg)
}

func (s *Serializer) encodeWith(w *Writer, reg *Registration, v reflect.Value) error {
	if w.depth >= s.maxDepth {
		return errors.Wrapf(ErrDepthExceeded, "limit %d at %s", s.maxDepth, reg.Type)
	}
	start := w.count
	w.depth++
	err := reg.Codec.encode(s, w, v)
	w.depth--
	if err == nil {
		return w.Err()
	}
	// a partial value is on the wire; later writes must not follow it
	if w.count > start {
		w.setError(err)
	}
	return err
}

func (s *Serializer) decodeWith(r *Reader, reg *Registration) (reflect.Value, error) {
	if r.depth >= s.maxDepth {
		return reflect.Value{}, errors.Wrapf(ErrDepthExceeded, "limit %d at %s", s.maxDepth, reg.Type)
	}
	r.depth++
	v, err := reg.Codec.decode(s, r)
	r.depth--
	if err == nil {
		err = r.Err()
	}
	if err != nil {
		return reflect.Value{}, err
	}
	if v.Type() != reg.Type {
		return reflect.Value{}, errors.Wrapf(ErrTypeMismatch, "codec for %s produced %s", reg.Type, v.Type())
	}
	return v, nil
}

func (s *Serializer) observeWrite(reg *Registration, tagged bool, n int64, err error) {
	if err != nil {
		s.log.Debug("write failed", zap.Bool("tagged", tagged), zap.Error(err))
		if s.observer != nil {
			s.observer.Failed("write", err)
		}
		return
	}
	if s.observer != nil {
		s.observer.ObjectWritten(reg, tagged, n)
	}
}

func (s *Serializer) observeRead(reg *Registration, tagged bool, n int64, err error) {
	if err != nil {
		s.log.Debug("read failed", zap.Bool("tagged", tagged), zap.Error(err))
		if s.observer != nil {
			s.observer.Failed("read", err)
		}
		return
	}
	if s.observer != nil {
		s.observer.ObjectRead(reg, tagged, n)
	}
}
