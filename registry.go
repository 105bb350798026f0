package objcodec

import (
	"reflect"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// TypeID identifies a registered type within one Registry.
type TypeID uint32

// Registration binds a type to its id and codec. It is immutable once returned;
// re-registering a type installs a new Registration with the same ID.
type Registration struct {
	ID    TypeID
	Type  reflect.Type
	Codec Codec
}

// Registry maps types to registrations and ids back to registrations.
//
// Populate a Registry before sharing it: Register is not synchronised, while
// lookups on a registry that is no longer mutated are safe from any goroutine.
// Two registries populated with the same types in the same order assign the
// same ids, which is what lets an independent session read a stream back.
type Registry struct {
	byType map[reflect.Type]*Registration
	byID   []*Registration // index is the TypeID
	log    *zap.Logger
}

type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used to report registrations.
func WithRegistryLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry returns a registry holding the builtin primitive types at ids
// 0 through UserTypeIDBase-1.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byType: make(map[reflect.Type]*Registration, len(builtinTypes)),
		byID:   make([]*Registration, 0, len(builtinTypes)),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, t := range builtinTypes {
		r.add(t, newBuiltin(t))
	}
	return r
}

// Register binds t to c and returns its id. A nil codec selects the default:
// SelfDescribing when t or *t implements SelfDescriber, Reflective otherwise.
//
// Registering an already registered type replaces its codec and keeps its id.
func (r *Registry) Register(t reflect.Type, c Codec) (TypeID, error) {
	if t == nil {
		return 0, errors.Wrap(ErrUnsupportedType, "register nil type")
	}
	if t.Kind() == reflect.Interface {
		return 0, errors.Wrapf(ErrUnsupportedType, "register interface type %s", t)
	}

	if c == nil {
		if reg, ok := r.byType[t]; ok && reg.Codec.Kind() == KindBuiltin {
			return reg.ID, nil
		}
		var err error
		if c, err = defaultCodec(t); err != nil {
			return 0, errors.Wrapf(err, "register %s", t)
		}
	} else if err := checkCodecType(t, c); err != nil {
		return 0, err
	}

	reg := r.add(t, c)
	r.log.Debug("registered type",
		zap.Stringer("type", t),
		zap.Uint32("id", uint32(reg.ID)),
		zap.Stringer("codec", reg.Codec.Kind()))
	return reg.ID, nil
}

func (r *Registry) add(t reflect.Type, c Codec) *Registration {
	if old, ok := r.byType[t]; ok {
		reg := &Registration{ID: old.ID, Type: t, Codec: c}
		r.byType[t] = reg
		r.byID[reg.ID] = reg
		return reg
	}
	reg := &Registration{ID: TypeID(len(r.byID)), Type: t, Codec: c}
	r.byType[t] = reg
	r.byID = append(r.byID, reg)
	return reg
}

// Register registers T in r. At most one codec may be given; none selects the default.
func Register[T any](r *Registry, codec ...Codec) (TypeID, error) {
	var c Codec
	switch len(codec) {
	case 0:
	case 1:
		c = codec[0]
	default:
		return 0, errors.Newf("objcodec: Register[%s] takes at most one codec, got %d", reflect.TypeFor[T](), len(codec))
	}
	return r.Register(reflect.TypeFor[T](), c)
}

// MustRegister is like Register but panics on error. Intended for package setup.
func MustRegister[T any](r *Registry, codec ...Codec) TypeID {
	id, err := Register[T](r, codec...)
	if err != nil {
		panic(err)
	}
	return id
}

// Lookup returns the id registered for t.
func (r *Registry) Lookup(t reflect.Type) (TypeID, error) {
	reg, err := r.RegistrationOf(t)
	if err != nil {
		return 0, err
	}
	return reg.ID, nil
}

// RegistrationOf returns the registration for exactly t.
func (r *Registry) RegistrationOf(t reflect.Type) (*Registration, error) {
	if t == nil {
		return nil, errors.Wrap(ErrUnregisteredType, "nil type")
	}
	reg, ok := r.byType[t]
	if !ok {
		return nil, errors.Wrapf(ErrUnregisteredType, "%s", t)
	}
	return reg, nil
}

// Resolve returns the registration for id.
func (r *Registry) Resolve(id TypeID) (*Registration, error) {
	if uint64(id) >= uint64(len(r.byID)) {
		return nil, errors.Wrapf(ErrUnknownTypeID, "id %d", id)
	}
	return r.byID[id], nil
}

// Registrations lists every registration ordered by id.
func (r *Registry) Registrations() []*Registration {
	return slices.Clone(r.byID)
}

// UserRegistrations lists the registrations made through Register, ordered by id.
func (r *Registry) UserRegistrations() []*Registration {
	return lo.Filter(r.byID, func(reg *Registration, _ int) bool { return reg.ID >= UserTypeIDBase })
}

// Len returns the number of registered types, builtins included.
func (r *Registry) Len() int { return len(r.byID) }

// lookupValue finds the registration for a value, dereferencing one level of
// pointer when only the element type is registered.
func (r *Registry) lookupValue(v reflect.Value) (*Registration, reflect.Value, error) {
	if !v.IsValid() {
		return nil, v, errors.Wrap(ErrNilValue, "untyped nil")
	}
	t := v.Type()
	if reg, ok := r.byType[t]; ok {
		if t.Kind() == reflect.Pointer && v.IsNil() {
			return nil, v, errors.Wrapf(ErrNilValue, "%s", t)
		}
		return reg, v, nil
	}
	if t.Kind() == reflect.Pointer {
		if reg, ok := r.byType[t.Elem()]; ok {
			if v.IsNil() {
				return nil, v, errors.Wrapf(ErrNilValue, "%s", t)
			}
			return reg, v.Elem(), nil
		}
	}
	return nil, v, errors.Wrapf(ErrUnregisteredType, "%s", t)
}
