// Package demo runs the serialization scenarios behind the objcodec-demo command.
package demo

import (
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/oy3o/objcodec"
	"github.com/oy3o/objcodec/internal/config"
	"github.com/oy3o/objcodec/internal/sample"
)

// Result reports whether a scenario read back what it wrote.
type Result struct {
	Scenario string
	Match    bool
}

type Runner struct {
	files config.FilesConfig
	log   *zap.Logger
	opts  []objcodec.Option
}

// NewRunner creates a Runner writing to files. opts are applied to every
// Serializer the scenarios create.
func NewRunner(files config.FilesConfig, log *zap.Logger, opts ...objcodec.Option) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{files: files, log: log, opts: opts}
}

type scenario struct {
	name string
	run  func(ser *objcodec.Serializer) (bool, error)
}

// Run executes every scenario and finally writes the catalog to the test file.
// Object scenarios share one registry and codec scenarios another, so
// registrations made by an earlier scenario are visible to later ones.
func (r *Runner) Run() ([]Result, error) {
	groups := [][]scenario{
		{
			{"single object", r.singleObject},
			{"multiple objects", r.multipleObjects},
		},
		{
			{"default codec", r.defaultCodec},
			{"custom codec", r.customCodec},
			{"typed codec", r.typedCodec},
			{"self-describing", r.selfDescribing},
			{"slice field", r.sliceField},
		},
	}

	var results []Result
	for _, group := range groups {
		reg := objcodec.NewRegistry(objcodec.WithRegistryLogger(r.log))
		ser := objcodec.New(reg, r.serializerOpts()...)
		for _, sc := range group {
			match, err := sc.run(ser)
			if err != nil {
				return results, errors.Wrapf(err, "scenario %q", sc.name)
			}
			results = append(results, Result{Scenario: sc.name, Match: match})
		}
	}

	reg, err := StandardRegistry(r.log)
	if err != nil {
		return results, err
	}
	n, err := WriteCatalog(objcodec.New(reg, r.serializerOpts()...), r.files.Test)
	if err != nil {
		return results, err
	}
	r.log.Info("wrote catalog", zap.String("file", r.files.Test), zap.Int("objects", n))
	return results, nil
}

func (r *Runner) serializerOpts() []objcodec.Option {
	return append([]objcodec.Option{objcodec.WithLogger(r.log)}, r.opts...)
}

func (r *Runner) report(what string, match bool, want, got any) bool {
	if match {
		r.log.Info("serialized " + what + " and deserialized " + what + " match")
		return true
	}
	r.log.Warn("serialized "+what+" and deserialized "+what+" do not match",
		zap.Any("want", want), zap.Any("got", got))
	return false
}

func (r *Runner) logID(reg *objcodec.Registry, name string, v any) {
	id, err := reg.Lookup(reflect.TypeOf(v))
	if err != nil {
		r.log.Warn("lookup failed", zap.String("type", name), zap.Error(err))
		return
	}
	r.log.Info("registration id", zap.String("type", name), zap.Uint32("id", uint32(id)))
}

func (r *Runner) singleObject(ser *objcodec.Serializer) (bool, error) {
	var object any = "This is really a string"
	r.logID(ser.Registry(), "string", object)

	err := writeFile(r.files.Main, func(w *objcodec.Writer) error {
		return ser.WriteTagged(w, object)
	})
	if err != nil {
		return false, err
	}

	var got any
	err = readFile(r.files.Main, func(rd *objcodec.Reader) error {
		v, err := ser.ReadTagged(rd)
		got = v
		return err
	})
	if err != nil {
		return false, err
	}
	return r.report("object", got == object, object, got), nil
}

func (r *Runner) multipleObjects(ser *objcodec.Serializer) (bool, error) {
	myString := "This is really another string, accompanied by a date"
	myDate := time.UnixMilli(dateMillis).UTC()

	err := writeFile(r.files.Main, func(w *objcodec.Writer) error {
		if err := objcodec.WriteObjectOf(ser, w, myString); err != nil {
			return err
		}
		return objcodec.WriteObjectOf(ser, w, myDate)
	})
	if err != nil {
		return false, err
	}
	r.logID(ser.Registry(), "time.Time", myDate)
	r.logID(ser.Registry(), "string", myString)

	var gotString string
	var gotDate time.Time
	err = readFile(r.files.Main, func(rd *objcodec.Reader) error {
		s, err := objcodec.ReadObjectOf[string](ser, rd)
		if err != nil {
			return err
		}
		d, err := objcodec.ReadObjectOf[time.Time](ser, rd)
		gotString, gotDate = s, d
		return err
	})
	if err != nil {
		return false, err
	}
	stringsMatch := r.report("string", gotString == myString, myString, gotString)
	datesMatch := r.report("date", gotDate.Equal(myDate), myDate, gotDate)
	return stringsMatch && datesMatch, nil
}

func (r *Runner) defaultCodec(ser *objcodec.Serializer) (bool, error) {
	if _, err := objcodec.Register[sample.Person](ser.Registry()); err != nil {
		return false, err
	}
	r.logID(ser.Registry(), "Person", jonathan)
	return roundTrip(r, ser, "person", jonathan, sample.Person.Equal)
}

func (r *Runner) customCodec(ser *objcodec.Serializer) (bool, error) {
	// replaces the reflective codec registered by defaultCodec, keeping the id
	codec := objcodec.NewCustom[sample.Person](sample.PersonCodec{}.Encode, sample.PersonCodec{}.Decode)
	if _, err := objcodec.Register[sample.Person](ser.Registry(), codec); err != nil {
		return false, err
	}
	r.logID(ser.Registry(), "Person", wendy)
	return roundTrip(r, ser, "person", wendy, sample.Person.Equal)
}

func (r *Runner) typedCodec(ser *objcodec.Serializer) (bool, error) {
	if _, err := objcodec.Register[sample.Pet](ser.Registry(), objcodec.FromTyped[sample.Pet](sample.PetCodec{})); err != nil {
		return false, err
	}
	r.logID(ser.Registry(), "Pet", lady)
	return roundTrip(r, ser, "pet", lady, sample.Pet.Equal)
}

func (r *Runner) selfDescribing(ser *objcodec.Serializer) (bool, error) {
	if _, err := objcodec.Register[sample.Chair](ser.Registry()); err != nil {
		return false, err
	}
	r.logID(ser.Registry(), "Chair", chair)
	return roundTrip(r, ser, "chair", chair, sample.Chair.Equal)
}

func (r *Runner) sliceField(ser *objcodec.Serializer) (bool, error) {
	if _, err := objcodec.Register[sample.Recording](ser.Registry()); err != nil {
		return false, err
	}
	r.logID(ser.Registry(), "Recording", album)
	return roundTrip(r, ser, "recording", album, sample.Recording.Equal)
}

// roundTrip writes v untagged to the main file and reads it back.
func roundTrip[T any](r *Runner, ser *objcodec.Serializer, what string, v T, eq func(a, b T) bool) (bool, error) {
	err := writeFile(r.files.Main, func(w *objcodec.Writer) error {
		return objcodec.WriteObjectOf(ser, w, v)
	})
	if err != nil {
		return false, err
	}

	var got T
	err = readFile(r.files.Main, func(rd *objcodec.Reader) error {
		out, err := objcodec.ReadObjectOf[T](ser, rd)
		got = out
		return err
	})
	if err != nil {
		return false, err
	}
	return r.report(what, eq(v, got), v, got), nil
}
