package demo

import (
	"maps"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/oy3o/objcodec"
	"github.com/oy3o/objcodec/extcodec"
	"github.com/oy3o/objcodec/internal/sample"
)

// Shelf holds a map, which the reflective codec rejects; it is stored as CBOR.
type Shelf struct {
	Label  string         `cbor:"label"`
	Counts map[string]int `cbor:"counts"`
}

// StandardRegistry registers the sample types, then Shelf (CBOR) and
// *timestamppb.Timestamp (protobuf). Readers of catalog files and stores
// must use a registry built by this function.
func StandardRegistry(log *zap.Logger) (*objcodec.Registry, error) {
	reg := objcodec.NewRegistry(objcodec.WithRegistryLogger(log))
	if err := sample.RegisterAll(reg); err != nil {
		return nil, err
	}
	if _, err := objcodec.Register[Shelf](reg, extcodec.CBOR[Shelf]()); err != nil {
		return nil, err
	}
	if _, err := objcodec.Register[*timestamppb.Timestamp](reg, extcodec.Proto[*timestamppb.Timestamp]()); err != nil {
		return nil, err
	}
	return reg, nil
}

var (
	jonathan = sample.Person{Name: "Jonathan Martin", Age: 62, Birthday: sample.Date(1962, time.February, 5)}
	wendy    = sample.Person{Name: "Wendy Carol", Age: 60, Birthday: sample.Date(1963, time.December, 8)}
	lady     = sample.Pet{Type: "German Shepherd Dog", Name: "Lady", Color: "Black & tan", Age: 12}
	chair    = sample.Chair{Color: "Walnut", HasWheels: true}
	album    = sample.Recording{
		Title:         "Kind of Blue",
		Label:         "Columbia",
		Artists:       []string{"Miles Davis", "John Coltrane", "Cannonball Adderley", "Bill Evans"},
		TimeInMinutes: 46,
	}
	dateMillis int64 = 915170400000
)

// Catalog returns one value of every type the standard registry knows about.
func Catalog() []any {
	return []any{
		"This is really a string",
		time.UnixMilli(dateMillis).UTC(),
		jonathan,
		wendy,
		lady,
		chair,
		album,
		Shelf{Label: "hardware", Counts: map[string]int{"bolts": 40, "nuts": 38}},
		timestamppb.New(time.UnixMilli(dateMillis).UTC()),
	}
}

// Equal compares two catalog values.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case sample.Person:
		y, ok := b.(sample.Person)
		return ok && x.Equal(y)
	case sample.Recording:
		y, ok := b.(sample.Recording)
		return ok && x.Equal(y)
	case Shelf:
		y, ok := b.(Shelf)
		return ok && x.Label == y.Label && maps.Equal(x.Counts, y.Counts)
	case proto.Message:
		y, ok := b.(proto.Message)
		return ok && proto.Equal(x, y)
	}
	return reflect.DeepEqual(a, b)
}

// WriteCatalog writes every catalog value tagged to path.
func WriteCatalog(ser *objcodec.Serializer, path string) (int, error) {
	values := Catalog()
	err := writeFile(path, func(w *objcodec.Writer) error {
		for i, v := range values {
			if err := ser.WriteTagged(w, v); err != nil {
				return errors.Wrapf(err, "catalog entry %d", i)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(values), nil
}
