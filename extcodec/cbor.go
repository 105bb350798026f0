package extcodec

import (
	"github.com/cockroachdb/errors"
	cbor "github.com/fxamacker/cbor/v2"

	"github.com/oy3o/objcodec"
)

// cborEnc sorts map keys so equal values always produce equal bytes.
var cborEnc = mustEncMode(cbor.CanonicalEncOptions())

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic(errors.Wrap(err, "cbor enc mode"))
	}
	return em
}

// CBOR returns a custom codec that stores T as a CBOR document. It covers
// types the reflective codec rejects, such as structs holding maps.
//
// Wire: [len uvarint][CBOR bytes].
func CBOR[T any]() *objcodec.CustomCodec {
	return objcodec.NewCustom[T](encodeCBOR[T], decodeCBOR[T])
}

func encodeCBOR[T any](_ *objcodec.Serializer, w *objcodec.Writer, v T) error {
	b, err := cborEnc.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "cbor marshal")
	}
	w.WriteByteSlice(b)
	return w.Err()
}

func decodeCBOR[T any](_ *objcodec.Serializer, r *objcodec.Reader) (T, error) {
	var v T
	var b []byte
	r.ReadByteSlice(&b)
	if err := r.Err(); err != nil {
		return v, err
	}
	if err := cbor.Unmarshal(b, &v); err != nil {
		return v, errors.Mark(errors.Wrap(err, "cbor unmarshal"), objcodec.ErrMalformedData)
	}
	return v, nil
}
