// Package extcodec provides custom codecs that embed values encoded by other
// serialization libraries as length-prefixed byte runs.
package extcodec

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/proto"

	"github.com/oy3o/objcodec"
)

// Proto returns a custom codec for a generated protobuf message type.
// Register it for the pointer type, e.g. *timestamppb.Timestamp.
//
// Wire: [len uvarint][protobuf bytes].
func Proto[T proto.Message]() *objcodec.CustomCodec {
	return objcodec.NewCustom[T](encodeProto[T], decodeProto[T])
}

func encodeProto[T proto.Message](_ *objcodec.Serializer, w *objcodec.Writer, m T) error {
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "proto marshal")
	}
	w.WriteByteSlice(b)
	return w.Err()
}

func decodeProto[T proto.Message](_ *objcodec.Serializer, r *objcodec.Reader) (T, error) {
	var zero T
	var b []byte
	r.ReadByteSlice(&b)
	if err := r.Err(); err != nil {
		return zero, err
	}
	// a typed nil still carries the message descriptor
	m := zero.ProtoReflect().Type().New().Interface().(T)
	if err := proto.Unmarshal(b, m); err != nil {
		return zero, errors.Mark(errors.Wrap(err, "proto unmarshal"), objcodec.ErrMalformedData)
	}
	return m, nil
}
