package extcodec_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/oy3o/objcodec"
	"github.com/oy3o/objcodec/extcodec"
)

type inventory struct {
	Owner  string         `cbor:"owner"`
	Counts map[string]int `cbor:"counts"`
	Tags   []string       `cbor:"tags,omitempty"`
}

// wrapper mixes a CBOR-coded field with reflective ones.
type wrapper struct {
	ID    uint32
	Inv   inventory
	Stamp *timestamppb.Timestamp
}

func newSerializer(t *testing.T) *objcodec.Serializer {
	reg := objcodec.NewRegistry()
	_, err := objcodec.Register[inventory](reg, extcodec.CBOR[inventory]())
	require.NoError(t, err)
	_, err = objcodec.Register[*timestamppb.Timestamp](reg, extcodec.Proto[*timestamppb.Timestamp]())
	require.NoError(t, err)
	_, err = objcodec.Register[*durationpb.Duration](reg, extcodec.Proto[*durationpb.Duration]())
	require.NoError(t, err)
	_, err = objcodec.Register[wrapper](reg)
	require.NoError(t, err)
	return objcodec.New(reg)
}

func TestProtoRoundTrip(t *testing.T) {
	s := newSerializer(t)
	ts := timestamppb.New(time.Date(1999, time.January, 1, 6, 0, 0, 123000000, time.UTC))

	data, err := s.Marshal(ts)
	require.NoError(t, err)

	v, err := s.Unmarshal(data)
	require.NoError(t, err)
	got, ok := v.(*timestamppb.Timestamp)
	require.True(t, ok, "decoded %T", v)
	assert.True(t, proto.Equal(ts, got))
	assert.NotSame(t, ts, got)

	d := durationpb.New(90 * time.Second)
	data, err = s.Marshal(d)
	require.NoError(t, err)
	v, err = s.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, v.(*durationpb.Duration).AsDuration())
}

func TestProtoIsDeterministic(t *testing.T) {
	s := newSerializer(t)
	ts := timestamppb.New(time.UnixMilli(915170400000))
	a, err := s.Marshal(ts)
	require.NoError(t, err)
	b, err := s.Marshal(proto.Clone(ts))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestProtoMalformedPayload(t *testing.T) {
	s := newSerializer(t)
	id, err := s.Registry().Lookup(reflect.TypeFor[*timestamppb.Timestamp]())
	require.NoError(t, err)

	w, buf := objcodec.NewBufferWriter()
	w.WriteVarUint(uint64(id))
	w.WriteByteSlice([]byte{0xFF, 0xFF, 0xFF}) // not a protobuf message
	require.NoError(t, w.Flush())

	_, err = s.Unmarshal(buf.Bytes())
	assert.ErrorIs(t, err, objcodec.ErrMalformedData)
}

func TestCBORRoundTrip(t *testing.T) {
	s := newSerializer(t)
	in := inventory{Owner: "Lady", Counts: map[string]int{"bones": 3, "balls": 1}}

	data, err := s.Marshal(in)
	require.NoError(t, err)
	v, err := s.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, in, v)

	// canonical mode sorts map keys, so the bytes do not depend on map order
	again, err := s.Marshal(inventory{Owner: "Lady", Counts: map[string]int{"balls": 1, "bones": 3}})
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestCBORMalformedPayload(t *testing.T) {
	s := newSerializer(t)
	id, err := s.Registry().Lookup(reflect.TypeFor[inventory]())
	require.NoError(t, err)

	w, buf := objcodec.NewBufferWriter()
	w.WriteVarUint(uint64(id))
	w.WriteByteSlice([]byte{0xFF})
	require.NoError(t, w.Flush())

	_, err = s.Unmarshal(buf.Bytes())
	assert.ErrorIs(t, err, objcodec.ErrMalformedData)
}

func TestNestedExternalValues(t *testing.T) {
	s := newSerializer(t)
	in := wrapper{
		ID:    7,
		Inv:   inventory{Owner: "Wendy", Counts: map[string]int{"chairs": 2}, Tags: []string{"home"}},
		Stamp: timestamppb.New(time.UnixMilli(0).UTC()),
	}

	data, err := objcodec.MarshalObject(s, in)
	require.NoError(t, err)
	out, err := objcodec.UnmarshalObject[wrapper](s, data)
	require.NoError(t, err)

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Inv, out.Inv)
	require.NotNil(t, out.Stamp)
	assert.True(t, proto.Equal(in.Stamp, out.Stamp))

	t.Run("NilMessageField", func(t *testing.T) {
		data, err := objcodec.MarshalObject(s, wrapper{ID: 1, Inv: inventory{Owner: "x"}})
		require.NoError(t, err)
		out, err := objcodec.UnmarshalObject[wrapper](s, data)
		require.NoError(t, err)
		assert.Nil(t, out.Stamp)
	})
}
