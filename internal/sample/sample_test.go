package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oy3o/objcodec"
)

func TestPersonCodecLayout(t *testing.T) {
	w, buf := objcodec.NewBufferWriter()
	p := Person{Name: "Al", Age: 3, Birthday: time.UnixMilli(1)}
	require.NoError(t, PersonCodec{}.Encode(nil, w, p))

	assert.Equal(t, []byte{
		0x02, 'A', 'l',
		0, 0, 0, 0, 0, 0, 0, 1,
		0, 0, 0, 3,
	}, buf.Bytes())

	got, err := PersonCodec{}.Decode(nil, objcodec.NewBytesSource(buf.Bytes()))
	require.NoError(t, err)
	assert.True(t, p.Equal(got))
}

func TestPetCodecRoundTrip(t *testing.T) {
	w, buf := objcodec.NewBufferWriter()
	p := Pet{Type: "German Shepherd Dog", Name: "Lady", Color: "Black & tan", Age: 12}
	require.NoError(t, PetCodec{}.Encode(nil, w, p))

	got, err := PetCodec{}.Decode(nil, objcodec.NewBytesSource(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = PetCodec{}.Decode(nil, objcodec.NewBytesSource(buf.Bytes()[:5]))
	assert.ErrorIs(t, err, objcodec.ErrUnderflow)
}

func TestChairDescribesItself(t *testing.T) {
	w, buf := objcodec.NewBufferWriter()
	c := &Chair{Color: "Oak", HasWheels: true}
	require.NoError(t, c.MarshalObject(nil, w))
	assert.Equal(t, []byte{0x03, 'O', 'a', 'k', 0x01}, buf.Bytes())

	var got Chair
	require.NoError(t, got.UnmarshalObject(nil, objcodec.NewBytesSource(buf.Bytes())))
	assert.True(t, c.Equal(got))
}

func TestEquality(t *testing.T) {
	local := time.Date(1962, time.February, 5, 1, 0, 0, 0, time.FixedZone("CET", 3600))
	a := Person{Name: "Jonathan Martin", Age: 62, Birthday: Date(1962, time.February, 5)}
	b := Person{Name: "Jonathan Martin", Age: 62, Birthday: local}
	assert.True(t, a.Equal(b), "same instant in another zone")

	r := Recording{Title: "Kind of Blue", Artists: []string{"Miles Davis"}}
	assert.True(t, r.Equal(Recording{Title: "Kind of Blue", Artists: []string{"Miles Davis"}}))
	assert.False(t, r.Equal(Recording{Title: "Kind of Blue"}))
}

func TestRegisterAllOrder(t *testing.T) {
	reg := objcodec.NewRegistry()
	require.NoError(t, RegisterAll(reg))

	users := reg.UserRegistrations()
	require.Len(t, users, 4)
	assert.Equal(t, "sample.Person", users[0].Type.String())
	assert.Equal(t, "sample.Pet", users[1].Type.String())
	assert.Equal(t, "sample.Chair", users[2].Type.String())
	assert.Equal(t, "sample.Recording", users[3].Type.String())
}
