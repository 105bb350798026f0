package sample

import (
	"github.com/oy3o/objcodec"
)

// PersonCodec writes a Person as name, birthday millis, age.
type PersonCodec struct{}

var _ objcodec.TypedCodec[Person] = PersonCodec{}

func (PersonCodec) Encode(_ *objcodec.Serializer, w *objcodec.Writer, p Person) error {
	w.WriteUTF8(p.Name)
	w.WriteTime(p.Birthday)
	w.WriteInt32(p.Age)
	return w.Err()
}

func (PersonCodec) Decode(_ *objcodec.Serializer, r *objcodec.Reader) (Person, error) {
	var p Person
	r.ReadUTF8(&p.Name)
	r.ReadTime(&p.Birthday)
	r.ReadInt32(&p.Age)
	return p, r.Err()
}

// PetCodec writes a Pet as type, name, color, age.
type PetCodec struct{}

var _ objcodec.TypedCodec[Pet] = PetCodec{}

func (PetCodec) Encode(_ *objcodec.Serializer, w *objcodec.Writer, p Pet) error {
	w.WriteUTF8(p.Type)
	w.WriteUTF8(p.Name)
	w.WriteUTF8(p.Color)
	w.WriteInt32(p.Age)
	return w.Err()
}

func (PetCodec) Decode(_ *objcodec.Serializer, r *objcodec.Reader) (Pet, error) {
	var p Pet
	r.ReadUTF8(&p.Type)
	r.ReadUTF8(&p.Name)
	r.ReadUTF8(&p.Color)
	r.ReadInt32(&p.Age)
	return p, r.Err()
}

// RegisterAll registers every sample type in a fixed order: Person and
// Recording reflectively, Pet through PetCodec, Chair as self-describing.
func RegisterAll(reg *objcodec.Registry) error {
	if _, err := objcodec.Register[Person](reg); err != nil {
		return err
	}
	if _, err := objcodec.Register[Pet](reg, objcodec.FromTyped[Pet](PetCodec{})); err != nil {
		return err
	}
	if _, err := objcodec.Register[Chair](reg); err != nil {
		return err
	}
	if _, err := objcodec.Register[Recording](reg); err != nil {
		return err
	}
	return nil
}
