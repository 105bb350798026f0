// Package sample holds the domain objects exercised by the demo and tests.
package sample

import (
	"fmt"
	"slices"
	"time"

	"github.com/oy3o/objcodec"
)

type Person struct {
	Name     string
	Age      int32
	Birthday time.Time
}

func (p Person) Equal(o Person) bool {
	return p.Name == o.Name && p.Age == o.Age && p.Birthday.Equal(o.Birthday)
}

func (p Person) String() string {
	return fmt.Sprintf("Person{name=%q, age=%d, birthday=%s}", p.Name, p.Age, p.Birthday.Format(time.DateOnly))
}

type Pet struct {
	Type  string
	Name  string
	Color string
	Age   int32
}

func (p Pet) Equal(o Pet) bool { return p == o }

func (p Pet) String() string {
	return fmt.Sprintf("Pet{type=%q, name=%q, color=%q, age=%d}", p.Type, p.Name, p.Color, p.Age)
}

// Chair encodes itself: color, then whether it has wheels.
type Chair struct {
	Color     string
	HasWheels bool
}

var _ objcodec.SelfDescriber = (*Chair)(nil)

func (c *Chair) MarshalObject(_ *objcodec.Serializer, w *objcodec.Writer) error {
	w.WriteUTF8(c.Color)
	w.WriteBool(c.HasWheels)
	return w.Err()
}

func (c *Chair) UnmarshalObject(_ *objcodec.Serializer, r *objcodec.Reader) error {
	r.ReadUTF8(&c.Color)
	r.ReadBool(&c.HasWheels)
	return r.Err()
}

func (c Chair) Equal(o Chair) bool { return c == o }

type Recording struct {
	Title         string
	Label         string
	Artists       []string
	TimeInMinutes int32
}

func (r Recording) Equal(o Recording) bool {
	return r.Title == o.Title && r.Label == o.Label &&
		r.TimeInMinutes == o.TimeInMinutes && slices.Equal(r.Artists, o.Artists)
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
