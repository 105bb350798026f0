package objcodec_test

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/oy3o/objcodec"
	"github.com/oy3o/objcodec/internal/sample"
)

type BenchmarkPayload struct {
	ID      uint32
	Val1    uint64
	Val2    uint64
	Val3    uint64
	IsAlive bool
	Padding [3]byte
}

func benchSerializer(b *testing.B) *objcodec.Serializer {
	reg := objcodec.NewRegistry()
	if err := sample.RegisterAll(reg); err != nil {
		b.Fatal(err)
	}
	objcodec.MustRegister[BenchmarkPayload](reg)
	return objcodec.New(reg)
}

func BenchmarkReflectiveMarshal(b *testing.B) {
	s := benchSerializer(b)
	p := BenchmarkPayload{ID: 1, Val1: 100}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Marshal(p)
	}
}

func BenchmarkReflectiveUnmarshal(b *testing.B) {
	s := benchSerializer(b)
	data, _ := s.Marshal(BenchmarkPayload{ID: 1, Val1: 100})
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Unmarshal(data)
	}
}

func BenchmarkCustomWriteTagged(b *testing.B) {
	s := benchSerializer(b)
	pet := sample.Pet{Type: "German Shepherd Dog", Name: "Lady", Color: "Black & tan", Age: 12}
	w, buf := objcodec.NewBufferWriter()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		_ = s.WriteTagged(w, pet)
	}
}

func BenchmarkSliceField(b *testing.B) {
	s := benchSerializer(b)
	rec := sample.Recording{
		Title:         "Kind of Blue",
		Label:         "Columbia",
		Artists:       []string{"Miles Davis", "John Coltrane", "Bill Evans", "Cannonball Adderley"},
		TimeInMinutes: 46,
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data, _ := objcodec.MarshalObject(s, rec)
		_, _ = objcodec.UnmarshalObject[sample.Recording](s, data)
	}
}

func BenchmarkWriterPrimitives(b *testing.B) {
	w, buf := objcodec.NewBufferWriter()
	now := time.Now()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		w.WriteUint32(1)
		w.WriteVarInt(-100)
		w.WriteUTF8("Jonathan Martin")
		w.WriteTime(now)
	}
}

// Baseline comparison using only binary.Write directly, to see overhead of the serializer
func BenchmarkStandardBinaryWrite(b *testing.B) {
	payload := BenchmarkPayload{ID: 1, Val1: 100}
	buf := make([]byte, binary.Size(payload))
	w := objcodec.NewBytesWriter(buf) // using same writer as library
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Reset()
		_ = binary.Write(w, objcodec.Order, &payload)
	}
}
