package demo

import (
	"io"
	"reflect"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"

	"github.com/oy3o/objcodec"
	"github.com/oy3o/objcodec/objstore"
)

// Entry is one decoded value as printed by Dump and ListStore.
type Entry struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

func entry(id string, v any) Entry {
	return Entry{ID: id, Type: reflect.TypeOf(v).String(), Value: v}
}

func writeLine(out io.Writer, e Entry) error {
	b, err := sonic.Marshal(e)
	if err != nil {
		return errors.Wrapf(err, "render %s", e.Type)
	}
	b = append(b, '\n')
	_, err = out.Write(b)
	return err
}

// Dump decodes every tagged value in path and writes one JSON line per value to out.
func Dump(ser *objcodec.Serializer, path string, out io.Writer) (int, error) {
	n := 0
	err := readFile(path, func(r *objcodec.Reader) error {
		for r.More() {
			v, err := ser.ReadTagged(r)
			if err != nil {
				return errors.Wrapf(err, "value %d", n)
			}
			if err := writeLine(out, entry("", v)); err != nil {
				return err
			}
			n++
		}
		return r.Err()
	})
	return n, err
}

// StoreCatalog puts every catalog value into st and returns the new ids in order.
func StoreCatalog(st *objstore.Store) ([]ksuid.KSUID, error) {
	values := Catalog()
	ids := make([]ksuid.KSUID, 0, len(values))
	for i, v := range values {
		id, err := st.Put(v)
		if err != nil {
			return ids, errors.Wrapf(err, "catalog entry %d", i)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListStore writes every stored object to out as JSON lines.
func ListStore(st *objstore.Store, out io.Writer) (int, error) {
	n := 0
	err := st.Scan(func(id ksuid.KSUID, v any) error {
		n++
		return writeLine(out, entry(id.String(), v))
	})
	return n, err
}
