package demo

import (
	"github.com/cockroachdb/errors"

	"github.com/oy3o/objcodec"
)

// writeFile creates path and hands fn a Writer that is closed on every exit path.
// A close failure is reported unless fn already failed.
func writeFile(path string, fn func(w *objcodec.Writer) error) (err error) {
	w, err := objcodec.CreateFile(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, w.Close())
	}()
	return fn(w)
}

func readFile(path string, fn func(r *objcodec.Reader) error) (err error) {
	r, err := objcodec.OpenFile(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, r.Close())
	}()
	return fn(r)
}
