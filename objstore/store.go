// Package objstore persists tagged objects in a pebble database keyed by KSUID.
// Each value is stored as the tagged envelope produced by Serializer.Marshal,
// so reading it back needs a registry populated in the same order.
package objstore

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/oy3o/objcodec"
)

// ErrNotFound is returned for ids with no stored object.
var ErrNotFound = errors.New("objstore: not found")

type Store struct {
	db   *pebble.DB
	ser  *objcodec.Serializer
	log  *zap.Logger
	sync bool
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSync makes every mutation wait for the WAL to reach disk.
func WithSync(sync bool) Option {
	return func(s *Store) { s.sync = sync }
}

// Open opens (or creates) the database at path.
func Open(path string, ser *objcodec.Serializer, opts ...Option) (*Store, error) {
	if ser == nil {
		return nil, errors.New("objstore: nil serializer")
	}
	s := &Store{ser: ser, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "open store %s", path), objcodec.ErrIO)
	}
	s.db = db
	return s, nil
}

func (s *Store) writeOpts() *pebble.WriteOptions {
	if s.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

// Put stores v under a new id.
func (s *Store) Put(v any) (ksuid.KSUID, error) {
	data, err := s.ser.Marshal(v)
	if err != nil {
		return ksuid.Nil, err
	}
	id := ksuid.New()
	if err := s.db.Set(id.Bytes(), data, s.writeOpts()); err != nil {
		return ksuid.Nil, errors.Mark(errors.Wrapf(err, "put %s", id), objcodec.ErrIO)
	}
	s.log.Debug("stored object", zap.Stringer("id", id), zap.Int("bytes", len(data)))
	return id, nil
}

// Get loads and decodes the object stored under id.
func (s *Store) Get(id ksuid.KSUID) (any, error) {
	data, err := s.raw(id)
	if err != nil {
		return nil, err
	}
	return s.ser.Unmarshal(data)
}

// Raw returns the stored envelope bytes for id.
func (s *Store) Raw(id ksuid.KSUID) ([]byte, error) {
	return s.raw(id)
}

func (s *Store) raw(id ksuid.KSUID) ([]byte, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "%s", id)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "get %s", id), objcodec.ErrIO)
	}
	// data is only valid until the closer is closed
	out := bytes.Clone(data)
	if err := closer.Close(); err != nil {
		return nil, errors.Mark(err, objcodec.ErrIO)
	}
	return out, nil
}

// Update replaces the object stored under id.
func (s *Store) Update(id ksuid.KSUID, v any) error {
	if _, err := s.raw(id); err != nil {
		return err
	}
	data, err := s.ser.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.db.Set(id.Bytes(), data, s.writeOpts()); err != nil {
		return errors.Mark(errors.Wrapf(err, "update %s", id), objcodec.ErrIO)
	}
	return nil
}

// Delete removes id. Deleting a missing id is not an error.
func (s *Store) Delete(id ksuid.KSUID) error {
	if err := s.db.Delete(id.Bytes(), s.writeOpts()); err != nil {
		return errors.Mark(errors.Wrapf(err, "delete %s", id), objcodec.ErrIO)
	}
	return nil
}

// Scan calls fn for every stored object in id order, which is creation order
// at one-second resolution. A non-nil error from fn stops the scan and is returned.
func (s *Store) Scan(fn func(id ksuid.KSUID, v any) error) error {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "scan"), objcodec.ErrIO)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			return errors.Mark(errors.Wrap(err, "scan key"), objcodec.ErrMalformedData)
		}
		v, err := s.ser.Unmarshal(iter.Value())
		if err != nil {
			return errors.Wrapf(err, "scan %s", id)
		}
		if err := fn(id, v); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (s *Store) Close() error {
	return s.db.Close()
}
