// Package pebblevalue writes ranges of a Pebble key-value store as
// var_export maps.
package pebblevalue

import (
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/jmjoy/varexport"
	"github.com/jmjoy/varexport/jsonvalue"
)

// Range is the set of keys of a Pebble reader starting with Prefix,
// written as a map in key order.
//
// Keys are written as strings. Values are written as strings when they
// are valid UTF-8, and as sequences of bytes otherwise.
type Range struct {
	// Reader can be a *pebble.DB, a *pebble.Snapshot or an indexed
	// *pebble.Batch.
	Reader pebble.Reader
	// Prefix of the keys to write. An empty prefix selects every key.
	Prefix []byte
	// TrimPrefix removes Prefix from the written keys.
	TrimPrefix bool
	// JSON writes the values holding a JSON document as the
	// document itself.
	JSON bool
}

func (r Range) MarshalVarExport(s varexport.Serializer) error {
	if r.Reader == nil {
		return errors.New("pebble range without reader")
	}

	opts := pebble.IterOptions{}
	if len(r.Prefix) > 0 {
		opts.LowerBound = r.Prefix
		opts.UpperBound = UpperBound(r.Prefix)
	}

	it := r.Reader.NewIter(&opts)
	err := r.marshalEntries(s, it)
	if cerr := it.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "cannot close iterator")
	}
	return err
}

func (r Range) marshalEntries(s varexport.Serializer, it *pebble.Iterator) error {
	m, err := s.SerializeMap(-1)
	if err != nil {
		return err
	}

	for it.First(); it.Valid(); it.Next() {
		k := it.Key()
		if r.TrimPrefix {
			k = k[len(r.Prefix):]
		}

		if err := m.SerializeEntry(string(k), r.value(it.Value())); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return errors.Wrap(err, "cannot iterate over pebble range")
	}

	return m.End()
}

func (r Range) value(v []byte) any {
	if r.JSON && jsonvalue.Valid(v) {
		return jsonvalue.Raw(v)
	}
	if utf8.Valid(v) {
		return string(v)
	}
	// the iterator reuses its buffer once moved.
	return append([]byte(nil), v...)
}

// UpperBound returns the smallest key greater than every key starting
// with prefix, or nil if there is none.
func UpperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
