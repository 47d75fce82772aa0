// Package jsonvalue writes JSON documents as var_export literals without
// decoding them into Go values first.
//
// Objects become maps whose entries keep the document order, arrays
// become sequences, and null becomes NULL. Numbers that fit in an int64
// are written as integers, other numbers as floats.
package jsonvalue

import (
	"encoding/json"
	"io"

	"github.com/buger/jsonparser"
	"github.com/cockroachdb/errors"
	"github.com/jmjoy/varexport"
)

// Raw is an encoded JSON value.
type Raw []byte

// MarshalVarExport describes the JSON value to s.
func (r Raw) MarshalVarExport(s varexport.Serializer) error {
	// jsonparser accepts trailing commas, leading zeros and trailing data.
	if !json.Valid(r) {
		return varexport.Errorf("invalid json")
	}

	data, dataType, _, err := jsonparser.Get(r)
	if err != nil {
		return jsonError(err, "invalid json")
	}

	return value{data: data, dataType: dataType}.MarshalVarExport(s)
}

// Valid reports whether data holds a single well-formed JSON value.
func Valid(data []byte) bool {
	return varexport.MarshalTo(io.Discard, Raw(data)) == nil
}

// value is a JSON value as returned by jsonparser: strings are
// still escaped and lack their quotes.
type value struct {
	data     []byte
	dataType jsonparser.ValueType
}

func (v value) MarshalVarExport(s varexport.Serializer) error {
	switch v.dataType {
	case jsonparser.Null:
		return s.SerializeNone()
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(v.data)
		if err != nil {
			return jsonError(err, "invalid json boolean")
		}
		return s.SerializeBool(b)
	case jsonparser.Number:
		i, err := jsonparser.ParseInt(v.data)
		if err != nil {
			// too big for an int64, or not an integer at all
			f, err := jsonparser.ParseFloat(v.data)
			if err != nil {
				return jsonError(err, "invalid json number")
			}
			return s.SerializeFloat64(f)
		}
		return s.SerializeInt64(i)
	case jsonparser.String:
		str, err := jsonparser.ParseString(v.data)
		if err != nil {
			return jsonError(err, "invalid json string")
		}
		return s.SerializeString(str)
	case jsonparser.Array:
		return marshalArray(s, v.data)
	case jsonparser.Object:
		return marshalObject(s, v.data)
	}

	return varexport.Errorf("invalid json: unexpected value %q", v.data)
}

func marshalArray(s varexport.Serializer, data []byte) error {
	seq, err := s.SerializeSeq(-1)
	if err != nil {
		return err
	}

	var serr error
	_, perr := jsonparser.ArrayEach(data, func(data []byte, dataType jsonparser.ValueType, offset int, err error) {
		if serr != nil {
			return
		}
		if err != nil {
			serr = jsonError(err, "invalid json array")
			return
		}
		serr = seq.SerializeElement(value{data: data, dataType: dataType})
	})
	if serr != nil {
		return serr
	}
	if perr != nil {
		return jsonError(perr, "invalid json array")
	}

	return seq.End()
}

func marshalObject(s varexport.Serializer, data []byte) error {
	m, err := s.SerializeMap(-1)
	if err != nil {
		return err
	}

	var serr error
	perr := jsonparser.ObjectEach(data, func(key, data []byte, dataType jsonparser.ValueType, offset int) error {
		serr = m.SerializeEntry(string(key), value{data: data, dataType: dataType})
		return serr
	})
	if serr != nil {
		return serr
	}
	if perr != nil {
		return jsonError(perr, "invalid json object")
	}

	return m.End()
}

func jsonError(err error, msg string) error {
	return errors.WithStack(&varexport.Error{Msg: msg, Err: err})
}
