package varexport

import (
	"bytes"
	"io"
	"math"
	"strconv"

	"golang.org/x/exp/constraints"
)

const defaultIndent = "  "

var _ Serializer = (*Encoder)(nil)

// An Encoder writes the var_export representation of values to an
// output stream.
//
// Every container is written as an array block: "array(\n", one
// "key => value,\n" line per entry indented by the current depth, and a
// closing ")" indented like the opening line. An Encoder is not safe for
// concurrent use.
type Encoder struct {
	w        io.Writer
	indent   string
	sortKeys bool

	// number of open array blocks.
	depth int
	buf   []byte

	// pointers being dereferenced, used to detect cycles.
	ptrLevel uint
	ptrSeen  map[ptrKey]struct{}
}

// NewEncoder returns an encoder that writes to w.
// Indentation defaults to two spaces per level.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:      w,
		indent: defaultIndent,
		buf:    make([]byte, 0, 64),
	}
}

// SetIndent sets the string written once per nesting level
// at the beginning of every entry line.
func (e *Encoder) SetIndent(indent string) {
	e.indent = indent
}

// SortMapKeys makes the encoder sort the keys of Go maps before writing
// them, which makes the output of maps deterministic.
// Maps described through a Marshaler are always written in the order
// their entries are visited.
func (e *Encoder) SortMapKeys(sort bool) {
	e.sortKeys = sort
}

// Encode writes the var_export representation of v to the stream.
// No newline is written after the value.
func (e *Encoder) Encode(v any) error {
	e.depth = 0
	e.ptrLevel = 0
	e.ptrSeen = nil
	return e.encode(v)
}

func (e *Encoder) write(p []byte) error {
	_, err := e.w.Write(p)
	if err != nil {
		return newError(err, "write failed")
	}
	return nil
}

func (e *Encoder) writeString(s string) error {
	_, err := io.WriteString(e.w, s)
	if err != nil {
		return newError(err, "write failed")
	}
	return nil
}

func (e *Encoder) writeIndent() error {
	if e.depth == 0 || e.indent == "" {
		return nil
	}

	e.buf = e.buf[:0]
	for i := 0; i < e.depth; i++ {
		e.buf = append(e.buf, e.indent...)
	}
	return e.write(e.buf)
}

// openArray starts an array block. A nested block starts on its own line,
// indented at the depth of the entry containing it.
func (e *Encoder) openArray() error {
	if e.depth > 0 {
		if err := e.writeString("\n"); err != nil {
			return err
		}
		if err := e.writeIndent(); err != nil {
			return err
		}
	}

	if err := e.writeString("array(\n"); err != nil {
		return err
	}
	e.depth++
	return nil
}

func (e *Encoder) closeArray() error {
	e.depth--
	if err := e.writeIndent(); err != nil {
		return err
	}
	return e.writeString(")")
}

// beginEntry writes the indentation and the key of an entry, followed by
// the arrow.
func (e *Encoder) beginEntry(key func() error) error {
	if err := e.writeIndent(); err != nil {
		return err
	}
	if err := key(); err != nil {
		return err
	}
	return e.writeString(" => ")
}

func (e *Encoder) endEntry() error {
	return e.writeString(",\n")
}

// beginVariant opens the one-entry block keyed by the variant name.
func (e *Encoder) beginVariant(variant string) error {
	if err := e.openArray(); err != nil {
		return err
	}
	return e.beginEntry(func() error {
		return e.SerializeString(variant)
	})
}

func (e *Encoder) endVariant() error {
	if err := e.endEntry(); err != nil {
		return err
	}
	return e.closeArray()
}

func (e *Encoder) SerializeBool(v bool) error {
	if v {
		return e.writeString("true")
	}
	return e.writeString("false")
}

func (e *Encoder) SerializeInt8(v int8) error   { return e.write(appendInt(e.buf[:0], v)) }
func (e *Encoder) SerializeInt16(v int16) error { return e.write(appendInt(e.buf[:0], v)) }
func (e *Encoder) SerializeInt32(v int32) error { return e.write(appendInt(e.buf[:0], v)) }
func (e *Encoder) SerializeInt64(v int64) error { return e.write(appendInt(e.buf[:0], v)) }

func (e *Encoder) SerializeUint8(v uint8) error   { return e.write(appendUint(e.buf[:0], v)) }
func (e *Encoder) SerializeUint16(v uint16) error { return e.write(appendUint(e.buf[:0], v)) }
func (e *Encoder) SerializeUint32(v uint32) error { return e.write(appendUint(e.buf[:0], v)) }
func (e *Encoder) SerializeUint64(v uint64) error { return e.write(appendUint(e.buf[:0], v)) }

func (e *Encoder) SerializeFloat32(v float32) error {
	return e.write(appendFloat(e.buf[:0], v, 32))
}

func (e *Encoder) SerializeFloat64(v float64) error {
	return e.write(appendFloat(e.buf[:0], v, 64))
}

// SerializeChar writes the rune as a one character string.
func (e *Encoder) SerializeChar(v rune) error {
	return e.SerializeString(string(v))
}

// SerializeString writes v between single quotes, escaping single quotes
// and backslashes with a backslash.
func (e *Encoder) SerializeString(v string) error {
	e.buf = appendQuoted(e.buf[:0], v)
	return e.write(e.buf)
}

// SerializeBytes writes v as a sequence of unsigned 8-bit integers.
func (e *Encoder) SerializeBytes(v []byte) error {
	seq, err := e.SerializeSeq(len(v))
	if err != nil {
		return err
	}
	for _, b := range v {
		if err := seq.SerializeElement(b); err != nil {
			return err
		}
	}
	return seq.End()
}

func (e *Encoder) SerializeNone() error {
	return e.writeString("NULL")
}

func (e *Encoder) SerializeSome(v any) error {
	return e.encode(v)
}

func (e *Encoder) SerializeUnit() error {
	return e.writeString("NULL")
}

func (e *Encoder) SerializeUnitStruct(name string) error {
	return e.writeString("NULL")
}

func (e *Encoder) SerializeUnitVariant(name string, index uint32, variant string) error {
	return e.SerializeString(variant)
}

func (e *Encoder) SerializeNewtypeStruct(name string, v any) error {
	return e.encode(v)
}

func (e *Encoder) SerializeNewtypeVariant(name string, index uint32, variant string, v any) error {
	if err := e.beginVariant(variant); err != nil {
		return err
	}
	if err := e.encode(v); err != nil {
		return err
	}
	return e.endVariant()
}

func (e *Encoder) SerializeSeq(length int) (SerializeSeq, error) {
	if err := e.openArray(); err != nil {
		return nil, err
	}
	return &seqEncoder{e: e}, nil
}

func (e *Encoder) SerializeTuple(length int) (SerializeSeq, error) {
	return e.SerializeSeq(length)
}

func (e *Encoder) SerializeTupleStruct(name string, length int) (SerializeSeq, error) {
	return e.SerializeSeq(length)
}

func (e *Encoder) SerializeTupleVariant(name string, index uint32, variant string, length int) (SerializeSeq, error) {
	if err := e.beginVariant(variant); err != nil {
		return nil, err
	}
	if err := e.openArray(); err != nil {
		return nil, err
	}
	return &seqEncoder{e: e, variant: true}, nil
}

func (e *Encoder) SerializeMap(length int) (SerializeMap, error) {
	if err := e.openArray(); err != nil {
		return nil, err
	}
	return &mapEncoder{e: e}, nil
}

func (e *Encoder) SerializeStruct(name string, length int) (SerializeStruct, error) {
	if err := e.openArray(); err != nil {
		return nil, err
	}
	return &mapEncoder{e: e}, nil
}

func (e *Encoder) SerializeStructVariant(name string, index uint32, variant string, length int) (SerializeStruct, error) {
	if err := e.beginVariant(variant); err != nil {
		return nil, err
	}
	if err := e.openArray(); err != nil {
		return nil, err
	}
	return &mapEncoder{e: e, variant: true}, nil
}

// seqEncoder writes the elements of a sequence keyed by their
// zero-based position.
type seqEncoder struct {
	e       *Encoder
	idx     uint64
	variant bool
}

func (s *seqEncoder) SerializeElement(v any) error {
	return s.element(func() error {
		return s.e.encode(v)
	})
}

func (s *seqEncoder) element(value func() error) error {
	err := s.e.beginEntry(func() error {
		return s.e.SerializeUint64(s.idx)
	})
	if err != nil {
		return err
	}
	if err := value(); err != nil {
		return err
	}
	s.idx++
	return s.e.endEntry()
}

func (s *seqEncoder) End() error {
	if err := s.e.closeArray(); err != nil {
		return err
	}
	if s.variant {
		return s.e.endVariant()
	}
	return nil
}

// mapEncoder writes the entries of maps and structs.
type mapEncoder struct {
	e       *Encoder
	variant bool
}

func (m *mapEncoder) SerializeKey(k any) error {
	return m.e.beginEntry(func() error {
		return m.e.encode(k)
	})
}

func (m *mapEncoder) SerializeValue(v any) error {
	if err := m.e.encode(v); err != nil {
		return err
	}
	return m.e.endEntry()
}

func (m *mapEncoder) SerializeEntry(k, v any) error {
	if err := m.SerializeKey(k); err != nil {
		return err
	}
	return m.SerializeValue(v)
}

func (m *mapEncoder) SerializeField(key string, v any) error {
	return m.field(key, func() error {
		return m.e.encode(v)
	})
}

func (m *mapEncoder) field(key string, value func() error) error {
	err := m.e.beginEntry(func() error {
		return m.e.SerializeString(key)
	})
	if err != nil {
		return err
	}
	if err := value(); err != nil {
		return err
	}
	return m.e.endEntry()
}

func (m *mapEncoder) End() error {
	if err := m.e.closeArray(); err != nil {
		return err
	}
	if m.variant {
		return m.e.endVariant()
	}
	return nil
}

func appendInt[T constraints.Signed](dst []byte, v T) []byte {
	return strconv.AppendInt(dst, int64(v), 10)
}

func appendUint[T constraints.Unsigned](dst []byte, v T) []byte {
	return strconv.AppendUint(dst, uint64(v), 10)
}

// appendFloat appends the shortest text that reads back as v.
// Integral values keep a trailing ".0" so they stay floats when read back.
func appendFloat[T constraints.Float](dst []byte, v T, bitSize int) []byte {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return append(dst, "NAN"...)
	case math.IsInf(f, 1):
		return append(dst, "INF"...)
	case math.IsInf(f, -1):
		return append(dst, "-INF"...)
	}

	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e15) {
		format = 'e'
	}

	n := len(dst)
	dst = strconv.AppendFloat(dst, f, format, -1, bitSize)
	if format == 'f' && bytes.IndexByte(dst[n:], '.') < 0 {
		dst = append(dst, ".0"...)
	}
	return dst
}

// appendQuoted appends s between single quotes. Quotes and backslashes
// are ASCII, so walking bytes leaves multi-byte sequences untouched.
func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' || c == '\\' {
			dst = append(dst, '\\')
		}
		dst = append(dst, c)
	}
	return append(dst, '\'')
}
