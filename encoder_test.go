package varexport_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/jmjoy/varexport"
	"github.com/stretchr/testify/require"
)

// lines joins its arguments with newlines. Expected outputs are written
// line by line to keep the trailing spaces after "=>" visible.
func lines(l ...string) string {
	return strings.Join(l, "\n")
}

func requireOutput(t *testing.T, want, got string) {
	t.Helper()

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func serializeToString(t *testing.T, fn func(s varexport.Serializer) error) string {
	t.Helper()

	var buf bytes.Buffer
	err := fn(varexport.NewEncoder(&buf))
	require.NoError(t, err)
	return buf.String()
}

func TestEncoderScalars(t *testing.T) {
	tests := []struct {
		name string
		fn   func(s varexport.Serializer) error
		want string
	}{
		{"bool true", func(s varexport.Serializer) error { return s.SerializeBool(true) }, "true"},
		{"bool false", func(s varexport.Serializer) error { return s.SerializeBool(false) }, "false"},
		{"i8 zero", func(s varexport.Serializer) error { return s.SerializeInt8(0) }, "0"},
		{"i8 max", func(s varexport.Serializer) error { return s.SerializeInt8(127) }, "127"},
		{"i8 negative", func(s varexport.Serializer) error { return s.SerializeInt8(-127) }, "-127"},
		{"i16", func(s varexport.Serializer) error { return s.SerializeInt16(-32767) }, "-32767"},
		{"i32", func(s varexport.Serializer) error { return s.SerializeInt32(2147483647) }, "2147483647"},
		{"i64 min", func(s varexport.Serializer) error { return s.SerializeInt64(math.MinInt64) }, "-9223372036854775808"},
		{"u8", func(s varexport.Serializer) error { return s.SerializeUint8(255) }, "255"},
		{"u16", func(s varexport.Serializer) error { return s.SerializeUint16(32767) }, "32767"},
		{"u32", func(s varexport.Serializer) error { return s.SerializeUint32(2147483647) }, "2147483647"},
		{"u64 max", func(s varexport.Serializer) error { return s.SerializeUint64(math.MaxUint64) }, "18446744073709551615"},
		{"f32 zero", func(s varexport.Serializer) error { return s.SerializeFloat32(0) }, "0.0"},
		{"f32 one", func(s varexport.Serializer) error { return s.SerializeFloat32(1) }, "1.0"},
		{"f32 fraction", func(s varexport.Serializer) error { return s.SerializeFloat32(1.01) }, "1.01"},
		{"f64 zero", func(s varexport.Serializer) error { return s.SerializeFloat64(0) }, "0.0"},
		{"f64 one", func(s varexport.Serializer) error { return s.SerializeFloat64(1) }, "1.0"},
		{"f64 fraction", func(s varexport.Serializer) error { return s.SerializeFloat64(1.01) }, "1.01"},
		{"f64 negative", func(s varexport.Serializer) error { return s.SerializeFloat64(-2.5) }, "-2.5"},
		{"f64 large integral", func(s varexport.Serializer) error { return s.SerializeFloat64(123456789) }, "123456789.0"},
		{"f64 huge", func(s varexport.Serializer) error { return s.SerializeFloat64(1e20) }, "1e+20"},
		{"f64 tiny", func(s varexport.Serializer) error { return s.SerializeFloat64(1.5e-7) }, "1.5e-07"},
		{"f64 nan", func(s varexport.Serializer) error { return s.SerializeFloat64(math.NaN()) }, "NAN"},
		{"f64 inf", func(s varexport.Serializer) error { return s.SerializeFloat64(math.Inf(1)) }, "INF"},
		{"f64 -inf", func(s varexport.Serializer) error { return s.SerializeFloat64(math.Inf(-1)) }, "-INF"},
		{"char", func(s varexport.Serializer) error { return s.SerializeChar('a') }, "'a'"},
		{"char newline", func(s varexport.Serializer) error { return s.SerializeChar('\n') }, "'\n'"},
		{"char quote", func(s varexport.Serializer) error { return s.SerializeChar('\'') }, `'\''`},
		{"str", func(s varexport.Serializer) error { return s.SerializeString("foo") }, "'foo'"},
		{"str crlf", func(s varexport.Serializer) error { return s.SerializeString("\r\n") }, "'\r\n'"},
		{"str quotes", func(s varexport.Serializer) error { return s.SerializeString(`"'bar'"`) }, `'"\'bar\'"'`},
		{"str backslash", func(s varexport.Serializer) error { return s.SerializeString(`a\b`) }, `'a\\b'`},
		{"str empty", func(s varexport.Serializer) error { return s.SerializeString("") }, "''"},
		{"str unicode", func(s varexport.Serializer) error { return s.SerializeString("héllo 世界") }, "'héllo 世界'"},
		{"none", func(s varexport.Serializer) error { return s.SerializeNone() }, "NULL"},
		{"some int", func(s varexport.Serializer) error { return s.SerializeSome(int32(1)) }, "1"},
		{"some str", func(s varexport.Serializer) error { return s.SerializeSome("foo") }, "'foo'"},
		{"unit", func(s varexport.Serializer) error { return s.SerializeUnit() }, "NULL"},
		{"unit struct", func(s varexport.Serializer) error { return s.SerializeUnitStruct("Foo") }, "NULL"},
		{"unit variant", func(s varexport.Serializer) error { return s.SerializeUnitVariant("Foo", 0, "Bar") }, "'Bar'"},
		{"newtype struct int", func(s varexport.Serializer) error { return s.SerializeNewtypeStruct("Foo", int32(1)) }, "1"},
		{"newtype struct str", func(s varexport.Serializer) error { return s.SerializeNewtypeStruct("Foo", "foo") }, "'foo'"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			requireOutput(t, test.want, serializeToString(t, test.fn))
		})
	}
}

func TestEncoderContainers(t *testing.T) {
	t.Run("bytes", func(t *testing.T) {
		got := serializeToString(t, func(s varexport.Serializer) error {
			return s.SerializeBytes([]byte("foo"))
		})
		requireOutput(t, lines(
			"array(",
			"  0 => 102,",
			"  1 => 111,",
			"  2 => 111,",
			")",
		), got)
	})

	t.Run("newtype variant", func(t *testing.T) {
		got := serializeToString(t, func(s varexport.Serializer) error {
			return s.SerializeNewtypeVariant("Foo", 0, "Bar", int32(1))
		})
		requireOutput(t, lines(
			"array(",
			"  'Bar' => 1,",
			")",
		), got)

		got = serializeToString(t, func(s varexport.Serializer) error {
			return s.SerializeNewtypeVariant("Foo", 0, "Bar", "bar")
		})
		requireOutput(t, lines(
			"array(",
			"  'Bar' => 'bar',",
			")",
		), got)
	})

	t.Run("newtype variant holding a sequence", func(t *testing.T) {
		got := serializeToString(t, func(s varexport.Serializer) error {
			return s.SerializeNewtypeVariant("Foo", 0, "Bar", []int{1})
		})
		requireOutput(t, lines(
			"array(",
			"  'Bar' => ",
			"  array(",
			"    0 => 1,",
			"  ),",
			")",
		), got)
	})

	t.Run("seq", func(t *testing.T) {
		got := serializeToString(t, func(s varexport.Serializer) error {
			seq, err := s.SerializeSeq(-1)
			if err != nil {
				return err
			}
			for _, v := range []int{1, 2, 3} {
				if err := seq.SerializeElement(v); err != nil {
					return err
				}
			}
			return seq.End()
		})
		requireOutput(t, "array(\n  0 => 1,\n  1 => 2,\n  2 => 3,\n)", got)
	})

	for _, name := range []string{"seq", "tuple", "tuple struct"} {
		t.Run("empty "+name, func(t *testing.T) {
			got := serializeToString(t, func(s varexport.Serializer) error {
				var seq varexport.SerializeSeq
				var err error
				switch name {
				case "seq":
					seq, err = s.SerializeSeq(0)
				case "tuple":
					seq, err = s.SerializeTuple(0)
				default:
					seq, err = s.SerializeTupleStruct("Foo", 0)
				}
				if err != nil {
					return err
				}
				return seq.End()
			})
			requireOutput(t, "array(\n)", got)
		})
	}

	t.Run("tuple variant", func(t *testing.T) {
		got := serializeToString(t, func(s varexport.Serializer) error {
			seq, err := s.SerializeTupleVariant("Foo", 0, "Bar", 2)
			if err != nil {
				return err
			}
			if err := seq.SerializeElement(int32(100)); err != nil {
				return err
			}
			if err := seq.SerializeElement("'bar'"); err != nil {
				return err
			}
			return seq.End()
		})
		requireOutput(t, lines(
			"array(",
			"  'Bar' => ",
			"  array(",
			"    0 => 100,",
			`    1 => '\'bar\'',`,
			"  ),",
			")",
		), got)
	})

	t.Run("map", func(t *testing.T) {
		got := serializeToString(t, func(s varexport.Serializer) error {
			m, err := s.SerializeMap(-1)
			if err != nil {
				return err
			}
			if err := m.SerializeKey("foo"); err != nil {
				return err
			}
			if err := m.SerializeValue("bar"); err != nil {
				return err
			}
			if err := m.SerializeEntry(int64(2), true); err != nil {
				return err
			}
			return m.End()
		})
		requireOutput(t, lines(
			"array(",
			"  'foo' => 'bar',",
			"  2 => true,",
			")",
		), got)
	})

	t.Run("empty map", func(t *testing.T) {
		got := serializeToString(t, func(s varexport.Serializer) error {
			m, err := s.SerializeMap(0)
			if err != nil {
				return err
			}
			return m.End()
		})
		requireOutput(t, "array(\n)", got)
	})

	t.Run("struct", func(t *testing.T) {
		got := serializeToString(t, func(s varexport.Serializer) error {
			st, err := s.SerializeStruct("Foo", 2)
			if err != nil {
				return err
			}
			if err := st.SerializeField("name", "hello"); err != nil {
				return err
			}
			if err := st.SerializeField("value", 1); err != nil {
				return err
			}
			return st.End()
		})
		requireOutput(t, "array(\n  'name' => 'hello',\n  'value' => 1,\n)", got)
	})

	t.Run("struct variant", func(t *testing.T) {
		got := serializeToString(t, func(s varexport.Serializer) error {
			st, err := s.SerializeStructVariant("Foo", 0, "Bar", 2)
			if err != nil {
				return err
			}
			if err := st.SerializeField("name", "nnn"); err != nil {
				return err
			}
			if err := st.SerializeField("value", int32(100)); err != nil {
				return err
			}
			return st.End()
		})
		requireOutput(t, lines(
			"array(",
			"  'Bar' => ",
			"  array(",
			"    'name' => 'nnn',",
			"    'value' => 100,",
			"  ),",
			")",
		), got)
	})
}

func TestEncoderNesting(t *testing.T) {
	t.Run("nested empty", func(t *testing.T) {
		got := serializeToString(t, func(s varexport.Serializer) error {
			return s.SerializeSome([][]int{{}})
		})
		requireOutput(t, lines(
			"array(",
			"  0 => ",
			"  array(",
			"  ),",
			")",
		), got)
	})

	t.Run("variants inside variants", func(t *testing.T) {
		v := varexport.StructVariant{
			Enum:    "Shape",
			Variant: "Group",
			Fields: []varexport.Field{
				{Name: "items", Value: []any{
					varexport.UnitVariant{Enum: "Shape", Variant: "Empty"},
					varexport.NewtypeVariant{Enum: "Shape", Variant: "Circle", Value: 1.5},
					varexport.TupleVariant{Enum: "Shape", Variant: "Point", Fields: []any{1, 2}},
				}},
			},
		}

		got := serializeToString(t, func(s varexport.Serializer) error {
			return v.MarshalVarExport(s)
		})
		requireOutput(t, lines(
			"array(",
			"  'Group' => ",
			"  array(",
			"    'items' => ",
			"    array(",
			"      0 => 'Empty',",
			"      1 => ",
			"      array(",
			"        'Circle' => 1.5,",
			"      ),",
			"      2 => ",
			"      array(",
			"        'Point' => ",
			"        array(",
			"          0 => 1,",
			"          1 => 2,",
			"        ),",
			"      ),",
			"    ),",
			"  ),",
			")",
		), got)
	})

	t.Run("custom indent", func(t *testing.T) {
		var buf bytes.Buffer
		enc := varexport.NewEncoder(&buf)
		enc.SetIndent("\t")
		require.NoError(t, enc.Encode([][]int{{1}}))
		requireOutput(t, "array(\n\t0 => \n\tarray(\n\t\t0 => 1,\n\t),\n)", buf.String())
	})

	t.Run("encoder reuse", func(t *testing.T) {
		var buf bytes.Buffer
		enc := varexport.NewEncoder(&buf)
		v := map[string][]int{"a": {1, 2}}

		require.NoError(t, enc.Encode(v))
		first := buf.String()
		buf.Reset()

		require.NoError(t, enc.Encode(v))
		requireOutput(t, first, buf.String())
	})
}

var errBoom = errors.New("boom")

// failingWriter accepts n bytes, then fails.
type failingWriter struct {
	n int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		return 0, errBoom
	}
	w.n -= len(p)
	return len(p), nil
}

func TestEncoderWriteError(t *testing.T) {
	v := []any{"a", []int{1, 2}, map[string]int{"b": 3}}
	full, err := varexport.Marshal(v)
	require.NoError(t, err)

	for n := 0; n < len(full); n++ {
		err := varexport.NewEncoder(&failingWriter{n: n}).Encode(v)
		require.Error(t, err)
		require.ErrorIs(t, err, errBoom)

		var e *varexport.Error
		require.True(t, errors.As(err, &e))
		require.Equal(t, "write failed", e.Msg)
	}

	require.NoError(t, varexport.NewEncoder(&failingWriter{n: len(full)}).Encode(v))
}
