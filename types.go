package varexport

// The types below describe shapes that plain Go values cannot express,
// like ordered maps, optional values or enum variants.

var (
	_ Marshaler = Char(0)
	_ Marshaler = Option[int]{}
	_ Marshaler = Unit{}
	_ Marshaler = UnitStruct("")
	_ Marshaler = NewtypeStruct{}
	_ Marshaler = Tuple(nil)
	_ Marshaler = Map(nil)
	_ Marshaler = Struct{}
	_ Marshaler = UnitVariant{}
	_ Marshaler = NewtypeVariant{}
	_ Marshaler = TupleVariant{}
	_ Marshaler = StructVariant{}
)

// Char is a single Unicode scalar value, written as a one character string.
type Char rune

func (c Char) MarshalVarExport(s Serializer) error {
	return s.SerializeChar(rune(c))
}

// Option holds a value that may be absent.
// The zero value is an absent value.
type Option[T any] struct {
	value T
	valid bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, valid: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.valid
}

func (o Option[T]) MarshalVarExport(s Serializer) error {
	if !o.valid {
		return s.SerializeNone()
	}
	return s.SerializeSome(o.value)
}

// Unit is the value carrying no data.
type Unit struct{}

func (Unit) MarshalVarExport(s Serializer) error {
	return s.SerializeUnit()
}

// UnitStruct is a named struct without fields.
type UnitStruct string

func (u UnitStruct) MarshalVarExport(s Serializer) error {
	return s.SerializeUnitStruct(string(u))
}

// NewtypeStruct is a named wrapper around a single value.
// Only the value is written.
type NewtypeStruct struct {
	Name  string
	Value any
}

func (n NewtypeStruct) MarshalVarExport(s Serializer) error {
	return s.SerializeNewtypeStruct(n.Name, n.Value)
}

// Tuple is a fixed-size list of values of any type.
type Tuple []any

func (t Tuple) MarshalVarExport(s Serializer) error {
	seq, err := s.SerializeTuple(len(t))
	if err != nil {
		return err
	}
	return serializeElements(seq, t)
}

// Pair is an entry of a Map.
type Pair struct {
	Key   any
	Value any
}

// Map is a map whose entries are written in slice order.
type Map []Pair

func (m Map) MarshalVarExport(s Serializer) error {
	sm, err := s.SerializeMap(len(m))
	if err != nil {
		return err
	}
	for _, p := range m {
		if err := sm.SerializeEntry(p.Key, p.Value); err != nil {
			return err
		}
	}
	return sm.End()
}

// Field is a named value of a Struct or a StructVariant.
type Field struct {
	Name  string
	Value any
}

// Struct is a named struct whose fields are written in slice order.
type Struct struct {
	Name   string
	Fields []Field
}

func (st Struct) MarshalVarExport(s Serializer) error {
	ss, err := s.SerializeStruct(st.Name, len(st.Fields))
	if err != nil {
		return err
	}
	return serializeFields(ss, st.Fields)
}

// UnitVariant is an enum variant without data. It is written as the
// variant name.
type UnitVariant struct {
	Enum    string
	Index   uint32
	Variant string
}

func (u UnitVariant) MarshalVarExport(s Serializer) error {
	return s.SerializeUnitVariant(u.Enum, u.Index, u.Variant)
}

// NewtypeVariant is an enum variant wrapping a single value.
type NewtypeVariant struct {
	Enum    string
	Index   uint32
	Variant string
	Value   any
}

func (n NewtypeVariant) MarshalVarExport(s Serializer) error {
	return s.SerializeNewtypeVariant(n.Enum, n.Index, n.Variant, n.Value)
}

// TupleVariant is an enum variant holding positional values.
type TupleVariant struct {
	Enum    string
	Index   uint32
	Variant string
	Fields  []any
}

func (t TupleVariant) MarshalVarExport(s Serializer) error {
	seq, err := s.SerializeTupleVariant(t.Enum, t.Index, t.Variant, len(t.Fields))
	if err != nil {
		return err
	}
	return serializeElements(seq, t.Fields)
}

// StructVariant is an enum variant holding named values.
type StructVariant struct {
	Enum    string
	Index   uint32
	Variant string
	Fields  []Field
}

func (v StructVariant) MarshalVarExport(s Serializer) error {
	ss, err := s.SerializeStructVariant(v.Enum, v.Index, v.Variant, len(v.Fields))
	if err != nil {
		return err
	}
	return serializeFields(ss, v.Fields)
}

func serializeElements(seq SerializeSeq, elems []any) error {
	for _, e := range elems {
		if err := seq.SerializeElement(e); err != nil {
			return err
		}
	}
	return seq.End()
}

func serializeFields(ss SerializeStruct, fields []Field) error {
	for _, f := range fields {
		if err := ss.SerializeField(f.Name, f.Value); err != nil {
			return err
		}
	}
	return ss.End()
}
