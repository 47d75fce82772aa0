package varexport

// A Serializer receives the shape of a value, one call per node of the
// value tree. Compound shapes return a sub-serializer that receives
// their elements and must be ended exactly once.
//
// Lengths passed to compound shapes are hints; -1 means the length is
// not known in advance.
type Serializer interface {
	SerializeBool(v bool) error
	SerializeInt8(v int8) error
	SerializeInt16(v int16) error
	SerializeInt32(v int32) error
	SerializeInt64(v int64) error
	SerializeUint8(v uint8) error
	SerializeUint16(v uint16) error
	SerializeUint32(v uint32) error
	SerializeUint64(v uint64) error
	SerializeFloat32(v float32) error
	SerializeFloat64(v float64) error
	SerializeChar(v rune) error
	SerializeString(v string) error
	SerializeBytes(v []byte) error

	// SerializeNone describes an absent optional value.
	SerializeNone() error
	// SerializeSome describes a present optional value.
	SerializeSome(v any) error
	SerializeUnit() error
	SerializeUnitStruct(name string) error
	SerializeUnitVariant(name string, index uint32, variant string) error
	SerializeNewtypeStruct(name string, v any) error
	SerializeNewtypeVariant(name string, index uint32, variant string, v any) error

	SerializeSeq(length int) (SerializeSeq, error)
	SerializeTuple(length int) (SerializeSeq, error)
	SerializeTupleStruct(name string, length int) (SerializeSeq, error)
	SerializeTupleVariant(name string, index uint32, variant string, length int) (SerializeSeq, error)
	SerializeMap(length int) (SerializeMap, error)
	SerializeStruct(name string, length int) (SerializeStruct, error)
	SerializeStructVariant(name string, index uint32, variant string, length int) (SerializeStruct, error)
}

// SerializeSeq receives the elements of a sequence, a tuple, a tuple struct
// or a tuple variant.
type SerializeSeq interface {
	SerializeElement(v any) error
	End() error
}

// SerializeMap receives the entries of a map.
// Every call to SerializeKey must be followed by a call to SerializeValue.
type SerializeMap interface {
	SerializeKey(k any) error
	SerializeValue(v any) error
	SerializeEntry(k, v any) error
	End() error
}

// SerializeStruct receives the fields of a struct or of a struct variant.
type SerializeStruct interface {
	SerializeField(key string, v any) error
	End() error
}

// A Marshaler describes its own shape to a Serializer.
// Types that implement it take precedence over the reflection based
// mapping of Go values.
type Marshaler interface {
	MarshalVarExport(s Serializer) error
}
