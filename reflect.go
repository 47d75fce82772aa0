package varexport

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

var (
	marshalerType     = reflect.TypeOf((*Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// encode dispatches v to the Serializer method matching its shape.
func (e *Encoder) encode(v any) error {
	switch x := v.(type) {
	case nil:
		return e.SerializeNone()
	case Marshaler:
		// a nil pointer is an absent value, even if its type
		// implements Marshaler.
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return e.SerializeNone()
		}
		return x.MarshalVarExport(e)
	case bool:
		return e.SerializeBool(x)
	case int:
		return e.SerializeInt64(int64(x))
	case int64:
		return e.SerializeInt64(x)
	case uint8:
		return e.SerializeUint8(x)
	case uint64:
		return e.SerializeUint64(x)
	case float64:
		return e.SerializeFloat64(x)
	case string:
		return e.SerializeString(x)
	}

	return e.encodeValue(reflect.ValueOf(v))
}

// encodeValue maps a Go value onto a shape, based on its kind.
func (e *Encoder) encodeValue(rv reflect.Value) error {
	if !rv.IsValid() {
		return e.SerializeNone()
	}

	// the methods of an interface are those of its dynamic value.
	for rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return e.SerializeNone()
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return e.SerializeNone()
	}

	t := rv.Type()
	if rv.CanInterface() {
		addressable := rv.Kind() != reflect.Pointer && rv.CanAddr()

		if t.Implements(marshalerType) {
			return rv.Interface().(Marshaler).MarshalVarExport(e)
		}
		if addressable && reflect.PointerTo(t).Implements(marshalerType) {
			return rv.Addr().Interface().(Marshaler).MarshalVarExport(e)
		}
		if t.Implements(textMarshalerType) {
			return e.encodeText(t, rv.Interface().(encoding.TextMarshaler))
		}
		if addressable && reflect.PointerTo(t).Implements(textMarshalerType) {
			return e.encodeText(t, rv.Addr().Interface().(encoding.TextMarshaler))
		}
	}

	switch rv.Kind() {
	case reflect.Pointer:
		return e.encodePointer(rv)
	case reflect.Bool:
		return e.SerializeBool(rv.Bool())
	case reflect.Int8:
		return e.SerializeInt8(int8(rv.Int()))
	case reflect.Int16:
		return e.SerializeInt16(int16(rv.Int()))
	case reflect.Int32:
		return e.SerializeInt32(int32(rv.Int()))
	case reflect.Int, reflect.Int64:
		return e.SerializeInt64(rv.Int())
	case reflect.Uint8:
		return e.SerializeUint8(uint8(rv.Uint()))
	case reflect.Uint16:
		return e.SerializeUint16(uint16(rv.Uint()))
	case reflect.Uint32:
		return e.SerializeUint32(uint32(rv.Uint()))
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return e.SerializeUint64(rv.Uint())
	case reflect.Float32:
		return e.SerializeFloat32(float32(rv.Float()))
	case reflect.Float64:
		return e.SerializeFloat64(rv.Float())
	case reflect.String:
		return e.SerializeString(rv.String())
	case reflect.Slice:
		if rv.IsNil() {
			return e.SerializeNone()
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return e.SerializeBytes(rv.Bytes())
		}
		return e.encodeList(rv, false)
	case reflect.Array:
		return e.encodeList(rv, true)
	case reflect.Map:
		if rv.IsNil() {
			return e.SerializeNone()
		}
		return e.encodeMap(rv)
	case reflect.Struct:
		return e.encodeStruct(rv)
	}

	return newError(ErrUnsupportedType, "cannot encode "+t.String())
}

func (e *Encoder) encodeText(t reflect.Type, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return newError(err, "cannot marshal "+t.String()+" as text")
	}
	return e.SerializeString(string(text))
}

// startDetectingCyclesAfter is the pointer depth after which visited
// pointers are tracked. Shallow values never pay for the bookkeeping.
const startDetectingCyclesAfter = 1000

type ptrKey struct {
	ptr uintptr
	typ reflect.Type
}

func (e *Encoder) encodePointer(rv reflect.Value) error {
	e.ptrLevel++
	defer func() { e.ptrLevel-- }()

	if e.ptrLevel > startDetectingCyclesAfter {
		k := ptrKey{ptr: rv.Pointer(), typ: rv.Type()}
		if _, ok := e.ptrSeen[k]; ok {
			return newError(ErrUnsupportedType, "cycle through "+rv.Type().String())
		}
		if e.ptrSeen == nil {
			e.ptrSeen = make(map[ptrKey]struct{})
		}
		e.ptrSeen[k] = struct{}{}
		defer delete(e.ptrSeen, k)
	}

	return e.encodeValue(rv.Elem())
}

func (e *Encoder) encodeList(rv reflect.Value, tuple bool) error {
	var seq SerializeSeq
	var err error
	if tuple {
		seq, err = e.SerializeTuple(rv.Len())
	} else {
		seq, err = e.SerializeSeq(rv.Len())
	}
	if err != nil {
		return err
	}

	s := seq.(*seqEncoder)
	l := rv.Len()
	for i := 0; i < l; i++ {
		ev := rv.Index(i)
		err := s.element(func() error {
			return e.encodeValue(ev)
		})
		if err != nil {
			return err
		}
	}
	return s.End()
}

func (e *Encoder) encodeMap(rv reflect.Value) error {
	sm, err := e.SerializeMap(rv.Len())
	if err != nil {
		return err
	}
	m := sm.(*mapEncoder)

	writeEntry := func(k, v reflect.Value) error {
		err := e.beginEntry(func() error {
			return e.encodeValue(k)
		})
		if err != nil {
			return err
		}
		if err := e.encodeValue(v); err != nil {
			return err
		}
		return e.endEntry()
	}

	if e.sortKeys {
		keys := rv.MapKeys()
		slices.SortFunc(keys, compareKeys)
		for _, k := range keys {
			if err := writeEntry(k, rv.MapIndex(k)); err != nil {
				return err
			}
		}
		return m.End()
	}

	it := rv.MapRange()
	for it.Next() {
		if err := writeEntry(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return m.End()
}

func (e *Encoder) encodeStruct(rv reflect.Value) error {
	t := rv.Type()
	if t.NumField() == 0 {
		return e.SerializeUnitStruct(t.Name())
	}

	fields := cachedFields(t)
	ss, err := e.SerializeStruct(t.Name(), len(fields))
	if err != nil {
		return err
	}
	m := ss.(*mapEncoder)

	for _, f := range fields {
		fv, ok := fieldByIndex(rv, f.index)
		if !ok {
			continue
		}
		if f.omitEmpty && fv.IsZero() {
			continue
		}

		err := m.field(f.name, func() error {
			return e.encodeValue(fv)
		})
		if err != nil {
			return err
		}
	}
	return m.End()
}

// fieldByIndex returns the nested field of v at index.
// It reports false if the path goes through a nil embedded pointer.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

type field struct {
	name      string
	index     []int
	omitEmpty bool
}

const fieldCacheSize = 1024

var fieldCache = newFieldCache()

func newFieldCache() *lru.Cache[reflect.Type, []field] {
	c, err := lru.New[reflect.Type, []field](fieldCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

func cachedFields(t reflect.Type) []field {
	if fields, ok := fieldCache.Get(t); ok {
		return fields
	}

	fields := typeFields(t, nil, map[reflect.Type]bool{})
	fieldCache.Add(t, fields)
	return fields
}

// typeFields lists the encoded fields of a struct type in declaration order.
// Each field name is lowercased, unless a "varexport" tag overrides it.
// Fields of embedded structs are promoted to the parent.
func typeFields(t reflect.Type, index []int, visited map[reflect.Type]bool) []field {
	visited[t] = true

	var fields []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)

		tag, hasTag := sf.Tag.Lookup("varexport")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		idx := make([]int, len(index)+1)
		copy(idx, index)
		idx[len(index)] = i

		if sf.Anonymous && (!hasTag || name == "") {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if !visited[ft] {
					fields = append(fields, typeFields(ft, idx, visited)...)
				}
				continue
			}
		}

		if !sf.IsExported() {
			continue
		}

		if name == "" {
			name = strings.ToLower(sf.Name)
		}

		fields = append(fields, field{
			name:      name,
			index:     idx,
			omitEmpty: hasOption(opts, "omitempty"),
		})
	}

	return fields
}

// hasOption reports whether the comma separated tag options
// contain opt.
func hasOption(opts, opt string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == opt {
			return true
		}
	}
	return false
}

// compareKeys orders map keys of the same kind by value.
// Keys of different kinds, found in interface keyed maps, are ordered
// by kind first.
func compareKeys(a, b reflect.Value) int {
	for a.Kind() == reflect.Interface && !a.IsNil() {
		a = a.Elem()
	}
	for b.Kind() == reflect.Interface && !b.IsNil() {
		b = b.Elem()
	}

	if a.Kind() != b.Kind() {
		return compare(a.Kind(), b.Kind())
	}

	switch a.Kind() {
	case reflect.String:
		return compare(a.String(), b.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return compare(a.Float(), b.Float())
	case reflect.Bool:
		if a.Bool() == b.Bool() {
			return 0
		}
		if !a.Bool() {
			return -1
		}
		return 1
	}

	return compare(fmt.Sprint(a), fmt.Sprint(b))
}

func compare[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
