/*
Package varexport encodes Go values as PHP var_export() literals.

Scalars are written inline:

	true
	-127
	1.0
	'it\'s'
	NULL

Every container, whether it is a slice, a map, a struct or an enum variant,
is written as an array block with one "key => value," line per entry:

	array(
	  'name' => 'hello',
	  'nums' =>
	  array(
	    0 => 1,
	    1 => 2,
	  ),
	)

Nested blocks start on their own line and each level is indented by two
spaces. No newline follows the outermost closing parenthesis.

Shapes

Encoding is driven by the Serializer interface, which has one method per
shape: booleans, integers, floats, chars, strings, byte strings, absent and
present optional values, units, newtype structs, sequences, tuples, maps,
structs and the four kinds of enum variants. Types implementing Marshaler
describe themselves to the Serializer. Other Go values are mapped by kind:

	nil, nil pointers, nil slices and nil maps  NULL
	pointers                                    the pointed value
	bool, integers, floats, strings             scalars
	[]byte                                      sequence of integers
	slices and arrays                           sequence, keyed from 0
	maps                                        map, in iteration order
	structs                                     map of exported fields
	encoding.TextMarshaler                      string

Struct fields are keyed by their lowercased name. The "varexport" struct tag
overrides the name, "-" skips the field and the omitempty option skips zero
values:

	type User struct {
		ID    int64  `varexport:"id"`
		Email string `varexport:",omitempty"`
		Token string `varexport:"-"`
	}

Go has no ordered map and no sum types, the Map, Struct, Option and
*Variant types fill the gap:

	varexport.TupleVariant{Enum: "Foo", Variant: "Bar", Fields: []any{100, "'bar'"}}

encodes as

	array(
	  'Bar' =>
	  array(
	    0 => 100,
	    1 => '\'bar\'',
	  ),
	)

Go maps are iterated in random order. Use Encoder.SortMapKeys to get a
deterministic output.
*/
package varexport
