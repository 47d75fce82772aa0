// Package yamlvalue writes YAML documents as var_export literals.
// Mappings keep the order of the document, which decoding into Go
// maps would lose.
package yamlvalue

import (
	"github.com/cockroachdb/errors"
	"github.com/jmjoy/varexport"
	"gopkg.in/yaml.v3"
)

// Node is a YAML node written as its var_export equivalent.
//
// Scalars are written according to their resolved tag: null, bool, int,
// float and binary scalars keep their type, every other scalar is
// written as a string. Aliases are written as the node they refer to.
type Node struct {
	*yaml.Node
}

// Parse parses the first YAML document of data.
func Parse(data []byte) (Node, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return Node{}, errors.Wrap(err, "cannot parse yaml")
	}
	return Node{Node: &n}, nil
}

func (n Node) MarshalVarExport(s varexport.Serializer) error {
	// nil nodes and the zero node of an empty input hold nothing.
	if n.Node == nil || n.Kind == 0 {
		return s.SerializeNone()
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return s.SerializeNone()
		}
		return Node{n.Content[0]}.MarshalVarExport(s)
	case yaml.AliasNode:
		return Node{n.Alias}.MarshalVarExport(s)
	case yaml.ScalarNode:
		return n.marshalScalar(s)
	case yaml.SequenceNode:
		seq, err := s.SerializeSeq(len(n.Content))
		if err != nil {
			return err
		}
		for _, c := range n.Content {
			if err := seq.SerializeElement(Node{c}); err != nil {
				return err
			}
		}
		return seq.End()
	case yaml.MappingNode:
		entries, err := mappingEntries(n.Node)
		if err != nil {
			return err
		}
		m, err := s.SerializeMap(len(entries))
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := m.SerializeEntry(Node{e.key}, Node{e.value}); err != nil {
				return err
			}
		}
		return m.End()
	}

	return errors.Newf("line %d: unknown node kind %d", n.Line, n.Kind)
}

type entry struct {
	key, value *yaml.Node
}

// mappingEntries lists the entries of a mapping node in document order.
// Merge keys ("<<") are replaced by the entries of the mappings they
// refer to, unless the mapping defines the same key itself or an earlier
// merged mapping already did.
func mappingEntries(n *yaml.Node) ([]entry, error) {
	if len(n.Content)%2 != 0 {
		return nil, errors.Newf("line %d: mapping has a key without value", n.Line)
	}

	local := make(map[string]bool)
	for i := 0; i < len(n.Content); i += 2 {
		if k := n.Content[i]; !isMerge(k) {
			if id, ok := keyID(k); ok {
				local[id] = true
			}
		}
	}

	seen := make(map[string]bool)
	var entries []entry
	for i := 0; i < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if !isMerge(k) {
			entries = append(entries, entry{key: k, value: v})
			continue
		}

		merged, err := mergedEntries(v)
		if err != nil {
			return nil, err
		}
		for _, e := range merged {
			id, ok := keyID(e.key)
			if ok {
				if local[id] || seen[id] {
					continue
				}
				seen[id] = true
			}
			entries = append(entries, e)
		}
	}

	return entries, nil
}

// mergedEntries returns the entries merged by the value of a merge key:
// a mapping, or a sequence of mappings.
func mergedEntries(v *yaml.Node) ([]entry, error) {
	v = resolveAlias(v)

	switch v.Kind {
	case yaml.MappingNode:
		return mappingEntries(v)
	case yaml.SequenceNode:
		var entries []entry
		for _, c := range v.Content {
			c = resolveAlias(c)
			if c.Kind != yaml.MappingNode {
				return nil, errors.Newf("line %d: merge sequence must only hold mappings", c.Line)
			}
			e, err := mappingEntries(c)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e...)
		}
		return entries, nil
	}

	return nil, errors.Newf("line %d: merge value must be a mapping or a sequence of mappings", v.Line)
}

func isMerge(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge"
}

// keyID identifies scalar keys. Other keys are never considered equal.
func keyID(k *yaml.Node) (string, bool) {
	k = resolveAlias(k)
	if k.Kind != yaml.ScalarNode {
		return "", false
	}
	return k.ShortTag() + " " + k.Value, true
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func (n Node) marshalScalar(s varexport.Serializer) error {
	switch n.ShortTag() {
	case "!!null":
		return s.SerializeNone()
	case "!!bool":
		var b bool
		if err := n.decode(&b); err != nil {
			return err
		}
		return s.SerializeBool(b)
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return s.SerializeInt64(i)
		}
		var u uint64
		if err := n.Decode(&u); err == nil {
			return s.SerializeUint64(u)
		}
		fallthrough
	case "!!float":
		var f float64
		if err := n.decode(&f); err != nil {
			return err
		}
		return s.SerializeFloat64(f)
	case "!!binary":
		var b string
		if err := n.decode(&b); err != nil {
			return err
		}
		return s.SerializeBytes([]byte(b))
	}

	return s.SerializeString(n.Value)
}

func (n Node) decode(v any) error {
	if err := n.Decode(v); err != nil {
		return errors.Wrapf(err, "line %d: cannot decode %s scalar %q", n.Line, n.ShortTag(), n.Value)
	}
	return nil
}
