package flatkv

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a key found twice in the same YAML mapping.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	Line      int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at line %d (first at line %d)", e.Key, e.Line, e.FirstLine)
}

// MarshalYAML implements yaml.Marshaler. Keys are written in insertion order.
func (m *Map) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for k, v := range m.All() {
		var vn yaml.Node
		err := vn.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %q: %w", k, err)
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &vn)
	}
	return n, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Keys keep their document order.
func (m *Map) UnmarshalYAML(n *yaml.Node) error {
	v, err := nodeToValue(n)
	if err != nil {
		return err
	}

	src, ok := v.(*Map)
	if !ok {
		return fmt.Errorf("cannot unmarshal %T into a map", v)
	}
	*m = *src
	return nil
}

// ParseYAML decodes the first YAML document from r into Map, List and scalar values.
// An empty stream decodes to nil.
func ParseYAML(r io.Reader) (any, error) {
	var root yaml.Node
	err := yaml.NewDecoder(r).Decode(&root)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return nodeToValue(&root)
}

// maxAliasNodes bounds the number of nodes produced by alias expansion.
const maxAliasNodes = 1 << 20

// nodeDecoder converts yaml nodes into values. It rejects alias cycles, nesting deeper
// than DefaultMaxDepth and alias expansions producing more than maxAliasNodes nodes.
type nodeDecoder struct {
	active   map[*yaml.Node]struct{}
	aliases  int
	expanded int
}

func nodeToValue(n *yaml.Node) (any, error) {
	d := &nodeDecoder{active: make(map[*yaml.Node]struct{})}
	return d.decode(n, 0)
}

func (d *nodeDecoder) decode(n *yaml.Node, depth int) (any, error) {
	if depth > DefaultMaxDepth {
		return nil, fmt.Errorf("%w: YAML line %d is nested deeper than %d", ErrMaxDepth, n.Line, DefaultMaxDepth)
	}
	if d.aliases > 0 {
		d.expanded++
		if d.expanded > maxAliasNodes {
			return nil, fmt.Errorf("YAML aliases expand to more than %d nodes", maxAliasNodes)
		}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.decode(n.Content[0], depth)
	case yaml.AliasNode:
		if _, ok := d.active[n.Alias]; ok {
			return nil, fmt.Errorf("YAML alias %q at line %d refers to itself", n.Value, n.Line)
		}
		d.active[n.Alias] = struct{}{}
		d.aliases++
		defer func() {
			delete(d.active, n.Alias)
			d.aliases--
		}()
		return d.decode(n.Alias, depth)
	case yaml.MappingNode:
		if _, ok := d.active[n]; !ok && n.Anchor != "" {
			d.active[n] = struct{}{}
			defer delete(d.active, n)
		}
		m := NewMap()
		first := make(map[string]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if line, dup := first[k.Value]; dup {
				return nil, &DuplicateKeyError{Key: k.Value, FirstLine: line, Line: k.Line}
			}
			first[k.Value] = k.Line

			val, err := d.decode(v, depth+1)
			if err != nil {
				return nil, err
			}
			m.Set(k.Value, val)
		}
		return m, nil
	case yaml.SequenceNode:
		if _, ok := d.active[n]; !ok && n.Anchor != "" {
			d.active[n] = struct{}{}
			defer delete(d.active, n)
		}
		l := make(List, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := d.decode(c, depth+1)
			if err != nil {
				return nil, err
			}
			l = append(l, v)
		}
		return l, nil
	case yaml.ScalarNode:
		return scalarToValue(n), nil
	default:
		return nil, nil
	}
}

func scalarToValue(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return i
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return f
		}
	}
	return n.Value
}
