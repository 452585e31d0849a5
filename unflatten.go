package flatkv

import (
	"fmt"
	"strings"

	"github.com/ehsanranjbar/flatkv/schema"
)

// Unflattener rebuilds nested maps and lists from flat keys.
// SuffixEnd and SuffixListEnd are ignored: structure is read from delimiter characters only.
type Unflattener struct {
	opts     Options
	splitter *splitter
	err      error
}

var _ schema.Unflatter[any] = (*Unflattener)(nil)

// NewUnflattener creates a new Unflattener.
// If no delimiter is configured every call fails with ErrAmbiguousConfig.
func NewUnflattener(opts ...Option) *Unflattener {
	o := NewOptions(opts...)
	s, err := newSplitter(o)
	return &Unflattener{opts: o, splitter: s, err: err}
}

// Options returns the options of the unflattener.
func (u *Unflattener) Options() Options {
	return u.opts
}

// Unflatten rebuilds the nested structure encoded by src.
func (u *Unflattener) Unflatten(src *Map) (*Map, error) {
	dst := NewMap()
	err := u.UnflattenInto(dst, src)
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// UnflattenAny implements the schema.Unflatter interface.
func (u *Unflattener) UnflattenAny(src map[string]any) (any, error) {
	return u.UnflattenValue(mapFromSorted(src))
}

// UnflattenValue is like Unflatten but returns a List when the top level keys are
// 0..n-1, unless KeepNumericMaps is set. Any other result is a *Map.
func (u *Unflattener) UnflattenValue(src *Map) (any, error) {
	dst := NewMap()
	b := u.newBuilder()
	b.created[dst] = struct{}{}

	err := u.unflattenInto(b, dst, src)
	if err != nil {
		return nil, err
	}
	if u.opts.KeepNumericMaps {
		return dst, nil
	}
	return b.rebuildLists(dst), nil
}

// UnflattenInto merges the nested structure encoded by src into dst.
// It stops at the first key that cannot be placed.
func (u *Unflattener) UnflattenInto(dst *Map, src *Map) error {
	b := u.newBuilder()
	err := u.unflattenInto(b, dst, src)
	if err != nil {
		return err
	}

	if !u.opts.KeepNumericMaps {
		for k, v := range dst.All() {
			dst.Set(k, b.rebuildLists(v))
		}
	}
	return nil
}

func (u *Unflattener) newBuilder() *builder {
	return &builder{opts: u.opts, created: make(map[*Map]struct{})}
}

func (u *Unflattener) unflattenInto(b *builder, dst *Map, src *Map) error {
	if u.err != nil {
		return u.err
	}

	for key, val := range src.All() {
		path := u.splitter.split(key)
		if len(path) == 0 {
			return &KeyError{Key: key, Err: ErrUnresolvableKey}
		}

		err := b.set(dst, path, val)
		if err != nil {
			return &KeyError{Key: key, Err: err}
		}
	}
	return nil
}

// builder walks and creates containers along flat key paths.
type builder struct {
	opts Options
	// created holds the maps owned by the current call.
	created map[*Map]struct{}
}

func (b *builder) set(root *Map, path []string, val any) error {
	if b.opts.MaxDepth > 0 && len(path) > b.opts.MaxDepth {
		return fmt.Errorf("%w: %d segments, limit is %d", ErrMaxDepth, len(path), b.opts.MaxDepth)
	}

	cur := root
	for i, seg := range path[:len(path)-1] {
		child, err := b.descend(cur, seg)
		if err != nil {
			return fmt.Errorf("%w at %q", err, strings.Join(path[:i+1], "/"))
		}
		cur = child
	}

	last := path[len(path)-1]
	if b.opts.Strict {
		if existing, ok := cur.Get(last); ok && b.owns(existing) {
			return fmt.Errorf("%w at %q", ErrStructuralConflict, strings.Join(path, "/"))
		}
	}
	cur.Set(last, val)
	return nil
}

// descend returns the map stored at seg in cur, creating or taking ownership of it.
func (b *builder) descend(cur *Map, seg string) (*Map, error) {
	next, _ := cur.Get(seg)

	var child *Map
	switch nv := next.(type) {
	case nil:
		child = NewMap()
	case *Map:
		if b.owns(nv) {
			return nv, nil
		}
		child = NewMap()
		for k, v := range nv.All() {
			child.Set(k, v)
		}
	case List:
		child = mapFromSlice(nv)
	case []any:
		child = mapFromSlice(nv)
	case map[string]any:
		child = mapFromSorted(nv)
	default:
		if b.opts.Strict {
			return nil, ErrStructuralConflict
		}
		child = NewMap()
	}

	b.created[child] = struct{}{}
	cur.Set(seg, child)
	return child, nil
}

func (b *builder) owns(v any) bool {
	m, ok := v.(*Map)
	if !ok {
		return false
	}
	_, ok = b.created[m]
	return ok
}

// rebuildLists turns owned maps keyed 0..n-1 into lists, deepest first.
func (b *builder) rebuildLists(v any) any {
	m, ok := v.(*Map)
	if !ok || !b.owns(m) {
		return v
	}

	for k, e := range m.All() {
		m.Set(k, b.rebuildLists(e))
	}

	keys := m.Keys()
	if len(keys) == 0 || !IsListKeys(keys) {
		return m
	}

	l := make(List, len(keys))
	for k, e := range m.All() {
		i, _ := parseIndex(k)
		l[i] = e
	}
	return l
}

func mapFromSlice(s []any) *Map {
	m := NewMap()
	for i, v := range s {
		m.Set(formatIndex(i), v)
	}
	return m
}

func mapFromSorted(src map[string]any) *Map {
	m := NewMap()
	for _, k := range sortedKeys(src) {
		m.Set(k, src[k])
	}
	return m
}

// Unflatten rebuilds the nested structure encoded by src.
func Unflatten(src *Map, opts ...Option) (*Map, error) {
	return NewUnflattener(opts...).Unflatten(src)
}

// UnflattenValue rebuilds the nested structure encoded by src, which may be a List.
func UnflattenValue(src *Map, opts ...Option) (any, error) {
	return NewUnflattener(opts...).UnflattenValue(src)
}

// UnflattenMap is like Unflatten for an unordered source. Keys are processed in lexical order.
func UnflattenMap(src map[string]any, opts ...Option) (*Map, error) {
	return NewUnflattener(opts...).Unflatten(mapFromSorted(src))
}
