// Package flatkv converts between nested maps and lists and single level maps keyed by formatted paths.
package flatkv

import (
	"fmt"
	"strings"

	"github.com/ehsanranjbar/flatkv/schema"
)

// Flattener flattens nested maps and lists into a single level map of formatted path keys.
// A Flattener is immutable and may be shared between goroutines as long as each call
// writes to its own destination.
type Flattener struct {
	opts Options
}

var _ schema.Flatter[any] = (*Flattener)(nil)

// NewFlattener creates a new Flattener.
func NewFlattener(opts ...Option) *Flattener {
	return &Flattener{opts: NewOptions(opts...)}
}

// Options returns the options of the flattener.
func (f *Flattener) Options() Options {
	return f.opts
}

// Flatten implements the schema.Flatter interface.
func (f *Flattener) Flatten(src any) (map[string]any, error) {
	dst := NewMap()
	err := f.FlattenInto(dst, src)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, dst.Len())
	for k, v := range dst.All() {
		out[k] = v
	}
	return out, nil
}

// FlattenInto writes one entry per leaf of src into dst in depth first order.
// Empty containers are stored as leaves. A src that is not a container writes nothing.
func (f *Flattener) FlattenInto(dst *Map, src any) error {
	return f.flatten(dst, src, f.opts.StartKey, 1)
}

func (f *Flattener) flatten(dst *Map, src any, start string, depth int) error {
	if f.opts.MaxDepth > 0 && depth > f.opts.MaxDepth {
		return fmt.Errorf("%w: %q is nested deeper than %d", ErrMaxDepth, start, f.opts.MaxDepth)
	}

	seq, isList := entries(src)
	prefix, suffix, end := f.opts.Prefix, f.opts.Suffix, f.opts.SuffixEnd
	if isList && f.opts.framesLists() {
		if !f.opts.SuffixEnd {
			// The enclosing map key was opened with a suffix the list prefix replaces.
			start = strings.TrimRight(start, f.opts.Suffix)
		}
		prefix, suffix, end = f.opts.PrefixList, f.opts.SuffixList, f.opts.SuffixListEnd
	}

	for key, val := range seq {
		name := start + prefix + key
		if containerLen(val) > 0 {
			err := f.flatten(dst, val, name+suffix, depth+1)
			if err != nil {
				return err
			}
			continue
		}

		if end {
			name += suffix
		}
		dst.Set(name, val)
	}

	return nil
}

// Flatten flattens src into a new Map.
func Flatten(src any, opts ...Option) (*Map, error) {
	dst := NewMap()
	err := NewFlattener(opts...).FlattenInto(dst, src)
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// FlattenInto flattens src into dst.
func FlattenInto(dst *Map, src any, opts ...Option) error {
	return NewFlattener(opts...).FlattenInto(dst, src)
}
