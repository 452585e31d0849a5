package qlutil

import (
	"math"
	"time"

	"github.com/araddon/qlbridge/expr"
	qlvalue "github.com/araddon/qlbridge/value"
	qlvm "github.com/araddon/qlbridge/vm"
	"github.com/ehsanranjbar/flatkv"
	"github.com/ehsanranjbar/flatkv/schema"
)

// ContextWrapper is a wrapper around a document that implements the qlbridge.ContextReader interface.
// Identifiers are dotted paths into the document; "_id" resolves to the document id.
type ContextWrapper[I, D any] struct {
	id        I
	data      D
	extractor schema.PathExtractor[D]
	flatter   schema.Flatter[D]
}

// NewContextWrapper creates a new ContextWrapper.
func NewContextWrapper[I, D any](
	id I,
	data D,
	extractor schema.PathExtractor[D],
	flatter schema.Flatter[D],
) *ContextWrapper[I, D] {
	return &ContextWrapper[I, D]{
		id:        id,
		data:      data,
		extractor: extractor,
		flatter:   flatter,
	}
}

// Get implements the qlbridge.ContextReader interface.
func (c *ContextWrapper[I, D]) Get(key string) (qlvalue.Value, bool) {
	if key == "_id" {
		return qlvalue.NewValue(c.id), true
	}

	v, err := c.extractor.ExtractPath(c.data, key)
	if err != nil {
		return qlvalue.NewErrorValue(err), false
	}
	return toValue(v), true
}

// Row implements the qlbridge.ContextReader interface.
// It returns the flattened document keyed by flat keys.
func (c *ContextWrapper[I, D]) Row() map[string]qlvalue.Value {
	if c.flatter == nil {
		return nil
	}

	flat, err := c.flatter.Flatten(c.data)
	if err != nil {
		return nil
	}
	row := make(map[string]qlvalue.Value, len(flat))
	for k, v := range flat {
		row[k] = toValue(v)
	}
	return row
}

// Ts implements the qlbridge.ContextReader interface.
func (c *ContextWrapper[I, D]) Ts() time.Time { return time.Time{} }

// Matches reports whether the context satisfies the boolean expression.
// Expressions that cannot be evaluated do not match.
func Matches(ctx expr.EvalContext, e expr.Node) bool {
	ok, evaluated := qlvm.MatchesExpr(ctx, e)
	return ok && evaluated
}

// toValue converts document values to qlbridge values. Containers become native maps and slices.
func toValue(v any) qlvalue.Value {
	switch vv := v.(type) {
	case *flatkv.Map, flatkv.List:
		return qlvalue.NewValue(flatkv.ToNative(vv))
	case uint64:
		if vv <= math.MaxInt64 {
			return qlvalue.NewIntValue(int64(vv))
		}
		return qlvalue.NewNumberValue(float64(vv))
	default:
		return qlvalue.NewValue(v)
	}
}
