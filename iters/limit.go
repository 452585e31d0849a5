package iters

import "github.com/ehsanranjbar/flatkv"

// LimitIterator is an iterator that stops after n values.
type LimitIterator[V any] struct {
	base flatkv.Iterator[V]
	n    int
	i    int
}

// Limit creates a new limit iterator.
func Limit[V any](base flatkv.Iterator[V], n int) *LimitIterator[V] {
	return &LimitIterator[V]{base: base, n: n}
}

// Close implements the Iterator interface.
func (it *LimitIterator[V]) Close() {
	it.base.Close()
}

// Next implements the Iterator interface.
func (it *LimitIterator[V]) Next() {
	if it.i < it.n {
		it.base.Next()
		it.i++
	}
}

// Rewind implements the Iterator interface.
func (it *LimitIterator[V]) Rewind() {
	it.base.Rewind()
	it.i = 0
}

// Seek implements the Iterator interface.
func (it *LimitIterator[V]) Seek(key []byte) {
	it.base.Seek(key)
	it.i = 0
}

// Valid implements the Iterator interface.
func (it *LimitIterator[V]) Valid() bool {
	return it.i < it.n && it.base.Valid()
}

// Key implements the Iterator interface.
func (it *LimitIterator[V]) Key() []byte {
	return it.base.Key()
}

// Value implements the Iterator interface.
func (it *LimitIterator[V]) Value() (V, error) {
	return it.base.Value()
}
