package iters

import "github.com/ehsanranjbar/flatkv"

// FilterIterator is an iterator that skips the values not matching a predicate.
// Values failing to decode are kept so that the error reaches the caller.
type FilterIterator[V any] struct {
	base flatkv.Iterator[V]
	f    func(key []byte, v V) bool
}

// Filter creates a new filter iterator.
func Filter[V any](base flatkv.Iterator[V], f func(key []byte, v V) bool) *FilterIterator[V] {
	return &FilterIterator[V]{base: base, f: f}
}

// Close implements the Iterator interface.
func (it *FilterIterator[V]) Close() {
	it.base.Close()
}

// Next implements the Iterator interface.
func (it *FilterIterator[V]) Next() {
	it.base.Next()
	it.findNext()
}

func (it *FilterIterator[V]) findNext() {
	for it.base.Valid() {
		v, err := it.base.Value()
		if err != nil || it.f(it.base.Key(), v) {
			return
		}
		it.base.Next()
	}
}

// Rewind implements the Iterator interface.
func (it *FilterIterator[V]) Rewind() {
	it.base.Rewind()
	it.findNext()
}

// Seek implements the Iterator interface.
func (it *FilterIterator[V]) Seek(key []byte) {
	it.base.Seek(key)
	it.findNext()
}

// Valid implements the Iterator interface.
func (it *FilterIterator[V]) Valid() bool {
	return it.base.Valid()
}

// Key implements the Iterator interface.
func (it *FilterIterator[V]) Key() []byte {
	return it.base.Key()
}

// Value implements the Iterator interface.
func (it *FilterIterator[V]) Value() (V, error) {
	return it.base.Value()
}
