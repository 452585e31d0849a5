package prefix

import (
	badger "github.com/dgraph-io/badger/v4"
	"github.com/ehsanranjbar/flatkv"
)

// Iterator trims a prefix from the keys of a base iterator.
type Iterator struct {
	base   flatkv.BadgerIterator
	prefix []byte
}

// NewIterator creates a new iterator.
func NewIterator(base flatkv.BadgerIterator, prefix []byte) *Iterator {
	return &Iterator{
		base:   base,
		prefix: prefix,
	}
}

// Close closes the iterator.
func (it *Iterator) Close() {
	it.base.Close()
}

// Item returns the current item.
func (it *Iterator) Item() *badger.Item {
	return it.base.Item()
}

// Next moves to the next item.
func (it *Iterator) Next() {
	it.base.Next()
}

// Rewind rewinds the iterator.
func (it *Iterator) Rewind() {
	it.base.Rewind()
}

// Seek seeks the key relative to the prefix.
func (it *Iterator) Seek(key []byte) {
	it.base.Seek(concat(it.prefix, key))
}

// Valid returns if the iterator is valid.
func (it *Iterator) Valid() bool {
	return it.base.Valid()
}

// Key returns a copy of the current key without the prefix.
func (it *Iterator) Key() []byte {
	return it.base.Item().KeyCopy(nil)[len(it.prefix):]
}
