package flatkv

import (
	badger "github.com/dgraph-io/badger/v4"
)

// BadgerIterator is the interface that represents a badger iterator.
type BadgerIterator interface {
	Close()
	Item() *badger.Item
	Next()
	Rewind()
	Seek(key []byte)
	Valid() bool
}

// Iterator walks decoded values in key order.
type Iterator[V any] interface {
	Close()
	Next()
	Rewind()
	Seek(key []byte)
	Valid() bool
	Key() []byte
	Value() (V, error)
}
