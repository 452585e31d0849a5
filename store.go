package flatkv

import (
	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore is the generalized interface that represents a key-value store with get, set, delete and iterate operations.
// *badger.Txn implements it.
type BadgerStore interface {
	Delete(key []byte) error
	Get(key []byte) (item *badger.Item, err error)
	NewIterator(opts badger.IteratorOptions) *badger.Iterator
	Set(key, value []byte) error
	SetEntry(e *badger.Entry) error
}

// Instantiator creates a store instance bound to a transaction.
type Instantiator[T any] interface {
	Instantiate(txn *badger.Txn) T
}
