package prefix

import (
	badger "github.com/dgraph-io/badger/v4"
	"github.com/ehsanranjbar/flatkv"
)

// Store namespaces a base store under a key prefix.
type Store struct {
	base       flatkv.Instantiator[flatkv.BadgerStore]
	basePrefix []byte
	prefix     []byte
}

// New creates a new Store. A nil base prefixes the transaction itself.
func New(base flatkv.Instantiator[flatkv.BadgerStore], prefix []byte) *Store {
	var basePrefix []byte
	if pfx, ok := base.(prefixed); ok {
		basePrefix = pfx.Prefix()
	}

	return &Store{
		base:       base,
		basePrefix: basePrefix,
		prefix:     prefix,
	}
}

type prefixed interface {
	Prefix() []byte
}

// Prefix returns the full prefix of the store.
func (s *Store) Prefix() []byte {
	return concat(s.basePrefix, s.prefix)
}

// Instantiate implements the flatkv.Instantiator interface.
func (s *Store) Instantiate(txn *badger.Txn) flatkv.BadgerStore {
	var base flatkv.BadgerStore = txn
	if s.base != nil {
		base = s.base.Instantiate(txn)
	}

	return &Instance{
		base:       base,
		basePrefix: s.basePrefix,
		prefix:     s.prefix,
	}
}

// Instance is a store that prefixes all keys with a given prefix.
type Instance struct {
	base       flatkv.BadgerStore
	basePrefix []byte
	prefix     []byte
}

// Prefix returns the full prefix of the instance.
func (s *Instance) Prefix() []byte {
	return concat(s.basePrefix, s.prefix)
}

// Delete deletes the key from the store.
func (s *Instance) Delete(key []byte) error {
	return s.base.Delete(concat(s.prefix, key))
}

// Get gets the key from the store.
func (s *Instance) Get(key []byte) (*badger.Item, error) {
	return s.base.Get(concat(s.prefix, key))
}

// NewIterator creates an iterator over the keys under the prefix.
// Item keys keep the full prefix; wrap it with NewIterator to trim it.
func (s *Instance) NewIterator(opts badger.IteratorOptions) *badger.Iterator {
	opts.Prefix = concat(s.prefix, opts.Prefix)
	return s.base.NewIterator(opts)
}

// Set sets the key in the store.
func (s *Instance) Set(key, value []byte) error {
	return s.base.Set(concat(s.prefix, key), value)
}

// SetEntry sets the entry in the store.
func (s *Instance) SetEntry(e *badger.Entry) error {
	e.Key = concat(s.prefix, e.Key)
	return s.base.SetEntry(e)
}

// concat returns a new slice so that prefixes never share backing arrays with keys.
func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
