package doc

import (
	"bytes"
	"cmp"
	"slices"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/ehsanranjbar/flatkv"
	"github.com/ehsanranjbar/flatkv/codec"
	pstore "github.com/ehsanranjbar/flatkv/store/prefix"
)

// Iterator walks the documents of an instance in id order.
// Every document is assembled from its entries with a single badger iterator.
type Iterator struct {
	ins  *Instance
	base *pstore.Iterator
	id   []byte
	flat *flatkv.Map
	err  error

	// value caches the unflattened current document.
	value    *flatkv.Map
	valueErr error
	decoded  bool
}

var _ flatkv.Iterator[*flatkv.Map] = (*Iterator)(nil)

// NewIterator creates an iterator over all documents. Keys are document ids.
func (ins *Instance) NewIterator() *Iterator {
	return &Iterator{
		ins:  ins,
		base: pstore.NewIterator(ins.base.NewIterator(badger.DefaultIteratorOptions), ins.prefix),
	}
}

// Close closes the iterator.
func (it *Iterator) Close() {
	it.base.Close()
}

// Rewind moves to the first document.
func (it *Iterator) Rewind() {
	it.base.Rewind()
	it.load()
}

// Seek moves to the first document whose id is greater or equal to id.
func (it *Iterator) Seek(id []byte) {
	it.base.Seek(id)
	it.load()
}

// Next moves to the next document.
func (it *Iterator) Next() {
	it.load()
}

// Valid returns if the iterator points to a document.
func (it *Iterator) Valid() bool {
	return it.id != nil
}

// Key returns the id of the current document.
func (it *Iterator) Key() []byte {
	return it.id
}

// Flat returns the flat entries of the current document.
func (it *Iterator) Flat() (*flatkv.Map, error) {
	return it.flat, it.err
}

// Value returns the current document. It is unflattened once per position.
func (it *Iterator) Value() (*flatkv.Map, error) {
	if it.err != nil {
		return nil, it.err
	}
	if !it.decoded {
		it.value, it.valueErr = it.ins.store.unflattener.Unflatten(it.flat)
		it.decoded = true
	}
	return it.value, it.valueErr
}

// load reads the document starting at the current position and leaves the base
// iterator on the header of the following one.
func (it *Iterator) load() {
	it.id, it.flat, it.err = nil, nil, nil
	it.value, it.valueErr, it.decoded = nil, nil, false
	for ; it.base.Valid(); it.base.Next() {
		if id, ok := headerID(it.base.Key()); ok {
			it.id = id
			break
		}
	}
	if it.id == nil {
		return
	}
	it.base.Next()

	prefix := entryKey(string(it.id), "")
	var entries []keyedEntry
	for ; it.base.Valid(); it.base.Next() {
		key := it.base.Key()
		if !bytes.HasPrefix(key, prefix) {
			break
		}

		e, err := it.ins.decodeItem(it.base.Item())
		if err != nil && it.err == nil {
			it.err = err
		}
		entries = append(entries, keyedEntry{key: string(key[len(prefix):]), entry: e})
	}
	it.flat = sortEntries(entries)
}

type keyedEntry struct {
	key   string
	entry codec.Entry
}

func sortEntries(entries []keyedEntry) *flatkv.Map {
	slices.SortFunc(entries, func(a, b keyedEntry) int {
		return cmp.Compare(a.entry.Seq, b.entry.Seq)
	})

	flat := flatkv.NewMap()
	for _, e := range entries {
		flat.Set(e.key, e.entry.Value)
	}
	return flat
}
