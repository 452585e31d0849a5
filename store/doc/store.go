package doc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/araddon/qlbridge/expr"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/ehsanranjbar/flatkv"
	"github.com/ehsanranjbar/flatkv/codec"
	"github.com/ehsanranjbar/flatkv/internal/qlutil"
	"github.com/ehsanranjbar/flatkv/iters"
	"github.com/ehsanranjbar/flatkv/schema"
	pstore "github.com/ehsanranjbar/flatkv/store/prefix"
	"github.com/google/uuid"
	msgpack "github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for empty ids or ids containing a zero byte.
	ErrInvalidID = errors.New("invalid document id")
)

const (
	separator   = 0x00
	entryMarker = 0x01
)

// Store persists nested documents as one badger entry per flat key.
//
// Keys are laid out as
//
//	id 0x00          -> number of entries
//	id 0x00 0x01 key -> codec.Entry
//
// so a document can be read whole or one flat key at a time.
type Store struct {
	base        flatkv.Instantiator[flatkv.BadgerStore]
	flattener   *flatkv.Flattener
	unflattener *flatkv.Unflattener
	idFunc      func(v any) (string, error)
	codec       codec.Codec[codec.Entry]
}

// New creates a new Store. The options control the flat key format.
func New(base flatkv.Instantiator[flatkv.BadgerStore], opts ...flatkv.Option) *Store {
	return &Store{
		base:        base,
		flattener:   flatkv.NewFlattener(opts...),
		unflattener: flatkv.NewUnflattener(opts...),
		idFunc:      RandomID,
		codec:       codec.EntryCodec{},
	}
}

// WithIDFunc sets the function generating ids for Put.
func (s *Store) WithIDFunc(f func(v any) (string, error)) *Store {
	s.idFunc = f
	return s
}

// RandomID returns a random UUID.
func RandomID(_ any) (string, error) {
	return uuid.New().String(), nil
}

// Instantiate creates a new Instance bound to txn.
func (s *Store) Instantiate(txn *badger.Txn) *Instance {
	var base flatkv.BadgerStore = txn
	var prefix []byte
	if s.base != nil {
		base = s.base.Instantiate(txn)
	}
	if pfx, ok := s.base.(interface{ Prefix() []byte }); ok {
		prefix = pfx.Prefix()
	}

	return &Instance{
		store:  s,
		base:   base,
		prefix: prefix,
	}
}

// Instance is a Store bound to a transaction.
type Instance struct {
	store  *Store
	base   flatkv.BadgerStore
	prefix []byte
}

// Set flattens v and stores it under id, replacing any previous document.
func (ins *Instance) Set(id string, v any) error {
	err := validateID(id)
	if err != nil {
		return err
	}

	flat := flatkv.NewMap()
	err = ins.store.flattener.FlattenInto(flat, v)
	if err != nil {
		return fmt.Errorf("failed to flatten document %q: %w", id, err)
	}

	return ins.SetFlat(id, flat)
}

// SetFlat stores an already flattened document under id, replacing any previous document.
func (ins *Instance) SetFlat(id string, flat *flatkv.Map) error {
	err := validateID(id)
	if err != nil {
		return err
	}

	err = ins.Delete(id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	var seq uint64
	for k, v := range flat.All() {
		bz, err := ins.store.codec.Encode(codec.Entry{Seq: seq, Value: v})
		if err != nil {
			return fmt.Errorf("failed to encode %q: %w", k, err)
		}

		err = ins.base.Set(entryKey(id, k), bz)
		if err != nil {
			return err
		}
		seq++
	}

	header, err := msgpack.Marshal(seq)
	if err != nil {
		return err
	}
	return ins.base.Set(headerKey(id), header)
}

// Put stores v under a new id and returns it.
func (ins *Instance) Put(v any) (string, error) {
	id, err := ins.store.idFunc(v)
	if err != nil {
		return "", fmt.Errorf("failed to get id: %w", err)
	}

	return id, ins.Set(id, v)
}

// Get returns the nested document stored under id.
func (ins *Instance) Get(id string) (*flatkv.Map, error) {
	flat, err := ins.GetFlat(id)
	if err != nil {
		return nil, err
	}

	v, err := ins.store.unflattener.Unflatten(flat)
	if err != nil {
		return nil, fmt.Errorf("failed to unflatten document %q: %w", id, err)
	}
	return v, nil
}

// GetFlat returns the flat entries of the document stored under id in their original order.
func (ins *Instance) GetFlat(id string) (*flatkv.Map, error) {
	n, err := ins.count(id)
	if err != nil {
		return nil, err
	}

	entries := make([]keyedEntry, 0, n)
	prefix := entryKey(id, "")
	it := pstore.NewIterator(
		ins.base.NewIterator(badger.IteratorOptions{Prefix: prefix}),
		append(bytes.Clone(ins.prefix), prefix...),
	)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		e, err := ins.decodeItem(it.Item())
		if err != nil {
			return nil, fmt.Errorf("failed to read %q of document %q: %w", it.Key(), id, err)
		}
		entries = append(entries, keyedEntry{key: string(it.Key()), entry: e})
	}
	return sortEntries(entries), nil
}

func (ins *Instance) decodeItem(item *badger.Item) (e codec.Entry, err error) {
	err = item.Value(func(val []byte) error {
		e, err = ins.store.codec.Decode(val)
		return err
	})
	return e, err
}

// GetPath returns the value of a single flat key of the document stored under id.
func (ins *Instance) GetPath(id, key string) (any, error) {
	err := validateID(id)
	if err != nil {
		return nil, err
	}

	item, err := ins.base.Get(entryKey(id, key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %q has no key %q", ErrNotFound, id, key)
	}
	if err != nil {
		return nil, err
	}

	e, err := ins.decodeItem(item)
	return e.Value, err
}

// Delete removes the document stored under id.
func (ins *Instance) Delete(id string) error {
	_, err := ins.count(id)
	if err != nil {
		return err
	}

	var keys [][]byte
	prefix := entryKey(id, "")
	it := pstore.NewIterator(
		ins.base.NewIterator(badger.IteratorOptions{Prefix: prefix}),
		ins.prefix,
	)
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Key())
	}
	it.Close()

	for _, k := range keys {
		err := ins.base.Delete(k)
		if err != nil {
			return err
		}
	}
	return ins.base.Delete(headerKey(id))
}

// IDs returns the ids of all stored documents in key order.
func (ins *Instance) IDs() ([]string, error) {
	var ids []string
	it := pstore.NewIterator(
		ins.base.NewIterator(badger.IteratorOptions{PrefetchValues: false}),
		ins.prefix,
	)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		if id, ok := headerID(it.Key()); ok {
			ids = append(ids, string(id))
		}
	}
	return ids, nil
}

// Query returns the ids of the documents matching the qlbridge expression q, at most limit
// of them when limit is positive. Identifiers are dotted paths into the nested document,
// e.g. `properties.geo.latitude > 10`.
func (ins *Instance) Query(q string, limit int) ([]string, error) {
	it, err := ins.QueryIterator(q)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	if limit > 0 {
		it = iters.Limit(it, limit)
	}
	return iters.CollectKeys(it)
}

// QueryIterator returns an iterator over the documents matching the qlbridge expression q.
func (ins *Instance) QueryIterator(q string) (flatkv.Iterator[*flatkv.Map], error) {
	qe, err := expr.ParseExpression(q)
	if err != nil {
		return nil, err
	}

	return iters.Filter(ins.NewIterator(), func(id []byte, v *flatkv.Map) bool {
		ctx := qlutil.NewContextWrapper[string, any](string(id), v, schema.AnyPathExtractor{}, ins.store.flattener)
		return qlutil.Matches(ctx, qe)
	}), nil
}

func (ins *Instance) count(id string) (uint64, error) {
	err := validateID(id)
	if err != nil {
		return 0, err
	}

	item, err := ins.base.Get(headerKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return 0, err
	}

	var n uint64
	err = item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, &n)
	})
	return n, err
}

func validateID(id string) error {
	if id == "" || bytes.IndexByte([]byte(id), separator) >= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// headerID returns the id of a header key. Only the first zero byte of a key ends its id,
// so entry keys never qualify even when the flat key ends in a zero byte.
func headerID(key []byte) ([]byte, bool) {
	i := bytes.IndexByte(key, separator)
	if i <= 0 || i != len(key)-1 {
		return nil, false
	}
	return key[:i], true
}

func headerKey(id string) []byte {
	return append([]byte(id), separator)
}

func entryKey(id, key string) []byte {
	k := make([]byte, 0, len(id)+len(key)+2)
	k = append(k, id...)
	k = append(k, separator, entryMarker)
	return append(k, key...)
}
