package prefix_test

import (
	"testing"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/ehsanranjbar/flatkv/store/prefix"
	"github.com/ehsanranjbar/flatkv/testutil"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	txn := testutil.PrepareTxn(t, true)
	outer := prefix.New(nil, []byte("outer/"))
	store := prefix.New(outer, []byte("inner/"))
	require.Equal(t, []byte("outer/inner/"), store.Prefix())
	ins := store.Instantiate(txn)

	var (
		key   = []byte("foo")
		value = []byte("bar")
	)

	t.Run("Set", func(t *testing.T) {
		err := ins.Set(key, value)
		require.NoError(t, err)
	})

	t.Run("SetEntry", func(t *testing.T) {
		err := ins.SetEntry(&badger.Entry{Key: []byte("baz"), Value: value})
		require.NoError(t, err)
	})

	t.Run("Get", func(t *testing.T) {
		item, err := ins.Get(key)
		require.NoError(t, err)
		require.NotNil(t, item)
		item, err = txn.Get([]byte("outer/inner/foo"))
		require.NoError(t, err)
		require.NotNil(t, item)
	})

	t.Run("Iterator", func(t *testing.T) {
		it := prefix.NewIterator(ins.NewIterator(badger.DefaultIteratorOptions), store.Prefix())
		defer it.Close()

		var keys []string
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Key()))
			err := it.Item().Value(func(val []byte) error {
				require.Equal(t, value, val)
				return nil
			})
			require.NoError(t, err)
		}
		require.Equal(t, []string{"baz", "foo"}, keys)

		it.Seek([]byte("c"))
		require.True(t, it.Valid())
		require.Equal(t, "foo", string(it.Key()))
	})

	t.Run("Delete", func(t *testing.T) {
		err := ins.Delete(key)
		require.NoError(t, err)
	})

	t.Run("Get after Delete", func(t *testing.T) {
		item, err := ins.Get(key)
		require.ErrorIs(t, err, badger.ErrKeyNotFound)
		require.Nil(t, item)
	})
}
