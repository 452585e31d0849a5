package iters

import "github.com/ehsanranjbar/flatkv"

// Collect rewinds the iterator and returns all of its values.
func Collect[V any](it flatkv.Iterator[V]) ([]V, error) {
	var items []V
	for it.Rewind(); it.Valid(); it.Next() {
		v, err := it.Value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// CollectKeys rewinds the iterator and returns all of its keys as strings.
// Values are decoded so that decoding errors are not hidden.
func CollectKeys[V any](it flatkv.Iterator[V]) ([]string, error) {
	var keys []string
	for it.Rewind(); it.Valid(); it.Next() {
		_, err := it.Value()
		if err != nil {
			return nil, err
		}
		keys = append(keys, string(it.Key()))
	}
	return keys, nil
}
