package flatkv

import (
	"fmt"
	"iter"
	"strconv"

	roaring "github.com/RoaringBitmap/roaring/v2"
	"github.com/ehsanranjbar/flatkv/internal/ordmap"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Map is an ordered string keyed container. The zero value is an empty map ready to use.
type Map struct {
	m *ordmap.Map[string, any]
}

// NewMap creates a new empty Map.
func NewMap() *Map {
	return &Map{m: ordmap.New[string, any]()}
}

// MapOf creates a Map from alternating keys and values. It panics if a key is not a string.
func MapOf(kv ...any) *Map {
	if len(kv)%2 != 0 {
		panic("flatkv: MapOf expects key value pairs")
	}

	m := NewMap()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("flatkv: MapOf key %v is %T, not string", kv[i], kv[i]))
		}
		m.Set(key, kv[i+1])
	}
	return m
}

func (m *Map) init() {
	if m.m == nil {
		m.m = ordmap.New[string, any]()
	}
}

// Set sets the value of key and returns the map. An existing key keeps its position.
func (m *Map) Set(key string, value any) *Map {
	m.init()
	m.m.Set(key, value)
	return m
}

// Get returns the value of key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil || m.m == nil {
		return nil, false
	}
	return m.m.Get(key)
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if m != nil && m.m != nil {
		m.m.Delete(key)
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Len()
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil || m.m == nil {
		return []string{}
	}
	return m.m.Keys()
}

// All iterates over the entries in insertion order.
func (m *Map) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if m == nil || m.m == nil {
			return
		}
		for k, v := range m.m.Iter() {
			if !yield(k, v) {
				return
			}
		}
	}
}

// ToNative converts the map recursively into map[string]any and []any values.
func (m *Map) ToNative() map[string]any {
	out := make(map[string]any, m.Len())
	for k, v := range m.All() {
		out[k] = ToNative(v)
	}
	return out
}

// List is an ordered sequence of values.
type List []any

// Len returns the number of elements.
func (l List) Len() int {
	return len(l)
}

// At returns the element at index i.
func (l List) At(i int) any {
	return l[i]
}

// ToNative converts v recursively so that every Map becomes map[string]any and every List becomes []any.
func ToNative(v any) any {
	switch vv := v.(type) {
	case *Map:
		return vv.ToNative()
	case List:
		return toNativeSlice(vv)
	case []any:
		return toNativeSlice(vv)
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			out[k] = ToNative(e)
		}
		return out
	default:
		return v
	}
}

func toNativeSlice(s []any) []any {
	out := make([]any, len(s))
	for i, e := range s {
		out[i] = ToNative(e)
	}
	return out
}

// FromNative converts an untyped tree of map[string]any and []any values into Map and List values.
// Map keys are ordered lexically. If inferLists is true, non-empty maps whose keys are the
// indexes 0..n-1 become lists.
func FromNative(v any, inferLists bool) any {
	switch vv := v.(type) {
	case map[string]any:
		keys := sortedKeys(vv)
		if inferLists && len(keys) > 0 && IsListKeys(keys) {
			l := make(List, len(keys))
			for k, e := range vv {
				i, _ := parseIndex(k)
				l[i] = FromNative(e, inferLists)
			}
			return l
		}

		m := NewMap()
		for _, k := range keys {
			m.Set(k, FromNative(vv[k], inferLists))
		}
		return m
	case *Map:
		m := NewMap()
		for k, e := range vv.All() {
			m.Set(k, FromNative(e, inferLists))
		}
		return m
	case []any:
		return fromNativeSlice(vv, inferLists)
	case List:
		return fromNativeSlice(vv, inferLists)
	default:
		return v
	}
}

func fromNativeSlice(s []any, inferLists bool) List {
	l := make(List, len(s))
	for i, e := range s {
		l[i] = FromNative(e, inferLists)
	}
	return l
}

// IsListKeys reports whether keys are exactly the decimal indexes 0..len(keys)-1 in any order.
// An empty set of keys is a list.
func IsListKeys(keys []string) bool {
	bm := roaring.New()
	for _, k := range keys {
		i, ok := parseIndex(k)
		if !ok {
			return false
		}
		bm.Add(i)
	}

	n := uint64(len(keys))
	return bm.GetCardinality() == n && (n == 0 || uint64(bm.Maximum()) == n-1)
}

// parseIndex parses a canonical decimal list index.
func parseIndex(s string) (uint32, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	i, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(i), true
}

func formatIndex[I constraints.Integer](i I) string {
	return strconv.FormatInt(int64(i), 10)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IsContainer reports whether v is a map or list.
func IsContainer(v any) bool {
	switch v.(type) {
	case *Map, List, []any, map[string]any:
		return true
	default:
		return false
	}
}

// containerLen returns the number of entries of v, or -1 if v is not a container.
func containerLen(v any) int {
	switch vv := v.(type) {
	case *Map:
		return vv.Len()
	case List:
		return len(vv)
	case []any:
		return len(vv)
	case map[string]any:
		return len(vv)
	default:
		return -1
	}
}

// entries iterates over a container. isList reports whether it is index keyed.
func entries(v any) (seq iter.Seq2[string, any], isList bool) {
	switch vv := v.(type) {
	case *Map:
		return vv.All(), false
	case List:
		return sliceEntries(vv), true
	case []any:
		return sliceEntries(vv), true
	case map[string]any:
		return func(yield func(string, any) bool) {
			for _, k := range sortedKeys(vv) {
				if !yield(k, vv[k]) {
					return
				}
			}
		}, false
	default:
		return func(func(string, any) bool) {}, false
	}
}

func sliceEntries(s []any) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for i, e := range s {
			if !yield(formatIndex(i), e) {
				return
			}
		}
	}
}
