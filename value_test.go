package flatkv_test

import (
	"testing"

	"github.com/ehsanranjbar/flatkv"
	"github.com/stretchr/testify/require"
)

func TestIsListKeys(t *testing.T) {
	tests := []struct {
		keys []string
		want bool
	}{
		{keys: []string{}, want: true},
		{keys: []string{"0"}, want: true},
		{keys: []string{"2", "0", "1"}, want: true},
		{keys: []string{"1"}, want: false},
		{keys: []string{"0", "2"}, want: false},
		{keys: []string{"0", "01"}, want: false},
		{keys: []string{"0", "a"}, want: false},
		{keys: []string{"-1", "0"}, want: false},
		{keys: []string{""}, want: false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, flatkv.IsListKeys(tt.keys), "%v", tt.keys)
	}
}

func TestFromNative(t *testing.T) {
	native := map[string]any{
		"b": []any{1, map[string]any{"y": 2, "x": 1}},
		"a": map[string]any{"1": "second", "0": "first"},
		"e": map[string]any{},
	}

	t.Run("Without inference", func(t *testing.T) {
		v := flatkv.FromNative(native, false)
		m, ok := v.(*flatkv.Map)
		require.True(t, ok)
		require.Equal(t, []string{"a", "b", "e"}, m.Keys())

		a, _ := m.Get("a")
		require.IsType(t, &flatkv.Map{}, a)

		b, _ := m.Get("b")
		require.IsType(t, flatkv.List{}, b)
		require.Equal(t, []string{"x", "y"}, b.(flatkv.List).At(1).(*flatkv.Map).Keys())

		require.Equal(t, native, m.ToNative())
	})

	t.Run("With inference", func(t *testing.T) {
		m := flatkv.FromNative(native, true).(*flatkv.Map)

		a, _ := m.Get("a")
		require.Equal(t, flatkv.List{"first", "second"}, a)

		e, _ := m.Get("e")
		require.IsType(t, &flatkv.Map{}, e)
	})
}

func TestMap(t *testing.T) {
	var m flatkv.Map
	require.Equal(t, 0, m.Len())
	require.False(t, m.Has("a"))

	m.Set("b", 1).Set("a", 2).Set("b", 3)
	require.Equal(t, []string{"b", "a"}, m.Keys())
	require.True(t, m.Has("a"))

	v, ok := m.Get("b")
	require.True(t, ok)
	require.Equal(t, 3, v)

	m.Delete("b")
	require.Equal(t, []string{"a"}, m.Keys())

	require.Panics(t, func() { flatkv.MapOf("a") })
	require.Panics(t, func() { flatkv.MapOf(1, "a") })
}

func TestIsContainer(t *testing.T) {
	require.True(t, flatkv.IsContainer(flatkv.NewMap()))
	require.True(t, flatkv.IsContainer(flatkv.List{}))
	require.True(t, flatkv.IsContainer([]any{}))
	require.True(t, flatkv.IsContainer(map[string]any{}))
	require.False(t, flatkv.IsContainer("a"))
	require.False(t, flatkv.IsContainer(nil))
}

func TestNilMap(t *testing.T) {
	var m *flatkv.Map

	_, ok := m.Get("a")
	require.False(t, ok)
	require.False(t, m.Has("a"))
	require.Equal(t, 0, m.Len())
	require.Empty(t, m.Keys())
	require.Empty(t, m.ToNative())
	require.NotPanics(t, func() { m.Delete("a") })

	for range m.All() {
		t.Fatal("nil map has no entries")
	}
}
