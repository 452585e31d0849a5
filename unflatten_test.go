package flatkv_test

import (
	"errors"
	"testing"

	"github.com/ehsanranjbar/flatkv"
	"github.com/ehsanranjbar/flatkv/schema"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		opts []flatkv.Option
	}{
		{name: "Default options"},
		{
			name: "Braces with end suffix",
			opts: []flatkv.Option{
				flatkv.WithPrefix("{"),
				flatkv.WithSuffix("}"),
				flatkv.WithSuffixEnd(true),
			},
		},
		{
			name: "Arrow suffix without list delimiters",
			opts: []flatkv.Option{
				flatkv.WithSuffix("->"),
				flatkv.WithPrefixList(""),
				flatkv.WithSuffixList(""),
			},
		},
		{
			name: "Slash suffix with start key",
			opts: []flatkv.Option{
				flatkv.WithStartKey("$"),
				flatkv.WithSuffix("/"),
				flatkv.WithSuffixEnd(true),
				flatkv.WithPrefixList(""),
				flatkv.WithSuffixList(""),
			},
		},
		{
			name: "Prefix only",
			opts: []flatkv.Option{
				flatkv.WithPrefix(":"),
				flatkv.WithSuffix(""),
				flatkv.WithPrefixList("#"),
				flatkv.WithSuffixList(""),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flat, err := flatkv.Flatten(sampleDocument(), tt.opts...)
			require.NoError(t, err)

			got, err := flatkv.Unflatten(flat, tt.opts...)
			require.NoError(t, err)
			require.Equal(t, sampleDocument().ToNative(), got.ToNative())
			require.Equal(t, sampleDocument().Keys(), got.Keys())

			collections, err := schema.ExtractPathFromAny(got, "properties.collections")
			require.NoError(t, err)
			require.IsType(t, flatkv.List{}, collections)
		})

		t.Run(tt.name+" with list root", func(t *testing.T) {
			src := flatkv.List{"a", flatkv.MapOf("b", 1, "c", flatkv.List{true, false}), flatkv.List{}}
			flat, err := flatkv.Flatten(src, tt.opts...)
			require.NoError(t, err)
			require.Equal(t, 5, flat.Len())

			got, err := flatkv.UnflattenValue(flat, tt.opts...)
			require.NoError(t, err)
			require.IsType(t, flatkv.List{}, got)
			require.Equal(t, flatkv.ToNative(src), flatkv.ToNative(got))
		})
	}
}

func TestUnflattenValue(t *testing.T) {
	flat := flatkv.MapOf("[0]", "a", "[1]b", 1)

	got, err := flatkv.UnflattenValue(flat)
	require.NoError(t, err)
	require.Equal(t, []any{"a", map[string]any{"b": 1}}, flatkv.ToNative(got))

	got, err = flatkv.UnflattenValue(flat, flatkv.WithKeepNumericMaps(true))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"0": "a", "1": map[string]any{"b": 1}}, flatkv.ToNative(got))

	got, err = flatkv.UnflattenValue(flatkv.MapOf("a", 1))
	require.NoError(t, err)
	require.IsType(t, &flatkv.Map{}, got)

	got, err = flatkv.UnflattenValue(flatkv.NewMap())
	require.NoError(t, err)
	require.Equal(t, 0, got.(*flatkv.Map).Len())

	_, err = flatkv.UnflattenValue(flatkv.MapOf("...", 1))
	require.ErrorIs(t, err, flatkv.ErrUnresolvableKey)
}

func TestUnflatten(t *testing.T) {
	t.Run("Start key", func(t *testing.T) {
		got, err := flatkv.Unflatten(
			flatkv.MapOf("${assokey}[0]", "Foo"),
			flatkv.WithStartKey("$"),
			flatkv.WithPrefix("{"),
			flatkv.WithSuffix("}"),
		)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"assokey": []any{"Foo"}}, got.ToNative())
	})

	t.Run("Key without delimiters", func(t *testing.T) {
		got, err := flatkv.Unflatten(flatkv.MapOf("plain", 1))
		require.NoError(t, err)
		require.Equal(t, map[string]any{"plain": 1}, got.ToNative())
	})

	t.Run("Delimiter collapsing", func(t *testing.T) {
		got, err := flatkv.Unflatten(flatkv.MapOf(
			"a.[0]", "x",
			"b].[c", "y",
			"..d..", "z",
		))
		require.NoError(t, err)
		require.Equal(t, map[string]any{
			"a": []any{"x"},
			"b": map[string]any{"c": "y"},
			"d": "z",
		}, got.ToNative())
	})

	t.Run("End suffixes are ignored", func(t *testing.T) {
		a, err := flatkv.Unflatten(flatkv.MapOf("x.y.", 1, "l[0]", 2), flatkv.WithSuffixEnd(true))
		require.NoError(t, err)
		b, err := flatkv.Unflatten(flatkv.MapOf("x.y", 1, "l[0", 2), flatkv.WithSuffixListEnd(false))
		require.NoError(t, err)
		require.Equal(t, a.ToNative(), b.ToNative())
	})

	t.Run("Sparse indexes stay a map", func(t *testing.T) {
		got, err := flatkv.Unflatten(flatkv.MapOf("l[0]", "a", "l[2]", "c"))
		require.NoError(t, err)

		l, _ := got.Get("l")
		require.IsType(t, &flatkv.Map{}, l)
		require.Equal(t, []string{"0", "2"}, l.(*flatkv.Map).Keys())
	})

	t.Run("Unordered indexes become an ordered list", func(t *testing.T) {
		got, err := flatkv.Unflatten(flatkv.MapOf("l[1]", "b", "l[0]", "a"))
		require.NoError(t, err)
		require.Equal(t, map[string]any{"l": []any{"a", "b"}}, got.ToNative())
	})

	t.Run("Keep numeric maps", func(t *testing.T) {
		flat, err := flatkv.Flatten(sampleDocument())
		require.NoError(t, err)

		got, err := flatkv.Unflatten(flat, flatkv.WithKeepNumericMaps(true))
		require.NoError(t, err)

		collections, err := schema.ExtractPathFromAny(got, "properties.collections")
		require.NoError(t, err)
		require.IsType(t, &flatkv.Map{}, collections)
		require.Equal(t, []string{"0", "1"}, collections.(*flatkv.Map).Keys())
	})

	t.Run("Empty container leaves are kept", func(t *testing.T) {
		got, err := flatkv.Unflatten(flatkv.MapOf("e[0]", flatkv.List{}, "m", flatkv.NewMap()))
		require.NoError(t, err)

		e, err := schema.ExtractPathFromAny(got, "e.0")
		require.NoError(t, err)
		require.Equal(t, flatkv.List{}, e)

		m, _ := got.Get("m")
		require.IsType(t, &flatkv.Map{}, m)
	})

	t.Run("Leaf overwritten by container", func(t *testing.T) {
		got, err := flatkv.Unflatten(flatkv.MapOf("a", 1, "a.b", 2))
		require.NoError(t, err)
		require.Equal(t, map[string]any{"a": map[string]any{"b": 2}}, got.ToNative())
	})

	t.Run("Source containers are not mutated", func(t *testing.T) {
		leaf := flatkv.NewMap()
		_, err := flatkv.Unflatten(flatkv.MapOf("a", leaf, "a.b", 2))
		require.NoError(t, err)
		require.Equal(t, 0, leaf.Len())
	})

	t.Run("Unordered source", func(t *testing.T) {
		got, err := flatkv.UnflattenMap(map[string]any{"b.c": 2, "a[0]": 1})
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, got.Keys())
	})

	t.Run("Into existing destination", func(t *testing.T) {
		dst, err := flatkv.Unflatten(flatkv.MapOf("l[0]", "a"))
		require.NoError(t, err)

		err = flatkv.NewUnflattener().UnflattenInto(dst, flatkv.MapOf("l[1]", "b"))
		require.NoError(t, err)
		require.Equal(t, map[string]any{"l": []any{"a", "b"}}, dst.ToNative())
	})

	t.Run("Unflatter interface", func(t *testing.T) {
		var u schema.Unflatter[any] = flatkv.NewUnflattener()
		got, err := u.UnflattenAny(map[string]any{"assokey[0]": "Foo"})
		require.NoError(t, err)
		require.Equal(t, map[string]any{"assokey": []any{"Foo"}}, got.(*flatkv.Map).ToNative())

		got, err = u.UnflattenAny(map[string]any{"[0]": "a", "[1]b": 1})
		require.NoError(t, err)
		require.Equal(t, []any{"a", map[string]any{"b": 1}}, flatkv.ToNative(got))
	})
}

func TestUnflattenErrors(t *testing.T) {
	t.Run("Ambiguous configuration", func(t *testing.T) {
		opts := []flatkv.Option{
			flatkv.WithSuffix(""),
			flatkv.WithPrefix(""),
			flatkv.WithPrefixList(""),
			flatkv.WithSuffixList(""),
		}

		flat, err := flatkv.Flatten(flatkv.MapOf("a", flatkv.MapOf("b", 1)), opts...)
		require.NoError(t, err)
		require.Equal(t, []string{"ab"}, flat.Keys())

		_, err = flatkv.Unflatten(flat, opts...)
		require.ErrorIs(t, err, flatkv.ErrAmbiguousConfig)

		_, err = flatkv.NewOptions(opts...).Splitter()
		require.ErrorIs(t, err, flatkv.ErrAmbiguousConfig)
	})

	t.Run("Unresolvable key", func(t *testing.T) {
		_, err := flatkv.Unflatten(flatkv.MapOf("ok", 1, ".[]", 2))
		require.ErrorIs(t, err, flatkv.ErrUnresolvableKey)

		var kerr *flatkv.KeyError
		require.True(t, errors.As(err, &kerr))
		require.Equal(t, ".[]", kerr.Key)
	})

	t.Run("Strict leaf then container", func(t *testing.T) {
		_, err := flatkv.Unflatten(flatkv.MapOf("a", 1, "a.b", 2), flatkv.WithStrict(true))
		require.ErrorIs(t, err, flatkv.ErrStructuralConflict)
	})

	t.Run("Strict container then leaf", func(t *testing.T) {
		_, err := flatkv.Unflatten(flatkv.MapOf("a.b", 2, "a", 1), flatkv.WithStrict(true))
		require.ErrorIs(t, err, flatkv.ErrStructuralConflict)
	})

	t.Run("Strict accepts consistent keys", func(t *testing.T) {
		flat, err := flatkv.Flatten(sampleDocument())
		require.NoError(t, err)
		_, err = flatkv.Unflatten(flat, flatkv.WithStrict(true))
		require.NoError(t, err)
	})

	t.Run("Max depth", func(t *testing.T) {
		_, err := flatkv.Unflatten(flatkv.MapOf("a.b.c.d", 1), flatkv.WithMaxDepth(3))
		require.ErrorIs(t, err, flatkv.ErrMaxDepth)
	})
}

func TestSplitKey(t *testing.T) {
	segments, err := flatkv.SplitKey("properties.collections[0][1]")
	require.NoError(t, err)
	require.Equal(t, []string{"properties", "collections", "0", "1"}, segments)

	segments, err = flatkv.SplitKey("${a}{b}[0]", flatkv.WithStartKey("$"), flatkv.WithPrefix("{"), flatkv.WithSuffix("}"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "0"}, segments)

	// The start key is trimmed as a set of characters.
	segments, err = flatkv.SplitKey("abba.c", flatkv.WithStartKey("ab"))
	require.NoError(t, err)
	require.Equal(t, []string{"c"}, segments)

	_, err = flatkv.SplitKey("...")
	require.ErrorIs(t, err, flatkv.ErrUnresolvableKey)
}
