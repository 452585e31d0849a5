package flatkv_test

import (
	"testing"

	"github.com/ehsanranjbar/flatkv"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultOptions(t *testing.T) {
	o := flatkv.DefaultOptions()
	require.Equal(t, "", o.Prefix)
	require.Equal(t, ".", o.Suffix)
	require.False(t, o.SuffixEnd)
	require.Equal(t, "[", o.PrefixList)
	require.Equal(t, "]", o.SuffixList)
	require.True(t, o.SuffixListEnd)
	require.Equal(t, flatkv.DefaultMaxDepth, o.MaxDepth)

	splitter, err := o.Splitter()
	require.NoError(t, err)
	require.Equal(t, ".", splitter)
}

func TestNewOptions(t *testing.T) {
	o := flatkv.NewOptions(flatkv.WithSuffix(""), flatkv.WithSuffixListEnd(false))
	require.Equal(t, "", o.Suffix)
	require.False(t, o.SuffixListEnd)
	require.Equal(t, "[", o.PrefixList)

	splitter, err := o.Splitter()
	require.NoError(t, err)
	require.Equal(t, "[", splitter)
}

func TestConfig(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		var c flatkv.Config
		err := json.Unmarshal([]byte(`{"prefix-list": "", "suffix-list": "", "suffix": "->", "strict": true}`), &c)
		require.NoError(t, err)

		o := c.Options()
		require.Equal(t, "->", o.Suffix)
		require.Equal(t, "", o.PrefixList)
		require.Equal(t, "", o.SuffixList)
		require.True(t, o.SuffixListEnd)
		require.True(t, o.Strict)
		require.Equal(t, flatkv.DefaultMaxDepth, o.MaxDepth)
	})

	t.Run("YAML", func(t *testing.T) {
		var c flatkv.Config
		err := yaml.Unmarshal([]byte("prefix: '{'\nsuffix: '}'\nsuffix-end: true\nstart: $\n"), &c)
		require.NoError(t, err)

		o := c.Options()
		require.Equal(t, "{", o.Prefix)
		require.Equal(t, "}", o.Suffix)
		require.True(t, o.SuffixEnd)
		require.Equal(t, "$", o.StartKey)
	})

	t.Run("Explicit values win", func(t *testing.T) {
		empty, no := "", false
		o := flatkv.NewOptions(flatkv.WithSuffixEnd(true), flatkv.Config{Suffix: &empty, SuffixEnd: &no}.Apply)
		require.Equal(t, "", o.Suffix)
		require.False(t, o.SuffixEnd)
	})
}
