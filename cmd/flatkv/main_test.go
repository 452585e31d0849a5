package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ehsanranjbar/flatkv/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	out := &bytes.Buffer{}
	err := run(strings.NewReader(""), out, []string{"-h"})
	require.NoError(t, err)
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	err := run(strings.NewReader(""), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_RoundTrip(t *testing.T) {
	doc := `{"name": "A", "tags": ["x", "y"], "geo": {"lat": 1.5}}`

	flat := &bytes.Buffer{}
	err := run(strings.NewReader(doc), flat, []string{"-out", "json"})
	require.NoError(t, err)
	require.JSONEq(t, `{"name": "A", "tags[0]": "x", "tags[1]": "y", "geo.lat": 1.5}`, flat.String())

	path := filepath.Join(t.TempDir(), "flat.json")
	require.NoError(t, os.WriteFile(path, flat.Bytes(), 0600))

	nested := &bytes.Buffer{}
	err = run(strings.NewReader(""), nested, []string{"-mode", "unflatten", path})
	require.NoError(t, err)
	require.JSONEq(t, doc, nested.String())
}
