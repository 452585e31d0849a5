package format

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ehsanranjbar/flatkv"
	"github.com/goccy/go-json"
)

// EncodeEnv writes flat as KEY=value lines in insertion order.
// Plain strings are written as is; everything else is written as a JSON literal.
func EncodeEnv(w io.Writer, flat *flatkv.Map) error {
	bw := bufio.NewWriter(w)
	for k, v := range flat.All() {
		if k == "" || strings.ContainsAny(k, "=\n") {
			return fmt.Errorf("key %q cannot be written as an env line", k)
		}

		val, err := envValue(v)
		if err != nil {
			return fmt.Errorf("failed to encode %q: %w", k, err)
		}
		_, err = fmt.Fprintf(bw, "%s=%s\n", k, val)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

func envValue(v any) (string, error) {
	if s, ok := v.(string); ok && isPlain(s) {
		return s, nil
	}

	bz, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(bz), nil
}

// isPlain reports whether s reads back as the same string without quoting.
func isPlain(s string) bool {
	if s == "" {
		return false
	}
	switch s {
	case "true", "false", "null", "[]", "{}":
		return false
	}
	if s[0] >= '0' && s[0] <= '9' || s[0] == '-' {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("_-./:@+,", r):
		default:
			return false
		}
	}
	return true
}

// DecodeEnv reads KEY=value lines into a flat Map. Blank lines and lines starting with # are
// skipped. Values that are JSON literals are decoded; anything else is kept as a string.
func DecodeEnv(r io.Reader) (*flatkv.Map, error) {
	m := flatkv.NewMap()
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		k, raw, ok := strings.Cut(text, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("line %d: expected KEY=value", line)
		}
		v, err := parseEnvValue(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		m.Set(k, v)
	}
	return m, sc.Err()
}

func parseEnvValue(raw string) (any, error) {
	switch raw {
	case "[]":
		return flatkv.List{}, nil
	case "{}":
		return flatkv.NewMap(), nil
	case "":
		return "", nil
	}
	if isPlain(raw) {
		return raw, nil
	}

	v, err := flatkv.ParseJSON(strings.NewReader(raw))
	if err != nil {
		if strings.HasPrefix(raw, `"`) {
			return nil, fmt.Errorf("invalid quoted value %s: %w", raw, err)
		}
		return raw, nil
	}
	return v, nil
}
