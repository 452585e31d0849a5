package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ehsanranjbar/flatkv"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format names an input or output encoding.
type Format string

const (
	// JSON is a single JSON value; object keys keep their order.
	JSON Format = "json"
	// YAML is the first document of a YAML stream.
	YAML Format = "yaml"
	// HCL is a file of top level HCL attributes. It is an input only format.
	HCL Format = "hcl"
	// Env is KEY=value lines holding a flat map.
	Env Format = "env"
)

// ErrUnknownFormat is returned for format names that are not supported.
var ErrUnknownFormat = errors.New("unknown format")

// Parse returns the Format named by s.
func Parse(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSON, YAML, HCL, Env:
		return f, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Decode reads r entirely and decodes it as f.
func Decode(f Format, r io.Reader) (any, error) {
	switch f {
	case JSON:
		return flatkv.ParseJSON(r)
	case YAML:
		return flatkv.ParseYAML(r)
	case HCL:
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return DecodeHCL(src, "<input>")
	case Env:
		return DecodeEnv(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Encode writes v to w as f. Env output requires a flat *flatkv.Map.
func Encode(f Format, w io.Writer, v any) error {
	switch f {
	case JSON:
		return EncodeJSON(w, v, "  ")
	case YAML:
		return EncodeYAML(w, v)
	case Env:
		m, ok := v.(*flatkv.Map)
		if !ok {
			return fmt.Errorf("env output needs a map, got %T", v)
		}
		return EncodeEnv(w, m)
	case HCL:
		return fmt.Errorf("%w: %q is input only", ErrUnknownFormat, f)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// EncodeJSON writes v as JSON followed by a newline. An empty indent writes compact output.
func EncodeJSON(w io.Writer, v any, indent string) error {
	var (
		bz  []byte
		err error
	)
	if indent == "" {
		bz, err = json.Marshal(v)
	} else {
		bz, err = json.MarshalIndent(v, "", indent)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(append(bz, '\n'))
	return err
}

// EncodeYAML writes v as a YAML document.
func EncodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(v)
	if err != nil {
		return err
	}
	return enc.Close()
}

// DecodeBytes is a shorthand for Decode over an in-memory document.
func DecodeBytes(f Format, src []byte) (any, error) {
	return Decode(f, bytes.NewReader(src))
}
