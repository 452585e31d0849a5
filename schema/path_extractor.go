package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// PathExtractor is an interface for extracting a value with the given path from a given value.
type PathExtractor[T any] interface {
	ExtractPath(t T, path string) (any, error)
}

// Keyed is a string keyed container.
type Keyed interface {
	Get(key string) (any, bool)
}

// Indexed is an integer indexed container.
type Indexed interface {
	Len() int
	At(i int) any
}

// AnyPathExtractor is a PathExtractor over trees of maps and lists.
type AnyPathExtractor struct{}

// ExtractPath implements the PathExtractor interface.
func (AnyPathExtractor) ExtractPath(v any, path string) (any, error) {
	return ExtractPathFromAny(v, path)
}

// ExtractPathFromAny extracts the value from the given any value with the given dotted path.
// List elements are addressed by index, or by "*" to collect the path from every element.
func ExtractPathFromAny(v any, path string) (any, error) {
	if path == "" {
		return v, nil
	}

	parts := strings.SplitN(path, ".", 2)
	if len(parts) > 1 && parts[0] == "" {
		return ExtractPathFromAny(v, parts[1])
	}
	if v == nil {
		return nil, fmt.Errorf("cannot extract path %q from nil", path)
	}

	switch vv := v.(type) {
	case map[string]any:
		var ok bool
		v, ok = vv[parts[0]]
		if !ok {
			return nil, fmt.Errorf("key %q not found", parts[0])
		}
	case Keyed:
		var ok bool
		v, ok = vv.Get(parts[0])
		if !ok {
			return nil, fmt.Errorf("key %q not found", parts[0])
		}
	case []any:
		return extractFromIndexed(sliceIndexed(vv), parts)
	case Indexed:
		return extractFromIndexed(vv, parts)
	default:
		return nil, fmt.Errorf("cannot extract path %q from %T", path, v)
	}

	if len(parts) == 1 {
		return v, nil
	}

	return ExtractPathFromAny(v, parts[1])
}

func extractFromIndexed(vv Indexed, parts []string) (any, error) {
	if parts[0] == "*" {
		result := make([]any, 0, vv.Len())
		for i := 0; i < vv.Len(); i++ {
			iv := vv.At(i)
			if len(parts) > 1 {
				var err error
				iv, err = ExtractPathFromAny(iv, parts[1])
				if err != nil {
					return nil, err
				}
			}
			switch ivv := iv.(type) {
			case []any:
				result = append(result, ivv...)
			case Indexed:
				for j := 0; j < ivv.Len(); j++ {
					result = append(result, ivv.At(j))
				}
			default:
				result = append(result, iv)
			}
		}
		return result, nil
	}

	i, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid index %q: %w", parts[0], err)
	}
	if i < 0 || i >= vv.Len() {
		return nil, fmt.Errorf("index %d out of range", i)
	}
	if len(parts) == 1 {
		return vv.At(i), nil
	}

	return ExtractPathFromAny(vv.At(i), parts[1])
}

type sliceIndexed []any

func (s sliceIndexed) Len() int     { return len(s) }
func (s sliceIndexed) At(i int) any { return s[i] }
