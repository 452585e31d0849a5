package flatkv

import (
	"errors"
	"fmt"
)

var (
	// ErrAmbiguousConfig is returned when no delimiter is configured to split flat keys with.
	ErrAmbiguousConfig = errors.New("no delimiter configured to split keys")
	// ErrUnresolvableKey is returned when a flat key yields no path segments.
	ErrUnresolvableKey = errors.New("key has no path segments")
	// ErrStructuralConflict is returned in strict mode when a leaf stands where a container is expected.
	ErrStructuralConflict = errors.New("leaf value where a container is expected")
	// ErrMaxDepth is returned when the nesting depth exceeds the configured limit.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
)

// KeyError reports the flat key an error occurred at.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key %q: %v", e.Key, e.Err)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}
