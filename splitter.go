package flatkv

import (
	"strings"
)

// splitter splits flat keys on any run of configured delimiter characters.
type splitter struct {
	start  string
	delims string
}

func newSplitter(o Options) (*splitter, error) {
	if _, err := o.Splitter(); err != nil {
		return nil, err
	}

	return &splitter{
		start:  o.StartKey,
		delims: o.Suffix + o.Prefix + o.PrefixList + o.SuffixList,
	}, nil
}

// split left trims the characters of the start key and returns the segments between
// delimiter runs. Leading and trailing runs produce no segment.
func (s *splitter) split(key string) []string {
	key = strings.TrimLeft(key, s.start)

	var (
		segments []string
		from     = -1
	)
	for i, r := range key {
		if strings.ContainsRune(s.delims, r) {
			if from >= 0 {
				segments = append(segments, key[from:i])
				from = -1
			}
			continue
		}
		if from < 0 {
			from = i
		}
	}
	if from >= 0 {
		segments = append(segments, key[from:])
	}

	return segments
}

// SplitKey returns the path segments encoded in a flat key.
func SplitKey(key string, opts ...Option) ([]string, error) {
	s, err := newSplitter(NewOptions(opts...))
	if err != nil {
		return nil, err
	}

	segments := s.split(key)
	if len(segments) == 0 {
		return nil, &KeyError{Key: key, Err: ErrUnresolvableKey}
	}
	return segments, nil
}
