package flatkv

// DefaultMaxDepth is the default nesting limit for both flattening and unflattening.
const DefaultMaxDepth = 512

// Options controls how flat keys are built and parsed.
//
//	.-------------> StartKey
//	|.------------> Prefix
//	||       .----> Suffix only if SuffixEnd is true
//	||       |.---> PrefixList
//	||       || .-> SuffixList only if SuffixListEnd is true
//	||       || |
//	${assokey}[0] => "Foo"
//
// The same options must be used to flatten and unflatten a structure.
type Options struct {
	// Prefix is inserted before each map key.
	Prefix string
	// Suffix is inserted after each map key.
	Suffix string
	// SuffixEnd appends Suffix to map keys holding a leaf.
	SuffixEnd bool
	// PrefixList is inserted before each list index.
	PrefixList string
	// SuffixList is inserted after each list index.
	SuffixList string
	// SuffixListEnd appends SuffixList to list indexes holding a leaf.
	SuffixListEnd bool

	// StartKey is prepended to every flat key on flatten and trimmed on unflatten.
	StartKey string
	// MaxDepth bounds the nesting depth. Zero disables the limit.
	MaxDepth int
	// Strict makes unflatten fail when a leaf stands where a container is expected.
	Strict bool
	// KeepNumericMaps disables rebuilding lists from maps keyed 0..n-1 on unflatten.
	KeepNumericMaps bool
}

// Option configures Options.
type Option func(*Options)

// DefaultOptions returns the default key format.
func DefaultOptions() Options {
	return Options{
		Prefix:        "",
		Suffix:        ".",
		SuffixEnd:     false,
		PrefixList:    "[",
		SuffixList:    "]",
		SuffixListEnd: true,
		MaxDepth:      DefaultMaxDepth,
	}
}

// NewOptions returns the default options with opts applied.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithOptions replaces all settings with o.
func WithOptions(o Options) Option {
	return func(dst *Options) {
		*dst = o
	}
}

// WithPrefix sets the literal inserted before map keys.
func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithSuffix sets the literal inserted after map keys.
func WithSuffix(suffix string) Option {
	return func(o *Options) {
		o.Suffix = suffix
	}
}

// WithSuffixEnd sets whether leaf map keys end with the suffix.
func WithSuffixEnd(end bool) Option {
	return func(o *Options) {
		o.SuffixEnd = end
	}
}

// WithPrefixList sets the literal inserted before list indexes.
func WithPrefixList(prefix string) Option {
	return func(o *Options) {
		o.PrefixList = prefix
	}
}

// WithSuffixList sets the literal inserted after list indexes.
func WithSuffixList(suffix string) Option {
	return func(o *Options) {
		o.SuffixList = suffix
	}
}

// WithSuffixListEnd sets whether leaf list indexes end with the list suffix.
func WithSuffixListEnd(end bool) Option {
	return func(o *Options) {
		o.SuffixListEnd = end
	}
}

// WithStartKey sets the key every flat key starts with.
func WithStartKey(start string) Option {
	return func(o *Options) {
		o.StartKey = start
	}
}

// WithMaxDepth sets the nesting limit.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		o.MaxDepth = depth
	}
}

// WithStrict enables structural conflict detection on unflatten.
func WithStrict(strict bool) Option {
	return func(o *Options) {
		o.Strict = strict
	}
}

// WithKeepNumericMaps keeps maps keyed 0..n-1 as maps on unflatten.
func WithKeepNumericMaps(keep bool) Option {
	return func(o *Options) {
		o.KeepNumericMaps = keep
	}
}

// Splitter returns the canonical delimiter used to split flat keys.
func (o Options) Splitter() (string, error) {
	for _, d := range []string{o.Suffix, o.Prefix, o.PrefixList, o.SuffixList} {
		if d != "" {
			return d, nil
		}
	}
	return "", ErrAmbiguousConfig
}

// framesLists reports whether lists get their own delimiters.
func (o Options) framesLists() bool {
	return o.PrefixList != "" || o.SuffixList != ""
}

// Config is the serializable form of Options. Unset fields keep their defaults.
type Config struct {
	Prefix          *string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix          *string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	SuffixEnd       *bool   `json:"suffix-end,omitempty" yaml:"suffix-end,omitempty"`
	PrefixList      *string `json:"prefix-list,omitempty" yaml:"prefix-list,omitempty"`
	SuffixList      *string `json:"suffix-list,omitempty" yaml:"suffix-list,omitempty"`
	SuffixListEnd   *bool   `json:"suffix-list-end,omitempty" yaml:"suffix-list-end,omitempty"`
	Start           *string `json:"start,omitempty" yaml:"start,omitempty"`
	MaxDepth        *int    `json:"max-depth,omitempty" yaml:"max-depth,omitempty"`
	Strict          *bool   `json:"strict,omitempty" yaml:"strict,omitempty"`
	KeepNumericMaps *bool   `json:"keep-numeric-maps,omitempty" yaml:"keep-numeric-maps,omitempty"`
}

// Options returns the default options overridden by every field set in c.
func (c Config) Options() Options {
	return NewOptions(c.Apply)
}

// Apply implements Option.
func (c Config) Apply(o *Options) {
	setIf(&o.Prefix, c.Prefix)
	setIf(&o.Suffix, c.Suffix)
	setIf(&o.SuffixEnd, c.SuffixEnd)
	setIf(&o.PrefixList, c.PrefixList)
	setIf(&o.SuffixList, c.SuffixList)
	setIf(&o.SuffixListEnd, c.SuffixListEnd)
	setIf(&o.StartKey, c.Start)
	setIf(&o.MaxDepth, c.MaxDepth)
	setIf(&o.Strict, c.Strict)
	setIf(&o.KeepNumericMaps, c.KeepNumericMaps)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
