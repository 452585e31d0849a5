package codec

// Codec is an interface for encoding and decoding values.
type Codec[T any] interface {
	Encoder[T]
	Decoder[T]
}

// Encoder is an interface for encoding values.
type Encoder[T any] interface {
	Encode(v T) ([]byte, error)
}

// Decoder is an interface for decoding values.
type Decoder[T any] interface {
	Decode(bz []byte) (T, error)
}

// StringCodec is a codec for strings.
type StringCodec struct{}

// Encode encodes the given string to bytes.
func (StringCodec) Encode(v string) ([]byte, error) {
	return []byte(v), nil
}

// Decode decodes the given bytes to a string.
func (StringCodec) Decode(bz []byte) (string, error) {
	return string(bz), nil
}
