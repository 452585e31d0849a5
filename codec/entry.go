package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ehsanranjbar/flatkv"
	msgpack "github.com/vmihailenco/msgpack/v5"
)

// ErrNotLeaf is returned when encoding a non-empty container as an entry value.
var ErrNotLeaf = errors.New("value is a non-empty container")

// Entry is a flat value together with its position in the flattened document.
type Entry struct {
	Seq   uint64
	Value any
}

type leafKind int8

const (
	kindScalar leafKind = iota
	kindEmptyList
	kindEmptyMap
)

// EntryCodec is a msgpack codec for entries. Empty lists and maps keep their container type,
// integers decode as int64 or uint64 and floats as float64.
type EntryCodec struct{}

var _ Codec[Entry] = EntryCodec{}

// Encode encodes the given entry to bytes.
func (EntryCodec) Encode(e Entry) ([]byte, error) {
	kind, err := kindOf(e.Value)
	if err != nil {
		return nil, err
	}
	value := e.Value
	if kind != kindScalar {
		value = nil
	}

	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)
	var buf bytes.Buffer
	enc.Reset(&buf)

	err = enc.EncodeMulti(e.Seq, int8(kind), value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode decodes the given bytes to an entry.
func (EntryCodec) Decode(bz []byte) (Entry, error) {
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)
	dec.Reset(bytes.NewReader(bz))
	dec.UseLooseInterfaceDecoding(true)

	var (
		e    Entry
		kind int8
	)
	err := dec.DecodeMulti(&e.Seq, &kind, &e.Value)
	if err != nil {
		return e, fmt.Errorf("failed to decode entry: %w", err)
	}

	switch leafKind(kind) {
	case kindScalar:
	case kindEmptyList:
		e.Value = flatkv.List{}
	case kindEmptyMap:
		e.Value = flatkv.NewMap()
	default:
		return e, fmt.Errorf("unknown entry kind %d", kind)
	}

	return e, nil
}

func kindOf(v any) (leafKind, error) {
	switch vv := v.(type) {
	case flatkv.List:
		return emptyOr(len(vv), kindEmptyList)
	case []any:
		return emptyOr(len(vv), kindEmptyList)
	case *flatkv.Map:
		return emptyOr(vv.Len(), kindEmptyMap)
	case map[string]any:
		return emptyOr(len(vv), kindEmptyMap)
	default:
		return kindScalar, nil
	}
}

func emptyOr(n int, kind leafKind) (leafKind, error) {
	if n > 0 {
		return kind, ErrNotLeaf
	}
	return kind, nil
}
