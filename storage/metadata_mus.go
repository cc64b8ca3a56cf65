package storage

import (
	"slices"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MetadataMUS encodes metadata maps for the SQLite metadata column. The
// generated map serializer in core follows map iteration order; this one
// does not.
var MetadataMUS = metadataMUS{}

var _ mus.Serializer[map[string]string] = MetadataMUS

// metadataMUS writes map entries in sorted key order so equal maps encode identically.
type metadataMUS struct{}

func (s metadataMUS) Marshal(v map[string]string, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for _, k := range sortedKeys(v) {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(v[k], bs[n:])
	}
	return
}

func (s metadataMUS) Unmarshal(bs []byte) (v map[string]string, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	// Each entry needs at least two length bytes.
	if length < 0 || length*2 > len(bs)-n {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make(map[string]string, length)
	var (
		key, val string
		n1       int
	)
	for range length {
		key, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		val, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v[key] = val
	}
	return
}

func (s metadataMUS) Size(v map[string]string) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for k, val := range v {
		size += ord.String.Size(k) + ord.String.Size(val)
	}
	return
}

func (s metadataMUS) Skip(bs []byte) (n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 {
		return n, ErrTruncatedData
	}
	var n1 int
	for range 2 * length {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
