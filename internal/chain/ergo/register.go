package ergo

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

// Type code of Coll[Coll[Byte]] in sigma value serialization.
const typeCollCollByte = 0x1a

var errTruncated = errors.New("truncated register value")

// DecodeCollCollByte decodes a serialized Coll[Coll[Byte]] register value.
// The value is the type code followed by a VLQ item count and VLQ
// length-prefixed byte strings. Trailing bytes are an error.
func DecodeCollCollByte(serialized string) ([][]byte, error) {
	data, err := hex.DecodeString(serialized)
	if err != nil {
		return nil, fmt.Errorf("decode register hex: %w", err)
	}
	if len(data) == 0 {
		return nil, errTruncated
	}
	if data[0] != typeCollCollByte {
		return nil, fmt.Errorf("register type 0x%02x is not Coll[Coll[Byte]]", data[0])
	}
	data = data[1:]

	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, errTruncated
	}
	data = data[n:]
	if count > uint64(len(data)) {
		return nil, errTruncated
	}

	items := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		size, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, errTruncated
		}
		data = data[n:]
		if size > uint64(len(data)) {
			return nil, errTruncated
		}
		items = append(items, data[:size])
		data = data[size:]
	}
	if len(data) != 0 {
		return nil, fmt.Errorf("%d trailing bytes after register value", len(data))
	}
	return items, nil
}
