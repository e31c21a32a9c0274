package ergo

import (
	"encoding/binary"
	"encoding/hex"
)

func hexString(raw []byte) string {
	return hex.EncodeToString(raw)
}

func encodeCollCollByte(items []string) string {
	out := []byte{typeCollCollByte}
	out = binary.AppendUvarint(out, uint64(len(items)))
	for _, item := range items {
		out = binary.AppendUvarint(out, uint64(len(item)))
		out = append(out, item...)
	}
	return hex.EncodeToString(out)
}
