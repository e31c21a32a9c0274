package observation

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// RequestIDLength is the hex length of a request id.
const RequestIDLength = 2 * blake2b.Size256

// RequestID derives the request id of a bridge request from its source
// transaction id: the blake2b-256 digest of the id's UTF-8 bytes, hex encoded.
func RequestID(sourceTxID string) string {
	sum := blake2b.Sum256([]byte(sourceTxID))
	return hex.EncodeToString(sum[:])
}
