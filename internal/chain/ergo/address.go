package ergo

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// Network is the address network prefix.
type Network byte

const (
	Mainnet Network = 0x00
	Testnet Network = 0x10
)

const (
	addressP2PK byte = 0x01
	addressP2S  byte = 0x03
)

var p2pkPrefix = []byte{0x00, 0x08, 0xcd}

// ParseNetwork maps a network name to its prefix.
func ParseNetwork(name string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mainnet":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	default:
		return 0, fmt.Errorf("unknown ergo network %q", name)
	}
}

// AddressFromErgoTree encodes the address of a serialized ergoTree. A
// single-key tree (0008cd + 33 byte key) becomes a P2PK address, anything
// else a P2S address.
func AddressFromErgoTree(tree string, network Network) (string, error) {
	script, err := hex.DecodeString(tree)
	if err != nil {
		return "", fmt.Errorf("decode ergo tree: %w", err)
	}
	if len(script) == 0 {
		return "", fmt.Errorf("empty ergo tree")
	}

	kind, content := addressP2S, script
	if len(script) == len(p2pkPrefix)+33 && bytes.HasPrefix(script, p2pkPrefix) {
		kind, content = addressP2PK, script[len(p2pkPrefix):]
	}

	body := make([]byte, 0, 1+len(content)+4)
	body = append(body, byte(network)|kind)
	body = append(body, content...)
	checksum := blake2b.Sum256(body)
	body = append(body, checksum[:4]...)
	return base58.Encode(body), nil
}
