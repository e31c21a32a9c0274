package observation

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var evmChains = map[string]struct{}{
	"ethereum": {},
	"binance":  {},
}

// IsEVMChain reports whether the chain name is an EVM chain.
func IsEVMChain(chain string) bool {
	_, ok := evmChains[strings.ToLower(strings.TrimSpace(chain))]
	return ok
}

// NormalizeTargetAddress returns the address in the form the target chain
// expects. EVM addresses are checksummed; other chains pass through.
func NormalizeTargetAddress(chain, address string) (string, bool) {
	if !IsEVMChain(chain) {
		return address, true
	}
	if !common.IsHexAddress(address) {
		return "", false
	}
	return common.HexToAddress(address).Hex(), true
}
