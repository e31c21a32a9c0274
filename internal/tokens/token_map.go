package tokens

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TokenMapFile is the on-disk token map. Each token entry lists the token's
// identifiers per chain; IDKeys names the identifier used to match a chain.
//
//	idKeys:
//	  ergo: tokenId
//	  cardano: fingerprint
//	tokens:
//	  - ergo: {tokenId: "f6a6..."}
//	    cardano: {fingerprint: "asset1...", policyId: "...", assetName: "..."}
type TokenMapFile struct {
	IDKeys map[string]string              `yaml:"idKeys" json:"idKeys"`
	Tokens []map[string]map[string]string `yaml:"tokens" json:"tokens"`
}

// TokenMap is a table-backed Resolver.
type TokenMap struct {
	idKeys map[string]string
	tokens []map[string]string
	index  map[string]map[string]int
}

// LoadTokenMap reads a YAML (or JSON) token map file.
func LoadTokenMap(path string) (*TokenMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token map: %w", err)
	}
	var file TokenMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse token map: %w", err)
	}
	return NewTokenMap(file)
}

// NewTokenMap indexes a token map. Chain names are case-insensitive.
func NewTokenMap(file TokenMapFile) (*TokenMap, error) {
	m := &TokenMap{
		idKeys: make(map[string]string, len(file.IDKeys)),
		tokens: make([]map[string]string, 0, len(file.Tokens)),
		index:  make(map[string]map[string]int),
	}
	for chain, key := range file.IDKeys {
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("empty id key for chain %s", chain)
		}
		m.idKeys[chainKey(chain)] = key
	}

	for i, entry := range file.Tokens {
		ids := make(map[string]string, len(entry))
		for chain, fields := range entry {
			chain = chainKey(chain)
			key, ok := m.idKeys[chain]
			if !ok {
				return nil, fmt.Errorf("token %d: chain %s has no id key", i, chain)
			}
			id := fields[key]
			if id == "" {
				return nil, fmt.Errorf("token %d: chain %s is missing %s", i, chain, key)
			}
			if _, dup := m.index[chain][id]; dup {
				return nil, fmt.Errorf("token %d: duplicate %s token %s", i, chain, id)
			}
			if m.index[chain] == nil {
				m.index[chain] = make(map[string]int)
			}
			m.index[chain][id] = len(m.tokens)
			ids[chain] = id
		}
		m.tokens = append(m.tokens, ids)
	}
	return m, nil
}

// Resolve returns the target chain id of the token known on sourceChain as
// sourceTokenID.
func (m *TokenMap) Resolve(sourceChain, sourceTokenID, targetChain string) (string, bool) {
	if m == nil {
		return "", false
	}
	pos, ok := m.index[chainKey(sourceChain)][sourceTokenID]
	if !ok {
		return "", false
	}
	id, ok := m.tokens[pos][chainKey(targetChain)]
	return id, ok
}

// Len returns the number of tokens in the map.
func (m *TokenMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.tokens)
}

func chainKey(chain string) string {
	return strings.ToLower(strings.TrimSpace(chain))
}
