package tokens

// Resolver maps a source-chain token to its identity on a target chain.
type Resolver interface {
	Resolve(sourceChain, sourceTokenID, targetChain string) (string, bool)
}

// Fixed resolves every token to the same target id. An empty TokenID
// resolves nothing.
type Fixed struct {
	TokenID string
}

func (f Fixed) Resolve(_, _, _ string) (string, bool) {
	if f.TokenID == "" {
		return "", false
	}
	return f.TokenID, true
}
