package parsec

// TokenStream is a pre-lexed sequence of result triples, the input shape
// Token parses over (spec.md §9: "the token primitive for token-stream
// parsing over a pre-lexed sequence"). It is a separate, minimal mechanism
// from the string-based Parser algebra above — the arithmetic grammar this
// module ships never needs it, matching spec.md's own note that it "exists
// in the source but is unused by the example grammar".
type TokenStream []State

// TokenParser matches one token from a TokenStream against a tag.
type TokenParser struct {
	matchTag any
}

// Token builds a TokenParser: compare the token's own Tag against matchTag
// first; if the token carries no matching tag, fall back to comparing its
// Value against matchTag.
func Token(matchTag any) *TokenParser {
	return &TokenParser{matchTag: matchTag}
}

// Parse matches a single token at position from tokens.
func (t *TokenParser) Parse(tokens TokenStream, position int) (State, error) {
	if position >= len(tokens) {
		return State{}, newParseError(t.matchTag, position+1)
	}
	tok := tokens[position]
	if tok.Tag != nil && tok.Tag == t.matchTag {
		return State{Value: tok, Tag: nil, Position: position + 1}, nil
	}
	if tok.Value == t.matchTag {
		return State{Value: tok, Tag: nil, Position: position + 1}, nil
	}
	return State{}, newParseError(t.matchTag, position+1)
}
