package parsec

import "math"

// maxRepeat stands in for spec.md's unbounded max (Python's float('inf')).
const maxRepeat = math.MaxInt

func (p *Parser) overrideFn(key string) (func(*Parser) *Parser, bool) {
	if p.overrides == nil {
		return nil, false
	}
	fn, ok := p.overrides[key]
	if !ok {
		return nil, false
	}
	return fn.(func(*Parser) *Parser), true
}

// Then is seq(p, other): `a + b` in spec.md's operator table. A seq built
// from Then on an existing Seq-parser appends rather than nests, per the
// per-instance override design note (spec.md §9).
func (p *Parser) Then(other *Parser) *Parser {
	if fn, ok := p.overrideFn("Then"); ok {
		return fn(other)
	}
	return Seq(p, other)
}

// Or is either(p, other): `a | b`.
func (p *Parser) Or(other *Parser) *Parser {
	if fn, ok := p.overrideFn("Or"); ok {
		return fn(other)
	}
	return Either(p, other)
}

// SkipLeft discards p's result, keeping other's: `a >> b`.
func (p *Parser) SkipLeft(other *Parser) *Parser {
	if fn, ok := p.overrideFn("SkipLeft"); ok {
		return fn(other)
	}
	return seqBuild([]*Parser{Discard(p), other}, nil, true)
}

// SkipRight discards other's result, keeping p's: `a << b`.
func (p *Parser) SkipRight(other *Parser) *Parser {
	if fn, ok := p.overrideFn("SkipRight"); ok {
		return fn(other)
	}
	return seqBuild([]*Parser{p, Discard(other)}, nil, true)
}

// Tag is tag(p, t): `a == t`.
func (p *Parser) Tag(t any) *Parser {
	return Tag(p, t)
}

// Discard is discard(p).
func (p *Parser) Discard() *Parser {
	return Discard(p)
}

// Concat is concat(p, other).
func (p *Parser) Concat(other *Parser) *Parser {
	return Concat(p, other)
}

// Many is many(p, min, max): `a[m:n]`.
func (p *Parser) Many(min, max int) *Parser {
	return Many(p, min, max)
}

// Repeat is many(p, n, n): `a[n]`.
func (p *Parser) Repeat(n int) *Parser {
	return Many(p, n, n)
}

// SepBy is sepby(p, sep, 0, inf): `a.sepby(s)`.
func (p *Parser) SepBy(sep *Parser) *Parser {
	return SepBy(p, sep, 0, maxRepeat)
}

// SepByRange is sepby(p, sep, min, max), for callers that need explicit
// bounds rather than the unbounded default SepBy uses.
func (p *Parser) SepByRange(sep *Parser, min, max int) *Parser {
	return SepBy(p, sep, min, max)
}

// LeftAssoc is `a[p]` / `a[p, q, ...]`: leftassoc(p, tail, 0, inf), where
// tail is tails[0] alone, or either(tails...) when more than one is given.
func (p *Parser) LeftAssoc(tails ...*Parser) *Parser {
	var tail *Parser
	if len(tails) == 1 {
		tail = tails[0]
	} else {
		tail = Either(tails...)
	}
	return LeftAssoc(p, tail, 0, maxRepeat)
}

// LeftAssocRange is LeftAssoc with explicit min/max bounds.
func (p *Parser) LeftAssocRange(tail *Parser, min, max int) *Parser {
	return LeftAssoc(p, tail, min, max)
}

// Ahead is lookahead(p, other).
func (p *Parser) Ahead(other *Parser) *Parser {
	return Lookahead(p, other)
}

// ErrorMessage is error_message(p, msg).
func (p *Parser) ErrorMessage(msg string) *Parser {
	return ErrorMessage(p, msg)
}

// Map is map(p, f).
func (p *Parser) Map(f func(any) any) *Parser {
	return Map(p, f)
}
