package parsec

import "sync"

// ambientContext holds the process-wide stacks for the ignore-parser and
// the active cache, mutated only through scoped acquire/release (Ignore,
// CacheSize). Per spec.md §5 these are documented as thread-local in
// intent: guard with a mutex for safe sequential reuse across goroutines,
// but nesting or mutating scopes concurrently from multiple goroutines is
// undefined, exactly as spec.md §5 allows.
type ambientContext struct {
	mu          sync.Mutex
	ignoreStack []*Parser
	cacheStack  []*Cache
}

var globalContext ambientContext

// Ignore pushes an ignore-parser onto the ambient context for the duration
// of the returned restore function's lifetime. Every seq/many/sepby/
// leftassoc constructed while the scope is open weaves this parser between
// its children (spec.md §4.5). When more than one parser is given, the
// ignore-parser is either(parsers...) of them. The ignore parser must be
// failure-tolerant in use: a non-match passes the state through unchanged
// rather than failing the surrounding combinator.
//
//	restore := parsec.Ignore(whitespace)
//	defer restore()
func Ignore(parsers ...*Parser) (restore func()) {
	var ig *Parser
	if len(parsers) == 1 {
		ig = parsers[0]
	} else {
		ig = Either(parsers...)
	}

	globalContext.mu.Lock()
	globalContext.ignoreStack = append(globalContext.ignoreStack, ig)
	globalContext.mu.Unlock()

	return func() {
		globalContext.mu.Lock()
		n := len(globalContext.ignoreStack)
		if n > 0 {
			globalContext.ignoreStack = globalContext.ignoreStack[:n-1]
		}
		globalContext.mu.Unlock()
	}
}

// currentIgnore captures the ignore-parser active at construction time
// (spec.md: "a combinator constructed outside an ignore(...) scope uses a
// no-op ignore" — so the scope is resolved once, at build time, not at
// every parse call).
func currentIgnore() *Parser {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	n := len(globalContext.ignoreStack)
	if n == 0 {
		return nil
	}
	return globalContext.ignoreStack[n-1]
}

// ignoreFn builds the failure-tolerant stepping function woven between
// combinator children: it applies ig, keeps only the position advance, and
// passes the state through unchanged if ig fails to match.
func ignoreFn(ig *Parser) parseFunc {
	if ig == nil {
		return func(st State, _ string) (State, error) { return st, nil }
	}
	return func(st State, input string) (State, error) {
		next, err := ig.fn(st, input)
		if err != nil {
			return st, nil
		}
		return State{Value: st.Value, Tag: st.Tag, Position: next.Position}, nil
	}
}

func activeCache() *Cache {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	n := len(globalContext.cacheStack)
	if n == 0 {
		return nil
	}
	return globalContext.cacheStack[n-1]
}

func pushCache(c *Cache) {
	globalContext.mu.Lock()
	globalContext.cacheStack = append(globalContext.cacheStack, c)
	globalContext.mu.Unlock()
}

func popCache() {
	globalContext.mu.Lock()
	n := len(globalContext.cacheStack)
	if n > 0 {
		globalContext.cacheStack = globalContext.cacheStack[:n-1]
	}
	globalContext.mu.Unlock()
}
