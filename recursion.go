package parsec

import (
	"strconv"
	"sync"
)

// Recursion is a named-slot registry letting mutually recursive grammars be
// expressed without forward declarations (spec.md §4.4). Reading an
// unassigned name via Ref returns a promised parser that resolves the slot
// lazily, on first use, and caches the resolution locally.
type Recursion struct {
	mu      sync.Mutex
	parsers map[string]*Parser
}

// NewRecursion creates an empty recursion container.
func NewRecursion() *Recursion {
	return &Recursion{parsers: make(map[string]*Parser)}
}

// Set installs p under name, making any promised parser already returned by
// Ref(name) resolve to it. Because *Parser is the only accepted type, the
// source's "assigning a non-parser is an error" is enforced by the Go type
// system rather than at runtime.
func (r *Recursion) Set(name string, p *Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[name] = p
}

// Ref returns a promised parser for name: its function looks up the slot
// on first invocation, caches the resolved function locally, and delegates
// to it on every call thereafter. If the slot is still unassigned when the
// promise is invoked, it raises ErrUnresolvedRecursion — a programmer error
// that either/many/sepby/leftassoc must not catch (spec.md §7).
func (r *Recursion) Ref(name string) *Parser {
	var resolved parseFunc

	return newParser("r."+name, func(st State, input string) (State, error) {
		if resolved == nil {
			r.mu.Lock()
			target, ok := r.parsers[name]
			r.mu.Unlock()
			if !ok {
				return State{}, newUnresolvedRecursionError(name, st.Position)
			}
			resolved = target.fn
		}
		return resolved(st, input)
	})
}

func newUnresolvedRecursionError(name string, position int) error {
	return &recursionError{name: name, position: position}
}

type recursionError struct {
	name     string
	position int
}

func (e *recursionError) Error() string {
	return "parser " + e.name + " promised but never assigned, at index " + strconv.Itoa(e.position)
}

func (e *recursionError) Unwrap() error {
	return ErrUnresolvedRecursion
}
