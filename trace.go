package parsec

import (
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/alecthomas/repr"
)

// TraceHook is the collaborator contract spec.md §4.6 requires: an external
// tool (a debugger, a visualizer — both out of scope for this module) may
// observe, and optionally short-circuit, a single parser call. proceed runs
// the wrapped parser and must be called at most once; a hook that never
// calls it must return its own (state, error) pair instead.
type TraceHook func(p *Parser, input string, before State, proceed func() (State, error)) (State, error)

type traceState struct {
	mu     sync.Mutex
	active bool
	file   string
	hook   TraceHook
	events []TraceEvent
}

var theTrace traceState

// TraceEvent is one recorded parser call, captured by the built-in DumpHook.
type TraceEvent struct {
	Parser string
	Before State
	After  State
	Err    error
}

// Trace opens a tracing scope: every Parser constructed from the same
// source file as the caller of Trace, while the scope is open, is wrapped
// by the currently registered TraceHook (DumpHook by default). This
// mirrors the source's stack-inspection mechanism for deciding which
// construction sites to instrument (spec.md §4.6).
//
//	restore := parsec.Trace()
//	defer restore()
func Trace() (restore func()) {
	_, file, _, _ := runtime.Caller(1)

	theTrace.mu.Lock()
	wasActive, oldFile, oldHook, oldEvents := theTrace.active, theTrace.file, theTrace.hook, theTrace.events
	theTrace.active = true
	theTrace.file = file
	if theTrace.hook == nil {
		theTrace.hook = DumpHook
	}
	theTrace.events = nil
	theTrace.mu.Unlock()

	return func() {
		theTrace.mu.Lock()
		theTrace.active, theTrace.file, theTrace.hook, theTrace.events = wasActive, oldFile, oldHook, oldEvents
		theTrace.mu.Unlock()
	}
}

// RegisterHook installs the TraceHook used by the currently open Trace
// scope, replacing DumpHook. It has no effect outside an open scope.
func RegisterHook(hook TraceHook) {
	theTrace.mu.Lock()
	defer theTrace.mu.Unlock()
	if !theTrace.active {
		return
	}
	theTrace.hook = hook
}

// Events returns the trace events recorded by DumpHook since the innermost
// open Trace scope opened. Closing a scope restores the events that were
// recorded before it opened.
func Events() []TraceEvent {
	theTrace.mu.Lock()
	defer theTrace.mu.Unlock()
	return append([]TraceEvent(nil), theTrace.events...)
}

// DumpHook is the default TraceHook: it records the call as a TraceEvent
// and lets the parser run unmodified. DumpTraceTo renders the recorded
// events; this is the module's ambient "logging" for the trace subsystem,
// not the out-of-scope interactive visualizer itself (spec.md §1).
func DumpHook(p *Parser, input string, before State, proceed func() (State, error)) (State, error) {
	after, err := proceed()

	theTrace.mu.Lock()
	theTrace.events = append(theTrace.events, TraceEvent{Parser: p.name, Before: before, After: after, Err: err})
	theTrace.mu.Unlock()

	return after, err
}

// DumpTraceTo writes a human-readable rendering of the recorded trace
// events, one per line, in call order.
func DumpTraceTo(w io.Writer, events []TraceEvent) {
	for _, e := range events {
		if e.Err != nil {
			fmt.Fprintf(w, "%s @ %d -> error: %v\n", e.Parser, e.Before.Position, e.Err)
			continue
		}
		fmt.Fprintf(w, "%s @ %d -> %s @ %d\n", e.Parser, e.Before.Position, repr.String(e.After.Value), e.After.Position)
	}
}

// wrapTrace wraps fn with the active TraceHook if a Trace scope is open and
// p was constructed from a call stack that passes through the scope's
// source file (the exact mechanism spec.md §4.6 describes: the hook only
// instruments construction sites matching the scope's file).
func wrapTrace(p *Parser, fn parseFunc) parseFunc {
	theTrace.mu.Lock()
	active, file := theTrace.active, theTrace.file
	theTrace.mu.Unlock()

	if !active || !callStackContains(file) {
		return fn
	}

	return func(st State, input string) (State, error) {
		theTrace.mu.Lock()
		hook := theTrace.hook
		theTrace.mu.Unlock()
		if hook == nil {
			return fn(st, input)
		}
		return hook(p, input, st, func() (State, error) { return fn(st, input) })
	}
}

func callStackContains(file string) bool {
	if file == "" {
		return false
	}
	for i := 2; i < 32; i++ {
		_, f, _, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if f == file {
			return true
		}
	}
	return false
}
