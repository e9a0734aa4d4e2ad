package parsec

import (
	"fmt"
	"regexp"
	"strings"
)

// eofMarker is the value EOF succeeds with; a distinct type so it can never
// be mistaken for ordinary parsed text.
type eofMarker struct{}

func (eofMarker) String() string { return "<eof>" }

// Regex builds a parser that performs an anchored match of pattern at the
// current position. The pattern is compiled once, as "^(?:pattern)", and
// matched against input[pos:], so the match is always pinned to the current
// offset. On success it returns the matched text; on failure the
// compiled pattern's source is surfaced verbatim as Expected (spec.md §9:
// "acceptable").
func Regex(pattern string) *Parser {
	re := regexp.MustCompile("^(?:" + pattern + ")")
	name := fmt.Sprintf("regex(%q)", pattern)

	return newParser(name, func(st State, input string) (State, error) {
		pos := st.Position
		loc := re.FindStringIndex(input[pos:])
		if loc == nil {
			return State{}, newParseError(pattern, pos)
		}
		matched := input[pos : pos+loc[1]]
		return State{Value: matched, Tag: nil, Position: pos + loc[1]}, nil
	})
}

// Lit builds a parser that succeeds only if input starting at the current
// position equals text exactly — it never skips ahead looking for a match.
func Lit(text string) *Parser {
	name := fmt.Sprintf("lit(%q)", text)

	return newParser(name, func(st State, input string) (State, error) {
		pos := st.Position
		end := pos + len(text)
		if end > len(input) || !strings.HasPrefix(input[pos:], text) {
			return State{}, newParseError(name, pos)
		}
		return State{Value: text, Tag: nil, Position: end}, nil
	})
}

// EOF succeeds, consuming nothing, iff the current position is at or past
// the end of input.
var EOF = newParser("eof", func(st State, input string) (State, error) {
	if st.Position >= len(input) {
		return State{Value: eofMarker{}, Tag: nil, Position: st.Position}, nil
	}
	return State{}, newParseError("eof", st.Position)
})

// Success always succeeds without consuming input, producing (value, tag).
func Success(value any, tag any) *Parser {
	return newParser("success", func(st State, _ string) (State, error) {
		return State{Value: value, Tag: tag, Position: st.Position}, nil
	})
}

// Fail always fails with the given expected descriptor.
func Fail(expected any) *Parser {
	return newParser(fmt.Sprintf("fail(%v)", expected), func(st State, _ string) (State, error) {
		return State{}, newParseError(expected, st.Position)
	})
}
