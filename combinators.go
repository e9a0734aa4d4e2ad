package parsec

import "errors"

// isDiscarded reports whether v is the Discarded sentinel.
func isDiscarded(v any) bool {
	_, ok := v.(discarded)
	return ok
}

// recoverable reports whether err is an ordinary parse failure (one either,
// many, sepby and leftassoc may swallow and retry around) as opposed to a
// programmer error such as ErrUnresolvedRecursion, which must always
// propagate untouched (spec.md §7).
func recoverable(err error) bool {
	return errors.Is(err, ErrNotMatch)
}

// seqBuild is the shared engine behind Seq and the fluent Then/SkipLeft/
// SkipRight overrides: it runs parsers in order, threading state and
// weaving the active ignore-parser before each child and once after the
// last (spec.md §4.2, §4.5).
func seqBuild(parsers []*Parser, capture *int, autoCapture bool) *Parser {
	ps := append([]*Parser(nil), parsers...)
	ig := ignoreFn(currentIgnore())

	p := newParser("seq", func(st State, input string) (State, error) {
		var result []*State

		cur, _ := ig(st, input)

		for _, child := range ps {
			next, err := child.fn(cur, input)
			if err != nil {
				return State{}, err
			}
			cur = next
			if !isDiscarded(cur.Value) {
				saved := cur
				result = append(result, &saved)
			}
			cur, _ = ig(cur, input)
		}

		if autoCapture && len(result) == 1 {
			return State{Value: result[0].Value, Tag: result[0].Tag, Position: cur.Position}, nil
		}

		if capture != nil {
			idx := *capture
			return State{Value: result[idx].Value, Tag: result[idx].Tag, Position: cur.Position}, nil
		}

		return State{Value: result, Tag: nil, Position: cur.Position}, nil
	})
	p.isSeq = true

	p.override("Then", func(other *Parser) *Parser {
		return seqBuild(append(append([]*Parser{}, ps...), other), nil, autoCapture)
	})
	p.override("SkipLeft", func(other *Parser) *Parser {
		if len(ps) == 0 {
			return seqBuild([]*Parser{other}, nil, true)
		}
		last := ps[len(ps)-1]
		init := append([]*Parser{}, ps[:len(ps)-1]...)
		return seqBuild(append(append(init, Discard(last)), other), nil, true)
	})
	p.override("SkipRight", func(other *Parser) *Parser {
		return seqBuild(append(append([]*Parser{}, ps...), Discard(other)), nil, true)
	})

	return p
}

// Seq runs parsers in order, collecting each non-Discarded child result
// into an ordered list; the final position comes from the last child (and
// any trailing ignore). Fails at the first child that fails.
func Seq(parsers ...*Parser) *Parser {
	return seqBuild(parsers, nil, false)
}

// SeqCapture is Seq, but the result becomes the (value, tag) of the
// index-th surviving (non-Discarded) child result, with the overall final
// position.
func SeqCapture(index int, parsers ...*Parser) *Parser {
	return seqBuild(parsers, &index, false)
}

// Either tries parsers in listed order from the same starting state and
// returns the first success. If every alternative fails, it raises a
// ParseError whose Expected is the ordered list of sub-failures' Expected
// values, at the starting position (spec.md §4.2, §8 "Either left-bias").
func Either(parsers ...*Parser) *Parser {
	ps := append([]*Parser(nil), parsers...)

	p := newParser("either", func(st State, input string) (State, error) {
		var expecteds []any
		for _, child := range ps {
			next, err := child.fn(st, input)
			if err == nil {
				return next, nil
			}
			if !recoverable(err) {
				return State{}, err
			}
			if pe, ok := err.(*ParseError); ok {
				expecteds = append(expecteds, pe.Expected)
			} else {
				expecteds = append(expecteds, err.Error())
			}
		}
		return State{}, newParseError(expecteds, st.Position)
	})

	p.override("Or", func(other *Parser) *Parser {
		return Either(append(append([]*Parser{}, ps...), other)...)
	})

	return p
}

// Many repeats p, applying the ignore-parser before each attempt. It stops
// when p fails or max is reached, succeeding iff the number of non-
// Discarded successes is >= min; otherwise it re-raises the failure that
// ended the loop (or a generic failure if none was attempted).
func Many(p *Parser, min, max int) *Parser {
	ig := ignoreFn(currentIgnore())

	m := newParser("many", func(st State, input string) (State, error) {
		var result []*State
		var lastErr error

		cur, _ := ig(st, input)

		for len(result) < max {
			next, err := p.fn(cur, input)
			if err != nil {
				if !recoverable(err) {
					return State{}, err
				}
				lastErr = err
				break
			}
			cur = next
			if !isDiscarded(cur.Value) {
				saved := cur
				result = append(result, &saved)
			}
			cur, _ = ig(cur, input)
		}

		if len(result) >= min {
			return State{Value: result, Tag: nil, Position: cur.Position}, nil
		}
		if lastErr != nil {
			return State{}, lastErr
		}
		return State{}, newParseError("many", cur.Position)
	})
	m.isSeq = true
	return m
}

// SepBy alternates p then sep then p ... A failed p after a successful sep
// stops the repetition at the last successful p: the trailing separator's
// consumption is not retained in the returned position (spec.md §9's open
// question on trailing-separator rewind, decided in SPEC_FULL.md). The
// result is the ordered list of p's results; separators are not retained.
func SepBy(p, sep *Parser, min, max int) *Parser {
	ig := ignoreFn(currentIgnore())

	return newParser("sepby", func(st State, input string) (State, error) {
		var result []*State
		var lastErr error

		cur, _ := ig(st, input)
		committed := cur

		for len(result) < max {
			next, err := p.fn(cur, input)
			if err != nil {
				if !recoverable(err) {
					return State{}, err
				}
				lastErr = err
				break
			}
			cur = next
			saved := cur
			result = append(result, &saved)
			cur, _ = ig(cur, input)
			committed = cur

			sepNext, err := sep.fn(cur, input)
			if err != nil {
				if !recoverable(err) {
					return State{}, err
				}
				lastErr = err
				break
			}
			cur, _ = ig(sepNext, input)
		}

		if len(result) >= min {
			return State{Value: result, Tag: nil, Position: committed.Position}, nil
		}
		if lastErr != nil {
			return State{}, lastErr
		}
		return State{}, newParseError("sepby", committed.Position)
	})
}

// LeftAssoc parses start once, then repeats tail up to max times, rebuilding
// the accumulator as a left-leaning binary tree: each non-Discarded tail
// result t turns the accumulator acc into ([acc, t], t.Tag, t.Position).
// Succeeds iff the number of tail applications is >= min. If min is
// satisfied, a final tail failure never surfaces — there is no unbound
// "error" hazard the way there is in a dynamically typed rewrite (spec.md
// §9's leftassoc open question).
func LeftAssoc(start, tail *Parser, min, max int) *Parser {
	ig := ignoreFn(currentIgnore())

	return newParser("leftassoc", func(st State, input string) (State, error) {
		first, _ := ig(st, input)
		acc, err := start.fn(first, input)
		if err != nil {
			return State{}, err
		}

		var lastErr error
		n := 0
		for n < max {
			ignored, _ := ig(acc, input)
			t, err := tail.fn(ignored, input)
			if err != nil {
				if !recoverable(err) {
					return State{}, err
				}
				lastErr = err
				break
			}
			if isDiscarded(t.Value) {
				if t.Position == ignored.Position {
					break
				}
				acc = State{Value: acc.Value, Tag: acc.Tag, Position: t.Position}
				continue
			}
			prev := acc
			acc = State{Value: []*State{&prev, &t}, Tag: t.Tag, Position: t.Position}
			n++
		}

		final, _ := ig(acc, input)
		if n >= min {
			return final, nil
		}
		if lastErr != nil {
			return State{}, lastErr
		}
		return State{}, newParseError("leftassoc", final.Position)
	})
}

// Lookahead runs p1 normally, then runs p2 as a zero-width assertion
// starting from p1's end position. The state returned is p1's: p2's
// position advance is discarded. Fails if either fails. No ignore-parser is
// woven in (spec.md §4.5 lists only seq/many/sepby/leftassoc).
func Lookahead(p1, p2 *Parser) *Parser {
	return newParser("lookahead", func(st State, input string) (State, error) {
		next, err := p1.fn(st, input)
		if err != nil {
			return State{}, err
		}
		if _, err := p2.fn(next, input); err != nil {
			return State{}, err
		}
		return next, nil
	})
}

// Map applies f to p's result value; tag and position are preserved.
func Map(p *Parser, f func(any) any) *Parser {
	return newParser("map", func(st State, input string) (State, error) {
		next, err := p.fn(st, input)
		if err != nil {
			return State{}, err
		}
		return State{Value: f(next.Value), Tag: next.Tag, Position: next.Position}, nil
	})
}

// Tag attaches newTag to p's result. If p's result is untagged, the tag
// slot is simply set. If it already carries a tag, the entire triple is
// wrapped as the Value of a new, outer-tagged triple — this is the
// discriminant mechanism tree consumers dispatch on (spec.md §4.2).
func Tag(p *Parser, newTag any) *Parser {
	return newParser("tag", func(st State, input string) (State, error) {
		next, err := p.fn(st, input)
		if err != nil {
			return State{}, err
		}
		if next.Tag == nil {
			return State{Value: next.Value, Tag: newTag, Position: next.Position}, nil
		}
		inner := next
		return State{Value: &inner, Tag: newTag, Position: next.Position}, nil
	})
}

// Discard runs p for its position effect only; the result's Value becomes
// Discarded while its Tag is preserved (matching the reference
// implementation's behavior, which the Seq/Many/SepBy/LeftAssoc discard
// check only inspects Value for).
func Discard(p *Parser) *Parser {
	return newParser("discard("+p.name+")", func(st State, input string) (State, error) {
		next, err := p.fn(st, input)
		if err != nil {
			return State{}, err
		}
		return State{Value: Discarded, Tag: next.Tag, Position: next.Position}, nil
	})
}

// Concat behaves like Seq, except children built by Seq, Many or Concat
// (sequence-shaped) have their result lists flattened into the output list instead
// of nested as a single composite element. Concat does not weave in the
// ignore-parser (spec.md §4.2, §4.5).
func Concat(parsers ...*Parser) *Parser {
	ps := append([]*Parser(nil), parsers...)

	p := newParser("concat", func(st State, input string) (State, error) {
		var result []*State
		cur := st
		for _, child := range ps {
			next, err := child.fn(cur, input)
			if err != nil {
				return State{}, err
			}
			cur = next
			if !isDiscarded(cur.Value) {
				if child.isSeq {
					if list, ok := cur.Value.([]*State); ok {
						result = append(result, list...)
						continue
					}
				}
				saved := cur
				result = append(result, &saved)
			}
		}
		return State{Value: result, Tag: nil, Position: cur.Position}, nil
	})
	p.isSeq = true
	return p
}

// ErrorMessage transparently forwards p's result; on failure, it attaches
// msg to the surfaced ParseError without changing success behavior.
func ErrorMessage(p *Parser, msg string) *Parser {
	return newParser(p.name, func(st State, input string) (State, error) {
		next, err := p.fn(st, input)
		if err != nil {
			if pe, ok := err.(*ParseError); ok {
				wrapped := *pe
				wrapped.Message = msg
				return State{}, &wrapped
			}
			return State{}, err
		}
		return next, nil
	})
}
