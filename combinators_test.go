package parsec

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestSeqCollectsNonDiscarded(t *testing.T) {
	p := Seq(Lit("a"), Discard(Lit("b")), Lit("c"))
	st, err := p.Parse("abc")
	assert.NoError(t, err)
	values := st.Value.([]*State)
	assert.Equal(t, 2, len(values))
	assert.Equal(t, "a", values[0].Value)
	assert.Equal(t, "c", values[1].Value)
}

func TestSeqSingleSurvivorAutoCaptures(t *testing.T) {
	p := Lit("a").SkipRight(Lit("b"))
	st, err := p.Parse("ab")
	assert.NoError(t, err)
	assert.Equal(t, "a", st.Value)
}

func TestSeqFailsAtFirstFailingChild(t *testing.T) {
	_, err := Seq(Lit("a"), Lit("b")).Parse("ax")
	assert.Error(t, err)
}

func TestEitherLeftBias(t *testing.T) {
	p := Either(Lit("a"), Lit("ab"))
	st, err := p.Parse("ab")
	assert.NoError(t, err)
	assert.Equal(t, "a", st.Value)
	assert.Equal(t, 1, st.Position)
}

func TestEitherAggregatesFailures(t *testing.T) {
	_, err := Either(Lit("a"), Lit("b")).Parse("c")
	assert.Error(t, err)
	var pe *ParseError
	assert.True(t, asParseError(err, &pe))
	expected := pe.Expected.([]any)
	assert.Equal(t, 2, len(expected))
}

func TestManyBounds(t *testing.T) {
	st, err := Many(Lit("a"), 2, 4).Parse("aaa")
	assert.NoError(t, err)
	values := st.Value.([]*State)
	assert.Equal(t, 3, len(values))

	_, err = Many(Lit("a"), 2, 4).Parse("a")
	assert.Error(t, err)
}

func TestManyStopsAtMax(t *testing.T) {
	st, err := Many(Lit("a"), 0, 2).Parse("aaaa")
	assert.NoError(t, err)
	assert.Equal(t, 2, st.Position)
}

func TestSepByBasic(t *testing.T) {
	st, err := SepBy(Regex(`\d+`), Lit(","), 1, maxRepeat).Parse("1,2,3")
	assert.NoError(t, err)
	values := st.Value.([]*State)
	assert.Equal(t, 3, len(values))
	assert.Equal(t, 5, st.Position)
}

func TestSepByTrailingSeparatorDoesNotAdvancePosition(t *testing.T) {
	st, err := SepBy(Regex(`\d+`), Lit(","), 1, maxRepeat).Parse("1,2,")
	assert.NoError(t, err)
	values := st.Value.([]*State)
	assert.Equal(t, 2, len(values))
	assert.Equal(t, 3, st.Position)
}

func TestLeftAssocBuildsLeftLeaningTree(t *testing.T) {
	num := Regex(`\d+`).Tag("num")
	plus := Lit("+").SkipLeft(num).Tag("add")
	p := num.LeftAssoc(plus)

	st, err := p.Parse("1+2+3")
	assert.NoError(t, err)
	assert.Equal(t, "add", st.Tag)

	top := st.Value.([]*State)
	assert.Equal(t, "add", top[1].Tag)

	left := top[0].Value.([]*State)
	assert.Equal(t, "num", left[0].Tag)
	assert.Equal(t, "1", left[0].Value)
}

func TestLeftAssocMinNotSatisfied(t *testing.T) {
	num := Regex(`\d+`)
	plus := Lit("+").SkipLeft(num)
	_, err := LeftAssoc(num, plus, 1, maxRepeat).Parse("1")
	assert.Error(t, err)
}

func TestLookaheadDoesNotConsumeSecondParser(t *testing.T) {
	p := Lit("a").Ahead(Lit("b"))
	st, err := p.Parse("ab")
	assert.NoError(t, err)
	assert.Equal(t, 1, st.Position)

	_, err = Lit("a").Ahead(Lit("c")).Parse("ab")
	assert.Error(t, err)
}

func TestMapTransformsValue(t *testing.T) {
	p := Map(Regex(`\d+`), func(v any) any { return len(v.(string)) })
	st, err := p.Parse("12345")
	assert.NoError(t, err)
	assert.Equal(t, 5, st.Value)
}

func TestTagOverwritesNilTag(t *testing.T) {
	st, err := Tag(Lit("a"), "t1").Parse("a")
	assert.NoError(t, err)
	assert.Equal(t, "t1", st.Tag)
	assert.Equal(t, "a", st.Value)
}

func TestTagWrapsAlreadyTaggedResult(t *testing.T) {
	inner := Tag(Lit("a"), "inner")
	st, err := Tag(inner, "outer").Parse("a")
	assert.NoError(t, err)
	assert.Equal(t, "outer", st.Tag)
	wrapped := st.Value.(*State)
	assert.Equal(t, "inner", wrapped.Tag)
	assert.Equal(t, "a", wrapped.Value)
}

func TestDiscardKeepsPositionDropsValue(t *testing.T) {
	st, err := Discard(Lit("a")).Parse("a")
	assert.NoError(t, err)
	assert.Equal(t, any(Discarded), st.Value)
	assert.Equal(t, 1, st.Position)
}

func TestConcatFlattensSeqChildren(t *testing.T) {
	p := Concat(Seq(Lit("a"), Lit("b")), Seq(Lit("c"), Lit("d")))
	st, err := p.Parse("abcd")
	assert.NoError(t, err)
	values := st.Value.([]*State)
	assert.Equal(t, 4, len(values))
	assert.Equal(t, "d", values[3].Value)
}

func TestErrorMessageOverridesRenderedText(t *testing.T) {
	_, err := ErrorMessage(Lit("a"), "wanted an 'a'").Parse("b")
	assert.Error(t, err)
	assert.Equal(t, "wanted an 'a'\nat index 0", err.Error())
}

func TestRecursionErrorPropagatesThroughEither(t *testing.T) {
	rec := NewRecursion()
	p := Either(rec.Ref("never"), Lit("a"))
	_, err := p.Parse("a")
	assert.Error(t, err)
	assert.True(t, isUnresolvedRecursion(err))
}

func asParseError(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if !ok {
		return false
	}
	*target = pe
	return true
}

func isUnresolvedRecursion(err error) bool {
	_, ok := err.(*recursionError)
	return ok
}
