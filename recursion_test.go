package parsec

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestRecursionResolvesMutualGrammar(t *testing.T) {
	rec := NewRecursion()

	// expr := '(' expr ')' | digit
	digit := Regex(`\d`)
	paren := Lit("(").SkipLeft(rec.Ref("expr")).SkipRight(Lit(")"))
	expr := Either(paren, digit)
	rec.Set("expr", expr)

	st, err := rec.Ref("expr").Parse("((5))")
	assert.NoError(t, err)
	assert.Equal(t, "5", st.Value)
	assert.Equal(t, 5, st.Position)
}

func TestRecursionUnresolvedRefFails(t *testing.T) {
	rec := NewRecursion()
	_, err := rec.Ref("missing").Parse("anything")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvedRecursion))
}

func TestRecursionSetAfterFirstUseStillResolves(t *testing.T) {
	rec := NewRecursion()
	ref := rec.Ref("later")
	rec.Set("later", Lit("x"))

	st, err := ref.Parse("x")
	assert.NoError(t, err)
	assert.Equal(t, "x", st.Value)
}
