package induction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAtoms(t *testing.T) {
	req := require.New(t)

	atoms, err := ParseAtoms(`flies(tweety) raining edge(a,-3) said(bob,"hello world") at(X,Y) pos(p(1,2))`)
	req.NoError(err)
	req.Len(atoms, 6)
	req.Equal("flies(tweety)", atoms[0].String())
	req.Equal("raining", atoms[1].String())
	req.Equal(0, atoms[1].Arity())
	req.Equal([]Term{Const("a"), Const("-3")}, atoms[2].Terms)
	req.Equal(Const(`"hello world"`), atoms[3].Terms[1])
	req.Equal([]Term{Variable("X"), Variable("Y")}, atoms[4].Terms)
	req.False(atoms[4].IsGround())
	req.Equal(Const("p(1,2)"), atoms[5].Terms[0])
	req.Equal(1, atoms[0].Weight)

	atoms, err = ParseAtoms("   ")
	req.NoError(err)
	req.Nil(atoms)
}

func TestParseAtom(t *testing.T) {
	req := require.New(t)

	a, err := ParseAtom("bird(tweety).")
	req.NoError(err)
	req.Equal(NewAtom("bird", Const("tweety")), a)

	_, err = ParseAtom("bird(tweety) bird(opus)")
	req.True(errors.Is(err, ErrIllFormed))

	_, err = ParseAtom("")
	req.True(errors.Is(err, ErrIllFormed))

	_, err = ParseAtom("bird(")
	req.True(errors.Is(err, ErrIllFormed))
}

func TestParseScheme(t *testing.T) {
	req := require.New(t)

	s, err := ParseScheme("not penguin(+bird)")
	req.NoError(err)
	req.True(s.Negated)
	req.Equal("penguin", s.Predicate)
	req.Equal([]SchemeArg{{Polarity: Input, Type: "bird"}}, s.Args)
	req.Equal("not penguin(+bird)", s.String())

	s, err = ParseScheme(`edge(+node,-node,#weight,red,3)`)
	req.NoError(err)
	req.False(s.Negated)
	req.Equal([]SchemeArg{
		{Polarity: Input, Type: "node"},
		{Polarity: Output, Type: "node"},
		{Polarity: Constant, Type: "weight"},
		{Polarity: Constant, Value: "red"},
		{Polarity: Constant, Value: "3"},
	}, s.Args)
	req.Equal("edge(+node,-node,#weight,red,3)", s.String())
	req.Equal([]string{"node", "weight"}, s.Types())
	req.Equal(Signature{Functor: "edge", Arity: 5}, s.Signature())

	_, err = ParseScheme("edge(+node,")
	req.True(errors.Is(err, ErrIllFormed))
}

func TestParseSignature(t *testing.T) {
	req := require.New(t)

	sig, err := ParseSignature("flies/1")
	req.NoError(err)
	req.Equal(Signature{Functor: "flies", Arity: 1}, sig)
	req.Equal("flies/1", sig.String())

	for _, s := range []string{"flies", "/1", "flies/x", "flies/-1"} {
		_, err = ParseSignature(s)
		req.True(errors.Is(err, ErrIllFormed), s)
	}
}
