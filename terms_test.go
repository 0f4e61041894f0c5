package induction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAtomBasics(t *testing.T) {
	req := require.New(t)

	a := NewAtom("edge", Variable("X"), Const("b"), Variable("X"), Variable("Y"))
	req.Equal(4, a.Arity())
	req.Equal(Signature{Functor: "edge", Arity: 4}, a.Signature())
	req.False(a.IsGround())
	req.Equal([]Term{Variable("X"), Variable("Y")}, a.Variables())
	req.Equal("edge(X,b,X,Y)", a.String())

	b := a
	b.Weight = 5
	b.Priority = 2
	req.True(a.Equal(b))
	req.Equal(a.Key(), b.Key())

	req.True(NewAtom("raining").IsGround())
	req.Equal("raining", NewAtom("raining").String())
	req.False(NewAtom("p", Const("X")).Equal(NewAtom("p", Variable("X"))))
}

func TestClauseString(t *testing.T) {
	req := require.New(t)

	c := Clause{Head: NewAtom("flies", Const("tweety"))}
	req.Equal("flies(tweety).", c.String())
	req.Equal(0, c.Levels())

	c.Body = []Literal{
		{Atom: NewAtom("bird", Const("tweety")), Level: 1},
		{Atom: NewAtom("penguin", Const("tweety")), Negated: true, Level: 3},
	}
	req.Equal("flies(tweety):-bird(tweety),not penguin(tweety).", c.String())
	req.Equal(3, c.Levels())
	req.Equal(c.String(), c.Key())
}

func TestAtomSet(t *testing.T) {
	req := require.New(t)

	s := NewAtomSet(NewAtom("p", Const("a")), NewAtom("q"), NewAtom("p", Const("a")))
	req.Equal(2, s.Len())
	req.True(s.Contains(NewAtom("q")))
	req.False(s.Contains(NewAtom("p", Const("b"))))

	weighted := NewAtom("p", Const("a"))
	weighted.Weight = 7
	req.False(s.Add(weighted))
	req.True(s.Add(NewAtom("p", Const("b"))))
	req.Equal([]Atom{NewAtom("p", Const("a")), NewAtom("q"), NewAtom("p", Const("b"))}, s.Atoms())

	var visited []string
	for a := range s.All() {
		visited = append(visited, a.String())
		if len(visited) == 2 {
			break
		}
	}
	req.Equal([]string{"p(a)", "q"}, visited)

	var empty *AtomSet
	req.Equal(0, empty.Len())
	req.False(empty.Contains(NewAtom("q")))
	req.Nil(empty.Atoms())
	for range empty.All() {
		req.Fail("empty set yielded an atom")
	}

	var zero AtomSet
	req.True(zero.Add(NewAtom("q")))
	req.Equal(1, zero.Len())
}
