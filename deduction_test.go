package induction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeduce(t *testing.T) {
	req := require.New(t)

	g := NewGrounding(tweetyProblem(t, DefaultConfig()), mustAtoms(t, tweetyAnswer), nil)

	h, err := g.Deduce(mustAtoms(t, "use_clause_literal(0,0) use_clause_literal(0,1) flies(tweety)"))
	req.NoError(err)
	req.Equal(Hypothesis(g.Generalisation()), h)
	req.Equal("flies(V1):-not penguin(V1),bird(V1).", h.String())

	h, err = g.Deduce(mustAtoms(t, "use_clause_literal(0,0)"))
	req.NoError(err)
	req.Len(h, 1)
	req.Empty(h[0].Body)
	req.Equal("flies(V1):-bird(V1).", h[0].Rule())

	// literals of a clause without its head are dropped
	h, err = g.Deduce(mustAtoms(t, "use_clause_literal(0,1)"))
	req.NoError(err)
	req.Empty(h)

	for _, code := range []string{
		"use_clause_literal(1,0)",
		"use_clause_literal(0,2)",
		"use_clause_literal(0,-1)",
		"use_clause_literal(a,0)",
	} {
		_, err = g.Deduce(mustAtoms(t, code))
		req.True(errors.Is(err, ErrIllFormed), code)
	}
}

func TestRule(t *testing.T) {
	req := require.New(t)

	s := mustScheme(t, "edge(+node,-node)")
	subst := make(map[Term]Term)
	head := Generalise(mustScheme(t, "reach(+node)"), NewAtom("reach", Const("a")), subst)
	c := Clause{
		Head: head,
		Body: []Literal{
			{Atom: Generalise(s, NewAtom("edge", Const("a"), Const("b")), subst)},
			{Atom: Generalise(mustScheme(t, "blocked(+node)"), NewAtom("blocked", Const("b")), subst), Negated: true},
		},
	}
	req.Equal("reach(V1):-edge(V1,V2),not blocked(V2).", c.String())
	req.Equal("reach(V1):-edge(V1,V2),not blocked(V2),node(V1),node(V2).", c.Rule())
	req.Equal("raining.", Clause{Head: NewAtom("raining")}.Rule())
}
