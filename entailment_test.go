package induction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntailedTweety(t *testing.T) {
	req := require.New(t)

	g := NewGrounding(tweetyProblem(t, DefaultConfig()), mustAtoms(t, tweetyAnswer), nil)
	h := Hypothesis(g.Generalisation())
	req.Len(g.Entailed(h), 2)

	// without the negated literal opus flies too
	entailed := g.Entailed(Hypothesis{{Head: h[0].Head}})
	req.Equal([]Literal{{Atom: NewAtom("flies", Const("tweety"))}}, entailed)

	// abduced atoms do not count as evidence
	entailed = g.Entailed(nil)
	req.Equal([]Literal{{Atom: NewAtom("flies", Const("opus")), Negated: true}}, entailed)
}

func TestProverRecursion(t *testing.T) {
	req := require.New(t)

	v1, v2 := Variable("V1"), Variable("V2")
	h := Hypothesis{
		{
			Head: NewAtom("reach", v1),
			Body: []Literal{{Atom: NewAtom("start", v1)}},
		},
		{
			Head: NewAtom("reach", v2),
			Body: []Literal{
				{Atom: NewAtom("edge", v1, v2)},
				{Atom: NewAtom("reach", v1)},
			},
		},
	}
	p := NewProver(mustAtoms(t, "start(a) edge(a,b) edge(b,c) edge(c,b) edge(d,d)"), h)
	req.True(p.Prove(NewAtom("reach", Const("a"))))
	req.True(p.Prove(NewAtom("reach", Const("c"))))
	req.False(p.Prove(NewAtom("reach", Const("d"))))
	req.False(p.Prove(NewAtom("edge", Const("a"), Const("c"))))
}

func TestProverNegation(t *testing.T) {
	req := require.New(t)

	v1 := Variable("V1")
	h := Hypothesis{{
		Head: NewAtom("flies", v1),
		Body: []Literal{
			{Atom: NewAtom("penguin", v1), Negated: true},
			{Atom: NewAtom("bird", v1)},
		},
	}}
	p := NewProver(mustAtoms(t, "bird(tweety) bird(opus) penguin(opus)"), h)
	req.True(p.Prove(NewAtom("flies", Const("tweety"))))
	req.False(p.Prove(NewAtom("flies", Const("opus"))))
	req.True(p.Prove(NewAtom("flies", Variable("X"))))
}

func TestProverInstances(t *testing.T) {
	req := require.New(t)

	v1, v2 := Variable("V1"), Variable("V2")
	h := Hypothesis{{
		Head: NewAtom("reach", v2),
		Body: []Literal{
			{Atom: NewAtom("edge", v1, v2)},
			{Atom: NewAtom("reach", v1)},
		},
	}}
	p := NewProver(mustAtoms(t, "reach(a) edge(a,b) edge(b,c) edge(c,b)"), h)

	found := NewAtomSet()
	req.True(p.solve(NewAtom("reach", Variable("X")), 0, func(a Atom) bool {
		found.Add(a)
		return true
	}))
	req.Equal(mustAtoms(t, "reach(a) reach(b) reach(c)"), found.Atoms())

	var calls int
	req.False(p.solve(NewAtom("reach", Variable("X")), 0, func(Atom) bool {
		calls++
		return false
	}))
	req.Equal(1, calls)
}
