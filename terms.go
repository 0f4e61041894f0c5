// Package induction provides an abductive and inductive logic-programming engine.
// It searches for a small set of clauses which, together with a background theory,
// explains a set of positive and negative examples.
// An external answer-set grounder and solver are used as search oracles.
//
// # Terms
//
// Terms are either constants or variables. Atoms apply a predicate to a list of terms
// and carry a weight and a priority used by the optimisation encodings.
//
// # Modes
//
// Mode declarations restrict the shape of hypotheses. A head mode describes the atoms
// allowed in clause heads, a body mode describes the literals allowed in clause bodies.
// Every argument of a mode scheme is an input (+t), an output (-t) or a constant (#t or a fixed value).
//
// # The loop
//
// Each iteration goes through three phases:
//   - abduction finds ground atoms which make the examples hold,
//   - the kernel saturates the abduced atoms with body literals and generalises them,
//   - induction selects the cheapest subset of generalised literals.
//
// The selection is mapped back onto clauses (deduction) and recorded as an answer.
package induction

import (
	"slices"
	"strconv"
	"strings"
)

// Term is a constant or a variable.
type Term struct {
	Name string
	Var  bool
}

// Const returns a constant term.
func Const(name string) Term { return Term{Name: name} }

// Variable returns a variable term.
func Variable(name string) Term { return Term{Name: name, Var: true} }

func (t Term) String() string { return t.Name }

// Signature represents the signature of a predicate.
type Signature struct {
	Functor string
	Arity   int
}

func (s Signature) String() string { return s.Functor + "/" + strconv.Itoa(s.Arity) }

// Atom is a predicate applied to a list of terms.
type Atom struct {
	Predicate string
	Terms     []Term
	Weight    int
	Priority  int
	// Types are the type atoms of the variables of the atom, e.g. bird(V1).
	Types []Atom
}

// NewAtom returns an atom with the default weight.
func NewAtom(predicate string, terms ...Term) Atom {
	return Atom{Predicate: predicate, Terms: terms, Weight: 1}
}

// Arity returns the number of terms.
func (a Atom) Arity() int { return len(a.Terms) }

// Signature returns the signature of the atom.
func (a Atom) Signature() Signature { return Signature{Functor: a.Predicate, Arity: len(a.Terms)} }

// IsGround returns whether the atom contains no variables.
func (a Atom) IsGround() bool {
	for _, t := range a.Terms {
		if t.Var {
			return false
		}
	}
	return true
}

// Variables returns the distinct variables of the atom in order of appearance.
func (a Atom) Variables() []Term {
	var vars []Term
	for _, t := range a.Terms {
		if t.Var && !slices.Contains(vars, t) {
			vars = append(vars, t)
		}
	}
	return vars
}

// Key returns the identity of the atom, which ignores weights, priorities and types.
func (a Atom) Key() string { return a.String() }

func (a Atom) String() string {
	if len(a.Terms) == 0 {
		return a.Predicate
	}
	var sb strings.Builder
	sb.WriteString(a.Predicate)
	sb.WriteRune('(')
	for i, t := range a.Terms {
		if i > 0 {
			sb.WriteRune(',')
		}
		sb.WriteString(t.Name)
	}
	sb.WriteRune(')')
	return sb.String()
}

// Equal compares the identities of two atoms.
func (a Atom) Equal(b Atom) bool {
	return a.Predicate == b.Predicate && slices.Equal(a.Terms, b.Terms)
}

// Literal is a possibly negated atom in a clause body.
type Literal struct {
	Atom    Atom
	Negated bool
	// Level is the saturation depth at which the literal entered its kernel clause.
	Level int
}

func (l Literal) String() string {
	if l.Negated {
		return "not " + l.Atom.String()
	}
	return l.Atom.String()
}

// Clause is a rule with a head and a body.
type Clause struct {
	Head Atom
	Body []Literal
}

// Levels returns the number of saturation levels of the body.
func (c Clause) Levels() int {
	var n int
	for _, l := range c.Body {
		n = max(n, l.Level)
	}
	return n
}

// Key returns the canonical form of the clause.
func (c Clause) Key() string { return c.String() }

func (c Clause) String() string {
	var sb strings.Builder
	sb.WriteString(c.Head.String())
	for i, l := range c.Body {
		if i == 0 {
			sb.WriteString(":-")
		} else {
			sb.WriteRune(',')
		}
		sb.WriteString(l.String())
	}
	sb.WriteRune('.')
	return sb.String()
}

// AtomSet is a set of atoms which remembers insertion order.
type AtomSet struct {
	atoms []Atom
	index map[string]int
}

// NewAtomSet returns a set containing the given atoms.
func NewAtomSet(atoms ...Atom) *AtomSet {
	s := &AtomSet{index: make(map[string]int, len(atoms))}
	for _, a := range atoms {
		s.Add(a)
	}
	return s
}

// Add adds an atom to the set and reports whether it was new.
func (s *AtomSet) Add(a Atom) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	k := a.Key()
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.atoms)
	s.atoms = append(s.atoms, a)
	return true
}

// Contains returns whether the set contains an atom with the same identity.
func (s *AtomSet) Contains(a Atom) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[a.Key()]
	return ok
}

// Len returns the size of the set.
func (s *AtomSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.atoms)
}

// Atoms returns the atoms in insertion order.
func (s *AtomSet) Atoms() []Atom {
	if s == nil {
		return nil
	}
	return slices.Clone(s.atoms)
}

// All returns a range function over the atoms in insertion order.
func (s *AtomSet) All() func(func(Atom) bool) {
	return func(yield func(Atom) bool) {
		if s == nil {
			return
		}
		for _, a := range s.atoms {
			if !yield(a) {
				return
			}
		}
	}
}

// termSet is an ordered set of terms.
type termSet struct {
	terms []Term
	index map[Term]struct{}
}

func newTermSet(terms ...Term) *termSet {
	s := &termSet{index: make(map[Term]struct{})}
	for _, t := range terms {
		s.add(t)
	}
	return s
}

func (s *termSet) add(t Term) bool {
	if _, ok := s.index[t]; ok {
		return false
	}
	s.index[t] = struct{}{}
	s.terms = append(s.terms, t)
	return true
}

func (s *termSet) contains(t Term) bool {
	_, ok := s.index[t]
	return ok
}
