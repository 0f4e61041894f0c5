package induction

import (
	"strconv"
)

// Subsumes returns whether the scheme describes the ground atom.
// Predicates, arities and fixed constants must match.
// If facts are given, every placeholder value must also satisfy its type predicate.
func Subsumes(s *Scheme, a Atom, facts *AtomSet) bool {
	if s.Predicate != a.Predicate || len(s.Args) != len(a.Terms) {
		return false
	}
	for i, arg := range s.Args {
		t := a.Terms[i]
		if !arg.IsPlaceholder() {
			if t.Var || t.Name != arg.Value {
				return false
			}
			continue
		}
		if facts != nil && !facts.Contains(NewAtom(arg.Type, t)) {
			return false
		}
	}
	return true
}

// Generalise replaces the input and output arguments of a ground atom with variables.
// The substitution is shared by all atoms of a clause so that equal terms get equal variables.
func Generalise(s *Scheme, a Atom, subst map[Term]Term) Atom {
	g := Atom{
		Predicate: a.Predicate,
		Terms:     make([]Term, len(a.Terms)),
		Weight:    a.Weight,
		Priority:  a.Priority,
	}
	for i, arg := range s.Args {
		t := a.Terms[i]
		if arg.Polarity == Constant {
			g.Terms[i] = t
			continue
		}
		v, ok := subst[t]
		if !ok {
			v = Variable("V" + strconv.Itoa(len(subst)+1))
			subst[t] = v
		}
		g.Terms[i] = v
		typ := NewAtom(arg.Type, v)
		if !containsAtom(g.Types, typ) {
			g.Types = append(g.Types, typ)
		}
	}
	return g
}

// FindSubstitutes returns the terms of a ground atom at the input and output positions of the scheme.
func FindSubstitutes(s *Scheme, a Atom) []Term {
	set := newTermSet()
	for i, arg := range s.Args {
		if arg.Polarity != Constant && i < len(a.Terms) {
			set.add(a.Terms[i])
		}
	}
	return set.terms
}

// MatchAndOutput returns the facts whose input arguments are all usable,
// together with the terms at their output positions.
func MatchAndOutput(s *Scheme, facts []Atom, usable []Term) ([]Atom, []Term) {
	var (
		set     = newTermSet(usable...)
		matched []Atom
		outputs = newTermSet()
	)
	for _, f := range facts {
		if !inputsUsable(s, f, set) {
			continue
		}
		matched = append(matched, f)
		for i, arg := range s.Args {
			if arg.Polarity == Output {
				outputs.add(f.Terms[i])
			}
		}
	}
	return matched, outputs.terms
}

// Instance is a ground instantiation of a scheme with the usable terms it consumed.
type Instance struct {
	Atom  Atom
	Terms []Term
}

// GenerateAndOutput enumerates the ground instances of a scheme over the usable terms
// which do not hold in the facts. Input and output positions take usable terms of the right type,
// typed constants range over the domain of their type.
func GenerateAndOutput(s *Scheme, usable []Term, index *SchemeIndex, facts *AtomSet) []Instance {
	candidates := make([][]Term, len(s.Args))
	for i, arg := range s.Args {
		switch {
		case !arg.IsPlaceholder():
			candidates[i] = []Term{Const(arg.Value)}
		case arg.Polarity == Constant:
			candidates[i] = index.Domain(arg.Type)
		default:
			for _, t := range usable {
				if facts.Contains(NewAtom(arg.Type, t)) {
					candidates[i] = append(candidates[i], t)
				}
			}
		}
		if len(candidates[i]) == 0 {
			return nil
		}
	}
	var (
		result []Instance
		terms  = make([]Term, len(s.Args))
	)
	var walk func(int)
	walk = func(i int) {
		if i == len(terms) {
			a := NewAtom(s.Predicate, append([]Term(nil), terms...)...)
			if facts.Contains(a) {
				return
			}
			consumed := newTermSet()
			for j, arg := range s.Args {
				if arg.Polarity != Constant {
					consumed.add(terms[j])
				}
			}
			result = append(result, Instance{Atom: a, Terms: consumed.terms})
			return
		}
		for _, t := range candidates[i] {
			terms[i] = t
			walk(i + 1)
		}
	}
	walk(0)
	return result
}

func inputsUsable(s *Scheme, a Atom, usable *termSet) bool {
	for i, arg := range s.Args {
		if arg.Polarity == Input && !usable.contains(a.Terms[i]) {
			return false
		}
	}
	return true
}

func containsAtom(atoms []Atom, a Atom) bool {
	for _, b := range atoms {
		if b.Equal(a) {
			return true
		}
	}
	return false
}

// SchemeIndex maps mode schemes to the facts they subsume.
type SchemeIndex struct {
	atoms   map[string][]Atom
	domains map[string][]Term
}

// NewSchemeIndex builds the index for the schemes in a single pass over the facts.
// Only facts whose placeholders satisfy their types are indexed.
func NewSchemeIndex(schemes []*Scheme, facts *AtomSet) *SchemeIndex {
	var (
		bySignature = make(map[Signature][]*Scheme)
		index       = &SchemeIndex{
			atoms:   make(map[string][]Atom),
			domains: make(map[string][]Term),
		}
	)
	seen := make(map[string]struct{}, len(schemes))
	for _, s := range schemes {
		if _, ok := seen[s.Key()]; ok {
			continue
		}
		seen[s.Key()] = struct{}{}
		sig := s.Signature()
		bySignature[sig] = append(bySignature[sig], s)
	}
	for f := range facts.All() {
		if len(f.Terms) == 1 {
			index.domains[f.Predicate] = append(index.domains[f.Predicate], f.Terms[0])
		}
		for _, s := range bySignature[f.Signature()] {
			if Subsumes(s, f, facts) {
				k := s.Key()
				index.atoms[k] = append(index.atoms[k], f)
			}
		}
	}
	return index
}

// Lookup returns the facts subsumed by the scheme, in fact order.
func (x *SchemeIndex) Lookup(s *Scheme) []Atom {
	return x.atoms[s.Key()]
}

// Domain returns the terms of the given type, in fact order.
func (x *SchemeIndex) Domain(typ string) []Term {
	return x.domains[typ]
}
