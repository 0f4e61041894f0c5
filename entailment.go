package induction

const maxProofDepth = 32

// binding maps the variables of a clause to constants.
type binding map[Term]Term

func (b binding) apply(a Atom) Atom {
	terms := make([]Term, len(a.Terms))
	for i, t := range a.Terms {
		if v, ok := b[t]; ok && t.Var {
			terms[i] = v
		} else {
			terms[i] = t
		}
	}
	r := a
	r.Terms = terms
	return r
}

func (b binding) extend(pattern, a Atom) (binding, bool) {
	var r binding
	for i, t := range pattern.Terms {
		if !t.Var {
			if t != a.Terms[i] {
				return nil, false
			}
			continue
		}
		if r == nil {
			r = make(binding, len(b)+len(pattern.Terms))
			for k, v := range b {
				r[k] = v
			}
		}
		if v, ok := r[t]; ok {
			if v != a.Terms[i] {
				return nil, false
			}
			continue
		}
		r[t] = a.Terms[i]
	}
	if r == nil {
		return b, true
	}
	return r, true
}

// Prover proves atoms from facts and clauses by SLD resolution with negation as failure.
// Recursive clauses are followed up to a fixed depth.
type Prover struct {
	facts   map[Signature][]Atom
	clauses map[Signature][]Clause
}

// NewProver returns a prover over the facts and the clauses of the hypothesis.
func NewProver(facts []Atom, h Hypothesis) *Prover {
	p := &Prover{
		facts:   make(map[Signature][]Atom),
		clauses: make(map[Signature][]Clause),
	}
	for _, f := range facts {
		sig := f.Signature()
		p.facts[sig] = append(p.facts[sig], f)
	}
	for _, c := range h {
		sig := c.Head.Signature()
		p.clauses[sig] = append(p.clauses[sig], c)
	}
	return p
}

// Prove returns whether the atom follows.
func (p *Prover) Prove(goal Atom) bool {
	return p.holds(goal, 0)
}

func (p *Prover) holds(goal Atom, depth int) bool {
	found := false
	p.solve(goal, depth, func(Atom) bool {
		found = true
		return false
	})
	return found
}

// solve passes the ground instances of the goal that follow to k until k returns false.
// It returns false if k stopped it.
func (p *Prover) solve(goal Atom, depth int, k func(Atom) bool) bool {
	sig := goal.Signature()
	for _, f := range p.facts[sig] {
		if _, ok := binding(nil).extend(goal, f); ok && !k(f) {
			return false
		}
	}
	if depth >= maxProofDepth {
		return true
	}
	for _, c := range p.clauses[sig] {
		b, ok := bindHead(c.Head, goal)
		if !ok {
			continue
		}
		more := p.body(ordered(c), 0, b, depth, func(b binding) bool {
			head := b.apply(c.Head)
			if !head.IsGround() {
				return true
			}
			if _, ok := binding(nil).extend(goal, head); !ok {
				return true
			}
			return k(head)
		})
		if !more {
			return false
		}
	}
	return true
}

// bindHead binds the variables of a clause head to the constants of the goal.
func bindHead(head, goal Atom) (binding, bool) {
	b := make(binding)
	for i, t := range head.Terms {
		g := goal.Terms[i]
		switch {
		case g.Var:
		case !t.Var:
			if t != g {
				return nil, false
			}
		default:
			if v, bound := b[t]; bound && v != g {
				return nil, false
			}
			b[t] = g
		}
	}
	return b, true
}

func (p *Prover) body(lits []Literal, i int, b binding, depth int, k func(binding) bool) bool {
	if i == len(lits) {
		return k(b)
	}
	l := lits[i]
	a := b.apply(l.Atom)
	if l.Negated {
		if !a.IsGround() || p.holds(a, depth+1) {
			return true
		}
		return p.body(lits, i+1, b, depth, k)
	}
	return p.solve(a, depth+1, func(f Atom) bool {
		b2, ok := b.extend(a, f)
		if !ok {
			return true
		}
		return p.body(lits, i+1, b2, depth, k)
	})
}

// ordered returns the body of the clause with its type atoms, positive literals first
// so that negated literals are ground when they are reached.
func ordered(c Clause) []Literal {
	var pos, neg []Literal
	for _, t := range c.Head.Types {
		pos = append(pos, Literal{Atom: t})
	}
	for _, l := range c.Body {
		if l.Negated {
			neg = append(neg, l)
		} else {
			pos = append(pos, l)
		}
		for _, t := range l.Atom.Types {
			pos = append(pos, Literal{Atom: t})
		}
	}
	return append(pos, neg...)
}

// Entailed returns the examples which the hypothesis explains from the facts of the grounding,
// leaving out the abduced atoms.
func (g *Grounding) Entailed(h Hypothesis) []Literal {
	delta := NewAtomSet(g.delta...)
	var facts []Atom
	for a := range g.facts.All() {
		if !delta.Contains(a) {
			facts = append(facts, a)
		}
	}
	p := NewProver(facts, h)
	var entailed []Literal
	for _, e := range g.problem.Examples {
		if p.Prove(e.Atom) != e.Negated {
			entailed = append(entailed, Literal{Atom: e.Atom, Negated: e.Negated})
		}
	}
	return entailed
}
