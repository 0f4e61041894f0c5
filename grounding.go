package induction

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Grounding is the result of one abduction: the abduced atoms, the facts that hold with them
// and everything derived from those. Kernel and generalisation are computed once, on first use.
type Grounding struct {
	problem   *Problem
	delta     []Atom
	facts     *AtomSet
	model     []Atom
	covered   []Literal
	uncovered []Literal
	index     *SchemeIndex
	logger    *zap.Logger

	kernelOnce sync.Once
	kernel     []Clause

	generalisationOnce sync.Once
	generalisation     []Clause
	support            []int
}

// NewGrounding sorts the atoms of an abductive answer into abduced atoms and facts.
func NewGrounding(p *Problem, answer []Atom, logger *zap.Logger) *Grounding {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Grounding{
		problem: p,
		facts:   NewAtomSet(),
		logger:  logger,
	}
	delta := NewAtomSet()
	for _, a := range answer {
		if name, ok := strings.CutPrefix(a.Predicate, abducedPrefix); ok {
			abduced := a
			abduced.Predicate = name
			if delta.Add(abduced) {
				g.delta = append(g.delta, abduced)
			}
			continue
		}
		if g.facts.Add(a) && p.Config.Full && p.Lookup(a) {
			g.model = append(g.model, a)
		}
	}
	for _, e := range p.Examples {
		l := Literal{Atom: e.Atom, Negated: e.Negated}
		if e.Negated != g.facts.Contains(e.Atom) {
			g.covered = append(g.covered, l)
		} else {
			g.uncovered = append(g.uncovered, l)
		}
	}
	g.index = NewSchemeIndex(p.Schemes(), g.facts)
	return g
}

// Delta returns the abduced atoms.
func (g *Grounding) Delta() []Atom { return slices.Clone(g.delta) }

// Facts returns the facts of the answer.
func (g *Grounding) Facts() *AtomSet { return g.facts }

// Model returns the displayed facts, recorded only with the full setting.
func (g *Grounding) Model() []Atom { return slices.Clone(g.model) }

// Covered returns the examples which hold in the answer.
func (g *Grounding) Covered() []Literal { return slices.Clone(g.covered) }

// Uncovered returns the examples which don't hold in the answer.
func (g *Grounding) Uncovered() []Literal { return slices.Clone(g.uncovered) }

// BadSolution returns the constraint excluding this set of abduced atoms from later abductions.
func (g *Grounding) BadSolution() string {
	var sb strings.Builder
	sb.WriteString("bad_solution:-")
	for _, a := range g.delta {
		sb.WriteString(abducedPrefix)
		sb.WriteString(a.String())
		sb.WriteRune(',')
	}
	fmt.Fprintf(&sb, "number_abduced(%d).", len(g.delta))
	return sb.String()
}

// Kernel returns one saturated clause per abduced atom and subsuming head mode.
func (g *Grounding) Kernel() []Clause {
	g.kernelOnce.Do(func() {
		g.kernel = g.buildKernel()
	})
	return slices.Clone(g.kernel)
}

func (g *Grounding) buildKernel() []Clause {
	var (
		kernel []Clause
		seen   = make(map[string]struct{})
	)
	for _, alpha := range g.delta {
		for _, m := range g.problem.ModeHs {
			if !Subsumes(m.Scheme, alpha, g.facts) {
				continue
			}
			head := alpha
			head.Weight, head.Priority = m.Weight, m.Priority
			c := Clause{Head: head, Body: g.saturate(FindSubstitutes(m.Scheme, alpha))}
			if _, ok := seen[c.Key()]; ok {
				continue
			}
			seen[c.Key()] = struct{}{}
			kernel = append(kernel, c)
		}
	}
	return kernel
}

// saturate expands the body breadth-first. Terms found at one level are usable from the next one,
// so every literal records the first level at which its inputs were available.
func (g *Grounding) saturate(seed []Term) []Literal {
	var (
		body     []Literal
		usable   = newTermSet(seed...)
		frontier = len(seed)
		seen     = make(map[string]struct{})
		depth    = g.problem.Config.Depth
	)
	add := func(m *ModeB, a Atom, level int) {
		l := Literal{Atom: a, Negated: m.IsNegated(), Level: level}
		l.Atom.Weight, l.Atom.Priority = m.Weight, m.Priority
		if _, ok := seen[l.String()]; ok {
			return
		}
		seen[l.String()] = struct{}{}
		body = append(body, l)
	}
	for level := 1; frontier > 0 && (depth == 0 || level <= depth); level++ {
		found := newTermSet()
		for _, m := range g.problem.ModeBs {
			if m.IsNegated() {
				for _, inst := range GenerateAndOutput(m.Scheme, usable.terms, g.index, g.facts) {
					add(m, inst.Atom, level)
				}
				continue
			}
			atoms, outputs := MatchAndOutput(m.Scheme, g.index.Lookup(m.Scheme), usable.terms)
			for _, a := range atoms {
				add(m, a, level)
			}
			for _, t := range outputs {
				found.add(t)
			}
		}
		frontier = 0
		for _, t := range found.terms {
			if usable.add(t) {
				frontier++
			}
		}
	}
	return body
}

// Generalisation returns the distinct generalised kernel clauses which survive pruning,
// in order of first occurrence.
func (g *Grounding) Generalisation() []Clause {
	g.generalise()
	return slices.Clone(g.generalisation)
}

// Support returns the number of kernel clauses behind each generalised clause.
func (g *Grounding) Support() []int {
	g.generalise()
	return slices.Clone(g.support)
}

// NeedsInduction returns whether there is anything to select from.
func (g *Grounding) NeedsInduction() bool {
	return len(g.Generalisation()) > 0
}

func (g *Grounding) generalise() {
	g.generalisationOnce.Do(func() {
		type group struct {
			clause  Clause
			support int
		}
		var (
			groups  []*group
			byKey   = make(map[string]*group)
			largest int
		)
		for _, k := range g.Kernel() {
			c, ok := g.generaliseClause(k)
			if !ok {
				continue
			}
			grp, ok := byKey[c.Key()]
			if !ok {
				grp = &group{clause: c}
				byKey[c.Key()] = grp
				groups = append(groups, grp)
			}
			grp.support++
			largest = max(largest, grp.support)
		}
		prune := g.problem.Config.Prune
		for _, grp := range groups {
			pruned := largest > 2*prune && grp.support <= prune
			g.logger.Debug("generalisation",
				zap.Int("support", grp.support),
				zap.Stringer("clause", grp.clause),
				zap.Bool("pruned", pruned))
			if pruned {
				continue
			}
			g.generalisation = append(g.generalisation, grp.clause)
			g.support = append(g.support, grp.support)
		}
	})
}

func (g *Grounding) generaliseClause(k Clause) (Clause, bool) {
	subst := make(map[Term]Term)
	var (
		c     Clause
		found bool
	)
	for _, m := range g.problem.ModeHs {
		if Subsumes(m.Scheme, k.Head, g.facts) {
			c.Head = Generalise(m.Scheme, k.Head, subst)
			found = true
			break
		}
	}
	if !found {
		return Clause{}, false
	}
	for _, l := range k.Body {
		for _, m := range g.problem.ModeBs {
			if m.IsNegated() == l.Negated && Subsumes(m.Scheme, l.Atom, g.facts) {
				c.Body = append(c.Body, Literal{
					Atom:    Generalise(m.Scheme, l.Atom, subst),
					Negated: l.Negated,
					Level:   l.Level,
				})
				break
			}
		}
	}
	return c, true
}
