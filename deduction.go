package induction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Hypothesis is a set of learned clauses.
type Hypothesis []Clause

func (h Hypothesis) String() string {
	rules := make([]string, len(h))
	for i, c := range h {
		rules[i] = c.Rule()
	}
	return strings.Join(rules, " ")
}

// Rule renders the clause with the type atoms of its variables appended to the body.
func (c Clause) Rule() string {
	var (
		sb    strings.Builder
		types []Atom
		sep   = ":-"
	)
	for _, t := range c.Head.Types {
		if !containsAtom(types, t) {
			types = append(types, t)
		}
	}
	sb.WriteString(c.Head.String())
	for _, l := range c.Body {
		sb.WriteString(sep)
		sb.WriteString(l.String())
		sep = ","
		for _, t := range l.Atom.Types {
			if !containsAtom(types, t) {
				types = append(types, t)
			}
		}
	}
	for _, t := range types {
		sb.WriteString(sep)
		sb.WriteString(t.String())
		sep = ","
	}
	sb.WriteRune('.')
	return sb.String()
}

// Deduce maps the selection atoms of an induction answer onto the generalisation.
// use_clause_literal(c,0) keeps clause c, use_clause_literal(c,l) keeps its l-th body literal.
// Other atoms are ignored.
func (g *Grounding) Deduce(answer []Atom) (Hypothesis, error) {
	clauses := g.Generalisation()
	var (
		heads = make([]bool, len(clauses))
		kept  = make([][]bool, len(clauses))
	)
	for i, c := range clauses {
		kept[i] = make([]bool, len(c.Body))
	}
	for _, a := range answer {
		if a.Predicate != "use_clause_literal" || a.Arity() != 2 {
			continue
		}
		c, err1 := strconv.Atoi(a.Terms[0].Name)
		l, err2 := strconv.Atoi(a.Terms[1].Name)
		if err := errors.Join(err1, err2); err != nil {
			return nil, fmt.Errorf("%w: selection atom '%s': %w", ErrIllFormed, a, err)
		}
		if c < 0 || c >= len(clauses) || l < 0 || l > len(clauses[c].Body) {
			return nil, fmt.Errorf("%w: selection atom '%s' out of range", ErrIllFormed, a)
		}
		if l == 0 {
			heads[c] = true
		} else {
			kept[c][l-1] = true
		}
	}
	var h Hypothesis
	for i, c := range clauses {
		if !heads[i] {
			continue
		}
		clause := Clause{Head: c.Head}
		for j, l := range c.Body {
			if kept[i][j] {
				clause.Body = append(clause.Body, l)
			}
		}
		h = append(h, clause)
	}
	return h, nil
}

func (g *Grounding) answer(h Hypothesis) *Answer {
	return &Answer{
		Hypothesis: h,
		Entailed:   g.Entailed(h),
		Delta:      g.Delta(),
		Model:      g.Model(),
		Covered:    g.Covered(),
		Uncovered:  g.Uncovered(),
	}
}

// Solve runs the induction round and records its answers. Without a generalisation the
// abductive answer is recorded as it is. The returned bound seeds the next round.
func (g *Grounding) Solve(ctx context.Context, s *Session, values Values, answers *Answers) (Values, error) {
	if !g.NeedsInduction() {
		if answers.Put(nil, g.answer(nil)) {
			s.Metrics.AnswersTotal.Inc()
		}
		return values, nil
	}
	s.Metrics.KernelClauses.Set(float64(len(g.Kernel())))
	s.Metrics.Generalisations.Set(float64(len(g.Generalisation())))
	s.Logger.Debug("induction needed",
		zap.Int("kernel", len(g.Kernel())),
		zap.Int("generalisation", len(g.Generalisation())))

	done := s.Timed("induction", &s.Stats.Induction)
	res, err := NewDialler(s).Dial(ctx, g, 1, values)
	done()
	if err != nil && res == nil {
		return values, err
	}
	for _, output := range res.Answers {
		if answers.Len() > 0 && s.Config.Terminate {
			break
		}
		done := s.Timed("deduction", &s.Stats.Deduction)
		h, derr := g.Deduce(output)
		done()
		if derr != nil {
			return values, derr
		}
		for _, c := range h {
			s.Logger.Debug("hypothesis clause", zap.String("clause", c.Rule()))
		}
		if answers.Put(res.Values, g.answer(h)) {
			s.Metrics.AnswersTotal.Inc()
		}
	}
	if len(res.Values) > 0 {
		values = res.Values
	}
	return values, err
}
