package induction

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Filters returns the show directives of the induction program.
func (g *Grounding) Filters() []string {
	var f filters
	f.add("#show.")
	f.add("#show use_clause_literal/2.")
	for _, d := range g.problem.Displays {
		f.show(d)
	}
	for _, e := range g.problem.Examples {
		f.show(e.Atom.Signature())
	}
	return f.lines
}

// Clauses returns the optimisation program selecting generalised clauses and their literals.
// Literal 0 of a clause stands for its head, literals 1..n for its body.
func (g *Grounding) Clauses() []string {
	clauses := g.Generalisation()
	if len(clauses) == 0 {
		return nil
	}
	var f filters
	f.add("{ use_clause_literal(V1,0) }:-clause(V1).")
	for _, c := range clauses {
		if len(c.Body) > 0 {
			f.add("{ use_clause_literal(V1,V2) }:-clause(V1),literal(V1,V2).")
			break
		}
	}
	for id, c := range clauses {
		f.add(fmt.Sprintf("%% %s", c))
		f.add(fmt.Sprintf("clause(%d).", id))
		for l := 1; l <= len(c.Body); l++ {
			f.add(fmt.Sprintf("literal(%d,%d).", id, l))
		}
		for level := 0; level < c.Levels(); level++ {
			f.add(fmt.Sprintf(":-not clause_level(%d,%d),clause_level(%d,%d).", id, level, id, level+1))
		}
		f.add(fmt.Sprintf("clause_level(%d,0):-use_clause_literal(%d,0).", id, id))
		for l, lit := range c.Body {
			f.add(fmt.Sprintf("clause_level(%d,%d):-use_clause_literal(%d,%d).", id, lit.Level, id, l+1))
		}
		f.add(fmt.Sprintf(":~ use_clause_literal(%d,0). [%d@%d,%d]", id, c.Head.Weight, c.Head.Priority, id))
		for l, lit := range c.Body {
			f.add(fmt.Sprintf(":~ use_clause_literal(%d,%d). [%d@%d,use_clause_literal(%d,%d)]",
				id, l+1, lit.Atom.Weight, lit.Atom.Priority, id, l+1))
		}

		var (
			types = append([]Atom(nil), c.Head.Types...)
			tries = make([]string, len(c.Body))
		)
		for l, lit := range c.Body {
			tries[l] = fmt.Sprintf("try_clause_literal(%d,%d%s)", id, l+1, prefixed(lit.Atom.Variables()))
			for _, t := range lit.Atom.Types {
				if !containsAtom(types, t) {
					types = append(types, t)
				}
			}
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s:-use_clause_literal(%d,0)", c.Head, id)
		for _, t := range tries {
			sb.WriteRune(',')
			sb.WriteString(t)
		}
		for _, t := range types {
			sb.WriteRune(',')
			sb.WriteString(t.String())
		}
		sb.WriteRune('.')
		f.add(sb.String())

		for l, lit := range c.Body {
			typesOf := ""
			if len(lit.Atom.Types) > 0 {
				typesOf = "," + joinAtoms(lit.Atom.Types)
			}
			f.add(fmt.Sprintf("%s:-use_clause_literal(%d,%d),%s%s.", tries[l], id, l+1, lit, typesOf))
			f.add(fmt.Sprintf("%s:-not use_clause_literal(%d,%d)%s.", tries[l], id, l+1, typesOf))
		}

		for _, m := range g.problem.ModeBs {
			if m.Upper == 0 {
				continue
			}
			var limited []string
			for l, lit := range c.Body {
				if lit.Negated == m.IsNegated() && Subsumes(m.Scheme, lit.Atom, nil) {
					limited = append(limited, fmt.Sprintf("%d:use_clause_literal(%d,%d)", l+1, id, l+1))
				}
			}
			if len(limited) > 0 {
				f.add(fmt.Sprintf(":- %d < #count { %s }.", m.Upper, strings.Join(limited, ";")))
			}
		}
	}
	return f.lines
}

// Serialize writes the induction program.
func (g *Grounding) Serialize(iter int, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%% iteration %d\n", iter)
	writeLines(bw, g.Filters())
	writeLines(bw, []string{"", "%%% B. Background"})
	writeLines(bw, g.problem.Background)
	writeLines(bw, []string{"", "%%% E. Examples"})
	for _, e := range g.problem.Examples {
		writeLines(bw, e.Statements())
	}
	writeLines(bw, []string{"", "%%% C. Compression"})
	writeLines(bw, g.Clauses())
	return bw.Flush()
}

func prefixed(terms []Term) string {
	var sb strings.Builder
	for _, t := range terms {
		sb.WriteRune(',')
		sb.WriteString(t.Name)
	}
	return sb.String()
}
