package induction

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Polarity is the role of a mode argument.
type Polarity int

const (
	// Input arguments (+t) consume terms already introduced in the clause.
	Input Polarity = iota
	// Output arguments (-t) introduce new terms.
	Output
	// Constant arguments (#t or a fixed value) stay ground in hypotheses.
	Constant
)

func (p Polarity) String() string {
	switch p {
	case Input:
		return "+"
	case Output:
		return "-"
	case Constant:
		return "#"
	}
	return "?" + strconv.Itoa(int(p))
}

// SchemeArg is an argument of a mode scheme.
type SchemeArg struct {
	Polarity Polarity
	// Type names the type predicate of a placeholder.
	Type string
	// Value is the fixed value of a constant argument without a type.
	Value string
}

// IsPlaceholder returns whether the argument is filled from the facts rather than fixed.
func (a SchemeArg) IsPlaceholder() bool {
	return a.Polarity != Constant || a.Type != ""
}

func (a SchemeArg) String() string {
	if !a.IsPlaceholder() {
		return a.Value
	}
	return a.Polarity.String() + a.Type
}

// Scheme is the shape of an atom allowed by a mode declaration.
type Scheme struct {
	Predicate string
	Args      []SchemeArg
	Negated   bool
}

// Signature returns the signature of the scheme's predicate.
func (s *Scheme) Signature() Signature { return Signature{Functor: s.Predicate, Arity: len(s.Args)} }

// Key identifies the scheme in a scheme index.
func (s *Scheme) Key() string { return s.String() }

func (s *Scheme) String() string {
	var sb strings.Builder
	if s.Negated {
		sb.WriteString("not ")
	}
	sb.WriteString(s.Predicate)
	if len(s.Args) > 0 {
		sb.WriteRune('(')
		for i, arg := range s.Args {
			if i > 0 {
				sb.WriteRune(',')
			}
			sb.WriteString(arg.String())
		}
		sb.WriteRune(')')
	}
	return sb.String()
}

// Template returns the atom with a fresh variable V1..Vn at each placeholder,
// together with the type atoms of those variables.
func (s *Scheme) Template() Atom {
	a := Atom{Predicate: s.Predicate, Terms: make([]Term, len(s.Args)), Weight: 1}
	for i, arg := range s.Args {
		if !arg.IsPlaceholder() {
			a.Terms[i] = Const(arg.Value)
			continue
		}
		v := Variable("V" + strconv.Itoa(i+1))
		a.Terms[i] = v
		a.Types = append(a.Types, NewAtom(arg.Type, v))
	}
	return a
}

// Types returns the distinct type predicates used by the scheme.
func (s *Scheme) Types() []string {
	var types []string
	for _, arg := range s.Args {
		if arg.Type != "" && !slices.Contains(types, arg.Type) {
			types = append(types, arg.Type)
		}
	}
	return types
}

// ModeH is a head mode declaration.
type ModeH struct {
	Scheme   *Scheme
	Weight   int
	Priority int
}

func (m *ModeH) String() string {
	return fmt.Sprintf("#modeh %s =%d @%d.", m.Scheme, m.Weight, m.Priority)
}

// ModeB is a body mode declaration.
type ModeB struct {
	Scheme   *Scheme
	Weight   int
	Priority int
	// Upper bounds the number of literals of this mode in one clause, 0 means no bound.
	Upper int
}

// IsNegated returns whether the mode describes negated literals.
func (m *ModeB) IsNegated() bool { return m.Scheme.Negated }

func (m *ModeB) String() string {
	if m.Upper > 0 {
		return fmt.Sprintf("#modeb %d:%s =%d @%d.", m.Upper, m.Scheme, m.Weight, m.Priority)
	}
	return fmt.Sprintf("#modeb %s =%d @%d.", m.Scheme, m.Weight, m.Priority)
}

// Example is a ground atom which should hold (or not hold, if negated).
type Example struct {
	Atom    Atom
	Negated bool
	// Weight is the cost of leaving the example uncovered, 0 makes it a hard constraint.
	Weight   int
	Priority int
}

func (e *Example) String() string {
	sign := "+"
	if e.Negated {
		sign = "-"
	}
	return sign + e.Atom.String()
}

// Statements returns the clauses enforcing the example.
func (e *Example) Statements() []string {
	if e.Weight == 0 {
		if e.Negated {
			return []string{fmt.Sprintf(":-%s.", e.Atom)}
		}
		return []string{fmt.Sprintf(":-not %s.", e.Atom)}
	}
	if e.Negated {
		return []string{fmt.Sprintf(":~ %s. [%d@%d,example,%s]", e.Atom, e.Weight, e.Priority, e.Atom)}
	}
	return []string{fmt.Sprintf(":~ not %s. [%d@%d,example,%s]", e.Atom, e.Weight, e.Priority, e.Atom)}
}
