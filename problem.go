package induction

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const abducedPrefix = "abduced_"

// Problem is a learning task. It is not modified after it has been built.
type Problem struct {
	Background []string
	Displays   []Signature
	Examples   []*Example
	ModeHs     []*ModeH
	ModeBs     []*ModeB
	Config     Config

	displays map[Signature]struct{}
}

// ProblemBuilder assembles a problem.
type ProblemBuilder struct {
	p   Problem
	err error
}

// NewProblemBuilder returns a builder for a problem with the given settings.
func NewProblemBuilder(cfg Config) *ProblemBuilder {
	return &ProblemBuilder{p: Problem{Config: cfg}}
}

// AddBackground adds background statements.
func (b *ProblemBuilder) AddBackground(stmts ...string) *ProblemBuilder {
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s != "" {
			b.p.Background = append(b.p.Background, s)
		}
	}
	return b
}

// AddFacts adds ground atoms to the background.
func (b *ProblemBuilder) AddFacts(atoms ...Atom) *ProblemBuilder {
	for _, a := range atoms {
		if !a.IsGround() {
			b.fail(fmt.Errorf("%w: fact '%s' is not ground", ErrIllFormed, a))
			continue
		}
		b.p.Background = append(b.p.Background, a.String()+".")
	}
	return b
}

// AddDisplay adds a predicate to be shown in answers.
func (b *ProblemBuilder) AddDisplay(sig Signature) *ProblemBuilder {
	b.p.Displays = append(b.p.Displays, sig)
	return b
}

// AddExample adds an example.
func (b *ProblemBuilder) AddExample(e *Example) *ProblemBuilder {
	if !e.Atom.IsGround() {
		b.fail(fmt.Errorf("%w: example '%s' is not ground", ErrIllFormed, e.Atom))
		return b
	}
	if e.Weight < 0 {
		b.fail(fmt.Errorf("%w: negative weight of example '%s'", ErrIllFormed, e.Atom))
		return b
	}
	b.p.Examples = append(b.p.Examples, e)
	return b
}

// AddModeH adds a head mode.
func (b *ProblemBuilder) AddModeH(m *ModeH) *ProblemBuilder {
	if m.Scheme.Negated {
		b.fail(fmt.Errorf("%w: negated head mode '%s'", ErrIllFormed, m.Scheme))
		return b
	}
	if err := checkScheme(m.Scheme); err != nil {
		b.fail(err)
		return b
	}
	b.p.ModeHs = append(b.p.ModeHs, m)
	return b
}

// AddModeB adds a body mode.
func (b *ProblemBuilder) AddModeB(m *ModeB) *ProblemBuilder {
	if err := checkScheme(m.Scheme); err != nil {
		b.fail(err)
		return b
	}
	if m.Upper < 0 {
		b.fail(fmt.Errorf("%w: negative bound of body mode '%s'", ErrIllFormed, m.Scheme))
		return b
	}
	b.p.ModeBs = append(b.p.ModeBs, m)
	return b
}

func (b *ProblemBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Build returns the problem or the first error encountered.
func (b *ProblemBuilder) Build() (*Problem, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.p.Config.Validate(); err != nil {
		return nil, err
	}
	p := b.p
	p.displays = make(map[Signature]struct{}, len(p.Displays))
	for _, d := range p.Displays {
		p.displays[d] = struct{}{}
	}
	return &p, nil
}

func checkScheme(s *Scheme) error {
	if s.Predicate == "" {
		return fmt.Errorf("%w: scheme without predicate", ErrIllFormed)
	}
	for _, arg := range s.Args {
		if arg.IsPlaceholder() && arg.Type == "" {
			return fmt.Errorf("%w: untyped placeholder in '%s'", ErrIllFormed, s)
		}
	}
	return nil
}

// Lookup returns whether the atom is displayed.
func (p *Problem) Lookup(a Atom) bool {
	_, ok := p.displays[a.Signature()]
	return ok
}

// Schemes returns the schemes of all modes, head modes first.
func (p *Problem) Schemes() []*Scheme {
	schemes := make([]*Scheme, 0, len(p.ModeHs)+len(p.ModeBs))
	for _, m := range p.ModeHs {
		schemes = append(schemes, m.Scheme)
	}
	for _, m := range p.ModeBs {
		schemes = append(schemes, m.Scheme)
	}
	return schemes
}

// Filters returns the show directives of the abduction program.
// Besides displays and examples, they expose everything the kernel needs: the abduced atoms,
// the facts of the mode predicates and their types.
func (p *Problem) Filters() []string {
	var f filters
	f.add("#show.")
	for _, m := range p.ModeHs {
		sig := m.Scheme.Signature()
		sig.Functor = abducedPrefix + sig.Functor
		f.show(sig)
	}
	for _, s := range p.Schemes() {
		f.show(s.Signature())
		for _, t := range s.Types() {
			f.show(Signature{Functor: t, Arity: 1})
		}
	}
	for _, d := range p.Displays {
		f.show(d)
	}
	for _, e := range p.Examples {
		f.show(e.Atom.Signature())
	}
	return f.lines
}

// Abducibles returns the clauses that let the solver assume atoms of the head mode.
func (m *ModeH) Abducibles() []string {
	var (
		atom    = m.Scheme.Template()
		abduced = atom
		body    string
	)
	abduced.Predicate = abducedPrefix + atom.Predicate
	if len(atom.Types) > 0 {
		body = ":-" + joinAtoms(atom.Types)
	}
	return []string{
		fmt.Sprintf("{ %s }%s.", abduced, body),
		fmt.Sprintf("%s:-%s.", atom, abduced),
		fmt.Sprintf("number_abduced(%s,1):-%s.", abduced, abduced),
		fmt.Sprintf(":~ %s. [%d@%d,%s]", abduced, m.Weight, m.Priority, abduced),
	}
}

// Serialize writes the abduction program.
func (p *Problem) Serialize(iter int, w io.Writer) error {
	return p.serialize(iter, nil, w)
}

func (p *Problem) serialize(iter int, refinements []string, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%% iteration %d\n", iter)
	writeLines(bw, p.Filters())
	writeLines(bw, []string{"", "%%% B. Background"})
	writeLines(bw, p.Background)
	writeLines(bw, refinements)
	writeLines(bw, []string{"", "%%% E. Examples"})
	for _, e := range p.Examples {
		writeLines(bw, e.Statements())
	}
	writeLines(bw, []string{
		"",
		"%%% I. Inflation",
		":-bad_solution.",
		"number_abduced(V):-V=#sum{W,A:number_abduced(A,W)}.",
	})
	for _, m := range p.ModeHs {
		writeLines(bw, m.Abducibles())
	}
	return bw.Flush()
}

// abduction is the abduction program of one iteration, excluding earlier solutions.
type abduction struct {
	problem     *Problem
	refinements []string
}

func (a *abduction) Serialize(iter int, w io.Writer) error {
	return a.problem.serialize(iter, a.refinements, w)
}

type filters struct {
	lines []string
	seen  map[string]struct{}
}

func (f *filters) add(line string) {
	if f.seen == nil {
		f.seen = make(map[string]struct{})
	}
	if _, ok := f.seen[line]; ok {
		return
	}
	f.seen[line] = struct{}{}
	f.lines = append(f.lines, line)
}

func (f *filters) show(sig Signature) {
	f.add(fmt.Sprintf("#show %s.", sig))
}

func writeLines(w *bufio.Writer, lines []string) {
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
}

func joinAtoms(atoms []Atom) string {
	var sb strings.Builder
	for i, a := range atoms {
		if i > 0 {
			sb.WriteRune(',')
		}
		sb.WriteString(a.String())
	}
	return sb.String()
}
