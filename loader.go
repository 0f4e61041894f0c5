package induction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fealsamh/go-utils/dbutils"
	"github.com/mailstepcz/sexpr"
	"gopkg.in/yaml.v3"
)

type source struct {
	Background []string        `yaml:"background"`
	Facts      []string        `yaml:"facts"`
	Displays   []string        `yaml:"displays"`
	Examples   []exampleSource `yaml:"examples"`
	ModeHs     []modeSource    `yaml:"modeh"`
	ModeBs     []modeSource    `yaml:"modeb"`
	Tables     []FactTable     `yaml:"tables"`
}

type exampleSource struct {
	Atom     string `yaml:"atom"`
	Negated  bool   `yaml:"negated"`
	Weight   *int   `yaml:"weight"`
	Priority int    `yaml:"priority"`
}

type modeSource struct {
	Scheme   string `yaml:"scheme"`
	Weight   *int   `yaml:"weight"`
	Priority int    `yaml:"priority"`
	Upper    int    `yaml:"upper"`
}

func weightOrDefault(w *int) int {
	if w == nil {
		return 1
	}
	return *w
}

// LoadProblemYAML loads a problem from a YAML reader. Facts of the declared tables are read
// through the querier, which may be nil if there are none.
func LoadProblemYAML(ctx context.Context, r io.Reader, cfg Config, q dbutils.Querier) (*Problem, error) {
	var src source
	if err := yaml.NewDecoder(r).Decode(&src); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIllFormed, err)
	}
	b := NewProblemBuilder(cfg).AddBackground(src.Background...)
	for _, f := range src.Facts {
		a, err := ParseAtom(f)
		if err != nil {
			return nil, err
		}
		b.AddFacts(a)
	}
	if len(src.Tables) > 0 && q == nil {
		return nil, fmt.Errorf("%w: fact tables declared without a database", ErrConfiguration)
	}
	for _, t := range src.Tables {
		atoms, err := LoadFacts(ctx, q, t)
		if err != nil {
			return nil, err
		}
		b.AddFacts(atoms...)
	}
	for _, d := range src.Displays {
		sig, err := ParseSignature(d)
		if err != nil {
			return nil, err
		}
		b.AddDisplay(sig)
	}
	for _, e := range src.Examples {
		a, err := ParseAtom(e.Atom)
		if err != nil {
			return nil, err
		}
		b.AddExample(&Example{Atom: a, Negated: e.Negated, Weight: weightOrDefault(e.Weight), Priority: e.Priority})
	}
	for _, m := range src.ModeHs {
		s, err := ParseScheme(m.Scheme)
		if err != nil {
			return nil, err
		}
		b.AddModeH(&ModeH{Scheme: s, Weight: weightOrDefault(m.Weight), Priority: m.Priority})
	}
	for _, m := range src.ModeBs {
		s, err := ParseScheme(m.Scheme)
		if err != nil {
			return nil, err
		}
		b.AddModeB(&ModeB{Scheme: s, Weight: weightOrDefault(m.Weight), Priority: m.Priority, Upper: m.Upper})
	}
	return b.Build()
}

// ParseSignature parses a predicate signature such as "flies/1".
func ParseSignature(s string) (Signature, error) {
	functor, arity, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || functor == "" {
		return Signature{}, fmt.Errorf("%w: signature '%s'", ErrIllFormed, s)
	}
	n, err := strconv.Atoi(arity)
	if err != nil || n < 0 {
		return Signature{}, fmt.Errorf("%w: signature '%s'", ErrIllFormed, s)
	}
	return Signature{Functor: functor, Arity: n}, nil
}

// LoadProblemSexpr loads a problem from a symbolic expression such as
//
//	(
//	  (background "bird(tweety).")
//	  (fact (penguin opus))
//	  (display "flies/1")
//	  (example (flies tweety))
//	  (example (not (flies opus)))
//	  (modeh "flies(+bird)")
//	  (modeb "not penguin(+bird)")
//	)
//
// Examples and modes take an optional weight and priority, body modes also an upper bound.
func LoadProblemSexpr(code string, cfg Config) (*Problem, error) {
	expr, err := sexpr.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIllFormed, err)
	}
	b := NewProblemBuilder(cfg)
	for _, form := range expr {
		form, ok := form.([]interface{})
		if !ok || len(form) == 0 {
			return nil, ErrIllFormed
		}
		keyword, ok := form[0].(sexpr.Identifier)
		if !ok {
			return nil, ErrIllFormed
		}
		args := form[1:]
		switch keyword {
		case "background":
			for _, arg := range args {
				s, ok := arg.(sexpr.QuotedString)
				if !ok {
					return nil, fmt.Errorf("%w: background statement %v", ErrIllFormed, arg)
				}
				b.AddBackground(string(s))
			}
		case "fact":
			for _, arg := range args {
				a, err := exprToAtom(arg)
				if err != nil {
					return nil, err
				}
				b.AddFacts(a)
			}
		case "display":
			for _, arg := range args {
				sig, err := ParseSignature(exprString(arg))
				if err != nil {
					return nil, err
				}
				b.AddDisplay(sig)
			}
		case "example":
			if len(args) == 0 {
				return nil, fmt.Errorf("%w: empty example", ErrIllFormed)
			}
			e := &Example{Weight: 1}
			target := args[0]
			if l, ok := target.([]interface{}); ok && len(l) == 2 && l[0] == sexpr.Identifier("not") {
				e.Negated = true
				target = l[1]
			}
			if e.Atom, err = exprToAtom(target); err != nil {
				return nil, err
			}
			if err := numbers(args[1:], &e.Weight, &e.Priority); err != nil {
				return nil, err
			}
			b.AddExample(e)
		case "modeh":
			s, err := exprToScheme(args)
			if err != nil {
				return nil, err
			}
			m := &ModeH{Scheme: s, Weight: 1}
			if err := numbers(args[1:], &m.Weight, &m.Priority); err != nil {
				return nil, err
			}
			b.AddModeH(m)
		case "modeb":
			s, err := exprToScheme(args)
			if err != nil {
				return nil, err
			}
			m := &ModeB{Scheme: s, Weight: 1}
			if err := numbers(args[1:], &m.Weight, &m.Priority, &m.Upper); err != nil {
				return nil, err
			}
			b.AddModeB(m)
		default:
			return nil, fmt.Errorf("%w: unknown form '%s'", ErrIllFormed, keyword)
		}
	}
	return b.Build()
}

func exprToAtom(expr interface{}) (Atom, error) {
	switch x := expr.(type) {
	case sexpr.QuotedString:
		return ParseAtom(string(x))
	case sexpr.Identifier:
		return NewAtom(string(x)), nil
	case []interface{}:
		if len(x) == 0 {
			return Atom{}, ErrIllFormed
		}
		functor, ok := x[0].(sexpr.Identifier)
		if !ok {
			return Atom{}, ErrIllFormed
		}
		terms := make([]Term, 0, len(x)-1)
		for _, arg := range x[1:] {
			switch arg := arg.(type) {
			case sexpr.Identifier:
				terms = append(terms, termFromIdent(string(arg)))
			case sexpr.QuotedString:
				terms = append(terms, Const(strconv.Quote(string(arg))))
			case []interface{}:
				a, err := exprToAtom(arg)
				if err != nil {
					return Atom{}, err
				}
				terms = append(terms, Const(a.String()))
			default:
				terms = append(terms, Const(exprString(arg)))
			}
		}
		return NewAtom(string(functor), terms...), nil
	}
	return Atom{}, ErrIllFormed
}

func exprToScheme(args []interface{}) (*Scheme, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: mode without scheme", ErrIllFormed)
	}
	s, ok := args[0].(sexpr.QuotedString)
	if !ok {
		return nil, fmt.Errorf("%w: scheme %v", ErrIllFormed, args[0])
	}
	return ParseScheme(string(s))
}

func exprString(expr interface{}) string {
	switch x := expr.(type) {
	case sexpr.Identifier:
		return string(x)
	case sexpr.QuotedString:
		return string(x)
	}
	return fmt.Sprint(expr)
}

func numbers(args []interface{}, dst ...*int) error {
	if len(args) > len(dst) {
		return fmt.Errorf("%w: too many arguments", ErrIllFormed)
	}
	for i, arg := range args {
		n, err := strconv.Atoi(exprString(arg))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrIllFormed, err)
		}
		*dst[i] = n
	}
	return nil
}

// Dump writes the problem in a readable form.
func (p *Problem) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	writeLines(bw, []string{"%%% Displays"})
	for _, d := range p.Displays {
		fmt.Fprintf(bw, "#display %s.\n", d)
	}
	writeLines(bw, []string{"", "%%% Examples"})
	for _, e := range p.Examples {
		neg := ""
		if e.Negated {
			neg = "not "
		}
		fmt.Fprintf(bw, "#example %s%s =%d @%d.\n", neg, e.Atom, e.Weight, e.Priority)
	}
	writeLines(bw, []string{"", "%%% Modes"})
	for _, m := range p.ModeHs {
		writeLines(bw, []string{m.String()})
	}
	for _, m := range p.ModeBs {
		writeLines(bw, []string{m.String()})
	}
	writeLines(bw, []string{"", "%%% Background"})
	writeLines(bw, p.Background)
	return bw.Flush()
}
