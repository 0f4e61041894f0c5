package induction

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/phomola/lrparser"
	"github.com/phomola/textkit"
)

var (
	atomGrammar = lrparser.NewGrammar(lrparser.MustBuildRules([]*lrparser.SynSem{
		{Syn: `Init -> Atoms`, Sem: func(args []any) any { return args[0] }},
		{Syn: `Atoms -> Atoms Atom`, Sem: func(args []any) any { return append(args[0].([]Atom), args[1].(Atom)) }},
		{Syn: `Atoms -> Atom`, Sem: func(args []any) any { return []Atom{args[0].(Atom)} }},
		{Syn: `Atom -> ident`, Sem: func(args []any) any { return NewAtom(args[0].(string)) }},
		{Syn: `Atom -> ident "(" Args ")"`, Sem: func(args []any) any {
			return NewAtom(args[0].(string), args[2].([]Term)...)
		}},
		{Syn: `Args -> Args "," Arg`, Sem: func(args []any) any { return append(args[0].([]Term), args[2].(Term)) }},
		{Syn: `Args -> Arg`, Sem: func(args []any) any { return []Term{args[0].(Term)} }},
		{Syn: `Arg -> ident`, Sem: func(args []any) any { return termFromIdent(args[0].(string)) }},
		{Syn: `Arg -> ident "(" Args ")"`, Sem: func(args []any) any {
			return Const(NewAtom(args[0].(string), args[2].([]Term)...).String())
		}},
		{Syn: `Arg -> integer`, Sem: func(args []any) any { return Const(strconv.Itoa(args[0].(int))) }},
		{Syn: `Arg -> "-" integer`, Sem: func(args []any) any { return Const(strconv.Itoa(-args[1].(int))) }},
		{Syn: `Arg -> string`, Sem: func(args []any) any { return Const(strconv.Quote(args[0].(string))) }},
	}))

	schemeGrammar = lrparser.NewGrammar(lrparser.MustBuildRules([]*lrparser.SynSem{
		{Syn: `Init -> Scheme`, Sem: func(args []any) any { return args[0] }},
		{Syn: `Scheme -> "not" Pred`, Sem: func(args []any) any {
			s := args[1].(*Scheme)
			s.Negated = true
			return s
		}},
		{Syn: `Scheme -> Pred`, Sem: func(args []any) any { return args[0] }},
		{Syn: `Pred -> ident`, Sem: func(args []any) any { return &Scheme{Predicate: args[0].(string)} }},
		{Syn: `Pred -> ident "(" SchemeArgs ")"`, Sem: func(args []any) any {
			return &Scheme{Predicate: args[0].(string), Args: args[2].([]SchemeArg)}
		}},
		{Syn: `SchemeArgs -> SchemeArgs "," SchemeArg`, Sem: func(args []any) any {
			return append(args[0].([]SchemeArg), args[2].(SchemeArg))
		}},
		{Syn: `SchemeArgs -> SchemeArg`, Sem: func(args []any) any { return []SchemeArg{args[0].(SchemeArg)} }},
		{Syn: `SchemeArg -> "+" ident`, Sem: func(args []any) any { return SchemeArg{Polarity: Input, Type: args[1].(string)} }},
		{Syn: `SchemeArg -> "-" ident`, Sem: func(args []any) any { return SchemeArg{Polarity: Output, Type: args[1].(string)} }},
		{Syn: `SchemeArg -> "#" ident`, Sem: func(args []any) any { return SchemeArg{Polarity: Constant, Type: args[1].(string)} }},
		{Syn: `SchemeArg -> ident`, Sem: func(args []any) any { return SchemeArg{Polarity: Constant, Value: args[0].(string)} }},
		{Syn: `SchemeArg -> integer`, Sem: func(args []any) any {
			return SchemeArg{Polarity: Constant, Value: strconv.Itoa(args[0].(int))}
		}},
		{Syn: `SchemeArg -> string`, Sem: func(args []any) any {
			return SchemeArg{Polarity: Constant, Value: strconv.Quote(args[0].(string))}
		}},
	}))
)

func termFromIdent(s string) Term {
	r := []rune(s)
	if len(r) > 0 && (unicode.IsUpper(r[0]) || r[0] == '_') {
		return Variable(s)
	}
	return Const(s)
}

func newTokeniser() *textkit.Tokeniser {
	return &textkit.Tokeniser{
		CommentPrefix: "%",
		StringRune:    '"',
		IdentChars:    "'_",
	}
}

// ParseAtoms parses a whitespace-separated list of atoms, such as a line of solver output.
func ParseAtoms(code string) ([]Atom, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	r, err := atomGrammar.Parse(newTokeniser().Tokenise(code, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIllFormed, err)
	}
	atoms, ok := r.([]Atom)
	if !ok {
		panic("unexpected type of parser output")
	}
	return atoms, nil
}

// ParseAtom parses a single atom. A trailing period is allowed.
func ParseAtom(code string) (Atom, error) {
	atoms, err := ParseAtoms(strings.TrimSuffix(strings.TrimSpace(code), "."))
	if err != nil {
		return Atom{}, err
	}
	if len(atoms) != 1 {
		return Atom{}, fmt.Errorf("%w: expected one atom in '%s'", ErrIllFormed, code)
	}
	return atoms[0], nil
}

// ParseScheme parses a mode scheme such as "not penguin(+bird)".
func ParseScheme(code string) (*Scheme, error) {
	r, err := schemeGrammar.Parse(newTokeniser().Tokenise(strings.TrimSpace(code), ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIllFormed, err)
	}
	s, ok := r.(*Scheme)
	if !ok {
		panic("unexpected type of parser output")
	}
	return s, nil
}
