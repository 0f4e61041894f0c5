package induction

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/fealsamh/go-utils/dbutils"
	"github.com/mailstepcz/slice"
)

// FactTable describes a table whose rows are facts of a predicate, one argument per column.
type FactTable struct {
	Table     string   `yaml:"table"`
	Predicate string   `yaml:"predicate"`
	Columns   []string `yaml:"columns"`
}

// LoadFacts reads the rows of the table as ground atoms. Rows with a NULL column are skipped.
func LoadFacts(ctx context.Context, q dbutils.Querier, t FactTable) ([]Atom, error) {
	if t.Table == "" || t.Predicate == "" || len(t.Columns) == 0 {
		return nil, fmt.Errorf("%w: incomplete fact table %+v", ErrConfiguration, t)
	}
	rows, err := q.QueryContext(ctx, `SELECT `+
		strings.Join(slice.Fmap(strconv.Quote, t.Columns), ", ")+
		` FROM `+strconv.Quote(t.Table))
	if err != nil {
		return nil, fmt.Errorf("query fact table '%s': %w", t.Table, err)
	}
	defer rows.Close()

	r := make([]interface{}, len(t.Columns))
	for i := range r {
		r[i] = new(sql.Null[string])
	}
	var atoms []Atom
next:
	for rows.Next() {
		if err := rows.Scan(r...); err != nil {
			return nil, fmt.Errorf("scan fact table '%s': %w", t.Table, err)
		}
		terms := make([]Term, len(r))
		for i, x := range r {
			x := x.(*sql.Null[string])
			if !x.Valid {
				continue next
			}
			terms[i] = constant(x.V)
		}
		atoms = append(atoms, NewAtom(t.Predicate, terms...))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read fact table '%s': %w", t.Table, err)
	}
	return atoms, nil
}

// constant turns a column value into a constant, quoting it unless it is a number or a symbol.
func constant(s string) Term {
	if _, err := strconv.Atoi(s); err == nil {
		return Const(s)
	}
	for i, r := range s {
		if (i == 0 && !unicode.IsLower(r)) || (!unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '\'') {
			return Const(strconv.Quote(s))
		}
	}
	if s == "" || s == "not" {
		return Const(strconv.Quote(s))
	}
	return Const(s)
}
