package induction

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const tweetyYAML = `
background:
  - "wing(X):-bird(X)."
facts:
  - bird(tweety)
  - bird(opus)
  - penguin(opus)
displays:
  - flies/1
examples:
  - atom: flies(tweety)
  - atom: flies(opus)
    negated: true
    weight: 2
    priority: 1
modeh:
  - scheme: flies(+bird)
modeb:
  - scheme: not penguin(+bird)
    upper: 1
  - scheme: wing(+bird)
    weight: 0
`

func TestLoadProblemYAML(t *testing.T) {
	req := require.New(t)

	p, err := LoadProblemYAML(context.Background(), strings.NewReader(tweetyYAML), DefaultConfig(), nil)
	req.NoError(err)
	req.Equal([]string{"wing(X):-bird(X).", "bird(tweety).", "bird(opus).", "penguin(opus)."}, p.Background)
	req.Equal([]Signature{{Functor: "flies", Arity: 1}}, p.Displays)
	req.Len(p.Examples, 2)
	req.Equal(1, p.Examples[0].Weight)
	req.False(p.Examples[0].Negated)
	req.True(p.Examples[1].Negated)
	req.Equal(2, p.Examples[1].Weight)
	req.Equal(1, p.Examples[1].Priority)
	req.Len(p.ModeHs, 1)
	req.Equal(1, p.ModeHs[0].Weight)
	req.Len(p.ModeBs, 2)
	req.Equal(1, p.ModeBs[0].Upper)
	req.True(p.ModeBs[0].IsNegated())
	req.Equal(0, p.ModeBs[1].Weight)
}

func TestLoadProblemYAMLErrors(t *testing.T) {
	req := require.New(t)

	for _, code := range []string{
		"facts: [bird(X]",
		"facts: {a: b}",
		"displays: [flies]",
		"examples: [{atom: flies(X)}]",
		"modeh: [{scheme: 'flies(+bird'}]",
		"modeb: [{scheme: 'p(+t)', upper: -1}]",
	} {
		_, err := LoadProblemYAML(context.Background(), strings.NewReader(code), DefaultConfig(), nil)
		req.True(errors.Is(err, ErrIllFormed), code)
	}

	_, err := LoadProblemYAML(context.Background(),
		strings.NewReader("tables: [{table: birds, predicate: bird, columns: [name]}]"), DefaultConfig(), nil)
	req.True(errors.Is(err, ErrConfiguration))
}

func TestLoadProblemSexpr(t *testing.T) {
	req := require.New(t)

	p, err := LoadProblemSexpr(`(
		(background "wing(X):-bird(X).")
		(fact (bird tweety) (bird opus))
		(fact (penguin opus) "likes(opus,fish)")
		(display "flies/1")
		(example (flies tweety))
		(example (not (flies opus)))
		(modeh "flies(+bird)")
		(modeb "not penguin(+bird)")
	)`, DefaultConfig())
	req.NoError(err)
	req.Equal([]string{
		"wing(X):-bird(X).",
		"bird(tweety).",
		"bird(opus).",
		"penguin(opus).",
		"likes(opus,fish).",
	}, p.Background)
	req.Equal([]Signature{{Functor: "flies", Arity: 1}}, p.Displays)
	req.Equal([]*Example{
		{Atom: NewAtom("flies", Const("tweety")), Weight: 1},
		{Atom: NewAtom("flies", Const("opus")), Negated: true, Weight: 1},
	}, p.Examples)
	req.Equal("#modeh flies(+bird) =1 @0.", p.ModeHs[0].String())
	req.Equal("#modeb not penguin(+bird) =1 @0.", p.ModeBs[0].String())
}

func TestLoadProblemSexprErrors(t *testing.T) {
	req := require.New(t)

	for _, code := range []string{
		`((unknown a))`,
		`(())`,
		`((example))`,
		`((fact (bird X)))`,
		`((modeh))`,
		`((modeh flies))`,
		`((display "flies"))`,
		`((background (bird tweety)))`,
	} {
		_, err := LoadProblemSexpr(code, DefaultConfig())
		req.True(errors.Is(err, ErrIllFormed), code)
	}
}

func TestDump(t *testing.T) {
	req := require.New(t)

	p, err := LoadProblemYAML(context.Background(), strings.NewReader(tweetyYAML), DefaultConfig(), nil)
	req.NoError(err)
	var sb strings.Builder
	req.NoError(p.Dump(&sb))
	req.Equal(`%%% Displays
#display flies/1.

%%% Examples
#example flies(tweety) =1 @0.
#example not flies(opus) =2 @1.

%%% Modes
#modeh flies(+bird) =1 @0.
#modeb 1:not penguin(+bird) =1 @0.
#modeb wing(+bird) =0 @0.

%%% Background
wing(X):-bird(X).
bird(tweety).
bird(opus).
penguin(opus).
`, sb.String())
}

func openFacts(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "facts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for _, stmt := range []string{
		`CREATE TABLE birds (name TEXT, kind TEXT, weight INTEGER)`,
		`INSERT INTO birds VALUES ('tweety', 'canary', 20), ('opus', 'Penguin', 4000), ('zazu', NULL, 150), ('big bird', 'muppet', 0)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func TestLoadProblemYAMLTables(t *testing.T) {
	req := require.New(t)

	db := openFacts(t)
	p, err := LoadProblemYAML(context.Background(), strings.NewReader(`
tables:
  - table: birds
    predicate: bird
    columns: [name]
modeh:
  - scheme: flies(+bird)
`), DefaultConfig(), db)
	req.NoError(err)
	req.Equal([]string{"bird(tweety).", "bird(opus).", "bird(zazu).", `bird("big bird").`}, p.Background)
}
