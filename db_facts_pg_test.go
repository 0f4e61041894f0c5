//go:build dbtest
// +build dbtest

package induction

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	// import PG
	_ "github.com/lib/pq"
)

func TestLoadFactsPostgres(t *testing.T) {
	req := require.New(t)

	db, err := sql.Open("postgres", os.Getenv("DB_DSN"))
	req.NoError(err)
	defer db.Close()

	_, err = db.Exec(`DROP TABLE IF EXISTS induction_birds`)
	req.NoError(err)
	_, err = db.Exec(`CREATE TABLE induction_birds (name TEXT, kind TEXT, weight INTEGER)`)
	req.NoError(err)
	_, err = db.Exec(`INSERT INTO induction_birds (name, kind, weight) VALUES ('tweety', 'canary', 20)`)
	req.NoError(err)
	_, err = db.Exec(`INSERT INTO induction_birds (name, kind, weight) VALUES ('opus', NULL, 4000)`)
	req.NoError(err)

	atoms, err := LoadFacts(context.Background(), db, FactTable{
		Table:     "induction_birds",
		Predicate: "bird",
		Columns:   []string{"name", "kind", "weight"},
	})
	req.NoError(err)
	req.Equal([]string{"bird(tweety,canary,20)"}, atomStrings(atoms))

	p, err := LoadProblemYAML(context.Background(), strings.NewReader(`
tables:
  - table: induction_birds
    predicate: bird
    columns: [name]
modeh:
  - scheme: flies(+bird)
`), DefaultConfig(), db)
	req.NoError(err)
	req.ElementsMatch([]string{"bird(tweety).", "bird(opus)."}, p.Background)
}
