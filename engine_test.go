//go:build !windows

package induction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestEngineTweety(t *testing.T) {
	defer goleak.VerifyNone(t)
	req := require.New(t)

	s := testSession(t, script(t, "gringo", catGringo), script(t, "clasp", tweetyClasp), nil)
	answers, err := NewEngine(tweetyProblem(t, s.Config), s).Run(context.Background())
	req.NoError(err)
	req.Equal(1, answers.Len())
	req.Equal(2, s.Calls())
	req.Equal(Values{2}, answers.Values())

	a := answers.All()[0]
	req.Len(a.Hypothesis, 1)
	req.Equal("flies(V1):-not penguin(V1),bird(V1).", a.Hypothesis[0].Rule())
	req.Equal([]Atom{NewAtom("flies", Const("tweety"))}, a.Delta)
	req.Len(a.Entailed, 2)
	req.Positive(s.Stats.Wall)
}

func TestEngineRefinement(t *testing.T) {
	req := require.New(t)

	s := testSession(t, script(t, "gringo", catGringo), script(t, "clasp", tweetyClasp), func(cfg *Config) {
		cfg.Iterations = 3
	})
	answers, err := NewEngine(tweetyProblem(t, s.Config), s).Run(context.Background())
	req.NoError(err)
	req.Equal(1, answers.Len())
	// the second abduction is refuted by the first answer and ends the loop
	req.Equal(3, s.Calls())
}

func TestEngineBoundsInductionOnly(t *testing.T) {
	req := require.New(t)

	calls := filepath.Join(t.TempDir(), "calls.txt")
	clasp := script(t, "clasp", fmt.Sprintf(`#!/bin/sh
input=$(cat)
case "$input" in
*"%%%%%% C. Compression"*)
	echo "induction $*" >> %[1]s
	echo "use_clause_literal(0,0) use_clause_literal(0,1)"
	echo "Optimization: 2"
	;;
*)
	echo "abduction $*" >> %[1]s
	echo "bird(tweety) bird(opus) penguin(opus) flies(tweety) abduced_flies(tweety)"
	echo "Optimization: 1"
	;;
esac
echo "OPTIMUM FOUND"
exit 30
`, calls))
	s := testSession(t, script(t, "gringo", catGringo), clasp, func(cfg *Config) {
		cfg.Iterations = 2
	})
	answers, err := NewEngine(tweetyProblem(t, s.Config), s).Run(context.Background())
	req.NoError(err)
	req.Equal(1, answers.Len())

	log, err := os.ReadFile(calls)
	req.NoError(err)
	req.Equal([]string{
		"abduction --verbose=0 --opt-mode=optN",
		"induction --verbose=0 --opt-mode=optN",
		"abduction --verbose=0 --opt-mode=optN",
		"induction --verbose=0 --opt-mode=optN --opt-bound=2",
	}, strings.Split(strings.TrimSpace(string(log)), "\n"))
}

func TestEngineKill(t *testing.T) {
	defer goleak.VerifyNone(t)
	req := require.New(t)

	clasp := script(t, "clasp", `#!/bin/sh
sleep 10
`)
	s := testSession(t, script(t, "gringo", catGringo), clasp, func(cfg *Config) {
		cfg.Kill = 300 * time.Millisecond
	})
	start := time.Now()
	answers, err := NewEngine(tweetyProblem(t, s.Config), s).Run(context.Background())
	req.True(errors.Is(err, ErrInterrupted))
	req.Less(time.Since(start), 5*time.Second)
	req.Equal(0, answers.Len())
}

func TestEngineNoAnswer(t *testing.T) {
	req := require.New(t)

	clasp := script(t, "clasp", `#!/bin/sh
cat > /dev/null
echo "UNSATISFIABLE"
exit 20
`)
	s := testSession(t, script(t, "gringo", catGringo), clasp, nil)
	answers, err := NewEngine(tweetyProblem(t, s.Config), s).Run(context.Background())
	req.NoError(err)
	req.Equal(0, answers.Len())
	req.Equal(1, s.Calls())
}

func TestNewEnginePanics(t *testing.T) {
	require.Panics(t, func() { NewEngine(nil, nil) })
}
