package induction

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func answerWith(head string) *Answer {
	return &Answer{Hypothesis: Hypothesis{{Head: NewAtom(head, Variable("V1"))}}}
}

func TestAnswersPut(t *testing.T) {
	req := require.New(t)

	answers := NewAnswers()
	req.True(answers.Put(Values{2, 1}, answerWith("p")))
	req.True(answers.Put(Values{2, 1}, answerWith("q")))
	req.False(answers.Put(Values{2, 1}, answerWith("q")))
	req.False(answers.Put(Values{3, 0}, answerWith("r")))
	req.Equal(2, answers.Len())
	req.Equal(Values{2, 1}, answers.Values())

	cheap := answerWith("s")
	req.True(answers.Put(Values{1, 5}, cheap))
	req.Equal(1, answers.Len())
	req.Equal(Values{1, 5}, cheap.Values)
	req.Equal([]*Answer{cheap}, answers.All())

	// an answer dropped by a cheaper one may come back at the lower cost
	req.True(answers.Put(Values{1, 5}, answerWith("p")))
	req.Equal(2, answers.Len())
}

func TestAnswerKey(t *testing.T) {
	req := require.New(t)

	a := &Answer{Delta: mustAtoms(t, "flies(tweety)")}
	b := &Answer{Delta: mustAtoms(t, "flies(tweety)"), Hypothesis: Hypothesis{{Head: NewAtom("flies", Variable("V1"))}}}
	req.NotEqual(a.Key(), b.Key())
	req.Equal("flies(V1).\n", b.String())
	req.Empty(a.String())
}

func TestStatsCSV(t *testing.T) {
	req := require.New(t)

	s := Stats{
		Calls:     4,
		Loading:   1200 * time.Microsecond,
		Abduction: 2 * time.Second,
		Induction: 250 * time.Millisecond,
		Wall:      3 * time.Second,
	}
	var sb strings.Builder
	req.NoError(s.WriteCSV(&sb, "complete", 2))

	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	req.NoError(err)
	req.Equal([][]string{
		{"Problem", "Answers", "Calls", "Loading", "Abduction", "Deduction", "Induction", "Wall"},
		{"complete", "2", "4", "0.001", "2.000", "0.000", "0.250", "3.000"},
	}, records)
}
