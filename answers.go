package induction

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mailstepcz/slice"
)

// Answer is a learned hypothesis together with the grounding it was learned from.
type Answer struct {
	Values     Values
	Hypothesis Hypothesis
	// Entailed lists the examples that the hypothesis explains without the abduced atoms.
	Entailed   []Literal
	Delta      []Atom
	Model      []Atom
	Covered    []Literal
	Uncovered  []Literal
}

// Key returns the canonical form of the answer.
func (a *Answer) Key() string {
	var sb strings.Builder
	for _, d := range a.Delta {
		sb.WriteString(d.Key())
		sb.WriteRune(' ')
	}
	sb.WriteRune('|')
	for _, c := range a.Hypothesis {
		sb.WriteString(c.Key())
	}
	return sb.String()
}

func (a *Answer) String() string {
	var sb strings.Builder
	for _, c := range a.Hypothesis {
		sb.WriteString(c.Rule())
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Answers accumulates the answers of equal, minimal cost.
type Answers struct {
	values  Values
	answers []*Answer
	seen    map[string]struct{}
}

// NewAnswers returns an empty accumulator.
func NewAnswers() *Answers {
	return &Answers{seen: make(map[string]struct{})}
}

// Put records an answer. A cheaper answer replaces everything recorded so far,
// a dearer one is ignored. It returns whether the answer was kept.
func (a *Answers) Put(v Values, ans *Answer) bool {
	if len(a.answers) > 0 {
		switch v.Compare(a.values) {
		case 1:
			return false
		case -1:
			a.answers = nil
			clear(a.seen)
		}
	}
	k := ans.Key()
	if _, ok := a.seen[k]; ok {
		return false
	}
	a.seen[k] = struct{}{}
	a.values = v
	ans.Values = v
	a.answers = append(a.answers, ans)
	return true
}

// Len returns the number of answers.
func (a *Answers) Len() int { return len(a.answers) }

// Values returns the cost shared by all the answers.
func (a *Answers) Values() Values { return a.values }

// All returns the answers in order of arrival.
func (a *Answers) All() []*Answer { return slices.Clone(a.answers) }

// Stats counts solver calls and the time spent in each phase.
type Stats struct {
	Calls     int
	Loading   time.Duration
	Abduction time.Duration
	Deduction time.Duration
	Induction time.Duration
	Wall      time.Duration
}

var statsHeader = []string{"Problem", "Answers", "Calls", "Loading", "Abduction", "Deduction", "Induction", "Wall"}

// WriteCSV writes the statistics as a header and one row labelled with the outcome of the run.
func (s *Stats) WriteCSV(w io.Writer, label string, answers int) error {
	cw := csv.NewWriter(w)
	row := append([]string{label, strconv.Itoa(answers), strconv.Itoa(s.Calls)},
		slice.Fmap(seconds, []time.Duration{s.Loading, s.Abduction, s.Deduction, s.Induction, s.Wall})...)
	if err := cw.WriteAll([][]string{statsHeader, row}); err != nil {
		return fmt.Errorf("write statistics: %w", err)
	}
	return nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
