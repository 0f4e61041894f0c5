package induction

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const optimizationPrefix = "Optimization:"

var statusLines = []string{
	"SATISFIABLE",
	"UNSATISFIABLE",
	"OPTIMUM FOUND",
	"UNKNOWN",
	"INTERRUPTED",
}

// Acquirer reads solver output. Parsed model lines are memoised since consecutive calls
// tend to report the same answer sets.
type Acquirer struct {
	cache *lru.Cache[string, []Atom]
}

// NewAcquirer returns an acquirer remembering up to size model lines.
func NewAcquirer(size int) (*Acquirer, error) {
	cache, err := lru.New[string, []Atom](size)
	if err != nil {
		return nil, err
	}
	return &Acquirer{cache: cache}, nil
}

type model struct {
	atoms  []Atom
	values Values
}

// Acquire parses the solver output and returns the best bound with the answer sets reaching it.
// Every model line is followed by an optional "Optimization:" line with its costs.
//
// Output cut short by a stopped solver still yields the models read up to that point:
// a last line without a newline is dropped, and a line that does not parse ends the reading
// with ErrTruncated alongside the models before it. When the solver optimises, a model
// whose costs are missing is left out.
func (a *Acquirer) Acquire(r io.Reader) (Values, [][]Atom, error) {
	var (
		models    []*model
		optimised bool
		cut       error
		reader    = bufio.NewReaderSize(r, 64*1024)
	)
lines:
	for {
		text, err := reader.ReadString('\n')
		if err == io.EOF {
			if line := strings.TrimSpace(text); line != "" && !slices.Contains(statusLines, line) {
				cut = fmt.Errorf("%w: incomplete line '%s'", ErrTruncated, line)
			}
			break lines
		}
		if err != nil {
			return nil, nil, err
		}
		line := strings.TrimSpace(text)
		switch {
		case strings.HasPrefix(line, optimizationPrefix):
			v, err := ParseValues(strings.TrimPrefix(line, optimizationPrefix))
			if err != nil {
				cut = fmt.Errorf("%w: optimization line '%s': %w", ErrTruncated, line, err)
				break lines
			}
			optimised = true
			if len(models) > 0 {
				models[len(models)-1].values = v
			}
		case strings.HasPrefix(line, "Answer:"), slices.Contains(statusLines, line):
		default:
			atoms, err := a.parse(line)
			if err != nil {
				cut = fmt.Errorf("%w: %w", ErrTruncated, err)
				break lines
			}
			models = append(models, &model{atoms: atoms})
		}
	}
	if optimised {
		models = slices.DeleteFunc(models, func(m *model) bool { return m.values == nil })
	}
	if len(models) == 0 {
		return nil, nil, cut
	}
	best := models[0].values
	for _, m := range models[1:] {
		if m.values.Compare(best) < 0 {
			best = m.values
		}
	}
	var (
		answers [][]Atom
		seen    = make(map[string]struct{})
	)
	for _, m := range models {
		if m.values.Compare(best) != 0 {
			continue
		}
		k := answerKey(m.atoms)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		answers = append(answers, m.atoms)
	}
	return best, answers, cut
}

func (a *Acquirer) parse(line string) ([]Atom, error) {
	if atoms, ok := a.cache.Get(line); ok {
		return atoms, nil
	}
	atoms, err := ParseAtoms(line)
	if err != nil {
		return nil, err
	}
	a.cache.Add(line, atoms)
	return atoms, nil
}

func answerKey(atoms []Atom) string {
	keys := make([]string, len(atoms))
	for i, a := range atoms {
		keys[i] = a.Key()
	}
	slices.Sort(keys)
	return strings.Join(keys, " ")
}
