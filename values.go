package induction

import (
	"strconv"
	"strings"

	"github.com/mailstepcz/slice"
)

// Values is an optimisation bound, one cost per priority tier from the highest tier down.
type Values []int

// Compare compares two bounds lexicographically. Missing tiers count as zero.
func (v Values) Compare(w Values) int {
	for i := range max(len(v), len(w)) {
		a, b := v.at(i), w.at(i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

func (v Values) at(i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// Bound renders the bound as the argument of the solver's --opt-bound flag.
func (v Values) Bound() string {
	return strings.Join(slice.Fmap(strconv.Itoa, v), ",")
}

func (v Values) String() string {
	return strings.Join(slice.Fmap(strconv.Itoa, v), " ")
}

// ParseValues parses the costs of an "Optimization:" line.
func ParseValues(s string) (Values, error) {
	fields := strings.Fields(s)
	v := make(Values, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, ErrIllFormed
		}
		v[i] = n
	}
	return v, nil
}
