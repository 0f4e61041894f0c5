package induction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValuesCompare(t *testing.T) {
	req := require.New(t)

	for _, c := range []struct {
		v, w Values
		cmp  int
	}{
		{Values{1, 2}, Values{1, 2}, 0},
		{Values{1, 2}, Values{1, 3}, -1},
		{Values{2, 0}, Values{1, 9}, 1},
		{Values{1}, Values{1, 0}, 0},
		{nil, Values{0, 1}, -1},
		{nil, nil, 0},
	} {
		req.Equal(c.cmp, c.v.Compare(c.w), "%v %v", c.v, c.w)
		req.Equal(-c.cmp, c.w.Compare(c.v), "%v %v", c.w, c.v)
	}
}

func TestValuesFormat(t *testing.T) {
	req := require.New(t)

	v, err := ParseValues(" 3 0 12 ")
	req.NoError(err)
	req.Equal(Values{3, 0, 12}, v)
	req.Equal("3,0,12", v.Bound())
	req.Equal("3 0 12", v.String())

	_, err = ParseValues("3 x")
	req.True(errors.Is(err, ErrIllFormed))

	v, err = ParseValues("")
	req.NoError(err)
	req.Empty(v)
}
