package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTheoreticalNewUnit(t *testing.T) {
	n, ok := TheoreticalNewUnit(10, 12)
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	_, ok = TheoreticalNewUnit(13, 12)
	assert.False(t, ok)

	_, ok = TheoreticalNewUnit(0, 12)
	assert.False(t, ok)
}

func TestTheoreticalReviewUnits(t *testing.T) {
	ladder := DefaultLadder()

	cases := []struct {
		day   int
		total int
		want  []int
	}{
		// Day 10 over 12 units: 10-1, 10-2, 10-4, 10-7; 10-15 drops out.
		{10, 12, []int{9, 8, 6, 3}},
		{1, 12, nil},
		{2, 12, []int{1}},
		{16, 12, []int{12, 9, 1}}, // 15 and 14 exceed the 12 units
		{30, 12, nil},
		{20, 12, []int{5}},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, ladder.TheoreticalReviewUnits(c.day, c.total), "day=%d", c.day)
	}
}
