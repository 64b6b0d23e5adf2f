package schedule

import (
	"testing"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalUnits(t *testing.T) {
	cases := []struct {
		words, batch, want int
	}{
		{45, 20, 3},
		{40, 20, 2},
		{1, 20, 1},
		{0, 20, 0},
		{100, 1, 100},
		{10, 0, 0},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, TotalUnits(c.words, c.batch), "words=%d batch=%d", c.words, c.batch)
	}
}

func TestFirstUnit(t *testing.T) {
	u := FirstUnit(7, 20, 45, date(2024, 3, 1))
	assert.Equal(t, int64(7), u.PlanID)
	assert.Equal(t, 1, u.Number)
	assert.Equal(t, 1, u.StartOrder)
	assert.Equal(t, 20, u.EndOrder)
	assert.Equal(t, date(2024, 3, 1), u.ExpectedLearnDate)
}

func TestFirstUnit_ShortBook(t *testing.T) {
	u := FirstUnit(7, 20, 12, date(2024, 3, 1))
	assert.Equal(t, 12, u.EndOrder)
}

// Scenario from the product brief: batch 20 over a 45-word book partitions
// into [1,20], [21,40], [41,45] and nothing more.
func TestUnitPartitioning(t *testing.T) {
	const batch, total = 20, 45

	u1 := FirstUnit(1, batch, total, date(2024, 3, 1))
	require.Equal(t, [2]int{1, 20}, [2]int{u1.StartOrder, u1.EndOrder})

	u2, ok := NextUnit(u1, batch, total)
	require.True(t, ok)
	assert.Equal(t, 2, u2.Number)
	assert.Equal(t, [2]int{21, 40}, [2]int{u2.StartOrder, u2.EndOrder})
	assert.Equal(t, date(2024, 3, 2), u2.ExpectedLearnDate)

	u3, ok := NextUnit(u2, batch, total)
	require.True(t, ok)
	assert.Equal(t, 3, u3.Number)
	assert.Equal(t, [2]int{41, 45}, [2]int{u3.StartOrder, u3.EndOrder})

	_, ok = NextUnit(u3, batch, total)
	assert.False(t, ok)
}

// The union of generated ranges must cover the book exactly: contiguous,
// non-overlapping, ascending.
func TestUnitPartitioning_NoGapsNoOverlap(t *testing.T) {
	for _, c := range []struct{ total, batch int }{
		{45, 20}, {100, 7}, {1, 10}, {20, 20}, {21, 20},
	} {
		u := FirstUnit(1, c.batch, c.total, date(2024, 1, 1))
		covered := 0
		prevEnd := 0
		for {
			require.Equal(t, prevEnd+1, u.StartOrder)
			require.LessOrEqual(t, u.EndOrder, c.total)
			require.LessOrEqual(t, u.Width(), c.batch)
			covered += u.Width()
			prevEnd = u.EndOrder

			next, ok := NextUnit(u, c.batch, c.total)
			if !ok {
				break
			}
			require.Equal(t, u.Number+1, next.Number)
			u = next
		}
		assert.Equalf(t, c.total, covered, "total=%d batch=%d", c.total, c.batch)
	}
}

func TestNextUnit_AfterWiden(t *testing.T) {
	// A widened unit eats into the following range; the next unit starts
	// after the widened end and the tail shrinks accordingly.
	u1 := FirstUnit(1, 20, 45, date(2024, 3, 1))
	u1, ok := WidenUnit(u1, 5, 45)
	require.True(t, ok)
	require.Equal(t, 25, u1.EndOrder)

	u2, ok := NextUnit(u1, 20, 45)
	require.True(t, ok)
	assert.Equal(t, [2]int{26, 45}, [2]int{u2.StartOrder, u2.EndOrder})
}

func TestWidenUnit(t *testing.T) {
	u := model.Unit{StartOrder: 1, EndOrder: 20}

	got, ok := WidenUnit(u, 10, 45)
	require.True(t, ok)
	assert.Equal(t, 30, got.EndOrder)

	// Capped at the end of the book.
	got, ok = WidenUnit(u, 100, 45)
	require.True(t, ok)
	assert.Equal(t, 45, got.EndOrder)

	// Already spans the whole book.
	full := model.Unit{StartOrder: 1, EndOrder: 45}
	_, ok = WidenUnit(full, 5, 45)
	assert.False(t, ok)

	_, ok = WidenUnit(u, 0, 45)
	assert.False(t, ok)
}
