package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf(t *testing.T) {
	assert.Equal(t, date(2024, 3, 10), DateOf(time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)))

	// A non-UTC timestamp keeps its own calendar date but lands at UTC
	// midnight, so two dates always differ by a whole number of days.
	shanghai := time.FixedZone("UTC+8", 8*60*60)
	assert.Equal(t, date(2024, 3, 11), DateOf(time.Date(2024, 3, 11, 1, 0, 0, 0, shanghai)))
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		a, b time.Time
		want int
	}{
		{date(2024, 3, 10), date(2024, 3, 10), 0},
		{date(2024, 3, 10), date(2024, 3, 11), 1},
		{date(2024, 3, 11), date(2024, 3, 10), -1},
		{time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC), 1},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, DaysBetween(c.a, c.b), "a=%v b=%v", c.a, c.b)
	}
}

func TestDaysBetween_MixedZones(t *testing.T) {
	shanghai := time.FixedZone("UTC+8", 8*60*60)

	// learned_at scanned in UTC, "now" on a server clock eight hours ahead:
	// the calendar dates differ by one day even though the two midnights are
	// less than 24h apart, and the count must not truncate to zero.
	learnedAt := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 8, 2, 1, 0, 0, 0, shanghai)

	assert.Equal(t, 1, DaysBetween(learnedAt, now))
}

func TestSameDate(t *testing.T) {
	shanghai := time.FixedZone("UTC+8", 8*60*60)

	assert.True(t, SameDate(
		time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)))
	assert.True(t, SameDate(
		time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 22, 0, 0, 0, shanghai)))
	assert.False(t, SameDate(
		time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 11, 1, 0, 0, 0, shanghai)))
}

func TestCompleteRound_DueAcrossZones(t *testing.T) {
	ladder := DefaultLadder()
	shanghai := time.FixedZone("UTC+8", 8*60*60)

	learnedAt := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 8, 2, 1, 0, 0, 0, shanghai)

	rv := ladder.FirstReview(1, learnedAt)
	got, outcome := ladder.CompleteRound(rv, learnedAt, now)
	require.Equal(t, RoundAdvanced, outcome)
	assert.Equal(t, 2, got.Round)
}
