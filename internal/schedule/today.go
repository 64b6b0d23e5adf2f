package schedule

// Theoretical today resolution: what an idealized one-unit-per-day run looks
// like on day N, independent of actual learner history.

// TheoreticalNewUnit returns the unit number studied on the given day of an
// idealized run, or false when the day falls outside the plan.
func TheoreticalNewUnit(dayNumber, totalUnits int) (int, bool) {
	if dayNumber < 1 || dayNumber > totalUnits {
		return 0, false
	}
	return dayNumber, true
}

// TheoreticalReviewUnits returns the unit numbers due for review on the given
// day of an idealized run: dayNumber minus each due offset, filtered to
// [1, totalUnits]. Offsets larger than the elapsed days simply drop out.
func (c LadderConfig) TheoreticalReviewUnits(dayNumber, totalUnits int) []int {
	var units []int
	for _, offset := range c.DueOffsets {
		n := dayNumber - offset
		if n >= 1 && n <= totalUnits {
			units = append(units, n)
		}
	}
	return units
}
