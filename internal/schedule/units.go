package schedule

import (
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/model"
)

// TotalUnits is the theoretical unit count for a book: ceil(totalWords/batch).
func TotalUnits(totalWords, batch int) int {
	if batch <= 0 {
		return 0
	}
	return (totalWords + batch - 1) / batch
}

// FirstUnit builds unit #1 for a plan, spanning [1, min(batch, totalWords)].
func FirstUnit(planID int64, batch, totalWords int, expectedLearnDate time.Time) model.Unit {
	end := batch
	if end > totalWords {
		end = totalWords
	}
	return model.Unit{
		PlanID:            planID,
		Number:            1,
		StartOrder:        1,
		EndOrder:          end,
		ExpectedLearnDate: DateOf(expectedLearnDate),
	}
}

// NextUnit builds the unit following a just-learned one, or reports false when
// the book is exhausted. Generation is strictly one ahead: the next unit
// starts right after the current unit's end order, so widened units shift the
// remaining ranges rather than duplicating words.
func NextUnit(current model.Unit, batch, totalWords int) (model.Unit, bool) {
	if current.Number+1 > TotalUnits(totalWords, batch) {
		return model.Unit{}, false
	}
	if current.EndOrder >= totalWords {
		return model.Unit{}, false
	}

	end := current.EndOrder + batch
	if end > totalWords {
		end = totalWords
	}
	return model.Unit{
		PlanID:            current.PlanID,
		Number:            current.Number + 1,
		StartOrder:        current.EndOrder + 1,
		EndOrder:          end,
		ExpectedLearnDate: current.ExpectedLearnDate.AddDate(0, 0, 1),
	}, true
}

// WidenUnit extends a unit's end order by up to extra words, capped at the
// book's last word. It reports false when the unit already reaches the end of
// the book or extra is not positive.
func WidenUnit(u model.Unit, extra, totalWords int) (model.Unit, bool) {
	if extra <= 0 || u.EndOrder >= totalWords {
		return u, false
	}

	end := u.EndOrder + extra
	if end > totalWords {
		end = totalWords
	}
	u.EndOrder = end
	return u, true
}
