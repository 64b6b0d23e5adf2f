package schedule

import (
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/model"
)

// StageConfig fixes the word-stage engine timing. Intervals is indexed by the
// target stage: advancing into stage n schedules the next review Intervals[n]
// days out. MaxStage is the mastered stage, which receives no scheduling.
type StageConfig struct {
	Intervals []int
	MaxStage  int
}

// DefaultStages returns the seven-stage (0..6) forgetting-curve ladder.
func DefaultStages() StageConfig {
	return StageConfig{
		Intervals: []int{0, 1, 1, 2, 3, 7},
		MaxStage:  6,
	}
}

// NewWordStage builds a stage-0 record for a word: immediately eligible, with
// the next review date equal to the start date.
func (c StageConfig) NewWordStage(planID, wordID int64, startDate time.Time) model.WordStage {
	start := DateOf(startDate)
	next := start
	return model.WordStage{
		PlanID:         planID,
		WordID:         wordID,
		Stage:          0,
		StartDate:      start,
		NextReviewDate: &next,
	}
}

// Advance moves a word one stage up. It reports false when the word is
// already mastered, leaving the record untouched; repeated calls are safe.
// Entering the final stage clears the next review date for good.
func (c StageConfig) Advance(ws model.WordStage, now time.Time) (model.WordStage, bool) {
	if ws.Stage >= c.MaxStage {
		return ws, false
	}

	reviewedAt := now
	ws.Stage++
	ws.LastReviewedAt = &reviewedAt

	if ws.Stage >= c.MaxStage {
		ws.NextReviewDate = nil
		return ws, true
	}

	next := DateOf(now).AddDate(0, 0, c.Intervals[ws.Stage])
	ws.NextReviewDate = &next
	return ws, true
}

// IsDue reports whether a word needs attention today. Stage 0 is always due,
// the mastered stage never is, and anything else is due once its next review
// date has arrived.
func (c StageConfig) IsDue(ws model.WordStage, today time.Time) bool {
	switch {
	case ws.Stage == 0:
		return true
	case ws.Stage >= c.MaxStage:
		return false
	case ws.NextReviewDate == nil:
		return false
	default:
		return !DateOf(today).Before(DateOf(*ws.NextReviewDate))
	}
}
