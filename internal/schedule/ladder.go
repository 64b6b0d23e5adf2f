// Package schedule holds the pure scheduling core: unit partitioning, the
// five-round review ladder, the per-word stage engine, and the theoretical
// today/matrix reductions. Nothing in this package touches storage; interval
// tables are injected as immutable configuration at construction.
package schedule

import (
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/model"
)

// LadderConfig fixes the review ladder timing. DueOffsets[i] is the number of
// days after a unit is learned at which round i+1 falls due. Advance[i] is the
// number of days added to the scheduled date when round i+1 is completed.
type LadderConfig struct {
	DueOffsets []int
	Advance    []int
}

// DefaultLadder returns the Ebbinghaus-aligned five-round ladder.
func DefaultLadder() LadderConfig {
	return LadderConfig{
		DueOffsets: []int{1, 2, 4, 7, 15},
		Advance:    []int{2, 4, 7, 15},
	}
}

// Rounds is the number of rounds on the ladder.
func (c LadderConfig) Rounds() int {
	return len(c.DueOffsets)
}

// FirstReview builds the initial review row for a unit learned at learnedAt:
// round 1, due the following day.
func (c LadderConfig) FirstReview(unitID int64, learnedAt time.Time) model.Review {
	return model.Review{
		UnitID:        unitID,
		Round:         1,
		ScheduledDate: DateOf(learnedAt).AddDate(0, 0, 1),
	}
}

// TheoreticalRound returns the highest round whose due offset has been
// reached after daysSinceLearned days, or 0 if none is due yet.
func (c LadderConfig) TheoreticalRound(daysSinceLearned int) int {
	round := 0
	for i, offset := range c.DueOffsets {
		if daysSinceLearned >= offset {
			round = i + 1
		}
	}
	return round
}

// RoundOutcome describes what CompleteRound did to the review row.
type RoundOutcome int

const (
	// RoundUnchanged means a guard held: either no round is due yet or the
	// row is already at or past the round time allows. Safe to surface as a
	// benign no-op.
	RoundUnchanged RoundOutcome = iota
	// RoundAdvanced means the row now represents the next round.
	RoundAdvanced
	// RoundFinished means the final round was completed and the ladder
	// terminated; the row is marked completed and will not change again.
	RoundFinished
)

// CompleteRound applies one catch-up step to a unit's current review round.
// The caller is expected to hold a row lock on the review so two concurrent
// completions cannot both pass the theoretical-round guard.
//
// A single call advances at most one round: an overdue learner catches up
// round by round, never skipping any, and repeated calls never push the row
// past the round the elapsed time allows.
func (c LadderConfig) CompleteRound(rv model.Review, learnedAt, now time.Time) (model.Review, RoundOutcome) {
	if rv.IsCompleted {
		return rv, RoundUnchanged
	}

	theoretical := c.TheoreticalRound(DaysBetween(learnedAt, now))
	if theoretical == 0 {
		return rv, RoundUnchanged
	}
	if rv.Round > theoretical {
		return rv, RoundUnchanged
	}

	if rv.Round >= c.Rounds() {
		completedAt := now
		rv.IsCompleted = true
		rv.CompletedAt = &completedAt
		return rv, RoundFinished
	}

	rv.ScheduledDate = rv.ScheduledDate.AddDate(0, 0, c.Advance[rv.Round-1])
	rv.Round++
	rv.IsCompleted = false
	rv.CompletedAt = nil
	return rv, RoundAdvanced
}
