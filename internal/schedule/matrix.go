package schedule

import "github.com/ganweibatao/DanDan-backend/internal/model"

// MatrixInput is the full unit/review state of one plan.
type MatrixInput struct {
	TotalWords  int
	WordsPerDay int
	Units       []model.Unit
	// Reviews maps unit ID to the unit's current review row.
	Reviews map[int64]model.Review
}

// UnitStatus is the per-unit slice of the matrix.
type UnitStatus struct {
	Number     int
	StartOrder int
	EndOrder   int
	IsLearned  bool
	// Round is 0 until the unit's ladder starts.
	Round      int
	ReviewDone bool
	ReviewDate string
}

// Matrix is the compact, read-only projection of a plan's progress.
type Matrix struct {
	TotalUnits    int
	MaxUnitNumber int
	// HasUnusedCapacity is set when the most advanced unit holds fewer words
	// than a full batch while the book still has units to generate, signalling
	// that more new-word units fit without reconfiguring the plan.
	HasUnusedCapacity bool
	Units             []UnitStatus
}

// BuildMatrix reduces a plan's units and reviews to a Matrix. The trailing
// partially-filled, not-yet-learned unit is a placeholder and is left out of
// the unit list.
func BuildMatrix(in MatrixInput) Matrix {
	m := Matrix{
		TotalUnits: TotalUnits(in.TotalWords, in.WordsPerDay),
	}

	var last model.Unit
	for _, u := range in.Units {
		if u.Number > m.MaxUnitNumber {
			m.MaxUnitNumber = u.Number
			last = u
		}
	}

	if m.MaxUnitNumber > 0 {
		m.HasUnusedCapacity = last.Width() < in.WordsPerDay && len(in.Units) < m.TotalUnits
	}

	for _, u := range in.Units {
		if u.Number == m.MaxUnitNumber && !u.IsLearned && u.Width() < in.WordsPerDay {
			continue
		}

		st := UnitStatus{
			Number:     u.Number,
			StartOrder: u.StartOrder,
			EndOrder:   u.EndOrder,
			IsLearned:  u.IsLearned,
		}
		if rv, ok := in.Reviews[u.ID]; ok {
			st.Round = rv.Round
			st.ReviewDone = rv.IsCompleted
			st.ReviewDate = rv.ScheduledDate.Format("2006-01-02")
		}
		m.Units = append(m.Units, st)
	}

	return m
}
