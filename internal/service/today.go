package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/ganweibatao/DanDan-backend/internal/schedule"
	"github.com/ganweibatao/DanDan-backend/internal/store"
	"github.com/ganweibatao/DanDan-backend/internal/vocab"
)

// TodayService answers the read-side questions: what is due today (actual or
// theoretical) and the progress matrix.
type TodayService struct {
	store  store.DataStore
	vocab  vocab.Provider
	ladder schedule.LadderConfig
	now    func() time.Time
}

func NewTodayService(s store.DataStore, v vocab.Provider, ladder schedule.LadderConfig) *TodayService {
	return &TodayService{
		store:  s,
		vocab:  v,
		ladder: ladder,
		now:    time.Now,
	}
}

type TodayMode string

const (
	ModeNew    TodayMode = "new"
	ModeReview TodayMode = "review"
)

type GetTodayRequest struct {
	PlanID int64
	Mode   TodayMode
	// DayNumber switches to theoretical mode: what an idealized
	// one-unit-per-day run would be doing on that day.
	DayNumber *int
}

// UnitWithWords is a unit with its word slice resolved from the book.
type UnitWithWords struct {
	Unit  model.Unit
	Words []model.Word
}

type TodayResponse struct {
	NewUnit     *UnitWithWords
	ReviewUnits []UnitWithWords
}

// GetToday resolves the plan's due set for today. In actual mode it follows
// the learner's real history; with a day number it ignores history entirely
// and simulates the idealized run.
func (s *TodayService) GetToday(ctx context.Context, caller model.Caller, r GetTodayRequest) (TodayResponse, error) {
	if r.Mode != ModeNew && r.Mode != ModeReview {
		return TodayResponse{}, invalidArgument("mode must be new or review, got %q", r.Mode)
	}
	if r.DayNumber != nil && *r.DayNumber < 1 {
		return TodayResponse{}, invalidArgument("day number must be at least 1, got %d", *r.DayNumber)
	}

	plan, err := loadOwnedPlan(ctx, s.store, caller, r.PlanID)
	if err != nil {
		return TodayResponse{}, err
	}

	totalWords, err := s.vocab.WordCount(ctx, plan.BookID)
	if err != nil {
		return TodayResponse{}, fmt.Errorf("word count: %w", err)
	}

	var units []model.Unit
	var isNew bool
	if r.DayNumber != nil {
		units, isNew, err = s.theoretical(ctx, plan, r.Mode, *r.DayNumber, totalWords)
	} else {
		units, isNew, err = s.actual(ctx, plan, r.Mode)
	}
	if err != nil {
		return TodayResponse{}, err
	}

	var resp TodayResponse
	for _, u := range units {
		words, err := s.vocab.WordsInRange(ctx, plan.BookID, u.StartOrder, u.EndOrder)
		if err != nil {
			return TodayResponse{}, fmt.Errorf("words for unit %d: %w", u.ID, err)
		}

		uw := UnitWithWords{Unit: u, Words: words}
		if isNew {
			resp.NewUnit = &uw
		} else {
			resp.ReviewUnits = append(resp.ReviewUnits, uw)
		}
	}

	return resp, nil
}

func (s *TodayService) theoretical(ctx context.Context, plan model.Plan, mode TodayMode, day, totalWords int) ([]model.Unit, bool, error) {
	totalUnits := schedule.TotalUnits(totalWords, plan.WordsPerDay)

	if mode == ModeNew {
		n, ok := schedule.TheoreticalNewUnit(day, totalUnits)
		if !ok {
			return nil, true, nil
		}

		unit, err := s.unitByNumber(ctx, plan.ID, n)
		if err != nil {
			return nil, true, err
		}
		if unit == nil {
			return nil, true, nil
		}
		return []model.Unit{*unit}, true, nil
	}

	var units []model.Unit
	for _, n := range s.ladder.TheoreticalReviewUnits(day, totalUnits) {
		unit, err := s.unitByNumber(ctx, plan.ID, n)
		if err != nil {
			return nil, false, err
		}
		if unit != nil {
			units = append(units, *unit)
		}
	}
	return units, false, nil
}

func (s *TodayService) actual(ctx context.Context, plan model.Plan, mode TodayMode) ([]model.Unit, bool, error) {
	now := s.now()

	if mode == ModeReview {
		units, err := s.store.GetDueUnits(ctx, store.GetDueUnitsRequest{
			PlanID: plan.ID,
			Today:  schedule.DateOf(now),
		})
		if err != nil {
			return nil, false, fmt.Errorf("get due units: %w", err)
		}
		return units, false, nil
	}

	latest, err := s.store.GetLatestLearnedUnit(ctx, store.GetLatestLearnedUnitRequest{PlanID: plan.ID})
	if errors.Is(err, store.ErrNotFound) {
		// Nothing learned yet: today's work is unit #1.
		unit, err := s.unitByNumber(ctx, plan.ID, 1)
		if err != nil || unit == nil {
			return nil, true, err
		}
		return []model.Unit{*unit}, true, nil
	}
	if err != nil {
		return nil, true, fmt.Errorf("get latest learned unit: %w", err)
	}

	// A unit learned earlier today stays "today's unit" so the learner can
	// keep working the same batch.
	if latest.LearnedAt != nil && schedule.SameDate(*latest.LearnedAt, now) {
		return []model.Unit{latest}, true, nil
	}

	unit, err := s.unitByNumber(ctx, plan.ID, latest.Number+1)
	if err != nil || unit == nil {
		return nil, true, err
	}
	return []model.Unit{*unit}, true, nil
}

func (s *TodayService) unitByNumber(ctx context.Context, planID int64, number int) (*model.Unit, error) {
	unit, err := s.store.GetUnitByNumber(ctx, store.GetUnitByNumberRequest{
		PlanID: planID,
		Number: number,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("get unit #%d: %w", number, err)
	}

	return &unit, nil
}

// GetMatrix reduces the plan's full unit/review state to the progress matrix.
func (s *TodayService) GetMatrix(ctx context.Context, caller model.Caller, planID int64) (schedule.Matrix, error) {
	plan, err := loadOwnedPlan(ctx, s.store, caller, planID)
	if err != nil {
		return schedule.Matrix{}, err
	}

	totalWords, err := s.vocab.WordCount(ctx, plan.BookID)
	if err != nil {
		return schedule.Matrix{}, fmt.Errorf("word count: %w", err)
	}

	units, err := s.store.GetUnits(ctx, store.GetUnitsRequest{PlanID: planID})
	if err != nil {
		return schedule.Matrix{}, fmt.Errorf("get units: %w", err)
	}

	reviews, err := s.store.GetReviews(ctx, store.GetReviewsRequest{PlanID: planID})
	if err != nil {
		return schedule.Matrix{}, fmt.Errorf("get reviews: %w", err)
	}

	byUnit := make(map[int64]model.Review, len(reviews))
	for _, rv := range reviews {
		byUnit[rv.UnitID] = rv
	}

	return schedule.BuildMatrix(schedule.MatrixInput{
		TotalWords:  totalWords,
		WordsPerDay: plan.WordsPerDay,
		Units:       units,
		Reviews:     byUnit,
	}), nil
}
