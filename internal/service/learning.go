package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/ganweibatao/DanDan-backend/internal/pkg/serr"
	"github.com/ganweibatao/DanDan-backend/internal/schedule"
	"github.com/ganweibatao/DanDan-backend/internal/store"
	"github.com/ganweibatao/DanDan-backend/internal/vocab"
)

// LearningService handles the learner's mutating actions: marking a unit
// learned, completing a review round, and widening a unit. Each runs inside
// one transaction with the target row locked, so the check-then-mutate
// sequences cannot interleave.
type LearningService struct {
	store  store.DataStore
	vocab  vocab.Provider
	ladder schedule.LadderConfig
	now    func() time.Time
}

func NewLearningService(s store.DataStore, v vocab.Provider, ladder schedule.LadderConfig) *LearningService {
	return &LearningService{
		store:  s,
		vocab:  v,
		ladder: ladder,
		now:    time.Now,
	}
}

type MarkUnitLearnedRequest struct {
	UnitID int64
	// Optional replacement range for the sitting actually studied.
	OverrideStart *int
	OverrideEnd   *int
}

// MarkUnitLearned marks a unit learned for the first time and applies the
// side effects atomically: round 1 of the review ladder is created due
// tomorrow, and the next one-ahead unit is generated if the book has words
// left. Re-marking an already learned unit is a benign no-op returning the
// current state.
func (s *LearningService) MarkUnitLearned(ctx context.Context, caller model.Caller, r MarkUnitLearnedRequest) (model.Unit, error) {
	if err := validateOverride(r.OverrideStart, r.OverrideEnd); err != nil {
		return model.Unit{}, err
	}

	var result model.Unit
	err := s.store.WithinTx(ctx, func(tx store.DataStore) error {
		unit, err := s.loadOwnedUnit(ctx, tx, caller, r.UnitID)
		if err != nil {
			return err
		}

		if unit.IsLearned {
			result = unit
			return nil
		}

		plan, err := tx.GetPlan(ctx, store.GetPlanRequest{ID: unit.PlanID})
		if err != nil {
			return fmt.Errorf("get plan %d: %w", unit.PlanID, err)
		}

		totalWords, err := s.vocab.WordCount(ctx, plan.BookID)
		if err != nil {
			return fmt.Errorf("word count: %w", err)
		}

		if r.OverrideStart != nil {
			unit.StartOrder = *r.OverrideStart
			unit.EndOrder = *r.OverrideEnd
			if unit.EndOrder > totalWords {
				return invalidArgument("override range exceeds the book's %d words", totalWords)
			}
		}

		now := s.now()
		unit.IsLearned = true
		unit.LearnedAt = &now
		if err := tx.UpdateUnit(ctx, store.UpdateUnitRequest{Unit: unit}); err != nil {
			return fmt.Errorf("update unit: %w", err)
		}

		first := s.ladder.FirstReview(unit.ID, now)
		if _, err := tx.InsertReview(ctx, store.InsertReviewRequest{Review: first}); err != nil {
			return fmt.Errorf("insert first review: %w", err)
		}

		if next, ok := schedule.NextUnit(unit, plan.WordsPerDay, totalWords); ok {
			_, err := tx.InsertUnit(ctx, store.InsertUnitRequest{Unit: next})
			if err != nil && !errors.Is(err, store.ErrExists) {
				return fmt.Errorf("insert next unit: %w", err)
			}
		}

		result = unit
		return nil
	})
	if err != nil {
		var se *serr.ServiceError
		if errors.As(err, &se) {
			return model.Unit{}, se
		}

		return model.Unit{}, fmt.Errorf("mark unit learned: %w", err)
	}

	return result, nil
}

type CompleteReviewResponse struct {
	Review model.Review
	// Advanced is false when a guard held and nothing changed.
	Advanced bool
	Finished bool
}

// CompleteReviewRound advances a review one catch-up step. The review row is
// locked for the duration of the transaction so two concurrent completions
// serialize and the second one hits the theoretical-round guard.
func (s *LearningService) CompleteReviewRound(ctx context.Context, caller model.Caller, reviewID int64) (CompleteReviewResponse, error) {
	var result CompleteReviewResponse
	err := s.store.WithinTx(ctx, func(tx store.DataStore) error {
		resp, err := tx.GetReview(ctx, store.GetReviewRequest{ID: reviewID, ForUpdate: true})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				se := serr.NewServiceError(err, http.StatusNotFound, "review not found")
				se.Env["review_id"] = fmt.Sprintf("%d", reviewID)
				return se
			}

			return fmt.Errorf("get review %d: %w", reviewID, err)
		}
		if !canAccessPlan(caller, resp.Plan) {
			return forbidden()
		}
		if resp.Unit.LearnedAt == nil {
			return fmt.Errorf("review %d references unlearned unit %d", reviewID, resp.Unit.ID)
		}

		rv, outcome := s.ladder.CompleteRound(resp.Review, *resp.Unit.LearnedAt, s.now())
		if outcome != schedule.RoundUnchanged {
			if err := tx.UpdateReview(ctx, store.UpdateReviewRequest{Review: rv}); err != nil {
				return fmt.Errorf("update review: %w", err)
			}
		}

		result = CompleteReviewResponse{
			Review:   rv,
			Advanced: outcome == schedule.RoundAdvanced,
			Finished: outcome == schedule.RoundFinished,
		}
		return nil
	})
	if err != nil {
		var se *serr.ServiceError
		if errors.As(err, &se) {
			return CompleteReviewResponse{}, se
		}

		return CompleteReviewResponse{}, fmt.Errorf("complete review round: %w", err)
	}

	return result, nil
}

type WidenUnitRequest struct {
	UnitID     int64
	ExtraCount int
}

// WidenUnit extends a unit by up to ExtraCount extra words, capped at the
// book's last word.
func (s *LearningService) WidenUnit(ctx context.Context, caller model.Caller, r WidenUnitRequest) (model.Unit, error) {
	if r.ExtraCount <= 0 {
		return model.Unit{}, invalidArgument("extra count must be positive, got %d", r.ExtraCount)
	}

	var result model.Unit
	err := s.store.WithinTx(ctx, func(tx store.DataStore) error {
		unit, err := s.loadOwnedUnit(ctx, tx, caller, r.UnitID)
		if err != nil {
			return err
		}

		plan, err := tx.GetPlan(ctx, store.GetPlanRequest{ID: unit.PlanID})
		if err != nil {
			return fmt.Errorf("get plan %d: %w", unit.PlanID, err)
		}

		totalWords, err := s.vocab.WordCount(ctx, plan.BookID)
		if err != nil {
			return fmt.Errorf("word count: %w", err)
		}

		widened, ok := schedule.WidenUnit(unit, r.ExtraCount, totalWords)
		if !ok {
			se := serr.NewServiceError(nil, http.StatusConflict, "unit already spans the end of the book")
			se.Env["unit_id"] = fmt.Sprintf("%d", unit.ID)
			return se
		}

		if err := tx.UpdateUnit(ctx, store.UpdateUnitRequest{Unit: widened}); err != nil {
			return fmt.Errorf("update unit: %w", err)
		}

		result = widened
		return nil
	})
	if err != nil {
		var se *serr.ServiceError
		if errors.As(err, &se) {
			return model.Unit{}, se
		}

		return model.Unit{}, fmt.Errorf("widen unit: %w", err)
	}

	return result, nil
}

// loadOwnedUnit locks the unit row and enforces plan visibility.
func (s *LearningService) loadOwnedUnit(ctx context.Context, tx store.DataStore, caller model.Caller, unitID int64) (model.Unit, error) {
	unit, err := tx.GetUnit(ctx, store.GetUnitRequest{ID: unitID, ForUpdate: true})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			se := serr.NewServiceError(err, http.StatusNotFound, "unit not found")
			se.Env["unit_id"] = fmt.Sprintf("%d", unitID)
			return model.Unit{}, se
		}

		return model.Unit{}, fmt.Errorf("get unit %d: %w", unitID, err)
	}

	plan, err := tx.GetPlan(ctx, store.GetPlanRequest{ID: unit.PlanID})
	if err != nil {
		return model.Unit{}, fmt.Errorf("get plan %d: %w", unit.PlanID, err)
	}
	if !canAccessPlan(caller, plan) {
		return model.Unit{}, forbidden()
	}

	return unit, nil
}

func validateOverride(start, end *int) error {
	if start == nil && end == nil {
		return nil
	}
	if start == nil || end == nil {
		return invalidArgument("override start and end must be given together")
	}
	if *start < 1 || *end < *start {
		return invalidArgument("invalid override range [%d, %d]", *start, *end)
	}
	return nil
}
