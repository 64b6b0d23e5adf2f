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
)

// StageService runs the per-word stage engine. It is an independent ladder
// from the unit reviews: its records never feed the today or matrix queries.
type StageService struct {
	store  store.DataStore
	stages schedule.StageConfig
	now    func() time.Time
}

func NewStageService(s store.DataStore, stages schedule.StageConfig) *StageService {
	return &StageService{
		store:  s,
		stages: stages,
		now:    time.Now,
	}
}

type InitializeStagesRequest struct {
	PlanID  int64
	WordIDs []int64
}

// InitializeStages creates a stage-0 record for every word not already
// tracked by the plan, dated today, and returns the number created.
// Re-invocation with overlapping word sets is a no-op for words already
// present.
func (s *StageService) InitializeStages(ctx context.Context, caller model.Caller, r InitializeStagesRequest) (int, error) {
	if len(r.WordIDs) == 0 {
		return 0, invalidArgument("word ids must not be empty")
	}

	if _, err := loadOwnedPlan(ctx, s.store, caller, r.PlanID); err != nil {
		return 0, err
	}

	var created int
	err := s.store.WithinTx(ctx, func(tx store.DataStore) error {
		existing, err := tx.GetStagedWordIDs(ctx, store.GetStagedWordIDsRequest{
			PlanID:  r.PlanID,
			WordIDs: r.WordIDs,
		})
		if err != nil {
			return fmt.Errorf("get staged word ids: %w", err)
		}

		known := make(map[int64]struct{}, len(existing))
		for _, id := range existing {
			known[id] = struct{}{}
		}

		today := s.now()
		var stages []model.WordStage
		for _, id := range r.WordIDs {
			if _, ok := known[id]; ok {
				continue
			}
			stages = append(stages, s.stages.NewWordStage(r.PlanID, id, today))
		}
		if len(stages) == 0 {
			return nil
		}

		created, err = tx.InsertWordStages(ctx, store.InsertWordStagesRequest{Stages: stages})
		if err != nil {
			return fmt.Errorf("insert word stages: %w", err)
		}

		return nil
	})
	if err != nil {
		var se *serr.ServiceError
		if errors.As(err, &se) {
			return 0, se
		}

		return 0, fmt.Errorf("initialize stages: %w", err)
	}

	return created, nil
}

type AdvanceStageResponse struct {
	Stage model.WordStage
	// Advanced is false when the word was already mastered.
	Advanced bool
}

// AdvanceStage moves a word one stage up the ladder. Advancing a mastered
// word is a benign no-op returning the current record, so retried client
// calls are safe.
func (s *StageService) AdvanceStage(ctx context.Context, caller model.Caller, planID, wordID int64) (AdvanceStageResponse, error) {
	if _, err := loadOwnedPlan(ctx, s.store, caller, planID); err != nil {
		return AdvanceStageResponse{}, err
	}

	var result AdvanceStageResponse
	err := s.store.WithinTx(ctx, func(tx store.DataStore) error {
		ws, err := tx.GetWordStage(ctx, store.GetWordStageRequest{
			PlanID: planID,
			WordID: wordID,
		})
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				se := serr.NewServiceError(err, http.StatusNotFound, "word stage not found")
				se.Env["plan_id"] = fmt.Sprintf("%d", planID)
				se.Env["word_id"] = fmt.Sprintf("%d", wordID)
				return se
			}

			return fmt.Errorf("get word stage: %w", err)
		}

		advanced, ok := s.stages.Advance(ws, s.now())
		if !ok {
			result = AdvanceStageResponse{Stage: ws}
			return nil
		}

		if err := tx.UpdateWordStage(ctx, store.UpdateWordStageRequest{Stage: advanced}); err != nil {
			return fmt.Errorf("update word stage: %w", err)
		}

		result = AdvanceStageResponse{Stage: advanced, Advanced: true}
		return nil
	})
	if err != nil {
		var se *serr.ServiceError
		if errors.As(err, &se) {
			return AdvanceStageResponse{}, se
		}

		return AdvanceStageResponse{}, fmt.Errorf("advance stage: %w", err)
	}

	return result, nil
}
