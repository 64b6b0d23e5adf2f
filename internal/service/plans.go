package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/ganweibatao/DanDan-backend/internal/pkg/serr"
	"github.com/ganweibatao/DanDan-backend/internal/schedule"
	"github.com/ganweibatao/DanDan-backend/internal/store"
	"github.com/ganweibatao/DanDan-backend/internal/vocab"
	"github.com/google/uuid"
)

// PlanService owns the plan lifecycle: upsert keyed by (learner, book),
// activation, and the destructive regeneration that a batch-size or
// supervisor change triggers.
type PlanService struct {
	store store.DataStore
	vocab vocab.Provider
	now   func() time.Time
}

func NewPlanService(s store.DataStore, v vocab.Provider) *PlanService {
	return &PlanService{
		store: s,
		vocab: v,
		now:   time.Now,
	}
}

type UpsertPlanRequest struct {
	LearnerID    uuid.UUID
	SupervisorID *uuid.UUID
	BookID       int64
	WordsPerDay  int
	StartDate    time.Time
	IsActive     bool
}

type UpsertPlanResponse struct {
	Plan model.Plan
	// Created distinguishes 201 from 200.
	Created bool
}

// UpsertPlan creates or updates the plan identified by (learner, book).
// Creation also creates unit #1. Changing the batch size or the supervisor
// on an existing plan regenerates the unit set from scratch; the replaced
// rows are logged for audit. Activating a plan deactivates the learner's
// other plans in the same transaction.
func (s *PlanService) UpsertPlan(ctx context.Context, caller model.Caller, r UpsertPlanRequest) (UpsertPlanResponse, error) {
	if r.WordsPerDay <= 0 {
		return UpsertPlanResponse{}, invalidArgument("words per day must be positive, got %d", r.WordsPerDay)
	}
	if !s.mayManage(caller, r) {
		return UpsertPlanResponse{}, forbidden()
	}

	totalWords, err := s.vocab.WordCount(ctx, r.BookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			se := serr.NewServiceError(err, http.StatusNotFound, "book not found")
			se.Env["book_id"] = fmt.Sprintf("%d", r.BookID)
			return UpsertPlanResponse{}, se
		}

		return UpsertPlanResponse{}, fmt.Errorf("word count: %w", err)
	}

	startDate := r.StartDate
	if startDate.IsZero() {
		startDate = schedule.DateOf(s.now())
	}

	var resp UpsertPlanResponse
	err = s.store.WithinTx(ctx, func(tx store.DataStore) error {
		existing, err := tx.GetPlanByLearnerAndBook(ctx, store.GetPlanByLearnerAndBookRequest{
			LearnerID: r.LearnerID,
			BookID:    r.BookID,
		})
		switch {
		case errors.Is(err, store.ErrNotFound):
			resp, err = s.createPlan(ctx, tx, r, startDate, totalWords)
		case err != nil:
			return fmt.Errorf("get plan by learner and book: %w", err)
		default:
			resp, err = s.updatePlan(ctx, tx, existing, r, totalWords)
		}
		if err != nil {
			return err
		}

		if resp.Plan.IsActive {
			err := tx.DeactivateOtherPlans(ctx, store.DeactivateOtherPlansRequest{
				LearnerID:  r.LearnerID,
				KeepPlanID: resp.Plan.ID,
			})
			if err != nil {
				return fmt.Errorf("deactivate other plans: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		var se *serr.ServiceError
		if errors.As(err, &se) {
			return UpsertPlanResponse{}, se
		}

		return UpsertPlanResponse{}, fmt.Errorf("upsert plan: %w", err)
	}

	return resp, nil
}

// mayManage: learners manage their own plans, supervisors the plans they
// supervise, admins anything.
func (s *PlanService) mayManage(caller model.Caller, r UpsertPlanRequest) bool {
	switch caller.Role {
	case model.RoleAdmin:
		return true
	case model.RoleSupervisor:
		return r.SupervisorID != nil && *r.SupervisorID == caller.ID
	default:
		return r.LearnerID == caller.ID
	}
}

func (s *PlanService) createPlan(ctx context.Context, tx store.DataStore, r UpsertPlanRequest, startDate time.Time, totalWords int) (UpsertPlanResponse, error) {
	planID, err := tx.InsertPlan(ctx, store.InsertPlanRequest{
		LearnerID:    r.LearnerID,
		SupervisorID: r.SupervisorID,
		BookID:       r.BookID,
		WordsPerDay:  r.WordsPerDay,
		StartDate:    startDate,
		IsActive:     r.IsActive,
	})
	if err != nil {
		return UpsertPlanResponse{}, fmt.Errorf("insert plan: %w", err)
	}

	first := schedule.FirstUnit(planID, r.WordsPerDay, totalWords, startDate)
	if _, err := tx.InsertUnit(ctx, store.InsertUnitRequest{Unit: first}); err != nil {
		return UpsertPlanResponse{}, fmt.Errorf("insert first unit: %w", err)
	}

	return UpsertPlanResponse{
		Plan: model.Plan{
			ID:           planID,
			LearnerID:    r.LearnerID,
			SupervisorID: r.SupervisorID,
			BookID:       r.BookID,
			WordsPerDay:  r.WordsPerDay,
			StartDate:    startDate,
			IsActive:     r.IsActive,
		},
		Created: true,
	}, nil
}

func (s *PlanService) updatePlan(ctx context.Context, tx store.DataStore, existing model.Plan, r UpsertPlanRequest, totalWords int) (UpsertPlanResponse, error) {
	regenerate := existing.WordsPerDay != r.WordsPerDay || !sameSupervisor(existing.SupervisorID, r.SupervisorID)

	updated := existing
	updated.SupervisorID = r.SupervisorID
	updated.WordsPerDay = r.WordsPerDay
	updated.IsActive = r.IsActive
	if !r.StartDate.IsZero() {
		updated.StartDate = schedule.DateOf(r.StartDate)
	}

	err := tx.UpdatePlan(ctx, store.UpdatePlanRequest{
		ID:           updated.ID,
		SupervisorID: updated.SupervisorID,
		WordsPerDay:  updated.WordsPerDay,
		StartDate:    updated.StartDate,
		IsActive:     updated.IsActive,
	})
	if err != nil {
		return UpsertPlanResponse{}, fmt.Errorf("update plan: %w", err)
	}

	if regenerate {
		if err := s.regenerateUnits(ctx, tx, updated, totalWords); err != nil {
			return UpsertPlanResponse{}, err
		}
	}

	return UpsertPlanResponse{Plan: updated}, nil
}

// regenerateUnits replaces the plan's unit set with a fresh unit #1. The
// delete returns the replaced rows so the destruction leaves a trace in the
// logs instead of silently cascading.
func (s *PlanService) regenerateUnits(ctx context.Context, tx store.DataStore, plan model.Plan, totalWords int) error {
	dropped, err := tx.DeleteUnits(ctx, store.DeleteUnitsRequest{PlanID: plan.ID})
	if err != nil {
		return fmt.Errorf("delete units: %w", err)
	}

	slog.Info("plan units regenerated",
		"plan_id", plan.ID,
		"learner_id", plan.LearnerID,
		"words_per_day", plan.WordsPerDay,
		"dropped_units", len(dropped.Units),
		"dropped_reviews", len(dropped.Reviews))

	first := schedule.FirstUnit(plan.ID, plan.WordsPerDay, totalWords, schedule.DateOf(s.now()))
	if _, err := tx.InsertUnit(ctx, store.InsertUnitRequest{Unit: first}); err != nil {
		return fmt.Errorf("insert first unit: %w", err)
	}

	return nil
}

func sameSupervisor(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// PlanProgress is a plan plus a compact progress summary for listings.
type PlanProgress struct {
	Plan         model.Plan
	TotalUnits   int
	LearnedUnits int
	Percent      int
}

// ListPlans returns the caller's plans with progress: a learner sees their
// own plans, a supervisor the plans they supervise.
func (s *PlanService) ListPlans(ctx context.Context, caller model.Caller) ([]PlanProgress, error) {
	req := store.GetPlansRequest{}
	if caller.Role == model.RoleSupervisor {
		req.SupervisorID = &caller.ID
	} else {
		req.LearnerID = &caller.ID
	}

	plans, err := s.store.GetPlans(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("get plans: %w", err)
	}
	if len(plans) == 0 {
		return nil, nil
	}

	planIDs := make([]int64, len(plans))
	for i, p := range plans {
		planIDs[i] = p.ID
	}
	counts, err := s.store.GetUnitCounts(ctx, store.GetUnitCountsRequest{PlanIDs: planIDs})
	if err != nil {
		return nil, fmt.Errorf("get unit counts: %w", err)
	}

	out := make([]PlanProgress, 0, len(plans))
	for _, p := range plans {
		totalWords, err := s.vocab.WordCount(ctx, p.BookID)
		if err != nil {
			return nil, fmt.Errorf("word count for book %d: %w", p.BookID, err)
		}

		pp := PlanProgress{
			Plan:         p,
			TotalUnits:   schedule.TotalUnits(totalWords, p.WordsPerDay),
			LearnedUnits: counts[p.ID].Learned,
		}
		if pp.TotalUnits > 0 {
			pp.Percent = pp.LearnedUnits * 100 / pp.TotalUnits
		}
		out = append(out, pp)
	}

	return out, nil
}
