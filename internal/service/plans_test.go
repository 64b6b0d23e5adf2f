package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/ganweibatao/DanDan-backend/internal/pkg/serr"
	"github.com/ganweibatao/DanDan-backend/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertPlan_Create(t *testing.T) {
	learner := uuid.New()
	var insertedUnits []store.InsertUnitRequest
	var deactivated []store.DeactivateOtherPlansRequest

	ms := &mockStore{
		getPlanByLearnerAndBook: func(ctx context.Context, r store.GetPlanByLearnerAndBookRequest) (model.Plan, error) {
			return model.Plan{}, store.ErrNotFound
		},
		insertPlan: func(ctx context.Context, r store.InsertPlanRequest) (int64, error) {
			return 7, nil
		},
		insertUnit: func(ctx context.Context, r store.InsertUnitRequest) (int64, error) {
			insertedUnits = append(insertedUnits, r)
			return 1, nil
		},
		deactivateOtherPlans: func(ctx context.Context, r store.DeactivateOtherPlansRequest) error {
			deactivated = append(deactivated, r)
			return nil
		},
	}

	svc := NewPlanService(ms, fixedVocab(45))
	resp, err := svc.UpsertPlan(context.Background(), learnerCaller(learner), UpsertPlanRequest{
		LearnerID:   learner,
		BookID:      3,
		WordsPerDay: 20,
		IsActive:    true,
	})
	require.NoError(t, err)

	assert.True(t, resp.Created)
	assert.Equal(t, int64(7), resp.Plan.ID)

	require.Len(t, insertedUnits, 1)
	first := insertedUnits[0].Unit
	assert.Equal(t, int64(7), first.PlanID)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 1, first.StartOrder)
	assert.Equal(t, 20, first.EndOrder)

	require.Len(t, deactivated, 1)
	assert.Equal(t, int64(7), deactivated[0].KeepPlanID)
}

func TestUpsertPlan_UpdateWithoutRegeneration(t *testing.T) {
	learner := uuid.New()
	existing := model.Plan{
		ID:          7,
		LearnerID:   learner,
		BookID:      3,
		WordsPerDay: 20,
		StartDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
	}

	var updates []store.UpdatePlanRequest
	ms := &mockStore{
		getPlanByLearnerAndBook: func(ctx context.Context, r store.GetPlanByLearnerAndBookRequest) (model.Plan, error) {
			return existing, nil
		},
		updatePlan: func(ctx context.Context, r store.UpdatePlanRequest) error {
			updates = append(updates, r)
			return nil
		},
		deactivateOtherPlans: func(ctx context.Context, r store.DeactivateOtherPlansRequest) error {
			return nil
		},
		deleteUnits: func(ctx context.Context, r store.DeleteUnitsRequest) (store.DeleteUnitsResponse, error) {
			t.Fatal("units must not be regenerated when the batch size is unchanged")
			return store.DeleteUnitsResponse{}, nil
		},
	}

	svc := NewPlanService(ms, fixedVocab(45))
	resp, err := svc.UpsertPlan(context.Background(), learnerCaller(learner), UpsertPlanRequest{
		LearnerID:   learner,
		BookID:      3,
		WordsPerDay: 20,
		IsActive:    true,
	})
	require.NoError(t, err)

	assert.False(t, resp.Created)
	require.Len(t, updates, 1)
}

func TestUpsertPlan_BatchSizeChangeRegenerates(t *testing.T) {
	learner := uuid.New()
	existing := model.Plan{ID: 7, LearnerID: learner, BookID: 3, WordsPerDay: 20}

	var deleted, inserted int
	ms := &mockStore{
		getPlanByLearnerAndBook: func(ctx context.Context, r store.GetPlanByLearnerAndBookRequest) (model.Plan, error) {
			return existing, nil
		},
		updatePlan: func(ctx context.Context, r store.UpdatePlanRequest) error {
			return nil
		},
		deleteUnits: func(ctx context.Context, r store.DeleteUnitsRequest) (store.DeleteUnitsResponse, error) {
			deleted++
			return store.DeleteUnitsResponse{
				Units: []model.Unit{{ID: 1, PlanID: 7, Number: 1}},
			}, nil
		},
		insertUnit: func(ctx context.Context, r store.InsertUnitRequest) (int64, error) {
			inserted++
			assert.Equal(t, 1, r.Unit.Number)
			assert.Equal(t, 1, r.Unit.StartOrder)
			assert.Equal(t, 10, r.Unit.EndOrder)
			return 2, nil
		},
	}

	svc := NewPlanService(ms, fixedVocab(45))
	resp, err := svc.UpsertPlan(context.Background(), learnerCaller(learner), UpsertPlanRequest{
		LearnerID:   learner,
		BookID:      3,
		WordsPerDay: 10,
	})
	require.NoError(t, err)

	assert.False(t, resp.Created)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, inserted)
}

func TestUpsertPlan_Invalid(t *testing.T) {
	learner := uuid.New()
	svc := NewPlanService(&mockStore{}, fixedVocab(45))

	_, err := svc.UpsertPlan(context.Background(), learnerCaller(learner), UpsertPlanRequest{
		LearnerID:   learner,
		BookID:      3,
		WordsPerDay: 0,
	})

	var se *serr.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
}

func TestUpsertPlan_ForeignLearnerForbidden(t *testing.T) {
	svc := NewPlanService(&mockStore{}, fixedVocab(45))

	_, err := svc.UpsertPlan(context.Background(), learnerCaller(uuid.New()), UpsertPlanRequest{
		LearnerID:   uuid.New(),
		BookID:      3,
		WordsPerDay: 20,
	})

	var se *serr.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
}

func TestUpsertPlan_SupervisorCreatesForLearner(t *testing.T) {
	learner := uuid.New()
	supervisor := uuid.New()

	ms := &mockStore{
		getPlanByLearnerAndBook: func(ctx context.Context, r store.GetPlanByLearnerAndBookRequest) (model.Plan, error) {
			return model.Plan{}, store.ErrNotFound
		},
		insertPlan: func(ctx context.Context, r store.InsertPlanRequest) (int64, error) {
			require.NotNil(t, r.SupervisorID)
			assert.Equal(t, supervisor, *r.SupervisorID)
			return 9, nil
		},
		insertUnit: func(ctx context.Context, r store.InsertUnitRequest) (int64, error) {
			return 1, nil
		},
	}

	svc := NewPlanService(ms, fixedVocab(45))
	caller := model.Caller{ID: supervisor, Role: model.RoleSupervisor}
	resp, err := svc.UpsertPlan(context.Background(), caller, UpsertPlanRequest{
		LearnerID:    learner,
		SupervisorID: &supervisor,
		BookID:       3,
		WordsPerDay:  20,
	})
	require.NoError(t, err)
	assert.True(t, resp.Created)
}

func TestListPlans_Progress(t *testing.T) {
	learner := uuid.New()
	ms := &mockStore{
		getPlans: func(ctx context.Context, r store.GetPlansRequest) ([]model.Plan, error) {
			require.NotNil(t, r.LearnerID)
			assert.Equal(t, learner, *r.LearnerID)
			return []model.Plan{{ID: 7, LearnerID: learner, BookID: 3, WordsPerDay: 20}}, nil
		},
		getUnitCounts: func(ctx context.Context, r store.GetUnitCountsRequest) (map[int64]store.UnitCounts, error) {
			// One aggregated query for the whole listing, not one per plan.
			assert.Equal(t, []int64{7}, r.PlanIDs)
			return map[int64]store.UnitCounts{7: {Units: 3, Learned: 2}}, nil
		},
	}

	svc := NewPlanService(ms, fixedVocab(45))
	plans, err := svc.ListPlans(context.Background(), learnerCaller(learner))
	require.NoError(t, err)

	require.Len(t, plans, 1)
	assert.Equal(t, 3, plans[0].TotalUnits)
	assert.Equal(t, 2, plans[0].LearnedUnits)
	assert.Equal(t, 66, plans[0].Percent)
}

func TestListPlans_Empty(t *testing.T) {
	ms := &mockStore{
		getPlans: func(ctx context.Context, r store.GetPlansRequest) ([]model.Plan, error) {
			return nil, nil
		},
		getUnitCounts: func(ctx context.Context, r store.GetUnitCountsRequest) (map[int64]store.UnitCounts, error) {
			t.Fatal("no unit counts query expected for an empty listing")
			return nil, nil
		},
	}

	svc := NewPlanService(ms, fixedVocab(45))
	plans, err := svc.ListPlans(context.Background(), learnerCaller(uuid.New()))
	require.NoError(t, err)
	assert.Empty(t, plans)
}
