// Package service orchestrates the scheduling core over the store: plan
// upserts and regeneration, unit completion side effects, review catch-up,
// today/matrix queries, and word-stage progression. Every operation checks
// the caller against the owning plan before touching state.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/ganweibatao/DanDan-backend/internal/pkg/serr"
	"github.com/ganweibatao/DanDan-backend/internal/store"
)

// canAccessPlan reports whether the caller may read or mutate the plan:
// the owning learner, the plan's supervisor, or an admin.
func canAccessPlan(caller model.Caller, plan model.Plan) bool {
	switch caller.Role {
	case model.RoleAdmin:
		return true
	case model.RoleSupervisor:
		if plan.SupervisorID != nil && *plan.SupervisorID == caller.ID {
			return true
		}
		return plan.LearnerID == caller.ID
	default:
		return plan.LearnerID == caller.ID
	}
}

// forbidden deliberately says nothing about whether the resource exists.
func forbidden() *serr.ServiceError {
	return serr.NewServiceError(nil, http.StatusForbidden, "forbidden")
}

func planNotFound(err error, id int64) *serr.ServiceError {
	se := serr.NewServiceError(err, http.StatusNotFound, "plan not found")
	se.Env["plan_id"] = fmt.Sprintf("%d", id)
	return se
}

func invalidArgument(msg string, args ...any) *serr.ServiceError {
	return serr.NewServiceError(nil, http.StatusBadRequest, msg, args...)
}

// loadOwnedPlan fetches a plan and enforces visibility in one step.
func loadOwnedPlan(ctx context.Context, ds store.DataStore, caller model.Caller, planID int64) (model.Plan, error) {
	plan, err := ds.GetPlan(ctx, store.GetPlanRequest{ID: planID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Plan{}, planNotFound(err, planID)
		}

		return model.Plan{}, fmt.Errorf("get plan %d: %w", planID, err)
	}
	if !canAccessPlan(caller, plan) {
		return model.Plan{}, forbidden()
	}

	return plan, nil
}
