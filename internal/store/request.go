package store

import (
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/google/uuid"
)

type GetPlanRequest struct {
	ID int64
}

type GetPlanByLearnerAndBookRequest struct {
	LearnerID uuid.UUID
	BookID    int64
}

type GetPlansRequest struct {
	// Exactly one of LearnerID or SupervisorID is set.
	LearnerID    *uuid.UUID
	SupervisorID *uuid.UUID
}

type InsertPlanRequest struct {
	LearnerID    uuid.UUID
	SupervisorID *uuid.UUID
	BookID       int64
	WordsPerDay  int
	StartDate    time.Time
	IsActive     bool
}

type UpdatePlanRequest struct {
	ID           int64
	SupervisorID *uuid.UUID
	WordsPerDay  int
	StartDate    time.Time
	IsActive     bool
}

type DeactivateOtherPlansRequest struct {
	LearnerID  uuid.UUID
	KeepPlanID int64
}

type InsertUnitRequest struct {
	Unit model.Unit
}

type GetUnitRequest struct {
	ID int64
	// ForUpdate takes a row lock; only valid inside WithinTx.
	ForUpdate bool
}

type GetUnitsRequest struct {
	PlanID int64
}

type GetUnitByNumberRequest struct {
	PlanID int64
	Number int
}

type GetLatestLearnedUnitRequest struct {
	PlanID int64
}

type GetUnitCountsRequest struct {
	PlanIDs []int64
}

// UnitCounts summarizes one plan's unit set for progress listings.
type UnitCounts struct {
	Units   int
	Learned int
}

type UpdateUnitRequest struct {
	Unit model.Unit
}

type DeleteUnitsRequest struct {
	PlanID int64
}

// DeleteUnitsResponse carries the replaced rows so regeneration can be audit
// logged instead of silently cascading.
type DeleteUnitsResponse struct {
	Units   []model.Unit
	Reviews []model.Review
}

type InsertReviewRequest struct {
	Review model.Review
}

type GetReviewRequest struct {
	ID int64
	// ForUpdate locks the review row so concurrent completions serialize on
	// the theoretical-round guard; only valid inside WithinTx.
	ForUpdate bool
}

// GetReviewResponse joins in the owning unit and plan: the catch-up
// computation needs the unit's learned-at date and the permission check
// needs the plan.
type GetReviewResponse struct {
	Review model.Review
	Unit   model.Unit
	Plan   model.Plan
}

type GetReviewsRequest struct {
	PlanID int64
}

type UpdateReviewRequest struct {
	Review model.Review
}

type GetDueUnitsRequest struct {
	PlanID int64
	// Today is reduced to its UTC calendar date.
	Today time.Time
}

type GetWordStageRequest struct {
	PlanID int64
	WordID int64
}

type GetStagedWordIDsRequest struct {
	PlanID  int64
	WordIDs []int64
}

type InsertWordStagesRequest struct {
	Stages []model.WordStage
}

type UpdateWordStageRequest struct {
	Stage model.WordStage
}

type GetWordCountRequest struct {
	BookID int64
}

type GetWordsInRangeRequest struct {
	BookID     int64
	StartOrder int
	EndOrder   int
}
