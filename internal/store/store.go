package store

import (
	"context"
	"errors"

	"github.com/ganweibatao/DanDan-backend/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// DataStore is the persistence boundary of the scheduler. Multi-record
// mutations run inside WithinTx so a half-created plan or an orphaned review
// can never become visible.
type DataStore interface {
	GetPlan(ctx context.Context, r GetPlanRequest) (model.Plan, error)
	GetPlanByLearnerAndBook(ctx context.Context, r GetPlanByLearnerAndBookRequest) (model.Plan, error)
	GetPlans(ctx context.Context, r GetPlansRequest) ([]model.Plan, error)
	InsertPlan(ctx context.Context, r InsertPlanRequest) (int64, error)
	UpdatePlan(ctx context.Context, r UpdatePlanRequest) error
	DeactivateOtherPlans(ctx context.Context, r DeactivateOtherPlansRequest) error

	InsertUnit(ctx context.Context, r InsertUnitRequest) (int64, error)
	GetUnit(ctx context.Context, r GetUnitRequest) (model.Unit, error)
	GetUnits(ctx context.Context, r GetUnitsRequest) ([]model.Unit, error)
	GetUnitByNumber(ctx context.Context, r GetUnitByNumberRequest) (model.Unit, error)
	GetLatestLearnedUnit(ctx context.Context, r GetLatestLearnedUnitRequest) (model.Unit, error)
	GetUnitCounts(ctx context.Context, r GetUnitCountsRequest) (map[int64]UnitCounts, error)
	UpdateUnit(ctx context.Context, r UpdateUnitRequest) error
	DeleteUnits(ctx context.Context, r DeleteUnitsRequest) (DeleteUnitsResponse, error)

	InsertReview(ctx context.Context, r InsertReviewRequest) (int64, error)
	GetReview(ctx context.Context, r GetReviewRequest) (GetReviewResponse, error)
	GetReviews(ctx context.Context, r GetReviewsRequest) ([]model.Review, error)
	UpdateReview(ctx context.Context, r UpdateReviewRequest) error
	GetDueUnits(ctx context.Context, r GetDueUnitsRequest) ([]model.Unit, error)

	GetWordStage(ctx context.Context, r GetWordStageRequest) (model.WordStage, error)
	GetStagedWordIDs(ctx context.Context, r GetStagedWordIDsRequest) ([]int64, error)
	InsertWordStages(ctx context.Context, r InsertWordStagesRequest) (int, error)
	UpdateWordStage(ctx context.Context, r UpdateWordStageRequest) error

	GetWordCount(ctx context.Context, r GetWordCountRequest) (int, error)
	GetWordsInRange(ctx context.Context, r GetWordsInRangeRequest) ([]model.Word, error)

	WithinTx(ctx context.Context, fn func(tx DataStore) error) error
}
