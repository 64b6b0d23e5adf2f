package service

import (
	"context"
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/ganweibatao/DanDan-backend/internal/store"
	"github.com/google/uuid"
)

type mockStore struct {
	getPlan                 func(ctx context.Context, r store.GetPlanRequest) (model.Plan, error)
	getPlanByLearnerAndBook func(ctx context.Context, r store.GetPlanByLearnerAndBookRequest) (model.Plan, error)
	getPlans                func(ctx context.Context, r store.GetPlansRequest) ([]model.Plan, error)
	insertPlan              func(ctx context.Context, r store.InsertPlanRequest) (int64, error)
	updatePlan              func(ctx context.Context, r store.UpdatePlanRequest) error
	deactivateOtherPlans    func(ctx context.Context, r store.DeactivateOtherPlansRequest) error
	insertUnit              func(ctx context.Context, r store.InsertUnitRequest) (int64, error)
	getUnit                 func(ctx context.Context, r store.GetUnitRequest) (model.Unit, error)
	getUnits                func(ctx context.Context, r store.GetUnitsRequest) ([]model.Unit, error)
	getUnitByNumber         func(ctx context.Context, r store.GetUnitByNumberRequest) (model.Unit, error)
	getLatestLearnedUnit    func(ctx context.Context, r store.GetLatestLearnedUnitRequest) (model.Unit, error)
	getUnitCounts           func(ctx context.Context, r store.GetUnitCountsRequest) (map[int64]store.UnitCounts, error)
	updateUnit              func(ctx context.Context, r store.UpdateUnitRequest) error
	deleteUnits             func(ctx context.Context, r store.DeleteUnitsRequest) (store.DeleteUnitsResponse, error)
	insertReview            func(ctx context.Context, r store.InsertReviewRequest) (int64, error)
	getReview               func(ctx context.Context, r store.GetReviewRequest) (store.GetReviewResponse, error)
	getReviews              func(ctx context.Context, r store.GetReviewsRequest) ([]model.Review, error)
	updateReview            func(ctx context.Context, r store.UpdateReviewRequest) error
	getDueUnits             func(ctx context.Context, r store.GetDueUnitsRequest) ([]model.Unit, error)
	getWordStage            func(ctx context.Context, r store.GetWordStageRequest) (model.WordStage, error)
	getStagedWordIDs        func(ctx context.Context, r store.GetStagedWordIDsRequest) ([]int64, error)
	insertWordStages        func(ctx context.Context, r store.InsertWordStagesRequest) (int, error)
	updateWordStage         func(ctx context.Context, r store.UpdateWordStageRequest) error
	getWordCount            func(ctx context.Context, r store.GetWordCountRequest) (int, error)
	getWordsInRange         func(ctx context.Context, r store.GetWordsInRangeRequest) ([]model.Word, error)
}

func (m *mockStore) GetPlan(ctx context.Context, r store.GetPlanRequest) (model.Plan, error) {
	return m.getPlan(ctx, r)
}

func (m *mockStore) GetPlanByLearnerAndBook(ctx context.Context, r store.GetPlanByLearnerAndBookRequest) (model.Plan, error) {
	return m.getPlanByLearnerAndBook(ctx, r)
}

func (m *mockStore) GetPlans(ctx context.Context, r store.GetPlansRequest) ([]model.Plan, error) {
	return m.getPlans(ctx, r)
}

func (m *mockStore) InsertPlan(ctx context.Context, r store.InsertPlanRequest) (int64, error) {
	return m.insertPlan(ctx, r)
}

func (m *mockStore) UpdatePlan(ctx context.Context, r store.UpdatePlanRequest) error {
	return m.updatePlan(ctx, r)
}

func (m *mockStore) DeactivateOtherPlans(ctx context.Context, r store.DeactivateOtherPlansRequest) error {
	return m.deactivateOtherPlans(ctx, r)
}

func (m *mockStore) InsertUnit(ctx context.Context, r store.InsertUnitRequest) (int64, error) {
	return m.insertUnit(ctx, r)
}

func (m *mockStore) GetUnit(ctx context.Context, r store.GetUnitRequest) (model.Unit, error) {
	return m.getUnit(ctx, r)
}

func (m *mockStore) GetUnits(ctx context.Context, r store.GetUnitsRequest) ([]model.Unit, error) {
	return m.getUnits(ctx, r)
}

func (m *mockStore) GetUnitByNumber(ctx context.Context, r store.GetUnitByNumberRequest) (model.Unit, error) {
	return m.getUnitByNumber(ctx, r)
}

func (m *mockStore) GetLatestLearnedUnit(ctx context.Context, r store.GetLatestLearnedUnitRequest) (model.Unit, error) {
	return m.getLatestLearnedUnit(ctx, r)
}

func (m *mockStore) GetUnitCounts(ctx context.Context, r store.GetUnitCountsRequest) (map[int64]store.UnitCounts, error) {
	return m.getUnitCounts(ctx, r)
}

func (m *mockStore) UpdateUnit(ctx context.Context, r store.UpdateUnitRequest) error {
	return m.updateUnit(ctx, r)
}

func (m *mockStore) DeleteUnits(ctx context.Context, r store.DeleteUnitsRequest) (store.DeleteUnitsResponse, error) {
	return m.deleteUnits(ctx, r)
}

func (m *mockStore) InsertReview(ctx context.Context, r store.InsertReviewRequest) (int64, error) {
	return m.insertReview(ctx, r)
}

func (m *mockStore) GetReview(ctx context.Context, r store.GetReviewRequest) (store.GetReviewResponse, error) {
	return m.getReview(ctx, r)
}

func (m *mockStore) GetReviews(ctx context.Context, r store.GetReviewsRequest) ([]model.Review, error) {
	return m.getReviews(ctx, r)
}

func (m *mockStore) UpdateReview(ctx context.Context, r store.UpdateReviewRequest) error {
	return m.updateReview(ctx, r)
}

func (m *mockStore) GetDueUnits(ctx context.Context, r store.GetDueUnitsRequest) ([]model.Unit, error) {
	return m.getDueUnits(ctx, r)
}

func (m *mockStore) GetWordStage(ctx context.Context, r store.GetWordStageRequest) (model.WordStage, error) {
	return m.getWordStage(ctx, r)
}

func (m *mockStore) GetStagedWordIDs(ctx context.Context, r store.GetStagedWordIDsRequest) ([]int64, error) {
	return m.getStagedWordIDs(ctx, r)
}

func (m *mockStore) InsertWordStages(ctx context.Context, r store.InsertWordStagesRequest) (int, error) {
	return m.insertWordStages(ctx, r)
}

func (m *mockStore) UpdateWordStage(ctx context.Context, r store.UpdateWordStageRequest) error {
	return m.updateWordStage(ctx, r)
}

func (m *mockStore) GetWordCount(ctx context.Context, r store.GetWordCountRequest) (int, error) {
	return m.getWordCount(ctx, r)
}

func (m *mockStore) GetWordsInRange(ctx context.Context, r store.GetWordsInRangeRequest) ([]model.Word, error) {
	return m.getWordsInRange(ctx, r)
}

func (m *mockStore) WithinTx(ctx context.Context, fn func(tx store.DataStore) error) error {
	return fn(m)
}

type mockVocab struct {
	wordCount    func(ctx context.Context, bookID int64) (int, error)
	wordsInRange func(ctx context.Context, bookID int64, startOrder, endOrder int) ([]model.Word, error)
}

func (m *mockVocab) WordCount(ctx context.Context, bookID int64) (int, error) {
	return m.wordCount(ctx, bookID)
}

func (m *mockVocab) WordsInRange(ctx context.Context, bookID int64, startOrder, endOrder int) ([]model.Word, error) {
	return m.wordsInRange(ctx, bookID, startOrder, endOrder)
}

func fixedVocab(totalWords int) *mockVocab {
	return &mockVocab{
		wordCount: func(ctx context.Context, bookID int64) (int, error) {
			return totalWords, nil
		},
		wordsInRange: func(ctx context.Context, bookID int64, startOrder, endOrder int) ([]model.Word, error) {
			var words []model.Word
			for i := startOrder; i <= endOrder; i++ {
				words = append(words, model.Word{ID: int64(i), BookID: bookID, Order: i})
			}
			return words, nil
		},
	}
}

func learnerCaller(id uuid.UUID) model.Caller {
	return model.Caller{ID: id, Role: model.RoleLearner}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
