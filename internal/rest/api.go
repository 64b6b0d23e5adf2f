// Package rest binds the scheduler services to the HTTP surface. Handlers
// translate JSON payloads to service requests, attach the authenticated
// caller, and map errors through httpx.
package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/ganweibatao/DanDan-backend/internal/pkg/fn"
	"github.com/ganweibatao/DanDan-backend/internal/pkg/httpx"
	"github.com/ganweibatao/DanDan-backend/internal/pkg/middleware"
	"github.com/ganweibatao/DanDan-backend/internal/pkg/serr"
	"github.com/ganweibatao/DanDan-backend/internal/schedule"
	"github.com/ganweibatao/DanDan-backend/internal/service"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type planService interface {
	UpsertPlan(ctx context.Context, caller model.Caller, r service.UpsertPlanRequest) (service.UpsertPlanResponse, error)
	ListPlans(ctx context.Context, caller model.Caller) ([]service.PlanProgress, error)
}

type learningService interface {
	MarkUnitLearned(ctx context.Context, caller model.Caller, r service.MarkUnitLearnedRequest) (model.Unit, error)
	CompleteReviewRound(ctx context.Context, caller model.Caller, reviewID int64) (service.CompleteReviewResponse, error)
	WidenUnit(ctx context.Context, caller model.Caller, r service.WidenUnitRequest) (model.Unit, error)
}

type todayService interface {
	GetToday(ctx context.Context, caller model.Caller, r service.GetTodayRequest) (service.TodayResponse, error)
	GetMatrix(ctx context.Context, caller model.Caller, planID int64) (schedule.Matrix, error)
}

type stageService interface {
	InitializeStages(ctx context.Context, caller model.Caller, r service.InitializeStagesRequest) (int, error)
	AdvanceStage(ctx context.Context, caller model.Caller, planID, wordID int64) (service.AdvanceStageResponse, error)
}

type API struct {
	plans    planService
	learning learningService
	today    todayService
	stages   stageService
	mux      http.ServeMux
}

func NewAPI(plans planService, learning learningService, today todayService, stages stageService) *API {
	api := &API{
		plans:    plans,
		learning: learning,
		today:    today,
		stages:   stages,
		mux:      *http.NewServeMux(),
	}

	api.mount()
	return api
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.mux.ServeHTTP(w, r)
}

func (api *API) mount() {
	api.mux.HandleFunc("PUT /plans", api.handleUpsertPlan)
	api.mux.HandleFunc("GET /plans", api.handleListPlans)
	api.mux.HandleFunc("GET /plans/{plan_id}/today", api.handleGetToday)
	api.mux.HandleFunc("GET /plans/{plan_id}/matrix", api.handleGetMatrix)
	api.mux.HandleFunc("PUT /plans/{plan_id}/stages", api.handleInitializeStages)
	api.mux.HandleFunc("POST /plans/{plan_id}/stages/{word_id}/advance", api.handleAdvanceStage)
	api.mux.HandleFunc("POST /units/{unit_id}/learned", api.handleMarkUnitLearned)
	api.mux.HandleFunc("POST /units/{unit_id}/widen", api.handleWidenUnit)
	api.mux.HandleFunc("POST /reviews/{review_id}/complete", api.handleCompleteReview)
}

type upsertPlanRequest struct {
	LearnerID    string `json:"learner_id"`
	SupervisorID string `json:"supervisor_id,omitempty"`
	BookID       int64  `json:"book_id"`
	WordsPerDay  int    `json:"words_per_day"`
	StartDate    string `json:"start_date,omitempty"`
	IsActive     bool   `json:"is_active"`
}

type planResponse struct {
	ID           int64  `json:"id"`
	LearnerID    string `json:"learner_id"`
	SupervisorID string `json:"supervisor_id,omitempty"`
	BookID       int64  `json:"book_id"`
	WordsPerDay  int    `json:"words_per_day"`
	StartDate    string `json:"start_date"`
	IsActive     bool   `json:"is_active"`
}

func toPlanResponse(p model.Plan) planResponse {
	resp := planResponse{
		ID:          p.ID,
		LearnerID:   p.LearnerID.String(),
		BookID:      p.BookID,
		WordsPerDay: p.WordsPerDay,
		StartDate:   p.StartDate.Format(dateLayout),
		IsActive:    p.IsActive,
	}
	if p.SupervisorID != nil {
		resp.SupervisorID = p.SupervisorID.String()
	}
	return resp
}

func (api *API) handleUpsertPlan(w http.ResponseWriter, r *http.Request) {
	var req upsertPlanRequest
	err := httpx.ReadJSON(r, &req)
	if err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	learnerID, err := uuid.Parse(req.LearnerID)
	if err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid learner_id"))
		return
	}

	var supervisorID *uuid.UUID
	if req.SupervisorID != "" {
		id, err := uuid.Parse(req.SupervisorID)
		if err != nil {
			httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid supervisor_id"))
			return
		}
		supervisorID = &id
	}

	var startDate time.Time
	if req.StartDate != "" {
		startDate, err = time.Parse(dateLayout, req.StartDate)
		if err != nil {
			httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid start_date"))
			return
		}
	}

	resp, err := api.plans.UpsertPlan(r.Context(), middleware.CallerFromContext(r.Context()), service.UpsertPlanRequest{
		LearnerID:    learnerID,
		SupervisorID: supervisorID,
		BookID:       req.BookID,
		WordsPerDay:  req.WordsPerDay,
		StartDate:    startDate,
		IsActive:     req.IsActive,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	err = httpx.WriteJSON(w, status, toPlanResponse(resp.Plan))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type planProgressResponse struct {
	Plan         planResponse `json:"plan"`
	TotalUnits   int          `json:"total_units"`
	LearnedUnits int          `json:"learned_units"`
	Percent      int          `json:"percent"`
}

type listPlansResponse struct {
	Plans []planProgressResponse `json:"plans"`
}

func (api *API) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := api.plans.ListPlans(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, listPlansResponse{
		Plans: fn.Map(plans, func(p service.PlanProgress) planProgressResponse {
			return planProgressResponse{
				Plan:         toPlanResponse(p.Plan),
				TotalUnits:   p.TotalUnits,
				LearnedUnits: p.LearnedUnits,
				Percent:      p.Percent,
			}
		}),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type markUnitLearnedRequest struct {
	OverrideStart *int `json:"override_start,omitempty"`
	OverrideEnd   *int `json:"override_end,omitempty"`
}

type unitResponse struct {
	ID                int64  `json:"id"`
	PlanID            int64  `json:"plan_id"`
	Number            int    `json:"number"`
	StartOrder        int    `json:"start_order"`
	EndOrder          int    `json:"end_order"`
	ExpectedLearnDate string `json:"expected_learn_date"`
	IsLearned         bool   `json:"is_learned"`
	LearnedAt         string `json:"learned_at,omitempty"`
}

func toUnitResponse(u model.Unit) unitResponse {
	resp := unitResponse{
		ID:                u.ID,
		PlanID:            u.PlanID,
		Number:            u.Number,
		StartOrder:        u.StartOrder,
		EndOrder:          u.EndOrder,
		ExpectedLearnDate: u.ExpectedLearnDate.Format(dateLayout),
		IsLearned:         u.IsLearned,
	}
	if u.LearnedAt != nil {
		resp.LearnedAt = u.LearnedAt.Format(time.RFC3339)
	}
	return resp
}

func (api *API) handleMarkUnitLearned(w http.ResponseWriter, r *http.Request) {
	unitID, err := idFromRequest(r, "unit_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	// The body is optional; absent means no override range.
	var req markUnitLearnedRequest
	if r.ContentLength > 0 {
		if err := httpx.ReadJSON(r, &req); err != nil {
			httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
			return
		}
	}

	unit, err := api.learning.MarkUnitLearned(r.Context(), middleware.CallerFromContext(r.Context()), service.MarkUnitLearnedRequest{
		UnitID:        unitID,
		OverrideStart: req.OverrideStart,
		OverrideEnd:   req.OverrideEnd,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, toUnitResponse(unit))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type widenUnitRequest struct {
	ExtraCount int `json:"extra_count"`
}

func (api *API) handleWidenUnit(w http.ResponseWriter, r *http.Request) {
	unitID, err := idFromRequest(r, "unit_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req widenUnitRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	unit, err := api.learning.WidenUnit(r.Context(), middleware.CallerFromContext(r.Context()), service.WidenUnitRequest{
		UnitID:     unitID,
		ExtraCount: req.ExtraCount,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, toUnitResponse(unit))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type reviewResponse struct {
	ID            int64  `json:"id"`
	UnitID        int64  `json:"unit_id"`
	Round         int    `json:"round"`
	ScheduledDate string `json:"scheduled_date"`
	IsCompleted   bool   `json:"is_completed"`
	Advanced      bool   `json:"advanced"`
	Finished      bool   `json:"finished"`
}

func (api *API) handleCompleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := idFromRequest(r, "review_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp, err := api.learning.CompleteReviewRound(r.Context(), middleware.CallerFromContext(r.Context()), reviewID)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, reviewResponse{
		ID:            resp.Review.ID,
		UnitID:        resp.Review.UnitID,
		Round:         resp.Review.Round,
		ScheduledDate: resp.Review.ScheduledDate.Format(dateLayout),
		IsCompleted:   resp.Review.IsCompleted,
		Advanced:      resp.Advanced,
		Finished:      resp.Finished,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type wordResponse struct {
	Order    int    `json:"order"`
	Spelling string `json:"spelling"`
	Phonetic string `json:"phonetic,omitempty"`
	Meanings string `json:"meanings"`
	Example  string `json:"example,omitempty"`
}

type unitWithWordsResponse struct {
	Unit  unitResponse   `json:"unit"`
	Words []wordResponse `json:"words"`
}

type todayResponse struct {
	NewUnit     *unitWithWordsResponse  `json:"new_unit,omitempty"`
	ReviewUnits []unitWithWordsResponse `json:"review_units,omitempty"`
}

func toUnitWithWords(u service.UnitWithWords) unitWithWordsResponse {
	return unitWithWordsResponse{
		Unit: toUnitResponse(u.Unit),
		Words: fn.Map(u.Words, func(w model.Word) wordResponse {
			return wordResponse{
				Order:    w.Order,
				Spelling: w.Spelling,
				Phonetic: w.Phonetic,
				Meanings: w.Meanings,
				Example:  w.Example,
			}
		}),
	}
}

func (api *API) handleGetToday(w http.ResponseWriter, r *http.Request) {
	planID, err := idFromRequest(r, "plan_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	req := service.GetTodayRequest{
		PlanID: planID,
		Mode:   service.TodayMode(r.URL.Query().Get("mode")),
	}
	if dayStr := r.URL.Query().Get("day_number"); dayStr != "" {
		day, err := strconv.Atoi(dayStr)
		if err != nil {
			httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid day_number parameter"))
			return
		}
		req.DayNumber = &day
	}

	resp, err := api.today.GetToday(r.Context(), middleware.CallerFromContext(r.Context()), req)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	out := todayResponse{
		ReviewUnits: fn.Map(resp.ReviewUnits, toUnitWithWords),
	}
	if resp.NewUnit != nil {
		uw := toUnitWithWords(*resp.NewUnit)
		out.NewUnit = &uw
	}

	err = httpx.WriteJSON(w, http.StatusOK, out)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type matrixUnitResponse struct {
	Number     int    `json:"number"`
	StartOrder int    `json:"start_order"`
	EndOrder   int    `json:"end_order"`
	IsLearned  bool   `json:"is_learned"`
	Round      int    `json:"round"`
	ReviewDone bool   `json:"review_done"`
	ReviewDate string `json:"review_date,omitempty"`
}

type matrixResponse struct {
	TotalUnits        int                  `json:"total_units"`
	MaxUnitNumber     int                  `json:"max_unit_number"`
	HasUnusedCapacity bool                 `json:"has_unused_capacity"`
	Units             []matrixUnitResponse `json:"units"`
}

func (api *API) handleGetMatrix(w http.ResponseWriter, r *http.Request) {
	planID, err := idFromRequest(r, "plan_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	m, err := api.today.GetMatrix(r.Context(), middleware.CallerFromContext(r.Context()), planID)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, matrixResponse{
		TotalUnits:        m.TotalUnits,
		MaxUnitNumber:     m.MaxUnitNumber,
		HasUnusedCapacity: m.HasUnusedCapacity,
		Units: fn.Map(m.Units, func(u schedule.UnitStatus) matrixUnitResponse {
			return matrixUnitResponse{
				Number:     u.Number,
				StartOrder: u.StartOrder,
				EndOrder:   u.EndOrder,
				IsLearned:  u.IsLearned,
				Round:      u.Round,
				ReviewDone: u.ReviewDone,
				ReviewDate: u.ReviewDate,
			}
		}),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type initializeStagesRequest struct {
	WordIDs []int64 `json:"word_ids"`
}

type initializeStagesResponse struct {
	Created int `json:"created"`
}

func (api *API) handleInitializeStages(w http.ResponseWriter, r *http.Request) {
	planID, err := idFromRequest(r, "plan_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req initializeStagesRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	created, err := api.stages.InitializeStages(r.Context(), middleware.CallerFromContext(r.Context()), service.InitializeStagesRequest{
		PlanID:  planID,
		WordIDs: req.WordIDs,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, initializeStagesResponse{Created: created})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type wordStageResponse struct {
	WordID         int64  `json:"word_id"`
	Stage          int    `json:"stage"`
	NextReviewDate string `json:"next_review_date,omitempty"`
	Advanced       bool   `json:"advanced"`
	Mastered       bool   `json:"mastered"`
}

func (api *API) handleAdvanceStage(w http.ResponseWriter, r *http.Request) {
	planID, err := idFromRequest(r, "plan_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
	wordID, err := idFromRequest(r, "word_id")
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	resp, err := api.stages.AdvanceStage(r.Context(), middleware.CallerFromContext(r.Context()), planID, wordID)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	out := wordStageResponse{
		WordID:   resp.Stage.WordID,
		Stage:    resp.Stage.Stage,
		Advanced: resp.Advanced,
		Mastered: resp.Stage.NextReviewDate == nil && resp.Stage.Stage > 0,
	}
	if resp.Stage.NextReviewDate != nil {
		out.NextReviewDate = resp.Stage.NextReviewDate.Format(dateLayout)
	}

	err = httpx.WriteJSON(w, http.StatusOK, out)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func idFromRequest(r *http.Request, param string) (int64, error) {
	idStr := r.PathValue(param)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, serr.NewServiceError(err, http.StatusBadRequest, "invalid id parameter")
	}

	return id, nil
}
