package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	errUniqueViolation     pq.ErrorCode = "23505"
	errForeignKeyViolation pq.ErrorCode = "23503"
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore implements DataStore on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
	q  queryer
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

func NewPostgresDB(cfg PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

// WithinTx runs fn against a transaction-backed store. Nested calls reuse the
// surrounding transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx DataStore) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&PostgresStore{db: s.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

const planColumns = "id, learner_id, supervisor_id, book_id, words_per_day, start_date, is_active, created_at, updated_at"

func scanPlan(row interface{ Scan(...any) error }) (model.Plan, error) {
	var p model.Plan
	var supervisor sql.Null[string]
	err := row.Scan(&p.ID, &p.LearnerID, &supervisor, &p.BookID, &p.WordsPerDay, &p.StartDate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Plan{}, err
	}
	if supervisor.Valid {
		id, err := uuid.Parse(supervisor.V)
		if err != nil {
			return model.Plan{}, fmt.Errorf("parse supervisor id: %w", err)
		}
		p.SupervisorID = &id
	}
	return p, nil
}

func (s *PostgresStore) GetPlan(ctx context.Context, r GetPlanRequest) (model.Plan, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+planColumns+" FROM learning_plans WHERE id = $1", r.ID)

	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Plan{}, ErrNotFound
	}
	if err != nil {
		return model.Plan{}, fmt.Errorf("get plan: %w", err)
	}

	return p, nil
}

func (s *PostgresStore) GetPlanByLearnerAndBook(ctx context.Context, r GetPlanByLearnerAndBookRequest) (model.Plan, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+planColumns+" FROM learning_plans WHERE learner_id = $1 AND book_id = $2",
		r.LearnerID, r.BookID)

	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Plan{}, ErrNotFound
	}
	if err != nil {
		return model.Plan{}, fmt.Errorf("get plan by learner and book: %w", err)
	}

	return p, nil
}

func (s *PostgresStore) GetPlans(ctx context.Context, r GetPlansRequest) ([]model.Plan, error) {
	query := "SELECT " + planColumns + " FROM learning_plans WHERE learner_id = $1 ORDER BY id"
	var owner any
	switch {
	case r.LearnerID != nil:
		owner = *r.LearnerID
	case r.SupervisorID != nil:
		query = "SELECT " + planColumns + " FROM learning_plans WHERE supervisor_id = $1 ORDER BY id"
		owner = *r.SupervisorID
	default:
		return nil, fmt.Errorf("get plans: no owner given")
	}

	rows, err := s.q.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("get plans: %w", err)
	}
	defer rows.Close()

	var plans []model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}

	return plans, rows.Err()
}

func (s *PostgresStore) InsertPlan(ctx context.Context, r InsertPlanRequest) (int64, error) {
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO learning_plans (learner_id, supervisor_id, book_id, words_per_day, start_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		r.LearnerID, uuidOrNil(r.SupervisorID), r.BookID, r.WordsPerDay, r.StartDate, r.IsActive)

	var id int64
	if err := row.Scan(&id); err != nil {
		if isPqErr(err, errUniqueViolation) {
			return 0, ErrExists
		}
		return 0, fmt.Errorf("insert plan: %w", err)
	}

	return id, nil
}

func (s *PostgresStore) UpdatePlan(ctx context.Context, r UpdatePlanRequest) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE learning_plans
		SET supervisor_id = $2, words_per_day = $3, start_date = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1`,
		r.ID, uuidOrNil(r.SupervisorID), r.WordsPerDay, r.StartDate, r.IsActive)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}

	return requireAffected(res)
}

func (s *PostgresStore) DeactivateOtherPlans(ctx context.Context, r DeactivateOtherPlansRequest) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE learning_plans
		SET is_active = FALSE, updated_at = NOW()
		WHERE learner_id = $1 AND id <> $2 AND is_active`,
		r.LearnerID, r.KeepPlanID)
	if err != nil {
		return fmt.Errorf("deactivate other plans: %w", err)
	}

	return nil
}

const unitColumns = "id, plan_id, unit_number, start_word_order, end_word_order, expected_learn_date, is_learned, learned_at, created_at, updated_at"

func scanUnit(row interface{ Scan(...any) error }) (model.Unit, error) {
	var u model.Unit
	var learnedAt sql.NullTime
	err := row.Scan(&u.ID, &u.PlanID, &u.Number, &u.StartOrder, &u.EndOrder, &u.ExpectedLearnDate, &u.IsLearned, &learnedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.Unit{}, err
	}
	if learnedAt.Valid {
		u.LearnedAt = &learnedAt.Time
	}
	return u, nil
}

func (s *PostgresStore) InsertUnit(ctx context.Context, r InsertUnitRequest) (int64, error) {
	u := r.Unit
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO learning_units (plan_id, unit_number, start_word_order, end_word_order, expected_learn_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		u.PlanID, u.Number, u.StartOrder, u.EndOrder, u.ExpectedLearnDate)

	var id int64
	if err := row.Scan(&id); err != nil {
		if isPqErr(err, errUniqueViolation) {
			return 0, ErrExists
		}
		if isPqErr(err, errForeignKeyViolation) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("insert unit: %w", err)
	}

	return id, nil
}

func (s *PostgresStore) GetUnit(ctx context.Context, r GetUnitRequest) (model.Unit, error) {
	query := "SELECT " + unitColumns + " FROM learning_units WHERE id = $1"
	if r.ForUpdate {
		query += " FOR UPDATE"
	}

	u, err := scanUnit(s.q.QueryRowContext(ctx, query, r.ID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Unit{}, ErrNotFound
	}
	if err != nil {
		return model.Unit{}, fmt.Errorf("get unit: %w", err)
	}

	return u, nil
}

func (s *PostgresStore) GetUnits(ctx context.Context, r GetUnitsRequest) ([]model.Unit, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+unitColumns+" FROM learning_units WHERE plan_id = $1 ORDER BY unit_number", r.PlanID)
	if err != nil {
		return nil, fmt.Errorf("get units: %w", err)
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		units = append(units, u)
	}

	return units, rows.Err()
}

func (s *PostgresStore) GetUnitByNumber(ctx context.Context, r GetUnitByNumberRequest) (model.Unit, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+unitColumns+" FROM learning_units WHERE plan_id = $1 AND unit_number = $2",
		r.PlanID, r.Number)

	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Unit{}, ErrNotFound
	}
	if err != nil {
		return model.Unit{}, fmt.Errorf("get unit by number: %w", err)
	}

	return u, nil
}

func (s *PostgresStore) GetLatestLearnedUnit(ctx context.Context, r GetLatestLearnedUnitRequest) (model.Unit, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+unitColumns+` FROM learning_units
		WHERE plan_id = $1 AND is_learned
		ORDER BY unit_number DESC
		LIMIT 1`, r.PlanID)

	u, err := scanUnit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Unit{}, ErrNotFound
	}
	if err != nil {
		return model.Unit{}, fmt.Errorf("get latest learned unit: %w", err)
	}

	return u, nil
}

// GetUnitCounts aggregates unit totals per plan in one query; plans with no
// units are absent from the result.
func (s *PostgresStore) GetUnitCounts(ctx context.Context, r GetUnitCountsRequest) (map[int64]UnitCounts, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT plan_id, COUNT(*), COUNT(*) FILTER (WHERE is_learned)
		FROM learning_units
		WHERE plan_id = ANY($1)
		GROUP BY plan_id`, pq.Array(r.PlanIDs))
	if err != nil {
		return nil, fmt.Errorf("get unit counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]UnitCounts, len(r.PlanIDs))
	for rows.Next() {
		var planID int64
		var c UnitCounts
		if err := rows.Scan(&planID, &c.Units, &c.Learned); err != nil {
			return nil, fmt.Errorf("scan unit counts: %w", err)
		}
		counts[planID] = c
	}

	return counts, rows.Err()
}

func (s *PostgresStore) UpdateUnit(ctx context.Context, r UpdateUnitRequest) error {
	u := r.Unit
	res, err := s.q.ExecContext(ctx, `
		UPDATE learning_units
		SET start_word_order = $2, end_word_order = $3, expected_learn_date = $4,
		    is_learned = $5, learned_at = $6, updated_at = NOW()
		WHERE id = $1`,
		u.ID, u.StartOrder, u.EndOrder, u.ExpectedLearnDate, u.IsLearned, timeOrNil(u.LearnedAt))
	if err != nil {
		return fmt.Errorf("update unit: %w", err)
	}

	return requireAffected(res)
}

// DeleteUnits removes a plan's whole unit set and its reviews, returning the
// deleted rows so regeneration can be audit logged.
func (s *PostgresStore) DeleteUnits(ctx context.Context, r DeleteUnitsRequest) (DeleteUnitsResponse, error) {
	var resp DeleteUnitsResponse

	rows, err := s.q.QueryContext(ctx, `
		DELETE FROM unit_reviews
		WHERE unit_id IN (SELECT id FROM learning_units WHERE plan_id = $1)
		RETURNING `+reviewColumns, r.PlanID)
	if err != nil {
		return resp, fmt.Errorf("delete reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return resp, fmt.Errorf("scan deleted review: %w", err)
		}
		resp.Reviews = append(resp.Reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return resp, fmt.Errorf("delete reviews: %w", err)
	}

	unitRows, err := s.q.QueryContext(ctx,
		"DELETE FROM learning_units WHERE plan_id = $1 RETURNING "+unitColumns, r.PlanID)
	if err != nil {
		return resp, fmt.Errorf("delete units: %w", err)
	}
	defer unitRows.Close()

	for unitRows.Next() {
		u, err := scanUnit(unitRows)
		if err != nil {
			return resp, fmt.Errorf("scan deleted unit: %w", err)
		}
		resp.Units = append(resp.Units, u)
	}

	return resp, unitRows.Err()
}

const reviewColumns = "id, unit_id, review_order, review_date, is_completed, completed_at, created_at, updated_at"

func scanReview(row interface{ Scan(...any) error }) (model.Review, error) {
	var rv model.Review
	var completedAt sql.NullTime
	err := row.Scan(&rv.ID, &rv.UnitID, &rv.Round, &rv.ScheduledDate, &rv.IsCompleted, &completedAt, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return model.Review{}, err
	}
	if completedAt.Valid {
		rv.CompletedAt = &completedAt.Time
	}
	return rv, nil
}

func (s *PostgresStore) InsertReview(ctx context.Context, r InsertReviewRequest) (int64, error) {
	rv := r.Review
	row := s.q.QueryRowContext(ctx, `
		INSERT INTO unit_reviews (unit_id, review_order, review_date)
		VALUES ($1, $2, $3)
		RETURNING id`,
		rv.UnitID, rv.Round, rv.ScheduledDate)

	var id int64
	if err := row.Scan(&id); err != nil {
		if isPqErr(err, errUniqueViolation) {
			return 0, ErrExists
		}
		if isPqErr(err, errForeignKeyViolation) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("insert review: %w", err)
	}

	return id, nil
}

func (s *PostgresStore) GetReview(ctx context.Context, r GetReviewRequest) (GetReviewResponse, error) {
	query := `
		SELECT r.id, r.unit_id, r.review_order, r.review_date, r.is_completed, r.completed_at, r.created_at, r.updated_at,
		       u.id, u.plan_id, u.unit_number, u.start_word_order, u.end_word_order, u.expected_learn_date, u.is_learned, u.learned_at, u.created_at, u.updated_at,
		       p.id, p.learner_id, p.supervisor_id, p.book_id, p.words_per_day, p.start_date, p.is_active, p.created_at, p.updated_at
		FROM unit_reviews r
		JOIN learning_units u ON u.id = r.unit_id
		JOIN learning_plans p ON p.id = u.plan_id
		WHERE r.id = $1`
	if r.ForUpdate {
		query += " FOR UPDATE OF r"
	}

	row := s.q.QueryRowContext(ctx, query, r.ID)

	var resp GetReviewResponse
	var completedAt, learnedAt sql.NullTime
	var supervisor sql.Null[string]
	err := row.Scan(
		&resp.Review.ID, &resp.Review.UnitID, &resp.Review.Round, &resp.Review.ScheduledDate, &resp.Review.IsCompleted, &completedAt, &resp.Review.CreatedAt, &resp.Review.UpdatedAt,
		&resp.Unit.ID, &resp.Unit.PlanID, &resp.Unit.Number, &resp.Unit.StartOrder, &resp.Unit.EndOrder, &resp.Unit.ExpectedLearnDate, &resp.Unit.IsLearned, &learnedAt, &resp.Unit.CreatedAt, &resp.Unit.UpdatedAt,
		&resp.Plan.ID, &resp.Plan.LearnerID, &supervisor, &resp.Plan.BookID, &resp.Plan.WordsPerDay, &resp.Plan.StartDate, &resp.Plan.IsActive, &resp.Plan.CreatedAt, &resp.Plan.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetReviewResponse{}, ErrNotFound
	}
	if err != nil {
		return GetReviewResponse{}, fmt.Errorf("get review: %w", err)
	}

	if completedAt.Valid {
		resp.Review.CompletedAt = &completedAt.Time
	}
	if learnedAt.Valid {
		resp.Unit.LearnedAt = &learnedAt.Time
	}
	if supervisor.Valid {
		id, err := uuid.Parse(supervisor.V)
		if err != nil {
			return GetReviewResponse{}, fmt.Errorf("parse supervisor id: %w", err)
		}
		resp.Plan.SupervisorID = &id
	}

	return resp, nil
}

func (s *PostgresStore) GetReviews(ctx context.Context, r GetReviewsRequest) ([]model.Review, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT r.id, r.unit_id, r.review_order, r.review_date, r.is_completed, r.completed_at, r.created_at, r.updated_at
		FROM unit_reviews r
		JOIN learning_units u ON u.id = r.unit_id
		WHERE u.plan_id = $1
		ORDER BY u.unit_number`, r.PlanID)
	if err != nil {
		return nil, fmt.Errorf("get reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	return reviews, rows.Err()
}

func (s *PostgresStore) UpdateReview(ctx context.Context, r UpdateReviewRequest) error {
	rv := r.Review
	res, err := s.q.ExecContext(ctx, `
		UPDATE unit_reviews
		SET review_order = $2, review_date = $3, is_completed = $4, completed_at = $5, updated_at = NOW()
		WHERE id = $1`,
		rv.ID, rv.Round, rv.ScheduledDate, rv.IsCompleted, timeOrNil(rv.CompletedAt))
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	return requireAffected(res)
}

// GetDueUnits returns units with an incomplete review due on or before the
// given day, skipping units first learned that same day: a fresh unit's first
// review is never due same-day. Calendar dates are taken in UTC so the result
// does not depend on the DB session time zone.
func (s *PostgresStore) GetDueUnits(ctx context.Context, r GetDueUnitsRequest) ([]model.Unit, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+prefixedUnitColumns("u")+`
		FROM learning_units u
		JOIN unit_reviews r ON r.unit_id = u.id
		WHERE u.plan_id = $1
		  AND NOT r.is_completed
		  AND r.review_date <= ($2::timestamptz AT TIME ZONE 'UTC')::date
		  AND (u.learned_at AT TIME ZONE 'UTC')::date <> ($2::timestamptz AT TIME ZONE 'UTC')::date
		ORDER BY u.unit_number`, r.PlanID, r.Today)
	if err != nil {
		return nil, fmt.Errorf("get due units: %w", err)
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due unit: %w", err)
		}
		units = append(units, u)
	}

	return units, rows.Err()
}

const stageColumns = "id, plan_id, word_id, stage, start_date, last_reviewed_at, next_review_date, created_at, updated_at"

func scanWordStage(row interface{ Scan(...any) error }) (model.WordStage, error) {
	var ws model.WordStage
	var lastReviewed, nextReview sql.NullTime
	err := row.Scan(&ws.ID, &ws.PlanID, &ws.WordID, &ws.Stage, &ws.StartDate, &lastReviewed, &nextReview, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		return model.WordStage{}, err
	}
	if lastReviewed.Valid {
		ws.LastReviewedAt = &lastReviewed.Time
	}
	if nextReview.Valid {
		ws.NextReviewDate = &nextReview.Time
	}
	return ws, nil
}

func (s *PostgresStore) GetWordStage(ctx context.Context, r GetWordStageRequest) (model.WordStage, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+stageColumns+" FROM word_stages WHERE plan_id = $1 AND word_id = $2",
		r.PlanID, r.WordID)

	ws, err := scanWordStage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WordStage{}, ErrNotFound
	}
	if err != nil {
		return model.WordStage{}, fmt.Errorf("get word stage: %w", err)
	}

	return ws, nil
}

func (s *PostgresStore) GetStagedWordIDs(ctx context.Context, r GetStagedWordIDsRequest) ([]int64, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT word_id FROM word_stages WHERE plan_id = $1 AND word_id = ANY($2)",
		r.PlanID, pq.Array(r.WordIDs))
	if err != nil {
		return nil, fmt.Errorf("get staged word ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan word id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (s *PostgresStore) InsertWordStages(ctx context.Context, r InsertWordStagesRequest) (int, error) {
	if len(r.Stages) == 0 {
		return 0, nil
	}

	planIDs := make([]int64, 0, len(r.Stages))
	wordIDs := make([]int64, 0, len(r.Stages))
	startDates := make([]string, 0, len(r.Stages))
	nextDates := make([]string, 0, len(r.Stages))
	for _, ws := range r.Stages {
		planIDs = append(planIDs, ws.PlanID)
		wordIDs = append(wordIDs, ws.WordID)
		startDates = append(startDates, ws.StartDate.Format("2006-01-02"))
		nextDates = append(nextDates, ws.NextReviewDate.Format("2006-01-02"))
	}

	// ON CONFLICT DO NOTHING keeps the bulk insert idempotent even when a
	// concurrent initialization slipped past the existing-ids check.
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO word_stages (plan_id, word_id, stage, start_date, next_review_date)
		SELECT plan_id, word_id, 0, start_date::date, next_review_date::date
		FROM unnest($1::bigint[], $2::bigint[], $3::text[], $4::text[])
		     AS t(plan_id, word_id, start_date, next_review_date)
		ON CONFLICT (plan_id, word_id) DO NOTHING`,
		pq.Array(planIDs), pq.Array(wordIDs), pq.Array(startDates), pq.Array(nextDates))
	if err != nil {
		if isPqErr(err, errForeignKeyViolation) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("insert word stages: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert word stages: %w", err)
	}

	return int(inserted), nil
}

func (s *PostgresStore) UpdateWordStage(ctx context.Context, r UpdateWordStageRequest) error {
	ws := r.Stage
	res, err := s.q.ExecContext(ctx, `
		UPDATE word_stages
		SET stage = $2, last_reviewed_at = $3, next_review_date = $4, updated_at = NOW()
		WHERE id = $1`,
		ws.ID, ws.Stage, timeOrNil(ws.LastReviewedAt), timeOrNil(ws.NextReviewDate))
	if err != nil {
		return fmt.Errorf("update word stage: %w", err)
	}

	return requireAffected(res)
}

func (s *PostgresStore) GetWordCount(ctx context.Context, r GetWordCountRequest) (int, error) {
	row := s.q.QueryRowContext(ctx, "SELECT word_count FROM vocabulary_books WHERE id = $1", r.BookID)

	var count int
	err := row.Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get word count: %w", err)
	}

	return count, nil
}

func (s *PostgresStore) GetWordsInRange(ctx context.Context, r GetWordsInRangeRequest) ([]model.Word, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, book_id, word_order, spelling, phonetic, meanings, example
		FROM book_words
		WHERE book_id = $1 AND word_order BETWEEN $2 AND $3
		ORDER BY word_order`, r.BookID, r.StartOrder, r.EndOrder)
	if err != nil {
		return nil, fmt.Errorf("get words in range: %w", err)
	}
	defer rows.Close()

	var words []model.Word
	for rows.Next() {
		var w model.Word
		if err := rows.Scan(&w.ID, &w.BookID, &w.Order, &w.Spelling, &w.Phonetic, &w.Meanings, &w.Example); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		words = append(words, w)
	}

	return words, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func prefixedUnitColumns(alias string) string {
	cols := strings.Split(unitColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func isPqErr(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return pqErr.Code == code
}
