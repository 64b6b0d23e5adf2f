package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the capability the identity provider resolved for the caller.
type Role string

const (
	RoleLearner    Role = "learner"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Caller is the pre-authorized identity attached to every request.
type Caller struct {
	ID   uuid.UUID
	Role Role
}

type Model struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Plan is one learner's scheduled run through one vocabulary book.
type Plan struct {
	Model
	ID           int64
	LearnerID    uuid.UUID
	SupervisorID *uuid.UUID
	BookID       int64
	WordsPerDay  int
	StartDate    time.Time
	IsActive     bool
}

// Unit is a contiguous batch of book words learned as one sitting.
// StartOrder and EndOrder are 1-based inclusive positions in the book.
type Unit struct {
	Model
	ID                int64
	PlanID            int64
	Number            int
	StartOrder        int
	EndOrder          int
	ExpectedLearnDate time.Time
	IsLearned         bool
	LearnedAt         *time.Time
}

// Width is the number of words the unit spans.
func (u Unit) Width() int {
	return u.EndOrder - u.StartOrder + 1
}

// Review is the single mutable row tracking a unit's position on the
// five-round review ladder. Advancing a round rewrites this row in place
// so the current due round is always one lookup.
type Review struct {
	Model
	ID            int64
	UnitID        int64
	Round         int
	ScheduledDate time.Time
	IsCompleted   bool
	CompletedAt   *time.Time
}

// WordStage is the per-word progression record of the word-stage engine.
// Stage runs 0..6; NextReviewDate equals StartDate at stage 0 (immediately
// eligible) and is nil at stage 6 (mastered).
type WordStage struct {
	Model
	ID             int64
	PlanID         int64
	WordID         int64
	Stage          int
	StartDate      time.Time
	LastReviewedAt *time.Time
	NextReviewDate *time.Time
}

// Word is a vocabulary book entry, referenced by its ordinal position.
type Word struct {
	ID       int64
	BookID   int64
	Order    int
	Spelling string
	Phonetic string
	Meanings string
	Example  string
}
