package models

import (
	"time"
)

// AnswerSet maps question ID to a Likert response in [AnswerMin, AnswerMax].
// Absence of a key is the "unanswered" state; the zero sentinel only appears
// in the ordered score sheet built at the scoring boundary. Keys are always a
// subset of the question bank IDs and are added, never removed, during a
// session (values may be overwritten).
type AnswerSet map[int]int

// Clone returns a copy of the answer set safe to hand to other goroutines.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for id, v := range a {
		out[id] = v
	}
	return out
}

// SessionState defines the lifecycle state of an assessment session runtime.
type SessionState string

const (
	SessionStateInitializing SessionState = "initializing"
	SessionStateActive       SessionState = "active"
	SessionStateExpired      SessionState = "expired"
	SessionStateSubmitting   SessionState = "submitting"
	SessionStateTerminal     SessionState = "terminal" // Absorbing; no further answers, pagination, or ticks
)

// AssessmentSession is the persisted in-progress state of one assessment
// attempt and the unit of crash recovery. Exactly one live session exists per
// user; it is created at first access and erased exactly once, when a
// submission is accepted. Remaining time is always derived from StartedAt, so
// recovery is exact after an arbitrarily long absence and no tick counter is
// ever persisted.
type AssessmentSession struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"uniqueIndex"` // External auth UID of the session owner
	PatientName string    `json:"patient_name"`
	Answers     AnswerSet `json:"answers" gorm:"serializer:json"`
	StartedAt   time.Time `json:"started_at"` // Wall-clock start; elapsed time is always computed from this
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ResultStatus classifies a total score on the fixed threshold ladder.
type ResultStatus string

const (
	StatusCritical ResultStatus = "Critical"
	StatusPoor     ResultStatus = "Poor"
	StatusNormal   ResultStatus = "Normal"
	StatusGood     ResultStatus = "Good"
	// StatusExcellent is reserved for future threshold refinement. No scoring
	// path currently produces it; the ladder stays open for a fifth tier.
	StatusExcellent ResultStatus = "Excellent"
)

// AssessmentResult is one completed assessment, appended to the results log.
// Immutable once created; the session machine holds no reference after
// hand-off to the log and the caller.
type AssessmentResult struct {
	ID                  string       `json:"id" gorm:"primaryKey"` // UUID
	PatientName         string       `json:"patient_name"`
	PatientID           string       `json:"patient_id,omitempty" gorm:"index"` // External auth UID, distinct from the display name
	Date                time.Time    `json:"date"`
	Score               int          `json:"score"`
	MaxScore            int          `json:"max_score"`
	Percentage          float64      `json:"percentage"`
	Status              ResultStatus `json:"status"`
	ConsistencyScore    float64      `json:"consistency_score"`
	ResponseTimeSeconds int          `json:"response_time_seconds"`
	Answers             []int        `json:"answers" gorm:"serializer:json"` // Ordered, aligned to question bank order; 0 = unanswered
	AIInterpretation    string       `json:"ai_interpretation,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
}
