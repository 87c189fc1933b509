package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/SAADSTACK/NeuroMetric-AI/models"
	"github.com/SAADSTACK/NeuroMetric-AI/notifier"
	"github.com/SAADSTACK/NeuroMetric-AI/repository"
	"github.com/SAADSTACK/NeuroMetric-AI/utils"
)

// Fixed narrative strings. The expiry marker replaces the interpretation call
// entirely on a forced submission; the fallback replaces a failed call on a
// normal one. Neither path ever surfaces an error to the patient.
const (
	ExpiryNarrative   = "Assessment terminated early due to time limit."
	FallbackNarrative = "Automated interpretation currently unavailable due to network or service error."
)

const interpretationTimeout = 45 * time.Second

// SessionSnapshot is the caller-facing view of a live session: the current
// page of questions, recorded answers, and the derived remaining time.
type SessionSnapshot struct {
	State            models.SessionState `json:"state"`
	Page             int                 `json:"page"`
	TotalPages       int                 `json:"total_pages"`
	Questions        []models.Question   `json:"questions"` // Questions on the current page
	Scale            map[int]string      `json:"scale"`     // Likert value -> display label
	Answers          models.AnswerSet    `json:"answers"`
	AnsweredCount    int                 `json:"answered_count"`
	TotalQuestions   int                 `json:"total_questions"`
	RemainingSeconds int                 `json:"remaining_seconds"`
	PageComplete     bool                `json:"page_complete"` // Forward guard: every question on this page answered
	LastPage         bool                `json:"last_page"`
}

// SessionService orchestrates the assessment session state machine:
// recovery-on-start, paginated answer capture, the time budget, and the
// single submission transition. One live session per user.
type SessionService interface {
	// StartOrResume loads the persisted session for the user or creates a
	// fresh one. If the persisted session's time budget has already lapsed,
	// it is finalized immediately as a forced submission and the resulting
	// AssessmentResult is returned alongside a nil snapshot.
	StartOrResume(userID, patientName string) (*SessionSnapshot, *models.AssessmentResult, error)
	// RecordAnswer merges one answer into the session and persists the full
	// session before returning. Active sessions only; value must be in [1,5].
	RecordAnswer(userID string, questionID, value int) (*SessionSnapshot, error)
	// NextPage advances the pagination cursor. Guarded: every question on the
	// current page must be answered.
	NextPage(userID string) (*SessionSnapshot, error)
	// PrevPage moves the cursor back. Always permitted; never resets answers.
	PrevPage(userID string) (*SessionSnapshot, error)
	// Submit finalizes the session and hands the result to the caller exactly
	// once. A second attempt while one is outstanding, or after the session
	// reached its terminal state, is a no-op returning (nil, nil).
	Submit(userID string) (*models.AssessmentResult, error)
	// Snapshot returns the current view of a live session.
	Snapshot(userID string) (*SessionSnapshot, error)
	// ExpireStale finalizes persisted sessions whose time budget lapsed with
	// no live runtime attached (e.g., the process restarted mid-session and
	// the patient never came back).
	ExpireStale() error
	// Shutdown stops all session tickers.
	Shutdown()
}

// sessionRuntime is the in-memory state of one live session. Everything
// behind mu; the pagination cursor lives only here (a crash loses at most
// the cursor, never an answer).
type sessionRuntime struct {
	mu      sync.Mutex
	state   models.SessionState
	session *models.AssessmentSession
	page    int
	ticker  *time.Ticker
	done    chan struct{}
}

type sessionService struct {
	sessionRepo repository.SessionRepository
	resultRepo  repository.ResultRepository
	interpreter Interpreter
	hub         *notifier.Hub

	bank     []models.Question
	byID     map[int]models.Question
	patterns []models.ConsistencyPattern

	timeLimit time.Duration
	pageSize  int

	now func() time.Time // Injected clock; elapsed time is always now() - StartedAt

	mu       sync.Mutex
	runtimes map[string]*sessionRuntime
}

// NewSessionService creates the session state machine service.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	resultRepo repository.ResultRepository,
	interpreter Interpreter,
	hub *notifier.Hub,
	timeLimitSeconds int,
	pageSize int,
) SessionService {
	bank := DefaultQuestionBank()
	byID := make(map[int]models.Question, len(bank))
	for _, q := range bank {
		byID[q.ID] = q
	}

	return &sessionService{
		sessionRepo: sessionRepo,
		resultRepo:  resultRepo,
		interpreter: interpreter,
		hub:         hub,
		bank:        bank,
		byID:        byID,
		patterns:    DefaultConsistencyPatterns(),
		timeLimit:   time.Duration(timeLimitSeconds) * time.Second,
		pageSize:    pageSize,
		now:         time.Now,
		runtimes:    make(map[string]*sessionRuntime),
	}
}

func (s *sessionService) StartOrResume(userID, patientName string) (*SessionSnapshot, *models.AssessmentResult, error) {
	if userID == "" {
		return nil, nil, errors.New("user ID cannot be empty")
	}

	s.mu.Lock()
	if rt, ok := s.runtimes[userID]; ok {
		s.mu.Unlock()
		rt.mu.Lock()
		defer rt.mu.Unlock()
		if rt.state != models.SessionStateActive {
			return nil, nil, fmt.Errorf("session for userID '%s' is %s", userID, rt.state)
		}
		return s.snapshotLocked(rt), nil, nil
	}
	s.mu.Unlock()

	persisted, err := s.sessionRepo.Load(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to recover session: %w", err)
	}

	if persisted != nil {
		if patientName != "" && persisted.PatientName == "" {
			persisted.PatientName = patientName
		}
		elapsed := s.now().Sub(persisted.StartedAt)
		remaining := s.timeLimit - elapsed
		if remaining <= 0 {
			// Time expired while away: forced submission with whatever
			// answers were recovered, regardless of their content.
			log.Printf("INFO: [SessionService] Session for userID '%s' expired while away (elapsed %v >= limit %v). Forcing submission.",
				userID, elapsed.Truncate(time.Second), s.timeLimit)
			result, claimed, ferr := s.finalizeDetached(userID)
			if ferr != nil {
				return nil, nil, ferr
			}
			if result != nil {
				return nil, result, nil
			}
			if !claimed {
				return nil, nil, fmt.Errorf("session for userID '%s' is being finalized", userID)
			}
			// The slot was claimed but the session was already gone: a
			// concurrent caller finalized it and took the result hand-off.
			// Fall through and start a fresh session.
			persisted = nil
		} else {
			log.Printf("INFO: [SessionService] Resumed session for userID '%s' with %d answers and %v remaining.",
				userID, len(persisted.Answers), remaining.Truncate(time.Second))
		}
	}

	if persisted == nil {
		// First access: create an empty session and persist it immediately so
		// the start time survives a crash before the first answer.
		persisted = &models.AssessmentSession{
			UserID:      userID,
			PatientName: patientName,
			Answers:     make(models.AnswerSet),
			StartedAt:   s.now(),
		}
		if err := s.sessionRepo.Save(persisted); err != nil {
			return nil, nil, fmt.Errorf("failed to persist new session: %w", err)
		}
		s.publish(notifier.Event{Type: notifier.EventSessionSaved, UserID: userID})
		log.Printf("INFO: [SessionService] Started new session for userID '%s'.", userID)
	}

	rt := &sessionRuntime{
		state:   models.SessionStateActive,
		session: persisted,
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	// Re-check under the lock in case of a concurrent StartOrResume.
	if existing, ok := s.runtimes[userID]; ok {
		s.mu.Unlock()
		existing.mu.Lock()
		defer existing.mu.Unlock()
		if existing.state != models.SessionStateActive {
			return nil, nil, fmt.Errorf("session for userID '%s' is %s", userID, existing.state)
		}
		return s.snapshotLocked(existing), nil, nil
	}
	s.runtimes[userID] = rt
	s.mu.Unlock()

	s.startTicker(userID, rt)

	rt.mu.Lock()
	defer rt.mu.Unlock()
	return s.snapshotLocked(rt), nil, nil
}

func (s *sessionService) RecordAnswer(userID string, questionID, value int) (*SessionSnapshot, error) {
	if _, ok := s.byID[questionID]; !ok {
		return nil, fmt.Errorf("question %d does not exist", questionID)
	}
	if value < models.AnswerMin || value > models.AnswerMax {
		return nil, fmt.Errorf("answer value %d is out of range [%d,%d]", value, models.AnswerMin, models.AnswerMax)
	}

	rt := s.runtime(userID)
	if rt == nil {
		return nil, fmt.Errorf("no live session for userID '%s'", userID)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.state != models.SessionStateActive {
		return nil, fmt.Errorf("session for userID '%s' is %s, answers are no longer accepted", userID, rt.state)
	}

	rt.session.Answers[questionID] = value
	// Write-through before returning: the answer must be durable before any
	// page-advancement check can read it.
	if err := s.sessionRepo.Save(rt.session); err != nil {
		return nil, fmt.Errorf("failed to persist answer: %w", err)
	}
	s.publish(notifier.Event{Type: notifier.EventSessionSaved, UserID: userID})
	return s.snapshotLocked(rt), nil
}

func (s *sessionService) NextPage(userID string) (*SessionSnapshot, error) {
	rt := s.runtime(userID)
	if rt == nil {
		return nil, fmt.Errorf("no live session for userID '%s'", userID)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.state != models.SessionStateActive {
		return nil, fmt.Errorf("session for userID '%s' is %s", userID, rt.state)
	}
	if !s.pageCompleteLocked(rt) {
		return nil, errors.New("cannot advance: current page has unanswered questions")
	}
	if rt.page >= s.totalPages()-1 {
		return nil, errors.New("already on the last page")
	}
	rt.page++
	return s.snapshotLocked(rt), nil
}

func (s *sessionService) PrevPage(userID string) (*SessionSnapshot, error) {
	rt := s.runtime(userID)
	if rt == nil {
		return nil, fmt.Errorf("no live session for userID '%s'", userID)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.state != models.SessionStateActive {
		return nil, fmt.Errorf("session for userID '%s' is %s", userID, rt.state)
	}
	if rt.page > 0 {
		rt.page--
	}
	return s.snapshotLocked(rt), nil
}

func (s *sessionService) Snapshot(userID string) (*SessionSnapshot, error) {
	rt := s.runtime(userID)
	if rt == nil {
		return nil, fmt.Errorf("no live session for userID '%s'", userID)
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.state != models.SessionStateActive {
		return nil, fmt.Errorf("session for userID '%s' is %s", userID, rt.state)
	}
	return s.snapshotLocked(rt), nil
}

func (s *sessionService) Submit(userID string) (*models.AssessmentResult, error) {
	rt := s.runtime(userID)
	if rt == nil {
		// Either never started or already finalized; a repeat submission is a
		// no-op by contract, not an error.
		log.Printf("WARN: [SessionService] Submit for userID '%s' with no live session; treating as no-op.", userID)
		return nil, nil
	}
	return s.finalizeRuntime(userID, rt, false)
}

// finalizeRuntime drives Active (or Expired) -> Submitting -> Terminal for a
// live runtime. The Submitting state is the re-entrant guard: exactly one
// caller passes it, every other concurrent or later attempt gets (nil, nil).
func (s *sessionService) finalizeRuntime(userID string, rt *sessionRuntime, forced bool) (*models.AssessmentResult, error) {
	rt.mu.Lock()
	if rt.state == models.SessionStateSubmitting || rt.state == models.SessionStateTerminal {
		rt.mu.Unlock()
		log.Printf("WARN: [SessionService] Submission already %s for userID '%s'; ignoring repeat attempt.", rt.state, userID)
		return nil, nil
	}
	if forced {
		rt.state = models.SessionStateExpired
		log.Printf("INFO: [SessionService] Time limit reached for userID '%s'. Submitting current answers.", userID)
	}
	rt.state = models.SessionStateSubmitting
	s.stopTickerLocked(rt)
	session := *rt.session
	session.Answers = rt.session.Answers.Clone()
	rt.mu.Unlock()

	// The interpretation call and store writes happen outside the runtime
	// lock; the Submitting state already excludes every competing transition.
	result, err := s.finalizeSession(&session, forced)

	rt.mu.Lock()
	rt.state = models.SessionStateTerminal
	rt.mu.Unlock()

	s.mu.Lock()
	delete(s.runtimes, userID)
	s.mu.Unlock()

	return result, err
}

// finalizeDetached force-finalizes the persisted session of a user with no
// live runtime attached (expired while away, or abandoned and swept by the
// janitor). It claims the per-user runtime slot before touching the store, so
// it shares the re-entrant guard with every other finalization path: a live
// runtime, an in-flight submission, or a concurrent detached finalization all
// make the claim fail. The session is re-loaded under the claim; the loser of
// a race observes the already-cleared slot and finalizes nothing. Returns
// claimed=false when the slot was taken.
func (s *sessionService) finalizeDetached(userID string) (*models.AssessmentResult, bool, error) {
	rt := &sessionRuntime{state: models.SessionStateSubmitting}
	s.mu.Lock()
	if _, ok := s.runtimes[userID]; ok {
		s.mu.Unlock()
		return nil, false, nil
	}
	s.runtimes[userID] = rt
	s.mu.Unlock()

	defer func() {
		rt.mu.Lock()
		rt.state = models.SessionStateTerminal
		rt.mu.Unlock()
		s.mu.Lock()
		delete(s.runtimes, userID)
		s.mu.Unlock()
	}()

	persisted, err := s.sessionRepo.Load(userID)
	if err != nil {
		return nil, true, fmt.Errorf("failed to load session for finalization: %w", err)
	}
	if persisted == nil || s.now().Sub(persisted.StartedAt) < s.timeLimit {
		return nil, true, nil
	}
	result, err := s.finalizeSession(persisted, true)
	return result, true, err
}

// finalizeSession computes the AssessmentResult for a session, appends it to
// the results log, and erases the session slot. Scoring never fails; the
// narrative step degrades to a fixed string rather than blocking or failing
// the submission.
func (s *sessionService) finalizeSession(session *models.AssessmentSession, forced bool) (*models.AssessmentResult, error) {
	scores := ScoreSheet(s.bank, session.Answers)
	totalScore := TotalScore(scores)
	maxScore := len(s.bank) * models.AnswerMax
	consistency := CalculateConsistency(s.patterns, session.Answers)
	status := StatusFromScore(totalScore)

	elapsed := int(s.now().Sub(session.StartedAt) / time.Second)
	limit := int(s.timeLimit / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > limit {
		elapsed = limit
	}

	narrative := ExpiryNarrative
	if !forced {
		ctx, cancel := context.WithTimeout(context.Background(), interpretationTimeout)
		text, err := s.interpreter.GenerateClinicalInterpretation(
			ctx, totalScore, maxScore, string(status), consistency, CategoryTotals(s.bank, session.Answers))
		cancel()
		if err != nil {
			log.Printf("WARN: [SessionService] Interpretation unavailable for userID '%s', using fallback narrative: %v", session.UserID, err)
			narrative = FallbackNarrative
		} else {
			narrative = text
		}
	}

	result := &models.AssessmentResult{
		ID:                  utils.GenerateID(),
		PatientName:         session.PatientName,
		PatientID:           session.UserID,
		Date:                s.now(),
		Score:               totalScore,
		MaxScore:            maxScore,
		Percentage:          float64(totalScore) / float64(maxScore) * 100,
		Status:              status,
		ConsistencyScore:    consistency,
		ResponseTimeSeconds: elapsed,
		Answers:             scores,
		AIInterpretation:    narrative,
	}

	// Store failures are absorbed (degraded-but-valid result): the caller
	// still receives the computed result, and the condition is logged for the
	// operator.
	if err := s.resultRepo.Append(result); err != nil {
		log.Printf("ERROR: [SessionService] Failed to append result for userID '%s': %v", session.UserID, err)
	} else {
		s.publish(notifier.Event{Type: notifier.EventResultAppended, UserID: session.UserID})
	}
	if err := s.sessionRepo.Clear(session.UserID); err != nil {
		log.Printf("ERROR: [SessionService] Failed to clear session slot for userID '%s': %v", session.UserID, err)
	}

	log.Printf("INFO: [SessionService] Finalized session for userID '%s': score=%d/%d, status=%s, consistency=%.1f%%, forced=%t.",
		session.UserID, totalScore, maxScore, status, consistency, forced)
	return result, nil
}

func (s *sessionService) ExpireStale() error {
	sessions, err := s.sessionRepo.ListAll()
	if err != nil {
		return fmt.Errorf("failed to sweep sessions: %w", err)
	}

	swept := 0
	for _, session := range sessions {
		if s.now().Sub(session.StartedAt) < s.timeLimit {
			continue
		}
		result, claimed, err := s.finalizeDetached(session.UserID)
		if err != nil {
			log.Printf("ERROR: [SessionService] Failed to expire stale session for userID '%s': %v", session.UserID, err)
			continue
		}
		if !claimed || result == nil {
			continue // A live runtime or an in-flight submission owns this session
		}
		log.Printf("INFO: [SessionService] Expired stale session for userID '%s' (started %s).",
			session.UserID, utils.FormatTime(session.StartedAt))
		swept++
	}
	if swept > 0 {
		log.Printf("INFO: [SessionService] Expired %d stale session(s).", swept)
	}
	return nil
}

func (s *sessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rt := range s.runtimes {
		rt.mu.Lock()
		s.stopTickerLocked(rt)
		rt.mu.Unlock()
	}
}

// startTicker runs the once-per-second clock for an Active session. The
// ticker is disposed on any transition out of Active, so there is never a
// duplicate tick after expiry or submission.
func (s *sessionService) startTicker(userID string, rt *sessionRuntime) {
	rt.mu.Lock()
	rt.ticker = time.NewTicker(time.Second)
	done := rt.done
	ticker := rt.ticker
	rt.mu.Unlock()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				rt.mu.Lock()
				if rt.state != models.SessionStateActive {
					rt.mu.Unlock()
					return
				}
				remaining := s.timeLimit - s.now().Sub(rt.session.StartedAt)
				rt.mu.Unlock()
				if remaining <= 0 {
					if _, err := s.finalizeRuntime(userID, rt, true); err != nil {
						log.Printf("ERROR: [SessionService] Forced submission after expiry failed for userID '%s': %v", userID, err)
					}
					return
				}
			}
		}
	}()
}

// stopTickerLocked disposes the session clock. Caller holds rt.mu.
func (s *sessionService) stopTickerLocked(rt *sessionRuntime) {
	if rt.ticker != nil {
		rt.ticker.Stop()
		rt.ticker = nil
	}
	if rt.done != nil {
		close(rt.done)
		rt.done = nil
	}
}

func (s *sessionService) runtime(userID string) *sessionRuntime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runtimes[userID]
}

func (s *sessionService) totalPages() int {
	return (len(s.bank) + s.pageSize - 1) / s.pageSize
}

// pageQuestionsLocked returns the bank slice for the runtime's current page
// (last page length is the remainder). Caller holds rt.mu.
func (s *sessionService) pageQuestionsLocked(rt *sessionRuntime) []models.Question {
	start := rt.page * s.pageSize
	end := start + s.pageSize
	if end > len(s.bank) {
		end = len(s.bank)
	}
	if start >= len(s.bank) {
		return nil
	}
	return s.bank[start:end]
}

func (s *sessionService) pageCompleteLocked(rt *sessionRuntime) bool {
	for _, q := range s.pageQuestionsLocked(rt) {
		if _, ok := rt.session.Answers[q.ID]; !ok {
			return false
		}
	}
	return true
}

func (s *sessionService) snapshotLocked(rt *sessionRuntime) *SessionSnapshot {
	remaining := int((s.timeLimit - s.now().Sub(rt.session.StartedAt)) / time.Second)
	if remaining < 0 {
		remaining = 0
	}
	return &SessionSnapshot{
		State:            rt.state,
		Page:             rt.page,
		TotalPages:       s.totalPages(),
		Questions:        s.pageQuestionsLocked(rt),
		Scale:            models.ScaleLabels,
		Answers:          rt.session.Answers.Clone(),
		AnsweredCount:    len(rt.session.Answers),
		TotalQuestions:   len(s.bank),
		RemainingSeconds: remaining,
		PageComplete:     s.pageCompleteLocked(rt),
		LastPage:         rt.page == s.totalPages()-1,
	}
}

func (s *sessionService) publish(event notifier.Event) {
	if s.hub != nil {
		s.hub.Publish(event)
	}
}
