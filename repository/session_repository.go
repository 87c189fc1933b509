package repository

import (
	"errors"
	"fmt"
	"log"

	"github.com/SAADSTACK/NeuroMetric-AI/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository is the persistence adapter for the single live
// assessment session per user (the current-session slot). A session is
// written through on every answer and erased exactly once, when a submission
// is accepted.
type SessionRepository interface {
	Load(userID string) (*models.AssessmentSession, error) // Returns (nil, nil) when no session exists
	Save(session *models.AssessmentSession) error          // Upsert keyed on UserID
	Clear(userID string) error
	ListAll() ([]*models.AssessmentSession, error) // Every persisted session, for the expiry sweep
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Load retrieves the live session for a user, if any.
func (r *sessionRepository) Load(userID string) (*models.AssessmentSession, error) {
	if userID == "" {
		log.Printf("ERROR: [SessionRepository] Load: userID cannot be empty.")
		return nil, errors.New("user ID cannot be empty")
	}

	var session models.AssessmentSession
	err := r.db.Where("user_id = ?", userID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [SessionRepository] No live session found for userID '%s'.", userID)
			return nil, nil // Not found, service layer will interpret
		}
		log.Printf("ERROR: [SessionRepository] Failed to load session for userID '%s': %v", userID, err)
		return nil, fmt.Errorf("failed to load session for userID '%s': %w", userID, err)
	}
	log.Printf("INFO: [SessionRepository] Loaded session ID %d for userID '%s' (%d answers).", session.ID, userID, len(session.Answers))
	return &session, nil
}

// Save writes the full session state through to the store. The whole record
// is replaced on conflict (last-write-wins); there is no partial patching.
func (r *sessionRepository) Save(session *models.AssessmentSession) error {
	if session == nil {
		log.Printf("ERROR: [SessionRepository] Save: session cannot be nil.")
		return errors.New("session cannot be nil")
	}
	if session.UserID == "" {
		log.Printf("ERROR: [SessionRepository] Save: session UserID cannot be empty.")
		return errors.New("session user ID cannot be empty")
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(session).Error
	if err != nil {
		log.Printf("ERROR: [SessionRepository] Failed to save session for userID '%s': %v", session.UserID, err)
		return fmt.Errorf("failed to save session for userID '%s': %w", session.UserID, err)
	}
	return nil
}

// Clear erases the live session for a user. Clearing an absent session is not
// an error; the slot is simply empty afterwards.
func (r *sessionRepository) Clear(userID string) error {
	if userID == "" {
		log.Printf("ERROR: [SessionRepository] Clear: userID cannot be empty.")
		return errors.New("user ID cannot be empty")
	}

	err := r.db.Where("user_id = ?", userID).Delete(&models.AssessmentSession{}).Error
	if err != nil {
		log.Printf("ERROR: [SessionRepository] Failed to clear session for userID '%s': %v", userID, err)
		return fmt.Errorf("failed to clear session for userID '%s': %w", userID, err)
	}
	log.Printf("INFO: [SessionRepository] Cleared session slot for userID '%s'.", userID)
	return nil
}

// ListAll returns every persisted session, oldest first.
func (r *sessionRepository) ListAll() ([]*models.AssessmentSession, error) {
	var sessions []*models.AssessmentSession
	err := r.db.Order("started_at asc").Find(&sessions).Error
	if err != nil {
		log.Printf("ERROR: [SessionRepository] Failed to list sessions: %v", err)
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
