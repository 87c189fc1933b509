package api

import (
	"net/http"

	"github.com/SAADSTACK/NeuroMetric-AI/models"
	"github.com/SAADSTACK/NeuroMetric-AI/services"
	"github.com/SAADSTACK/NeuroMetric-AI/utils"

	"github.com/gin-gonic/gin"
)

// APIHandler holds all dependencies for API handlers.
type APIHandler struct {
	sessionService services.SessionService
	userService    services.UserService
	resultLister   ResultLister
}

// ResultLister is the slice of the results log the API needs.
type ResultLister interface {
	List() ([]models.AssessmentResult, error)
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(
	sessionService services.SessionService,
	userService services.UserService,
	resultLister ResultLister,
) *APIHandler {
	return &APIHandler{
		sessionService: sessionService,
		userService:    userService,
		resultLister:   resultLister,
	}
}

type sessionRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	PatientName string `json:"patient_name"`
}

type answerRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	QuestionID int    `json:"question_id" binding:"required"`
	Value      int    `json:"value" binding:"required"`
}

// StartSessionHandler creates or resumes the caller's assessment session.
// If the recovered session had already expired, the forced-submission result
// is returned instead of a snapshot.
func (h *APIHandler) StartSessionHandler(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "user_id is required", err)
		return
	}

	snapshot, result, err := h.sessionService.StartOrResume(req.UserID, req.PatientName)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to start assessment session.", err)
		return
	}
	if result != nil {
		c.JSON(http.StatusOK, gin.H{"expired": true, "result": result})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snapshot})
}

// AnswerHandler records one answer and persists the session before replying.
func (h *APIHandler) AnswerHandler(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "user_id, question_id and value are required", err)
		return
	}

	snapshot, err := h.sessionService.RecordAnswer(req.UserID, req.QuestionID, req.Value)
	if err != nil {
		utils.SendJSONError(c, http.StatusUnprocessableEntity, "Could not record answer.", err, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snapshot})
}

// NextPageHandler advances pagination; guarded by the page-complete check.
func (h *APIHandler) NextPageHandler(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "user_id is required", err)
		return
	}

	snapshot, err := h.sessionService.NextPage(req.UserID)
	if err != nil {
		utils.SendJSONError(c, http.StatusConflict, "Cannot advance to the next page.", err, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snapshot})
}

// PrevPageHandler moves pagination backward; always permitted.
func (h *APIHandler) PrevPageHandler(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "user_id is required", err)
		return
	}

	snapshot, err := h.sessionService.PrevPage(req.UserID)
	if err != nil {
		utils.SendJSONError(c, http.StatusConflict, "Cannot move to the previous page.", err, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snapshot})
}

// SubmitHandler finalizes the session. A repeat submission (no session, or a
// submission already in flight) is a no-op and reported as a conflict so the
// client can simply refresh.
func (h *APIHandler) SubmitHandler(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "user_id is required", err)
		return
	}

	result, err := h.sessionService.Submit(req.UserID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to submit assessment.", err)
		return
	}
	if result == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "No submittable session; a submission may already be in progress."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// ListResultsHandler returns the results log (seeded samples when empty).
func (h *APIHandler) ListResultsHandler(c *gin.Context) {
	results, err := h.resultLister.List()
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to load assessment results.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type createProfileRequest struct {
	ExternalID string `json:"external_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Role       string `json:"role" binding:"required"`
}

// CreateProfileHandler registers a profile for an authenticated identity.
func (h *APIHandler) CreateProfileHandler(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "external_id, name and role are required", err)
		return
	}

	profile, err := h.userService.CreateProfile(req.ExternalID, req.Name, req.Email, models.Role(req.Role))
	if err != nil {
		utils.SendJSONError(c, http.StatusUnprocessableEntity, "Could not create profile.", err, err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"profile": profile})
}

// GetProfileHandler looks up the profile for an external auth UID.
func (h *APIHandler) GetProfileHandler(c *gin.Context) {
	externalID := c.Param("externalID")
	profile, err := h.userService.GetProfile(externalID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to load profile.", err)
		return
	}
	if profile == nil {
		utils.SendJSONError(c, http.StatusNotFound, "Profile not found.", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// ListPendingUsersHandler returns patient profiles awaiting approval.
func (h *APIHandler) ListPendingUsersHandler(c *gin.Context) {
	profiles, err := h.userService.GetPendingUsers()
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to load pending users.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": profiles})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateUserStatusHandler approves or rejects a pending profile; the change
// is broadcast to all observing contexts through the notifier.
func (h *APIHandler) UpdateUserStatusHandler(c *gin.Context) {
	id := c.Param("id")
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "status is required", err)
		return
	}

	profile, err := h.userService.UpdateUserStatus(id, models.UserStatus(req.Status))
	if err != nil {
		utils.SendJSONError(c, http.StatusUnprocessableEntity, "Could not update user status.", err, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
