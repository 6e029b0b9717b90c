package controllers

import (
	"net/http"
	"strconv"
	"time"

	"editorial-workflow-api/config"
	"editorial-workflow-api/models"
	"editorial-workflow-api/services"

	"github.com/gin-gonic/gin"
)

type assignReviewerRequest struct {
	ReviewerID   int        `json:"reviewer_id" binding:"required"`
	RoundID      *int       `json:"round_id"`
	Stage        string     `json:"stage"`
	ReviewMethod string     `json:"review_method"`
	DateDue      *time.Time `json:"date_due"`
}

// AssignReviewer invites a reviewer to the submission's current round.
func AssignReviewer(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req assignReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Stage == "" {
		req.Stage = models.StageExternalReview
	}

	svc := services.NewAssignmentService(config.DB)
	assignment, err := svc.Assign(currentActor(c), services.AssignInput{
		SubmissionID: submissionID,
		ReviewerID:   req.ReviewerID,
		RoundID:      req.RoundID,
		Stage:        req.Stage,
		ReviewMethod: req.ReviewMethod,
		DateDue:      req.DateDue,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"assignment": assignment,
	})
}

// RespondToAssignment records the reviewer's accept or decline.
func RespondToAssignment(c *gin.Context) {
	assignmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil || assignmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	var req struct {
		Accept *bool `json:"accept" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request must include accept true/false"})
		return
	}

	svc := services.NewAssignmentService(config.DB)
	assignment, err := svc.Respond(currentActor(c), assignmentID, *req.Accept)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"assignment": assignment,
	})
}

type submitReviewRequest struct {
	Recommendation       string  `json:"recommendation" binding:"required"`
	Comments             string  `json:"comments"`
	ConfidentialComments *string `json:"confidential_comments"`
	Quality              *int    `json:"quality"`
}

// SubmitReview records the reviewer's recommendation and completes the
// assignment.
func SubmitReview(c *gin.Context) {
	assignmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil || assignmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewAssignmentService(config.DB)
	assignment, err := svc.SubmitReview(currentActor(c), services.SubmitReviewInput{
		AssignmentID:         assignmentID,
		Recommendation:       req.Recommendation,
		Comments:             req.Comments,
		ConfidentialComments: req.ConfidentialComments,
		Quality:              req.Quality,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"assignment": assignment,
	})
}

// CancelAssignment withdraws a review assignment. Editor only.
func CancelAssignment(c *gin.Context) {
	assignmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil || assignmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	svc := services.NewAssignmentService(config.DB)
	assignment, err := svc.Cancel(currentActor(c), assignmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"assignment": assignment,
	})
}

// GetRoundAssignments lists the assignments of one round.
func GetRoundAssignments(c *gin.Context) {
	roundID, err := strconv.Atoi(c.Param("id"))
	if err != nil || roundID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	var assignments []models.ReviewAssignment
	if err := config.DB.Preload("Reviewer").
		Where("round_id = ?", roundID).
		Order("date_assigned ASC").
		Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"assignments": assignments,
		"total":       len(assignments),
	})
}

// GetMyAssignments lists the authenticated reviewer's assignments.
func GetMyAssignments(c *gin.Context) {
	actor := currentActor(c)

	var assignments []models.ReviewAssignment
	query := config.DB.Preload("Round").
		Where("reviewer_id = ? AND cancelled = ?", actor.UserID, false)
	if c.Query("pending") == "true" {
		query = query.Where("date_completed IS NULL AND declined = ?", false)
	}
	if err := query.Order("date_due ASC").Find(&assignments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assignments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"assignments": assignments,
		"total":       len(assignments),
	})
}
