package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"editorial-workflow-api/config"
	"editorial-workflow-api/models"
	"editorial-workflow-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type createSubmissionRequest struct {
	JournalID int     `json:"journal_id" binding:"required"`
	SectionID int     `json:"section_id" binding:"required"`
	Title     string  `json:"title" binding:"required"`
	Abstract  *string `json:"abstract"`
}

// CreateSubmission creates a draft submission at the intake stage.
func CreateSubmission(c *gin.Context) {
	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := currentActor(c)
	title := utils.SanitizeInput(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	var section models.Section
	if err := config.DB.Where("section_id = ? AND journal_id = ? AND delete_at IS NULL",
		req.SectionID, req.JournalID).First(&section).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found in journal"})
		return
	}

	now := time.Now()
	submission := models.Submission{
		SubmissionNumber: generateSubmissionNumber(),
		JournalID:        req.JournalID,
		SectionID:        req.SectionID,
		SubmitterID:      actor.UserID,
		Title:            title,
		Abstract:         req.Abstract,
		Stage:            models.StageSubmission,
		Status:           models.StatusQueued,
		DateSubmitted:    &now,
		DateLastActivity: &now,
		CreateAt:         &now,
		UpdateAt:         &now,
	}
	if err := config.DB.Create(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create submission"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// GetSubmissions lists submissions visible to the caller. Authors see their
// own; editors and admins see everything, optionally filtered by stage and
// status. Legacy stage/status filter values are accepted and canonicalized.
func GetSubmissions(c *gin.Context) {
	actor := currentActor(c)
	roleID, _ := c.Get("roleID")

	query := config.DB.Preload("Submitter").Preload("Journal").Preload("Section").
		Where("delete_at IS NULL")

	if roleID != models.RoleEditor && roleID != models.RoleAdmin {
		query = query.Where("submitter_id = ?", actor.UserID)
	}

	if rawStage := strings.TrimSpace(c.Query("stage")); rawStage != "" {
		stage, err := utils.CanonicalStage(rawStage)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		query = query.Where("stage = ?", stage)
	}
	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := utils.CanonicalStatus(rawStatus)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		query = query.Where("status = ?", status)
	}

	var submissions []models.Submission
	if err := query.Order("date_last_activity DESC").Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetSubmission returns one submission with its rounds and decisions.
func GetSubmission(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var submission models.Submission
	if err := config.DB.Preload("Submitter").Preload("Journal").Preload("Section").
		Where("submission_id = ? AND delete_at IS NULL", submissionID).
		First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	var rounds []models.ReviewRound
	if err := config.DB.Where("submission_id = ?", submissionID).
		Order("stage ASC, round ASC").
		Find(&rounds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review rounds"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
		"rounds":     rounds,
	})
}

// GetSubmissionHistory returns the stage/status change log for a submission.
func GetSubmissionHistory(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var history []models.SubmissionStatusHistory
	if err := config.DB.Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": history,
		"total":   len(history),
	})
}

func generateSubmissionNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("SUB-%d-%s", time.Now().Year(), suffix)
}
