package controllers

import (
	"net/http"
	"strconv"

	"editorial-workflow-api/config"
	"editorial-workflow-api/models"
	"editorial-workflow-api/services"

	"github.com/gin-gonic/gin"
)

type recordDecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comments string `json:"comments" binding:"required"`
	RoundID  *int   `json:"round_id"`
}

// RecordDecision applies an editorial decision to a submission.
func RecordDecision(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req recordDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewDecisionService(config.DB)
	decision, err := svc.RecordDecision(currentActor(c), services.RecordDecisionInput{
		SubmissionID: submissionID,
		RoundID:      req.RoundID,
		Decision:     req.Decision,
		Comments:     req.Comments,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"decision": decision,
	})
}

// GetDecisions lists the decision history of a submission, newest first.
func GetDecisions(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var decisions []models.EditorialDecision
	if err := config.DB.Preload("Editor").
		Where("submission_id = ?", submissionID).
		Order("date_decided DESC, decision_id DESC").
		Find(&decisions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch decisions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"decisions": decisions,
		"total":     len(decisions),
	})
}
