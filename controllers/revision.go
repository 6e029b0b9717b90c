package controllers

import (
	"net/http"
	"strconv"

	"editorial-workflow-api/config"
	"editorial-workflow-api/services"

	"github.com/gin-gonic/gin"
)

// GetResubmitEligibility reports whether the submission currently accepts
// an author resubmission.
func GetResubmitEligibility(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	svc := services.NewRevisionService(config.DB)
	eligible, err := svc.CanResubmit(submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"can_resubmit": eligible,
	})
}

// ResubmitRevision records the author's revised manuscript against the
// open round.
func ResubmitRevision(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	svc := services.NewRevisionService(config.DB)
	submission, err := svc.Resubmit(currentActor(c), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Revision received",
		"submission": submission,
	})
}
