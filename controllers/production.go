package controllers

import (
	"net/http"
	"strconv"
	"time"

	"editorial-workflow-api/config"
	"editorial-workflow-api/services"

	"github.com/gin-gonic/gin"
)

type addGalleyRequest struct {
	Label        string  `json:"label" binding:"required"`
	Locale       *string `json:"locale"`
	OriginalName string  `json:"original_name" binding:"required"`
	StoredPath   string  `json:"stored_path" binding:"required"`
	FileSize     int64   `json:"file_size"`
	MimeType     string  `json:"mime_type"`
}

// AddGalley attaches a publication-ready file to a production-stage
// submission.
func AddGalley(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req addGalleyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewProductionService(config.DB)
	publication, err := svc.AddGalley(currentActor(c), services.AddGalleyInput{
		SubmissionID: submissionID,
		Label:        req.Label,
		Locale:       req.Locale,
		OriginalName: req.OriginalName,
		StoredPath:   req.StoredPath,
		FileSize:     req.FileSize,
		MimeType:     req.MimeType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"publication": publication,
	})
}

type scheduleRequest struct {
	IssueID         int        `json:"issue_id" binding:"required"`
	PublicationDate *time.Time `json:"publication_date"`
}

// SchedulePublication assigns the publication to an issue.
func SchedulePublication(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publicationDate := time.Now()
	if req.PublicationDate != nil {
		publicationDate = *req.PublicationDate
	}

	svc := services.NewProductionService(config.DB)
	publication, err := svc.Schedule(currentActor(c), submissionID, req.IssueID, publicationDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"publication": publication,
	})
}

// PublishNow publishes a submission immediately.
func PublishNow(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	svc := services.NewProductionService(config.DB)
	publication, err := svc.PublishNow(currentActor(c), submissionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Submission published",
		"publication": publication,
	})
}

// SetCurrentIssue marks one issue as the journal's current issue.
func SetCurrentIssue(c *gin.Context) {
	issueID, err := strconv.Atoi(c.Param("id"))
	if err != nil || issueID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var req struct {
		JournalID int `json:"journal_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewProductionService(config.DB)
	issue, err := svc.SetCurrentIssue(currentActor(c), req.JournalID, issueID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"issue":   issue,
	})
}
