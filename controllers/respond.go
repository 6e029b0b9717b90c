package controllers

import (
	"net/http"

	"editorial-workflow-api/services"

	"github.com/gin-gonic/gin"
)

var kindStatuses = map[services.ErrorKind]int{
	services.KindValidation:    http.StatusBadRequest,
	services.KindNotFound:      http.StatusNotFound,
	services.KindForbidden:     http.StatusForbidden,
	services.KindUnauthorized:  http.StatusUnauthorized,
	services.KindConflict:      http.StatusConflict,
	services.KindInvalidState:  http.StatusConflict,
	services.KindPrecondFailed: http.StatusPreconditionFailed,
}

// respondError maps a workflow error to its HTTP status. Internal errors
// surface only a correlation id; the detail stays in the server log.
func respondError(c *gin.Context, err error) {
	wfErr := services.AsWorkflowError(err)
	if wfErr.Kind == services.KindInternal {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          "Internal server error",
			"correlation_id": wfErr.CorrelationID,
		})
		return
	}
	status, ok := kindStatuses[wfErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": wfErr.Message})
}

// currentActor builds the acting-user context services need for audit rows.
func currentActor(c *gin.Context) services.Actor {
	actor := services.Actor{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
	if userID, exists := c.Get("userID"); exists {
		if id, ok := userID.(int); ok {
			actor.UserID = id
		}
	}
	return actor
}
