package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"editorial-workflow-api/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		kind   services.ErrorKind
		status int
	}{
		{services.KindValidation, http.StatusBadRequest},
		{services.KindNotFound, http.StatusNotFound},
		{services.KindForbidden, http.StatusForbidden},
		{services.KindUnauthorized, http.StatusUnauthorized},
		{services.KindConflict, http.StatusConflict},
		{services.KindInvalidState, http.StatusConflict},
		{services.KindPrecondFailed, http.StatusPreconditionFailed},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			respondError(c, services.Errf(tc.kind, "something went wrong"))

			assert.Equal(t, tc.status, recorder.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, "something went wrong", body["error"])
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	respondError(c, errors.New("dial tcp 10.0.0.5:3306: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotEmpty(t, body["correlation_id"])
	assert.NotContains(t, recorder.Body.String(), "10.0.0.5")
}

func TestCurrentActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/submissions", nil)
	c.Request.Header.Set("User-Agent", "workflow-test")
	c.Set("userID", 42)

	actor := currentActor(c)
	assert.Equal(t, 42, actor.UserID)
	assert.Equal(t, "workflow-test", actor.UserAgent)
}
