package services

import (
	"testing"
	"time"

	"editorial-workflow-api/models"

	"github.com/stretchr/testify/assert"
)

func TestRevisionRequestedFromLatestDecision(t *testing.T) {
	submission := &models.Submission{
		Stage:  models.StageExternalReview,
		Status: models.StatusInReview,
	}
	latest := &models.EditorialDecision{Decision: models.DecisionPendingRevisions}

	assert.True(t, RevisionRequested(submission, latest))
}

func TestRevisionRequestedFromRevisionDeadline(t *testing.T) {
	deadline := time.Now().Add(30 * 24 * time.Hour)
	submission := &models.Submission{
		Stage:            models.StageExternalReview,
		Status:           models.StatusInReview,
		RevisionDeadline: &deadline,
	}

	// No decision rows at all, the deadline alone opens the gate.
	assert.True(t, RevisionRequested(submission, nil))
}

func TestRevisionRequestedFromLegacyStatus(t *testing.T) {
	submission := &models.Submission{
		Stage:  models.StageExternalReview,
		Status: "revision required",
	}

	assert.True(t, RevisionRequested(submission, nil))
}

func TestRevisionRequestedFalseWithoutAnySignal(t *testing.T) {
	submission := &models.Submission{
		Stage:  models.StageExternalReview,
		Status: models.StatusInReview,
	}

	assert.False(t, RevisionRequested(submission, nil))

	// A non-revision latest decision does not open the gate either.
	latest := &models.EditorialDecision{Decision: models.DecisionAccept}
	assert.False(t, RevisionRequested(submission, latest))
}

func TestRevisionRequestedSupersededDecision(t *testing.T) {
	// Only the most recent decision counts. After an accept the earlier
	// pending_revisions decision is history, so callers pass the accept
	// here and the gate stays closed.
	submission := &models.Submission{
		Stage:  models.StageCopyediting,
		Status: models.StatusAccepted,
	}
	latest := &models.EditorialDecision{Decision: models.DecisionAccept}

	assert.False(t, RevisionRequested(submission, latest))
}
