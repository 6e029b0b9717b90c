package services

import (
	"testing"

	"editorial-workflow-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidStagePair(t *testing.T) {
	valid := []struct{ stage, status string }{
		{models.StageSubmission, models.StatusQueued},
		{models.StageExternalReview, models.StatusQueued},
		{models.StageExternalReview, models.StatusInReview},
		{models.StageExternalReview, models.StatusDeclined},
		{models.StageCopyediting, models.StatusAccepted},
		{models.StageProduction, models.StatusAccepted},
		{models.StageProduction, models.StatusPublished},
	}
	for _, pair := range valid {
		assert.True(t, ValidStagePair(pair.stage, pair.status),
			"%s/%s should be valid", pair.stage, pair.status)
	}

	invalid := []struct{ stage, status string }{
		{models.StageSubmission, models.StatusPublished},
		{models.StageSubmission, models.StatusAccepted},
		{models.StageExternalReview, models.StatusPublished},
		{models.StageCopyediting, models.StatusQueued},
		{models.StageProduction, models.StatusQueued},
		{"unknown", models.StatusQueued},
		{models.StageProduction, "unknown"},
	}
	for _, pair := range invalid {
		assert.False(t, ValidStagePair(pair.stage, pair.status),
			"%s/%s should be invalid", pair.stage, pair.status)
	}
}

func TestDecisionTargetAcceptMovesToCopyediting(t *testing.T) {
	stage, status, err := DecisionTarget(models.StageExternalReview, models.DecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, models.StageCopyediting, stage)
	assert.Equal(t, models.StatusAccepted, status)
}

func TestDecisionTargetPendingRevisionsLeavesStateUnchanged(t *testing.T) {
	stage, status, err := DecisionTarget(models.StageExternalReview, models.DecisionPendingRevisions)
	require.NoError(t, err)
	assert.Empty(t, stage)
	assert.Empty(t, status)
}

func TestDecisionTargetDeclineKeepsStage(t *testing.T) {
	stage, status, err := DecisionTarget(models.StageExternalReview, models.DecisionDecline)
	require.NoError(t, err)
	assert.Empty(t, stage)
	assert.Equal(t, models.StatusDeclined, status)
}

func TestDecisionTargetSendToProduction(t *testing.T) {
	stage, status, err := DecisionTarget(models.StageCopyediting, models.DecisionSendToProduction)
	require.NoError(t, err)
	assert.Equal(t, models.StageProduction, stage)
	assert.Empty(t, status)
}

func TestDecisionTargetRejectsStageInappropriateDecisions(t *testing.T) {
	cases := []struct {
		name     string
		stage    string
		decision string
	}{
		{"pending revisions during copyediting", models.StageCopyediting, models.DecisionPendingRevisions},
		{"accept during copyediting", models.StageCopyediting, models.DecisionAccept},
		{"resubmit during intake", models.StageSubmission, models.DecisionResubmit},
		{"send to production during review", models.StageExternalReview, models.DecisionSendToProduction},
		{"anything during production", models.StageProduction, models.DecisionAccept},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecisionTarget(tc.stage, tc.decision)
			require.Error(t, err)
			assert.Equal(t, KindInvalidState, KindOf(err))
		})
	}
}

func TestDecisionsForStage(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{
			models.DecisionAccept,
			models.DecisionPendingRevisions,
			models.DecisionResubmit,
			models.DecisionDecline,
		},
		DecisionsForStage(models.StageExternalReview))
	assert.Empty(t, DecisionsForStage(models.StageProduction))
}
