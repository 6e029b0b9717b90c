package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"editorial-workflow-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedAssignment(id int) models.ReviewAssignment {
	completed := time.Now()
	confirmed := completed.Add(-24 * time.Hour)
	return models.ReviewAssignment{
		AssignmentID:  id,
		DateConfirmed: &confirmed,
		DateCompleted: &completed,
	}
}

func pendingAssignment(id int) models.ReviewAssignment {
	confirmed := time.Now()
	return models.ReviewAssignment{
		AssignmentID:  id,
		DateConfirmed: &confirmed,
	}
}

func cancelledAssignment(id int) models.ReviewAssignment {
	return models.ReviewAssignment{
		AssignmentID: id,
		Cancelled:    true,
	}
}

func TestDeriveRoundStatusNoAssignments(t *testing.T) {
	assert.Equal(t, models.RoundPendingReviewers, DeriveRoundStatus(nil))
	assert.Equal(t, models.RoundPendingReviewers,
		DeriveRoundStatus([]models.ReviewAssignment{cancelledAssignment(1)}))
}

func TestDeriveRoundStatusPendingWhileIncomplete(t *testing.T) {
	status := DeriveRoundStatus([]models.ReviewAssignment{
		completedAssignment(1),
		pendingAssignment(2),
	})
	assert.Equal(t, models.RoundPendingReviews, status)
}

func TestDeriveRoundStatusReadyWhenAllComplete(t *testing.T) {
	status := DeriveRoundStatus([]models.ReviewAssignment{
		completedAssignment(1),
		completedAssignment(2),
	})
	assert.Equal(t, models.RoundRecommendationsReady, status)
}

func TestDeriveRoundStatusIgnoresCancelled(t *testing.T) {
	// A cancelled, never-completed assignment must not hold the round open.
	status := DeriveRoundStatus([]models.ReviewAssignment{
		completedAssignment(1),
		cancelledAssignment(2),
	})
	assert.Equal(t, models.RoundRecommendationsReady, status)
}

func TestDeriveRoundStatusIdempotentAndOrderIndependent(t *testing.T) {
	assignments := []models.ReviewAssignment{
		completedAssignment(1),
		completedAssignment(2),
		cancelledAssignment(3),
	}
	first := DeriveRoundStatus(assignments)
	second := DeriveRoundStatus(assignments)
	assert.Equal(t, first, second)

	reversed := []models.ReviewAssignment{assignments[2], assignments[1], assignments[0]}
	assert.Equal(t, first, DeriveRoundStatus(reversed))
}

func TestNextRoundNumberStartsAtOne(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT COALESCE\(MAX\(round\), 0\) AS max_round FROM review_rounds WHERE submission_id = \? AND stage = \?`),
			args:    []driver.Value{int64(7), "external_review"},
			columns: []string{"max_round"},
			rows:    [][]driver.Value{{int64(0)}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoundService(db)
	number, err := svc.nextRoundNumber(db, 7, models.StageExternalReview)
	require.NoError(t, err)
	assert.Equal(t, 1, number)
	require.NoError(t, state.verifyComplete())
}

func TestNextRoundNumberNeverReusesClosedRounds(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT COALESCE\(MAX\(round\), 0\) AS max_round FROM review_rounds`),
			args:    []driver.Value{int64(7), "external_review"},
			columns: []string{"max_round"},
			rows:    [][]driver.Value{{int64(3)}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoundService(db)
	number, err := svc.nextRoundNumber(db, 7, models.StageExternalReview)
	require.NoError(t, err)
	assert.Equal(t, 4, number)
	require.NoError(t, state.verifyComplete())
}

var (
	roundSelectPattern      = regexp.MustCompile("SELECT .* FROM `review_rounds` WHERE round_id = .*FOR UPDATE")
	assignmentSelectPattern = regexp.MustCompile("SELECT .* FROM `review_assignments` WHERE round_id = \\?")
	roundColumns            = []string{"round_id", "submission_id", "stage", "round", "status"}
	assignmentColumns       = []string{"assignment_id", "round_id", "submission_id", "reviewer_id", "declined", "cancelled", "date_confirmed", "date_completed"}
)

func TestRecomputeDoesNotWriteWhenStatusUnchanged(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: roundSelectPattern,
			args:    []driver.Value{int64(5)},
			columns: roundColumns,
			rows:    [][]driver.Value{{int64(5), int64(7), "external_review", int64(1), "pending_reviews"}},
		},
		{
			kind:    kindQuery,
			pattern: assignmentSelectPattern,
			args:    []driver.Value{int64(5)},
			columns: assignmentColumns,
			rows: [][]driver.Value{
				{int64(10), int64(5), int64(7), int64(21), int64(0), int64(0), time.Now(), nil},
			},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoundService(db)
	status, err := svc.Recompute(db, 5)
	require.NoError(t, err)
	assert.Equal(t, models.RoundPendingReviews, status)
	require.NoError(t, state.verifyComplete())
}

func TestRecomputeWritesDerivedTransition(t *testing.T) {
	completed := time.Now()
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: roundSelectPattern,
			args:    []driver.Value{int64(5)},
			columns: roundColumns,
			rows:    [][]driver.Value{{int64(5), int64(7), "external_review", int64(1), "pending_reviews"}},
		},
		{
			kind:    kindQuery,
			pattern: assignmentSelectPattern,
			args:    []driver.Value{int64(5)},
			columns: assignmentColumns,
			rows: [][]driver.Value{
				{int64(10), int64(5), int64(7), int64(21), int64(0), int64(0), completed, completed},
				{int64(11), int64(5), int64(7), int64(22), int64(0), int64(0), completed, completed},
			},
		},
		{
			kind:     kindExec,
			pattern:  regexp.MustCompile("UPDATE `review_rounds` SET"),
			skipArgs: true,
			result:   scriptedResult{rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoundService(db)
	status, err := svc.Recompute(db, 5)
	require.NoError(t, err)
	assert.Equal(t, models.RoundRecommendationsReady, status)
	require.NoError(t, state.verifyComplete())
}

func TestRecomputeLeavesDecisionDrivenStatusAlone(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: roundSelectPattern,
			args:    []driver.Value{int64(5)},
			columns: roundColumns,
			rows:    [][]driver.Value{{int64(5), int64(7), "external_review", int64(1), "revisions_requested"}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewRoundService(db)
	status, err := svc.Recompute(db, 5)
	require.NoError(t, err)
	assert.Equal(t, models.RoundRevisionsRequested, status)
	require.NoError(t, state.verifyComplete())
}
