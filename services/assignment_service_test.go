package services

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"editorial-workflow-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	submissionSelectPattern   = regexp.MustCompile("SELECT .* FROM `submissions` WHERE submission_id = \\? AND delete_at IS NULL")
	userSelectPattern         = regexp.MustCompile("SELECT .* FROM `users` WHERE user_id = \\? AND delete_at IS NULL")
	lockedRoundSelectPattern  = regexp.MustCompile("SELECT .* FROM `review_rounds` WHERE round_id = .*FOR UPDATE")
	activeCountPattern        = regexp.MustCompile("SELECT count\\(\\*\\) FROM `review_assignments` WHERE submission_id = \\? AND round_id = \\? AND reviewer_id = \\? AND active IS NOT NULL")
	assignmentLockPattern     = regexp.MustCompile("SELECT .* FROM `review_assignments` WHERE assignment_id = .*FOR UPDATE")
	submissionColumns         = []string{"submission_id", "submission_number", "journal_id", "submitter_id", "stage", "status"}
	reviewAssignmentInsertRow = regexp.MustCompile("INSERT INTO `review_assignments`")
)

func assignSteps(activeCount int64) []*queryStep {
	return []*queryStep{
		{
			kind:    kindQuery,
			pattern: submissionSelectPattern,
			args:    []driver.Value{int64(7)},
			columns: submissionColumns,
			rows:    [][]driver.Value{{int64(7), "SUB-2026-0a1b2c3d", int64(1), int64(30), "external_review", "in_review"}},
		},
		{
			kind:    kindQuery,
			pattern: userSelectPattern,
			args:    []driver.Value{int64(21)},
			columns: []string{"user_id", "role_id"},
			rows:    [][]driver.Value{{int64(21), int64(models.RoleReviewer)}},
		},
		{
			kind:    kindQuery,
			pattern: lockedRoundSelectPattern,
			args:    []driver.Value{int64(5)},
			columns: []string{"round_id", "submission_id", "stage", "round", "status"},
			rows:    [][]driver.Value{{int64(5), int64(7), "external_review", int64(1), "pending_reviewers"}},
		},
		{
			kind:    kindQuery,
			pattern: activeCountPattern,
			args:    []driver.Value{int64(7), int64(5), int64(21)},
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{activeCount}},
		},
	}
}

func TestAssignRejectsDuplicateActiveAssignment(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, assignSteps(1))
	defer cleanup()

	svc := NewAssignmentService(db)
	roundID := 5
	_, err := svc.Assign(Actor{UserID: 3}, AssignInput{
		SubmissionID: 7,
		ReviewerID:   21,
		RoundID:      &roundID,
		Stage:        "external_review",
	})
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	require.NoError(t, state.verifyComplete())
}

func TestAssignMapsDuplicateInsertToConflict(t *testing.T) {
	// The pre-check saw no live assignment, but a concurrent insert won the
	// race and the unique index rejects ours.
	steps := append(assignSteps(0), &queryStep{
		kind:     kindExec,
		pattern:  reviewAssignmentInsertRow,
		skipArgs: true,
		err:      errors.New("Error 1062 (23000): Duplicate entry '7-5-21' for key 'review_assignments.uniq_active_assignment'"),
	})
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewAssignmentService(db)
	roundID := 5
	_, err := svc.Assign(Actor{UserID: 3}, AssignInput{
		SubmissionID: 7,
		ReviewerID:   21,
		RoundID:      &roundID,
		Stage:        "external_review",
	})
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	require.NoError(t, state.verifyComplete())
}

func TestCancelClearsActiveMarker(t *testing.T) {
	// Cancellation must null the active marker, not just flip cancelled,
	// so an assign/cancel/re-assign/cancel sequence never trips the unique
	// index on the second cancellation.
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: assignmentLockPattern,
			args:    []driver.Value{int64(10)},
			columns: []string{"assignment_id", "round_id", "submission_id", "reviewer_id", "declined", "cancelled", "active"},
			rows:    [][]driver.Value{{int64(10), int64(5), int64(7), int64(21), false, false, true}},
		},
		{
			kind:     kindExec,
			pattern:  regexp.MustCompile("UPDATE `review_assignments` SET `active`=\\?,`cancelled`=\\?,`update_at`=\\? WHERE assignment_id = \\?"),
			skipArgs: true,
			result:   scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: lockedRoundSelectPattern,
			args:    []driver.Value{int64(5)},
			columns: []string{"round_id", "submission_id", "stage", "round", "status"},
			rows:    [][]driver.Value{{int64(5), int64(7), "external_review", int64(1), "revisions_requested"}},
		},
		{
			kind:     kindExec,
			pattern:  regexp.MustCompile("UPDATE `submissions` SET"),
			skipArgs: true,
			result:   scriptedResult{rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewAssignmentService(db)
	assignment, err := svc.Cancel(Actor{UserID: 3}, 10)
	require.NoError(t, err)
	assert.True(t, assignment.Cancelled)
	assert.Nil(t, assignment.Active)
	require.NoError(t, state.verifyComplete())
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, isDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry '7-5-21' for key 'uniq'")))
	assert.False(t, isDuplicateKey(errors.New("driver: bad connection")))
}
