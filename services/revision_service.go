package services

import (
	"errors"
	"fmt"
	"time"

	"editorial-workflow-api/models"
	"editorial-workflow-api/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevisionService gates author resubmission of revised manuscripts.
type RevisionService struct {
	db            *gorm.DB
	decisions     *DecisionService
	notifications *NotificationService
	audit         *AuditService
}

func NewRevisionService(db *gorm.DB) *RevisionService {
	return &RevisionService{
		db:            db,
		decisions:     NewDecisionService(db),
		notifications: NewNotificationService(db),
		audit:         NewAuditService(db),
	}
}

// RevisionRequested reports whether a revision is currently requested.
// It ORs three signals to tolerate schema drift across migrations: a legacy
// "revision required" status string, a set revision deadline, or a latest
// decision of pending_revisions. The latest decision is the signal that will
// survive once the legacy columns are retired; keep this the only call site
// of the other two.
func RevisionRequested(submission *models.Submission, latest *models.EditorialDecision) bool {
	if utils.IsLegacyRevisionStatus(submission.Status) {
		return true
	}
	if submission.RevisionDeadline != nil {
		return true
	}
	return latest != nil && latest.Decision == models.DecisionPendingRevisions
}

// CanResubmit reports whether the submission currently accepts an author
// resubmission.
func (s *RevisionService) CanResubmit(submissionID int) (bool, error) {
	var submission models.Submission
	if err := s.db.Where("submission_id = ? AND delete_at IS NULL", submissionID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, Errf(KindNotFound, "submission %d not found", submissionID)
		}
		return false, Internalf(err, "failed to load submission")
	}

	latest, err := s.decisions.LatestDecision(submissionID)
	if err != nil {
		return false, err
	}
	return RevisionRequested(&submission, latest), nil
}

// Resubmit records the author's revised version against the existing round.
// It never creates a new review round; only an explicit editor resubmit
// decision does that. Idempotent: repeating the call while the latest
// decision still requests revisions succeeds without error, so duplicate
// client submissions are harmless.
func (s *RevisionService) Resubmit(actor Actor, submissionID int) (*models.Submission, error) {
	var submission models.Submission
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_id = ? AND delete_at IS NULL", submissionID).
			First(&submission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Errf(KindNotFound, "submission %d not found", submissionID)
			}
			return Internalf(err, "failed to load submission")
		}

		if submission.SubmitterID != actor.UserID {
			return Errf(KindForbidden, "only the submitting author may resubmit")
		}

		var latest models.EditorialDecision
		var latestPtr *models.EditorialDecision
		err := tx.Where("submission_id = ?", submissionID).
			Order("date_decided DESC, decision_id DESC").
			First(&latest).Error
		if err == nil {
			latestPtr = &latest
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Internalf(err, "failed to load latest decision")
		}

		if !RevisionRequested(&submission, latestPtr) {
			return Errf(KindPrecondFailed, "no revision has been requested for submission %s",
				submission.SubmissionNumber)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"revision_deadline":  nil,
			"date_last_activity": now,
			"update_at":          now,
		}
		if err := tx.Model(&models.Submission{}).
			Where("submission_id = ?", submissionID).
			Updates(updates).Error; err != nil {
			return Internalf(err, "failed to clear revision deadline")
		}
		submission.RevisionDeadline = nil
		submission.DateLastActivity = &now
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifications.NotifyEditors(&submissionID, TemplateRevisionReceived,
		"Revision received",
		fmt.Sprintf("The author has resubmitted a revised version of submission %s.",
			submission.SubmissionNumber))
	s.audit.Record(AuditEntry{
		UserID:       actor.UserID,
		Action:       "resubmit_revision",
		EntityType:   "submission",
		EntityID:     submission.SubmissionID,
		EntityNumber: submission.SubmissionNumber,
		Description:  "Author resubmitted revised manuscript",
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})
	return &submission, nil
}
