package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"editorial-workflow-api/models"
	"editorial-workflow-api/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Conflict-of-interest policy values for editors deciding on their own
// submissions. The historical behavior is warn-only; block is opt-in via
// COI_POLICY=block until product owners settle the question.
const (
	COIPolicyWarn  = "warn"
	COIPolicyBlock = "block"
)

// DecisionService validates and applies editorial decisions. Decision rows
// are append-only; stage/status changes and round bookkeeping commit in one
// transaction, notifications and audit run after commit.
type DecisionService struct {
	db            *gorm.DB
	rounds        *RoundService
	notifications *NotificationService
	audit         *AuditService
}

func NewDecisionService(db *gorm.DB) *DecisionService {
	return &DecisionService{
		db:            db,
		rounds:        NewRoundService(db),
		notifications: NewNotificationService(db),
		audit:         NewAuditService(db),
	}
}

type RecordDecisionInput struct {
	SubmissionID int
	RoundID      *int
	Decision     string
	Comments     string
}

func coiPolicy() string {
	policy := strings.ToLower(strings.TrimSpace(os.Getenv("COI_POLICY")))
	if policy == COIPolicyBlock {
		return COIPolicyBlock
	}
	return COIPolicyWarn
}

// RecordDecision appends one editorial decision and applies its effect on
// the submission per the stage/status table.
func (s *DecisionService) RecordDecision(actor Actor, in RecordDecisionInput) (*models.EditorialDecision, error) {
	comments := strings.TrimSpace(in.Comments)
	if comments == "" {
		return nil, Errf(KindValidation, "decision comments are required")
	}
	decision, err := utils.CanonicalDecision(in.Decision)
	if err != nil {
		return nil, Errf(KindValidation, "%v", err)
	}

	var record models.EditorialDecision
	var submission models.Submission
	var oldStage, oldStatus string

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("submission_id = ? AND delete_at IS NULL", in.SubmissionID).
			First(&submission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Errf(KindNotFound, "submission %d not found", in.SubmissionID)
			}
			return Internalf(err, "failed to load submission")
		}

		if submission.IsTerminal() {
			return Errf(KindInvalidState, "submission %s is %s; no further decisions are accepted",
				submission.SubmissionNumber, submission.Status)
		}

		if submission.SubmitterID == actor.UserID {
			if coiPolicy() == COIPolicyBlock {
				return Errf(KindForbidden, "editors may not decide on their own submissions")
			}
			log.Printf("Warning: editor %d recorded a decision on own submission %d",
				actor.UserID, submission.SubmissionID)
		}

		targetStage, targetStatus, err := DecisionTarget(submission.Stage, decision)
		if err != nil {
			return err
		}

		now := time.Now()
		roundID := in.RoundID
		if roundID == nil && submission.Stage == models.StageExternalReview {
			open, err := s.rounds.OpenRound(tx, submission.SubmissionID, submission.Stage)
			if err != nil {
				return err
			}
			if open != nil {
				roundID = &open.RoundID
			}
		}

		record = models.EditorialDecision{
			SubmissionID: submission.SubmissionID,
			RoundID:      roundID,
			EditorID:     actor.UserID,
			Decision:     decision,
			Comments:     comments,
			DateDecided:  now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return Internalf(err, "failed to record decision")
		}

		oldStage = submission.Stage
		oldStatus = submission.Status
		updates := map[string]interface{}{
			"date_last_activity": now,
			"update_at":          now,
		}

		switch decision {
		case models.DecisionPendingRevisions:
			deadline := now.AddDate(0, 0, envIntDefault("REVISION_GRACE_DAYS", 60))
			updates["revision_deadline"] = deadline
			submission.RevisionDeadline = &deadline
			if roundID != nil {
				if err := tx.Model(&models.ReviewRound{}).
					Where("round_id = ?", *roundID).
					Updates(map[string]interface{}{
						"status":    models.RoundRevisionsRequested,
						"update_at": now,
					}).Error; err != nil {
					return Internalf(err, "failed to mark round revisions requested")
				}
			}
		case models.DecisionResubmit:
			if _, err := s.rounds.NextRound(tx, submission.SubmissionID, submission.Stage); err != nil {
				return err
			}
		case models.DecisionAccept, models.DecisionDecline, models.DecisionSendToProduction:
			if err := s.closeOpenRound(tx, submission.SubmissionID, submission.Stage, now); err != nil {
				return err
			}
		}

		newStage := submission.Stage
		newStatus := submission.Status
		if targetStage != "" {
			newStage = targetStage
		}
		if targetStatus != "" {
			newStatus = targetStatus
		}
		if newStage != oldStage {
			updates["stage"] = newStage
		}
		if newStatus != oldStatus {
			updates["status"] = newStatus
			updates["date_status_modified"] = now
		}
		submission.Stage = newStage
		submission.Status = newStatus

		if err := tx.Model(&models.Submission{}).
			Where("submission_id = ?", submission.SubmissionID).
			Updates(updates).Error; err != nil {
			return Internalf(err, "failed to apply decision to submission")
		}

		if decision == models.DecisionSendToProduction {
			if err := ensureDraftPublication(tx, submission.SubmissionID); err != nil {
				return err
			}
		}

		if newStage != oldStage || newStatus != oldStatus {
			history := models.SubmissionStatusHistory{
				SubmissionID: submission.SubmissionID,
				OldStage:     &oldStage,
				NewStage:     newStage,
				OldStatus:    &oldStatus,
				NewStatus:    newStatus,
				ChangedBy:    actor.UserID,
				CreatedAt:    now,
			}
			history.Reason = &comments
			note := fmt.Sprintf("editorial_decision:%s", decision)
			history.Notes = &note
			if err := tx.Create(&history).Error; err != nil {
				return Internalf(err, "failed to log status history")
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	submissionID := submission.SubmissionID
	s.notifications.Notify(submission.SubmitterID, &submissionID, TemplateEditorDecision,
		"Editorial decision",
		fmt.Sprintf("An editorial decision (%s) has been recorded on submission %s.",
			decision, submission.SubmissionNumber), "info")
	s.audit.Record(AuditEntry{
		UserID:       actor.UserID,
		Action:       "record_decision",
		EntityType:   "submission",
		EntityID:     submission.SubmissionID,
		EntityNumber: submission.SubmissionNumber,
		Values: map[string]interface{}{
			"decision":   decision,
			"old_stage":  oldStage,
			"new_stage":  submission.Stage,
			"old_status": oldStatus,
			"new_status": submission.Status,
		},
		Description: "Editorial decision recorded",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return &record, nil
}

// LatestDecision returns the most recent decision for a submission, or nil.
func (s *DecisionService) LatestDecision(submissionID int) (*models.EditorialDecision, error) {
	var decision models.EditorialDecision
	err := s.db.Where("submission_id = ?", submissionID).
		Order("date_decided DESC, decision_id DESC").
		First(&decision).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, Internalf(err, "failed to load latest decision")
	}
	return &decision, nil
}

func (s *DecisionService) closeOpenRound(tx *gorm.DB, submissionID int, stage string, now time.Time) error {
	if err := tx.Model(&models.ReviewRound{}).
		Where("submission_id = ? AND stage = ? AND status <> ?", submissionID, stage, models.RoundClosed).
		Updates(map[string]interface{}{
			"status":    models.RoundClosed,
			"update_at": now,
		}).Error; err != nil {
		return Internalf(err, "failed to close review round")
	}
	return nil
}

// ensureDraftPublication creates the version-1 draft publication record a
// submission needs once it enters production.
func ensureDraftPublication(tx *gorm.DB, submissionID int) error {
	var count int64
	if err := tx.Model(&models.Publication{}).
		Where("submission_id = ?", submissionID).
		Count(&count).Error; err != nil {
		return Internalf(err, "failed to check publications")
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	publication := models.Publication{
		SubmissionID: submissionID,
		Version:      1,
		Status:       models.PublicationDraft,
		CreateAt:     &now,
		UpdateAt:     &now,
	}
	if err := tx.Create(&publication).Error; err != nil {
		return Internalf(err, "failed to create draft publication")
	}
	return nil
}
