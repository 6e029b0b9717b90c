package services

import (
	"errors"
	"fmt"
	"time"

	"editorial-workflow-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductionService manages the terminal stage of the workflow: galley
// attachment, issue scheduling and publication.
type ProductionService struct {
	db            *gorm.DB
	notifications *NotificationService
	audit         *AuditService
}

func NewProductionService(db *gorm.DB) *ProductionService {
	return &ProductionService{
		db:            db,
		notifications: NewNotificationService(db),
		audit:         NewAuditService(db),
	}
}

type AddGalleyInput struct {
	SubmissionID int
	Label        string
	Locale       *string
	OriginalName string
	StoredPath   string
	FileSize     int64
	MimeType     string
}

// AddGalley attaches a rendered file to the submission's publication record.
func (s *ProductionService) AddGalley(actor Actor, in AddGalleyInput) (*models.Publication, error) {
	if in.Label == "" {
		return nil, Errf(KindValidation, "galley label is required")
	}
	if in.OriginalName == "" || in.StoredPath == "" {
		return nil, Errf(KindValidation, "galley file metadata is required")
	}

	var publication models.Publication
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.lockProductionSubmission(tx, in.SubmissionID)
		if err != nil {
			return err
		}
		if err := ensureDraftPublication(tx, submission.SubmissionID); err != nil {
			return err
		}
		if err := s.lockPublication(tx, submission.SubmissionID, &publication); err != nil {
			return err
		}
		if publication.Status == models.PublicationPublished {
			return Errf(KindInvalidState, "publication for submission %s is already published",
				submission.SubmissionNumber)
		}

		now := time.Now()
		galley := models.Galley{
			PublicationID: publication.PublicationID,
			Label:         in.Label,
			Locale:        in.Locale,
			OriginalName:  in.OriginalName,
			StoredPath:    in.StoredPath,
			FileSize:      in.FileSize,
			MimeType:      in.MimeType,
			UploadedBy:    actor.UserID,
			UploadedAt:    now,
			CreateAt:      &now,
		}
		if err := tx.Create(&galley).Error; err != nil {
			return Internalf(err, "failed to create galley")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.audit.Record(AuditEntry{
		UserID:      actor.UserID,
		Action:      "add_galley",
		EntityType:  "publication",
		EntityID:    publication.PublicationID,
		Values:      map[string]interface{}{"label": in.Label, "submission_id": in.SubmissionID},
		Description: "Galley added",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return s.loadPublication(publication.PublicationID)
}

// Schedule assigns the publication to an issue with a publication date.
// It deliberately does not touch other issues' is_current flag; that is the
// separate SetCurrentIssue operation.
func (s *ProductionService) Schedule(actor Actor, submissionID, issueID int, publicationDate time.Time) (*models.Publication, error) {
	var publication models.Publication
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.lockProductionSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := s.lockPublication(tx, submission.SubmissionID, &publication); err != nil {
			return err
		}
		if publication.Status == models.PublicationPublished {
			return Errf(KindInvalidState, "publication for submission %s is already published",
				submission.SubmissionNumber)
		}
		if err := s.requireGalleys(tx, publication.PublicationID); err != nil {
			return err
		}

		var issue models.Issue
		if err := tx.Where("issue_id = ? AND delete_at IS NULL", issueID).First(&issue).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Errf(KindNotFound, "issue %d not found", issueID)
			}
			return Internalf(err, "failed to load issue")
		}
		if issue.JournalID != submission.JournalID {
			return Errf(KindValidation, "issue %d belongs to a different journal", issueID)
		}

		now := time.Now()
		if err := tx.Model(&models.Publication{}).
			Where("publication_id = ?", publication.PublicationID).
			Updates(map[string]interface{}{
				"issue_id":       issueID,
				"date_published": publicationDate,
				"status":         models.PublicationScheduled,
				"update_at":      now,
			}).Error; err != nil {
			return Internalf(err, "failed to schedule publication")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.audit.Record(AuditEntry{
		UserID:      actor.UserID,
		Action:      "schedule_publication",
		EntityType:  "publication",
		EntityID:    publication.PublicationID,
		Values:      map[string]interface{}{"issue_id": issueID, "submission_id": submissionID},
		Description: "Publication scheduled",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return s.loadPublication(publication.PublicationID)
}

// PublishNow publishes the submission immediately. Terminal: the submission
// status becomes published and no further workflow transitions are accepted.
func (s *ProductionService) PublishNow(actor Actor, submissionID int) (*models.Publication, error) {
	var publication models.Publication
	var submission *models.Submission
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.lockProductionSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if err := s.lockPublication(tx, submission.SubmissionID, &publication); err != nil {
			return err
		}
		if publication.Status == models.PublicationPublished {
			return Errf(KindConflict, "submission %s is already published", submission.SubmissionNumber)
		}
		if err := s.requireGalleys(tx, publication.PublicationID); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.Publication{}).
			Where("publication_id = ?", publication.PublicationID).
			Updates(map[string]interface{}{
				"status":         models.PublicationPublished,
				"date_published": now,
				"update_at":      now,
			}).Error; err != nil {
			return Internalf(err, "failed to publish publication")
		}

		oldStatus := submission.Status
		if err := tx.Model(&models.Submission{}).
			Where("submission_id = ?", submission.SubmissionID).
			Updates(map[string]interface{}{
				"status":               models.StatusPublished,
				"date_status_modified": now,
				"date_last_activity":   now,
				"update_at":            now,
			}).Error; err != nil {
			return Internalf(err, "failed to update submission status")
		}

		history := models.SubmissionStatusHistory{
			SubmissionID: submission.SubmissionID,
			OldStage:     &submission.Stage,
			NewStage:     submission.Stage,
			OldStatus:    &oldStatus,
			NewStatus:    models.StatusPublished,
			ChangedBy:    actor.UserID,
			CreatedAt:    now,
		}
		note := "published"
		history.Notes = &note
		if err := tx.Create(&history).Error; err != nil {
			return Internalf(err, "failed to log status history")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifications.Notify(submission.SubmitterID, &submissionID, TemplateSubmissionPublished,
		"Submission published",
		fmt.Sprintf("Your submission %s has been published.", submission.SubmissionNumber), "success")
	s.audit.Record(AuditEntry{
		UserID:       actor.UserID,
		Action:       "publish",
		EntityType:   "submission",
		EntityID:     submission.SubmissionID,
		EntityNumber: submission.SubmissionNumber,
		Description:  "Submission published",
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})
	return s.loadPublication(publication.PublicationID)
}

// SetCurrentIssue flips the journal's current issue in one statement, so
// readers never observe zero or two current issues.
func (s *ProductionService) SetCurrentIssue(actor Actor, journalID, issueID int) (*models.Issue, error) {
	var issue models.Issue
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("issue_id = ? AND journal_id = ? AND delete_at IS NULL", issueID, journalID).
			First(&issue).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Errf(KindNotFound, "issue %d not found in journal %d", issueID, journalID)
			}
			return Internalf(err, "failed to load issue")
		}

		if err := tx.Exec(
			"UPDATE issues SET is_current = (issue_id = ?) WHERE journal_id = ? AND delete_at IS NULL",
			issueID, journalID,
		).Error; err != nil {
			return Internalf(err, "failed to set current issue")
		}
		issue.IsCurrent = true
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.audit.Record(AuditEntry{
		UserID:      actor.UserID,
		Action:      "set_current_issue",
		EntityType:  "issue",
		EntityID:    issueID,
		Values:      map[string]interface{}{"journal_id": journalID},
		Description: "Current issue changed",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return &issue, nil
}

func (s *ProductionService) lockProductionSubmission(tx *gorm.DB, submissionID int) (*models.Submission, error) {
	var submission models.Submission
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("submission_id = ? AND delete_at IS NULL", submissionID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Errf(KindNotFound, "submission %d not found", submissionID)
		}
		return nil, Internalf(err, "failed to load submission")
	}
	if submission.Stage != models.StageProduction {
		return nil, Errf(KindPrecondFailed, "submission %s is not in production (stage %s)",
			submission.SubmissionNumber, submission.Stage)
	}
	return &submission, nil
}

func (s *ProductionService) lockPublication(tx *gorm.DB, submissionID int, out *models.Publication) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("submission_id = ?", submissionID).
		Order("version DESC").
		First(out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Errf(KindPrecondFailed, "submission %d has no publication record", submissionID)
		}
		return Internalf(err, "failed to load publication")
	}
	return nil
}

func (s *ProductionService) requireGalleys(tx *gorm.DB, publicationID int) error {
	var galleys int64
	if err := tx.Model(&models.Galley{}).
		Where("publication_id = ? AND delete_at IS NULL", publicationID).
		Count(&galleys).Error; err != nil {
		return Internalf(err, "failed to count galleys")
	}
	if galleys == 0 {
		return Errf(KindPrecondFailed, "at least one galley is required")
	}
	return nil
}

func (s *ProductionService) loadPublication(publicationID int) (*models.Publication, error) {
	var publication models.Publication
	if err := s.db.Preload("Galleys").Preload("Issue").
		Where("publication_id = ?", publicationID).
		First(&publication).Error; err != nil {
		return nil, Internalf(err, "failed to reload publication")
	}
	return &publication, nil
}
