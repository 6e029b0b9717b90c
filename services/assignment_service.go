package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"editorial-workflow-api/models"
	"editorial-workflow-api/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Review methods.
const (
	ReviewMethodAnonymous       = "anonymous"
	ReviewMethodDoubleAnonymous = "double_anonymous"
	ReviewMethodOpen            = "open"
)

// Actor identifies the authenticated user performing an operation, plus the
// request metadata recorded in the audit trail.
type Actor struct {
	UserID    int
	IPAddress string
	UserAgent string
}

// AssignmentService drives the reviewer assignment state machine:
// awaiting_response -> accepted|declined, accepted -> completed, and
// editor cancellation from any state.
type AssignmentService struct {
	db            *gorm.DB
	rounds        *RoundService
	notifications *NotificationService
	audit         *AuditService
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{
		db:            db,
		rounds:        NewRoundService(db),
		notifications: NewNotificationService(db),
		audit:         NewAuditService(db),
	}
}

type AssignInput struct {
	SubmissionID int
	ReviewerID   int
	RoundID      *int
	Stage        string
	ReviewMethod string
	DateDue      *time.Time
}

// Assign invites a reviewer into a round, creating the round when none is
// open. Duplicate live invitations for the same (submission, round, reviewer)
// are rejected; the unique index over the nullable active marker backs the
// check against concurrent inserts.
func (s *AssignmentService) Assign(actor Actor, in AssignInput) (*models.ReviewAssignment, error) {
	stage, err := utils.CanonicalStage(in.Stage)
	if err != nil {
		return nil, Errf(KindValidation, "%v", err)
	}
	if stage != models.StageExternalReview {
		return nil, Errf(KindValidation, "reviewers can only be assigned during external review")
	}

	method := in.ReviewMethod
	if method == "" {
		method = ReviewMethodDoubleAnonymous
	}
	switch method {
	case ReviewMethodAnonymous, ReviewMethodDoubleAnonymous, ReviewMethodOpen:
	default:
		return nil, Errf(KindValidation, "unrecognized review method %q", in.ReviewMethod)
	}

	var assignment models.ReviewAssignment
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var submission models.Submission
		if err := tx.Where("submission_id = ? AND delete_at IS NULL", in.SubmissionID).
			First(&submission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Errf(KindNotFound, "submission %d not found", in.SubmissionID)
			}
			return Internalf(err, "failed to load submission")
		}
		if submission.IsTerminal() {
			return Errf(KindInvalidState, "submission %s is %s and no longer accepts reviewers",
				submission.SubmissionNumber, submission.Status)
		}

		var reviewer models.User
		if err := tx.Where("user_id = ? AND delete_at IS NULL", in.ReviewerID).
			First(&reviewer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Errf(KindNotFound, "reviewer %d not found", in.ReviewerID)
			}
			return Internalf(err, "failed to load reviewer")
		}
		if !reviewer.CanReview() {
			return Errf(KindPrecondFailed, "user %d lacks the reviewer capability", in.ReviewerID)
		}

		var round *models.ReviewRound
		if in.RoundID != nil {
			round = &models.ReviewRound{}
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("round_id = ?", *in.RoundID).First(round).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return Errf(KindNotFound, "review round %d not found", *in.RoundID)
				}
				return Internalf(err, "failed to load review round")
			}
			if round.SubmissionID != in.SubmissionID {
				return Errf(KindValidation, "round %d does not belong to submission %d", round.RoundID, in.SubmissionID)
			}
			if !round.IsOpen() {
				return Errf(KindInvalidState, "review round %d is closed", round.RoundID)
			}
		} else {
			ensured, err := s.rounds.EnsureRound(tx, in.SubmissionID, stage)
			if err != nil {
				return err
			}
			round = ensured
		}

		var existing int64
		if err := tx.Model(&models.ReviewAssignment{}).
			Where("submission_id = ? AND round_id = ? AND reviewer_id = ? AND active IS NOT NULL",
				in.SubmissionID, round.RoundID, in.ReviewerID).
			Count(&existing).Error; err != nil {
			return Internalf(err, "failed to check existing assignments")
		}
		if existing > 0 {
			return Errf(KindConflict, "reviewer %d is already assigned to round %d", in.ReviewerID, round.Round)
		}

		now := time.Now()
		responseDue := now.AddDate(0, 0, envIntDefault("REVIEW_RESPONSE_DAYS", 14))
		due := in.DateDue
		if due == nil {
			defaultDue := now.AddDate(0, 0, envIntDefault("REVIEW_DUE_DAYS", 28))
			due = &defaultDue
		}

		active := true
		assignment = models.ReviewAssignment{
			RoundID:         round.RoundID,
			SubmissionID:    in.SubmissionID,
			ReviewerID:      in.ReviewerID,
			ReviewMethod:    method,
			Active:          &active,
			DateAssigned:    now,
			DateResponseDue: &responseDue,
			DateDue:         due,
			CreateAt:        &now,
			UpdateAt:        &now,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			if isDuplicateKey(err) {
				return Errf(KindConflict, "reviewer %d is already assigned to round %d", in.ReviewerID, round.Round)
			}
			return Internalf(err, "failed to create review assignment")
		}

		if _, err := s.rounds.Recompute(tx, round.RoundID); err != nil {
			return err
		}

		return s.touchSubmission(tx, in.SubmissionID)
	})
	if txErr != nil {
		return nil, txErr
	}

	submissionID := assignment.SubmissionID
	s.notifications.Notify(assignment.ReviewerID, &submissionID, TemplateReviewRequest,
		"Review request",
		fmt.Sprintf("You have been invited to review submission %d.", submissionID), "info")
	s.audit.Record(AuditEntry{
		UserID:     actor.UserID,
		Action:     "assign_reviewer",
		EntityType: "review_assignment",
		EntityID:   assignment.AssignmentID,
		Values: map[string]interface{}{
			"submission_id": assignment.SubmissionID,
			"round_id":      assignment.RoundID,
			"reviewer_id":   assignment.ReviewerID,
		},
		Description: "Reviewer assigned",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return &assignment, nil
}

// Respond records the reviewer's accept or decline of an invitation.
func (s *AssignmentService) Respond(actor Actor, assignmentID int, accept bool) (*models.ReviewAssignment, error) {
	var assignment models.ReviewAssignment
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockAssignment(tx, assignmentID, &assignment); err != nil {
			return err
		}
		if assignment.ReviewerID != actor.UserID {
			return Errf(KindForbidden, "only the assigned reviewer may respond")
		}
		if state := assignment.State(); state != models.AssignmentAwaitingResponse {
			return Errf(KindInvalidState, "assignment %d is %s, not awaiting a response", assignmentID, state)
		}

		now := time.Now()
		updates := map[string]interface{}{"update_at": now}
		if accept {
			updates["date_confirmed"] = now
			assignment.DateConfirmed = &now
		} else {
			updates["declined"] = true
			assignment.Declined = true
		}
		if err := tx.Model(&models.ReviewAssignment{}).
			Where("assignment_id = ?", assignmentID).
			Updates(updates).Error; err != nil {
			return Internalf(err, "failed to update assignment")
		}

		if _, err := s.rounds.Recompute(tx, assignment.RoundID); err != nil {
			return err
		}
		return s.touchSubmission(tx, assignment.SubmissionID)
	})
	if txErr != nil {
		return nil, txErr
	}

	verb := "accepted"
	if !accept {
		verb = "declined"
	}
	submissionID := assignment.SubmissionID
	s.notifications.NotifyEditors(&submissionID, TemplateReviewResponse,
		"Reviewer response",
		fmt.Sprintf("Reviewer %d has %s the review invitation for submission %d.",
			assignment.ReviewerID, verb, submissionID))
	s.audit.Record(AuditEntry{
		UserID:      actor.UserID,
		Action:      "respond_assignment",
		EntityType:  "review_assignment",
		EntityID:    assignment.AssignmentID,
		Values:      map[string]interface{}{"accepted": accept},
		Description: "Reviewer " + verb + " the invitation",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return &assignment, nil
}

type SubmitReviewInput struct {
	AssignmentID         int
	Recommendation       string
	Comments             string
	ConfidentialComments *string
	Quality              *int
}

// SubmitReview records the reviewer's recommendation and completes the
// assignment. Round status is re-derived from a fresh locked read in the
// same transaction, so two reviewers finishing the last two assignments
// concurrently still converge on recommendations_ready.
func (s *AssignmentService) SubmitReview(actor Actor, in SubmitReviewInput) (*models.ReviewAssignment, error) {
	recommendation, err := utils.CanonicalRecommendation(in.Recommendation)
	if err != nil {
		return nil, Errf(KindValidation, "%v", err)
	}
	if in.Quality != nil && (*in.Quality < 1 || *in.Quality > 5) {
		return nil, Errf(KindValidation, "quality must be between 1 and 5")
	}

	var assignment models.ReviewAssignment
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockAssignment(tx, in.AssignmentID, &assignment); err != nil {
			return err
		}
		if assignment.ReviewerID != actor.UserID {
			return Errf(KindForbidden, "only the assigned reviewer may submit this review")
		}

		switch assignment.State() {
		case models.AssignmentCompleted:
			return Errf(KindConflict, "review for assignment %d has already been submitted", in.AssignmentID)
		case models.AssignmentDeclined, models.AssignmentCancelled:
			return Errf(KindInvalidState, "assignment %d is %s", in.AssignmentID, assignment.State())
		case models.AssignmentAwaitingResponse:
			return Errf(KindInvalidState, "assignment %d has not been accepted", in.AssignmentID)
		}

		now := time.Now()
		comments := strings.TrimSpace(in.Comments)
		updates := map[string]interface{}{
			"recommendation": recommendation,
			"date_completed": now,
			"update_at":      now,
		}
		if comments != "" {
			updates["comments"] = comments
		}
		if in.ConfidentialComments != nil {
			updates["confidential_comments"] = strings.TrimSpace(*in.ConfidentialComments)
		}
		if in.Quality != nil {
			updates["quality"] = *in.Quality
		}
		if err := tx.Model(&models.ReviewAssignment{}).
			Where("assignment_id = ?", in.AssignmentID).
			Updates(updates).Error; err != nil {
			return Internalf(err, "failed to record review")
		}
		assignment.Recommendation = &recommendation
		assignment.DateCompleted = &now

		if _, err := s.rounds.Recompute(tx, assignment.RoundID); err != nil {
			return err
		}
		return s.touchSubmission(tx, assignment.SubmissionID)
	})
	if txErr != nil {
		return nil, txErr
	}

	submissionID := assignment.SubmissionID
	s.notifications.NotifyEditors(&submissionID, TemplateReviewSubmitted,
		"Review submitted",
		fmt.Sprintf("Reviewer %d has submitted a %s recommendation for submission %d.",
			assignment.ReviewerID, recommendation, submissionID))
	s.audit.Record(AuditEntry{
		UserID:      actor.UserID,
		Action:      "submit_review",
		EntityType:  "review_assignment",
		EntityID:    assignment.AssignmentID,
		Values:      map[string]interface{}{"recommendation": recommendation},
		Description: "Review submitted",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return &assignment, nil
}

// Cancel withdraws an assignment. Editor-only, legal from any state, and
// terminal: the assignment no longer counts toward round completion.
// Clearing the active marker frees the uniqueness slot, so the reviewer can
// be invited again and cancelled again without the rows ever colliding.
func (s *AssignmentService) Cancel(actor Actor, assignmentID int) (*models.ReviewAssignment, error) {
	var assignment models.ReviewAssignment
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockAssignment(tx, assignmentID, &assignment); err != nil {
			return err
		}
		if assignment.Cancelled {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&models.ReviewAssignment{}).
			Where("assignment_id = ?", assignmentID).
			Updates(map[string]interface{}{
				"active":    nil,
				"cancelled": true,
				"update_at": now,
			}).Error; err != nil {
			return Internalf(err, "failed to cancel assignment")
		}
		assignment.Cancelled = true
		assignment.Active = nil

		if _, err := s.rounds.Recompute(tx, assignment.RoundID); err != nil {
			return err
		}
		return s.touchSubmission(tx, assignment.SubmissionID)
	})
	if txErr != nil {
		return nil, txErr
	}

	submissionID := assignment.SubmissionID
	s.notifications.Notify(assignment.ReviewerID, &submissionID, TemplateReviewCancelled,
		"Review cancelled",
		fmt.Sprintf("Your review assignment for submission %d has been cancelled.", submissionID), "warning")
	s.audit.Record(AuditEntry{
		UserID:      actor.UserID,
		Action:      "cancel_assignment",
		EntityType:  "review_assignment",
		EntityID:    assignment.AssignmentID,
		Description: "Review assignment cancelled",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return &assignment, nil
}

func (s *AssignmentService) lockAssignment(tx *gorm.DB, assignmentID int, out *models.ReviewAssignment) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("assignment_id = ?", assignmentID).
		First(out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Errf(KindNotFound, "assignment %d not found", assignmentID)
		}
		return Internalf(err, "failed to load assignment")
	}
	return nil
}

func (s *AssignmentService) touchSubmission(tx *gorm.DB, submissionID int) error {
	now := time.Now()
	if err := tx.Model(&models.Submission{}).
		Where("submission_id = ?", submissionID).
		Updates(map[string]interface{}{
			"date_last_activity": now,
			"update_at":          now,
		}).Error; err != nil {
		return Internalf(err, "failed to update submission activity")
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}
