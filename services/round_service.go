package services

import (
	"errors"
	"time"

	"editorial-workflow-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoundService coordinates review rounds: creation, sequencing and the
// derived round status. All mutating methods take the caller's transaction
// so round bookkeeping commits atomically with the triggering change.
type RoundService struct {
	db *gorm.DB
}

func NewRoundService(db *gorm.DB) *RoundService {
	return &RoundService{db: db}
}

// DeriveRoundStatus computes the status a round should have given its
// assignments. Cancelled assignments are excluded. Deterministic and
// order-independent: redundant invocations converge on the same value.
func DeriveRoundStatus(assignments []models.ReviewAssignment) string {
	active := 0
	completed := 0
	for _, assignment := range assignments {
		if !assignment.IsActive() {
			continue
		}
		active++
		if assignment.DateCompleted != nil {
			completed++
		}
	}

	switch {
	case active == 0:
		return models.RoundPendingReviewers
	case completed < active:
		return models.RoundPendingReviews
	default:
		return models.RoundRecommendationsReady
	}
}

// derivedRoundStatuses are the statuses Recompute may overwrite. Statuses
// set by editorial decisions (revisions_requested, closed) are left alone.
var derivedRoundStatuses = map[string]bool{
	models.RoundPendingReviewers:     true,
	models.RoundPendingReviews:       true,
	models.RoundRecommendationsReady: true,
}

// OpenRound returns the single open round for (submission, stage), locked
// for update, or nil when none exists.
func (s *RoundService) OpenRound(tx *gorm.DB, submissionID int, stage string) (*models.ReviewRound, error) {
	var round models.ReviewRound
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("submission_id = ? AND stage = ? AND status <> ?", submissionID, stage, models.RoundClosed).
		Order("round DESC").
		First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, Internalf(err, "failed to load open review round")
	}
	return &round, nil
}

// EnsureRound returns the open round for (submission, stage), creating one
// with the next sequence number when none is open.
func (s *RoundService) EnsureRound(tx *gorm.DB, submissionID int, stage string) (*models.ReviewRound, error) {
	round, err := s.OpenRound(tx, submissionID, stage)
	if err != nil {
		return nil, err
	}
	if round != nil {
		return round, nil
	}
	return s.createRound(tx, submissionID, stage)
}

// NextRound closes the open round, if any, and allocates the next one.
// Used by the editor "resubmit for review" decision.
func (s *RoundService) NextRound(tx *gorm.DB, submissionID int, stage string) (*models.ReviewRound, error) {
	open, err := s.OpenRound(tx, submissionID, stage)
	if err != nil {
		return nil, err
	}
	if open != nil {
		now := time.Now()
		if err := tx.Model(&models.ReviewRound{}).
			Where("round_id = ?", open.RoundID).
			Updates(map[string]interface{}{
				"status":    models.RoundClosed,
				"update_at": now,
			}).Error; err != nil {
			return nil, Internalf(err, "failed to close review round")
		}
	}
	return s.createRound(tx, submissionID, stage)
}

func (s *RoundService) createRound(tx *gorm.DB, submissionID int, stage string) (*models.ReviewRound, error) {
	number, err := s.nextRoundNumber(tx, submissionID, stage)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	round := models.ReviewRound{
		SubmissionID: submissionID,
		Stage:        stage,
		Round:        number,
		Status:       models.RoundPendingReviewers,
		CreateAt:     &now,
		UpdateAt:     &now,
	}
	if err := tx.Create(&round).Error; err != nil {
		return nil, Internalf(err, "failed to create review round")
	}
	return &round, nil
}

// nextRoundNumber allocates round numbers strictly increasing per
// submission+stage. Closed rounds count: numbers are never reused.
func (s *RoundService) nextRoundNumber(tx *gorm.DB, submissionID int, stage string) (int, error) {
	var maxRound int
	err := tx.Raw(
		"SELECT COALESCE(MAX(round), 0) AS max_round FROM review_rounds WHERE submission_id = ? AND stage = ?",
		submissionID, stage,
	).Scan(&maxRound).Error
	if err != nil {
		return 0, Internalf(err, "failed to allocate review round number")
	}
	return maxRound + 1, nil
}

// Recompute re-derives the round status from a fresh, locked read of the
// round and its assignments inside the caller's transaction. Idempotent:
// it writes only when the derived status differs, and never overwrites
// decision-driven statuses.
func (s *RoundService) Recompute(tx *gorm.DB, roundID int) (string, error) {
	var round models.ReviewRound
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("round_id = ?", roundID).
		First(&round).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", Errf(KindNotFound, "review round %d not found", roundID)
		}
		return "", Internalf(err, "failed to load review round")
	}

	if !derivedRoundStatuses[round.Status] {
		return round.Status, nil
	}

	var assignments []models.ReviewAssignment
	if err := tx.Where("round_id = ?", roundID).Find(&assignments).Error; err != nil {
		return "", Internalf(err, "failed to load round assignments")
	}

	derived := DeriveRoundStatus(assignments)
	if derived == round.Status {
		return derived, nil
	}

	now := time.Now()
	if err := tx.Model(&models.ReviewRound{}).
		Where("round_id = ?", roundID).
		Updates(map[string]interface{}{
			"status":    derived,
			"update_at": now,
		}).Error; err != nil {
		return "", Internalf(err, "failed to update round status")
	}
	return derived, nil
}
