package models

import "time"

// Review round statuses. A round is "open" until it reaches closed.
const (
	RoundPendingReviewers     = "pending_reviewers"
	RoundPendingReviews       = "pending_reviews"
	RoundRecommendationsReady = "recommendations_ready"
	RoundRevisionsRequested   = "revisions_requested"
	RoundClosed               = "closed"
)

// ReviewRound is one numbered cycle of peer review for a submission at a
// given stage. Round numbers start at 1 and are never reused.
type ReviewRound struct {
	RoundID      int        `gorm:"primaryKey;column:round_id" json:"round_id"`
	SubmissionID int        `gorm:"column:submission_id" json:"submission_id"`
	Stage        string     `gorm:"column:stage" json:"stage"`
	Round        int        `gorm:"column:round" json:"round"`
	Status       string     `gorm:"column:status" json:"status"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`

	Submission *Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
}

func (ReviewRound) TableName() string {
	return "review_rounds"
}

// IsOpen reports whether the round still accepts reviewer activity.
func (r *ReviewRound) IsOpen() bool {
	return r.Status != RoundClosed
}
