package models

import "time"

// Editor decision vocabulary.
const (
	DecisionSendToReview     = "send_to_external_review"
	DecisionAccept           = "accept"
	DecisionPendingRevisions = "pending_revisions"
	DecisionResubmit         = "resubmit"
	DecisionDecline          = "decline"
	DecisionSendToProduction = "send_to_production"
)

// EditorialDecision is an append-only record of one editor ruling. Rows are
// never updated or deleted; the most recent row for a submission is
// authoritative for "is a revision currently requested".
type EditorialDecision struct {
	DecisionID   int       `gorm:"primaryKey;column:decision_id" json:"decision_id"`
	SubmissionID int       `gorm:"column:submission_id" json:"submission_id"`
	RoundID      *int      `gorm:"column:round_id" json:"round_id,omitempty"`
	EditorID     int       `gorm:"column:editor_id" json:"editor_id"`
	Decision     string    `gorm:"column:decision" json:"decision"`
	Comments     string    `gorm:"column:comments" json:"comments"`
	DateDecided  time.Time `gorm:"column:date_decided" json:"date_decided"`

	Editor *User        `gorm:"foreignKey:EditorID" json:"editor,omitempty"`
	Round  *ReviewRound `gorm:"foreignKey:RoundID" json:"round,omitempty"`
}

func (EditorialDecision) TableName() string {
	return "editorial_decisions"
}
