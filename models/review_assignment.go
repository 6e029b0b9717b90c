package models

import "time"

// Reviewer recommendations.
const (
	RecommendAccept         = "accept"
	RecommendMinorRevisions = "minor_revisions"
	RecommendMajorRevisions = "major_revisions"
	RecommendReject         = "reject"
	RecommendSeeComments    = "see_comments"
)

// Assignment lifecycle states derived from the flag/date columns:
// awaiting_response -> accepted|declined, accepted -> completed,
// any -> cancelled.
const (
	AssignmentAwaitingResponse = "awaiting_response"
	AssignmentAccepted         = "accepted"
	AssignmentDeclined         = "declined"
	AssignmentCompleted        = "completed"
	AssignmentCancelled        = "cancelled"
)

// ReviewAssignment is one reviewer's invitation within one round. Rows are
// never deleted; cancellation is a soft state so audit history survives.
// Active exists for uniqueness only: set on assignment, nulled on
// cancellation. The unique index over (submission_id, round_id, reviewer_id,
// active) holds one live invitation per reviewer per round, while any number
// of cancelled rows (active NULL) may accumulate without colliding.
type ReviewAssignment struct {
	AssignmentID         int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	RoundID              int        `gorm:"column:round_id" json:"round_id"`
	SubmissionID         int        `gorm:"column:submission_id" json:"submission_id"`
	ReviewerID           int        `gorm:"column:reviewer_id" json:"reviewer_id"`
	ReviewMethod         string     `gorm:"column:review_method" json:"review_method"`
	Declined             bool       `gorm:"column:declined" json:"declined"`
	Cancelled            bool       `gorm:"column:cancelled" json:"cancelled"`
	Active               *bool      `gorm:"column:active" json:"-"`
	DateAssigned         time.Time  `gorm:"column:date_assigned" json:"date_assigned"`
	DateResponseDue      *time.Time `gorm:"column:date_response_due" json:"date_response_due,omitempty"`
	DateDue              *time.Time `gorm:"column:date_due" json:"date_due,omitempty"`
	DateConfirmed        *time.Time `gorm:"column:date_confirmed" json:"date_confirmed,omitempty"`
	DateCompleted        *time.Time `gorm:"column:date_completed" json:"date_completed,omitempty"`
	Recommendation       *string    `gorm:"column:recommendation" json:"recommendation,omitempty"`
	Comments             *string    `gorm:"column:comments" json:"comments,omitempty"`
	ConfidentialComments *string    `gorm:"column:confidential_comments" json:"-"`
	Quality              *int       `gorm:"column:quality" json:"quality,omitempty"`
	CreateAt             *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt             *time.Time `gorm:"column:update_at" json:"update_at"`

	Reviewer *User        `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Round    *ReviewRound `gorm:"foreignKey:RoundID" json:"round,omitempty"`
}

func (ReviewAssignment) TableName() string {
	return "review_assignments"
}

// State derives the lifecycle state from the stored columns.
func (a *ReviewAssignment) State() string {
	switch {
	case a.Cancelled:
		return AssignmentCancelled
	case a.Declined:
		return AssignmentDeclined
	case a.DateCompleted != nil:
		return AssignmentCompleted
	case a.DateConfirmed != nil:
		return AssignmentAccepted
	default:
		return AssignmentAwaitingResponse
	}
}

// IsActive reports whether the assignment counts toward round completion.
func (a *ReviewAssignment) IsActive() bool {
	return !a.Cancelled
}
