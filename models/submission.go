package models

import "time"

// Canonical submission stages. Stage only moves forward except for the
// revision loop, which keeps a submission in external_review.
const (
	StageSubmission     = "submission"
	StageExternalReview = "external_review"
	StageCopyediting    = "copyediting"
	StageProduction     = "production"
)

// Canonical submission statuses.
const (
	StatusQueued    = "queued"
	StatusInReview  = "in_review"
	StatusAccepted  = "accepted"
	StatusDeclined  = "declined"
	StatusPublished = "published"
)

type Submission struct {
	SubmissionID       int        `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	SubmissionNumber   string     `gorm:"column:submission_number;unique" json:"submission_number"`
	JournalID          int        `gorm:"column:journal_id" json:"journal_id"`
	SectionID          int        `gorm:"column:section_id" json:"section_id"`
	SubmitterID        int        `gorm:"column:submitter_id" json:"submitter_id"`
	Title              string     `gorm:"column:title" json:"title"`
	Abstract           *string    `gorm:"column:abstract" json:"abstract,omitempty"`
	Stage              string     `gorm:"column:stage" json:"stage"`
	Status             string     `gorm:"column:status" json:"status"`
	RevisionDeadline   *time.Time `gorm:"column:revision_deadline" json:"revision_deadline,omitempty"`
	DateSubmitted      *time.Time `gorm:"column:date_submitted" json:"date_submitted,omitempty"`
	DateLastActivity   *time.Time `gorm:"column:date_last_activity" json:"date_last_activity,omitempty"`
	DateStatusModified *time.Time `gorm:"column:date_status_modified" json:"date_status_modified,omitempty"`
	CreateAt           *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt           *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt           *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Journal   Journal `gorm:"foreignKey:JournalID" json:"journal,omitempty"`
	Section   Section `gorm:"foreignKey:SectionID" json:"section,omitempty"`
	Submitter *User   `gorm:"foreignKey:SubmitterID" json:"submitter,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// IsTerminal reports whether no further workflow transitions are accepted.
func (s *Submission) IsTerminal() bool {
	return s.Status == StatusDeclined || s.Status == StatusPublished
}
