package models

import "time"

// Publication statuses.
const (
	PublicationDraft     = "draft"
	PublicationScheduled = "scheduled"
	PublicationPublished = "published"
)

// Publication is the production-stage deliverable for a submission: one
// versioned record owning zero or more galleys.
type Publication struct {
	PublicationID int        `gorm:"primaryKey;column:publication_id" json:"publication_id"`
	SubmissionID  int        `gorm:"column:submission_id" json:"submission_id"`
	Version       int        `gorm:"column:version" json:"version"`
	Status        string     `gorm:"column:status" json:"status"`
	IssueID       *int       `gorm:"column:issue_id" json:"issue_id,omitempty"`
	DatePublished *time.Time `gorm:"column:date_published" json:"date_published,omitempty"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`

	Issue   *Issue   `gorm:"foreignKey:IssueID" json:"issue,omitempty"`
	Galleys []Galley `gorm:"foreignKey:PublicationID" json:"galleys,omitempty"`
}

// Galley is a publication-ready rendered file (PDF, HTML, ...) attached to
// a publication.
type Galley struct {
	GalleyID      int        `gorm:"primaryKey;column:galley_id" json:"galley_id"`
	PublicationID int        `gorm:"column:publication_id" json:"publication_id"`
	Label         string     `gorm:"column:label" json:"label"`
	Locale        *string    `gorm:"column:locale" json:"locale,omitempty"`
	OriginalName  string     `gorm:"column:original_name" json:"original_name"`
	StoredPath    string     `gorm:"column:stored_path" json:"stored_path"`
	FileSize      int64      `gorm:"column:file_size" json:"file_size"`
	MimeType      string     `gorm:"column:mime_type" json:"mime_type"`
	UploadedBy    int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt    time.Time  `gorm:"column:uploaded_at" json:"uploaded_at"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Uploader *User `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
}

func (Publication) TableName() string {
	return "publications"
}

func (Galley) TableName() string {
	return "galleys"
}
