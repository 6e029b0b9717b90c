package models

import "time"

type Journal struct {
	JournalID  int        `gorm:"primaryKey;column:journal_id" json:"journal_id"`
	Path       string     `gorm:"column:path;unique" json:"path"`
	Name       string     `gorm:"column:name" json:"name"`
	OnlineISSN *string    `gorm:"column:online_issn" json:"online_issn,omitempty"`
	PrintISSN  *string    `gorm:"column:print_issn" json:"print_issn,omitempty"`
	Enabled    bool       `gorm:"column:enabled" json:"enabled"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

type Section struct {
	SectionID    int        `gorm:"primaryKey;column:section_id" json:"section_id"`
	JournalID    int        `gorm:"column:journal_id" json:"journal_id"`
	Title        string     `gorm:"column:title" json:"title"`
	Abbreviation *string    `gorm:"column:abbreviation" json:"abbreviation,omitempty"`
	Policy       *string    `gorm:"column:policy" json:"policy,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Journal Journal `gorm:"foreignKey:JournalID" json:"journal,omitempty"`
}

// Issue is a volume/number/year container for published submissions.
// At most one issue per journal carries is_current = true.
type Issue struct {
	IssueID       int        `gorm:"primaryKey;column:issue_id" json:"issue_id"`
	JournalID     int        `gorm:"column:journal_id" json:"journal_id"`
	Volume        int        `gorm:"column:volume" json:"volume"`
	Number        int        `gorm:"column:number" json:"number"`
	Year          int        `gorm:"column:year" json:"year"`
	Title         *string    `gorm:"column:title" json:"title,omitempty"`
	IsCurrent     bool       `gorm:"column:is_current" json:"is_current"`
	DatePublished *time.Time `gorm:"column:date_published" json:"date_published,omitempty"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Journal Journal `gorm:"foreignKey:JournalID" json:"journal,omitempty"`
}

func (Journal) TableName() string {
	return "journals"
}

func (Section) TableName() string {
	return "sections"
}

func (Issue) TableName() string {
	return "issues"
}
