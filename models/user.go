package models

import (
	"time"
)

// Role IDs as seeded in the roles table.
const (
	RoleAuthor   = 1
	RoleReviewer = 2
	RoleEditor   = 3
	RoleAdmin    = 4
)

type User struct {
	UserID      int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname   string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname   string     `gorm:"column:user_lname" json:"user_lname"`
	Email       string     `gorm:"column:email;unique" json:"email"`
	Password    string     `gorm:"column:password" json:"-"`
	RoleID      int        `gorm:"column:role_id" json:"role_id"`
	Affiliation *string    `gorm:"column:affiliation" json:"affiliation,omitempty"`
	Country     *string    `gorm:"column:country" json:"country,omitempty"`
	OrcidID     *string    `gorm:"column:orcid_id" json:"orcid_id,omitempty"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

// FullName returns the display name used in notifications.
func (u *User) FullName() string {
	return u.UserFname + " " + u.UserLname
}

// CanReview reports whether the user holds the reviewer capability.
// Editors and admins may also act as reviewers.
func (u *User) CanReview() bool {
	return u.RoleID == RoleReviewer || u.RoleID == RoleEditor || u.RoleID == RoleAdmin
}
