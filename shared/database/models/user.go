package models

import (
	"time"
)

type User struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username    string     `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Email       *string    `json:"email" gorm:"size:254;uniqueIndex"`
	Password    string     `json:"-" gorm:"size:255;not null"` // bcrypt hash, never the plaintext
	FirstName   string     `json:"first_name" gorm:"size:100"`
	LastName    string     `json:"last_name" gorm:"size:100"`
	IsActive    bool       `json:"is_active" gorm:"not null"`
	IsStaff     bool       `json:"is_staff" gorm:"not null;default:false"`
	IsSuperuser bool       `json:"is_superuser" gorm:"not null;default:false"`
	DateJoined  time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	LastLogin   *time.Time `json:"last_login"`
}

// EmailOrEmpty returns the email address or "" when none is set.
func (u *User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
