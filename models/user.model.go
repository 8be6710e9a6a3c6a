package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ProfileImage        string    `gorm:"default:''"`
	Name                string    `gorm:"default:''"`
	Email               string    `gorm:"unique;not null"`
	Role                string    `gorm:"default:'USER'"` // Default role is USER, PSYCHOLOGIST, ADMIN
	Password            string    `gorm:"not null"`
	IsEmailVerified     bool      `gorm:"default:false"`
	LastLogin           time.Time `gorm:"default:NULL"`
	FailedLoginAttempts int       `gorm:"default:0"`
	IsBlocked           bool      `gorm:"default:false"`
	IsDeleted           bool      `gorm:"default:false"`
}

// DisplayName returns the name printed on certificates. Accounts without a
// profile name fall back to the email address.
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}
