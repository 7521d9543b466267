package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

const MaxUsernameLength = 120

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// User is a profile document. Accounts are never physically deleted in the
// normal flow; IsDisabled soft-disables them instead.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:120;uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"size:64;not null" json:"-"`
	IsSuperuser bool      `json:"is_superuser"`
	IsDisabled  bool      `json:"is_disabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate enforces field validation at the store layer, so every write
// path relays the same validation error text.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	return u.validate()
}

func (u *User) BeforeUpdate(_ *gorm.DB) error {
	return u.validate()
}

func (u *User) validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if len(u.Username) > MaxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	}
	if !usernamePattern.MatchString(u.Username) {
		return errors.New("username may only contain letters, digits, underscores and dashes")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("email is not a valid email address")
	}
	return nil
}
