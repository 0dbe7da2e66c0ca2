package models

import (
	"time"

	"gorm.io/gorm"
)

// Account represents a user account in the system
type Account struct {
	Username              string         `gorm:"primaryKey;size:30;not null" json:"username" binding:"required,alphanum"`
	GoogleID              string         `gorm:"uniqueIndex;size:128;not null" json:"-"`
	Email                 string         `gorm:"uniqueIndex;size:255;not null" json:"email" binding:"required,email"`
	EmailVerified         bool           `gorm:"not null;default:false" json:"email_verified"`
	FullName              string         `gorm:"size:100" json:"full_name"`
	Phone                 string         `gorm:"size:20" json:"phone"` // E.164, optional; used for SMS alert fan-out
	AvatarURL             string         `gorm:"size:512" json:"avatar_url"`
	FamilyID              *uint          `gorm:"index" json:"family_id"`
	EncryptedRefreshToken string         `gorm:"type:text" json:"-"`
	TokenExpiry           time.Time      `json:"-"`
	DateJoined            time.Time      `gorm:"not null" json:"date_joined"`
	LastLogin             time.Time      `gorm:"not null" json:"last_login"`
	CreatedAt             time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook is called before creating a new account
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	if a.DateJoined.IsZero() {
		a.DateJoined = now
	}
	if a.LastLogin.IsZero() {
		a.LastLogin = now
	}
	return nil
}

// BeforeSave hook is called before saving the account
func (a *Account) BeforeSave(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return nil
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "account"
}

// HasFamily returns true once the account has joined a family
func (a *Account) HasFamily() bool {
	return a.FamilyID != nil && *a.FamilyID != 0
}

// CreateProfileRequest represents the data needed to finish registration
// after the OAuth callback created a temporary account.
type CreateProfileRequest struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=30"`
	Phone    string `json:"phone" binding:"omitempty,e164"`
}

// UpdateAccountRequest represents editable profile fields
type UpdateAccountRequest struct {
	FullName string `json:"full_name" binding:"omitempty,max=100"`
	Phone    string `json:"phone" binding:"omitempty,e164"`
}
