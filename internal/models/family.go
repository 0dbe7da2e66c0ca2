package models

import (
	"time"

	"gorm.io/gorm"
)

// Family is the multi-user grouping that owns member, event and alert records
type Family struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	CreatedBy    string         `gorm:"size:30;not null" json:"created_by"`
	HomeLocation Location       `gorm:"type:json" json:"home_location"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Members []FamilyMember `gorm:"foreignKey:FamilyID" json:"members,omitempty"`
}

// TableName specifies the table name for the Family model
func (Family) TableName() string {
	return "family"
}

// FamilyInvitation is an emailed, token-based invite to join a family
type FamilyInvitation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	FamilyID  uint      `gorm:"not null;index" json:"family_id"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	InvitedBy string    `gorm:"size:30;not null" json:"invited_by"`
	Accepted  bool      `gorm:"not null;default:false" json:"accepted"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name for the FamilyInvitation model
func (FamilyInvitation) TableName() string {
	return "family_invitation"
}

// IsExpired checks if the invitation is past its expiry
func (i *FamilyInvitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// FamilyMember is a child (or other dependent) registered within a family
type FamilyMember struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FamilyID     uint           `gorm:"not null;index" json:"family_id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	BirthDate    time.Time      `gorm:"type:date" json:"birth_date"`
	Relationship string         `gorm:"size:30" json:"relationship"` // son, daughter, ward...
	Notes        string         `gorm:"type:text" json:"notes"`
	PhotoURL     string         `gorm:"size:512" json:"photo_url"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the FamilyMember model
func (FamilyMember) TableName() string {
	return "family_member"
}

// CreateFamilyRequest represents the data needed to create a family
type CreateFamilyRequest struct {
	Name         string    `json:"name" binding:"required,max=100"`
	HomeLocation *Location `json:"home_location"`
}

// InviteMemberRequest represents the data needed to invite an adult to the family
type InviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CreateMemberRequest represents the data needed to register a child
type CreateMemberRequest struct {
	Name         string    `json:"name" binding:"required,max=100"`
	BirthDate    time.Time `json:"birth_date" binding:"required"`
	Relationship string    `json:"relationship" binding:"omitempty,max=30"`
	Notes        string    `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateMemberRequest represents editable child fields
type UpdateMemberRequest struct {
	Name         string `json:"name" binding:"omitempty,max=100"`
	Relationship string `json:"relationship" binding:"omitempty,max=30"`
	Notes        string `json:"notes" binding:"omitempty,max=2000"`
}
