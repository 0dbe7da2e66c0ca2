package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertStatus is the two-state lifecycle of a missing-child alert
type AlertStatus string

const (
	AlertStatusActive   AlertStatus = "active"
	AlertStatusResolved AlertStatus = "resolved"
)

// Search radius bounds in kilometres, enforced server-side
const (
	MinAlertRadiusKm = 1.0
	MaxAlertRadiusKm = 20.0
)

// MissingChildAlert is an "Amber Alert"-style broadcast for a family member.
// Once resolved, the origin coordinates and radius are immutable history.
type MissingChildAlert struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	FamilyID    uint        `gorm:"not null;index" json:"family_id"`
	MemberID    uint        `gorm:"not null;index" json:"member_id"`
	CreatedBy   string      `gorm:"size:30;not null" json:"created_by"`
	Status      AlertStatus `gorm:"size:10;not null;default:active;index" json:"status"`
	Latitude    float64     `gorm:"not null" json:"latitude"`
	Longitude   float64     `gorm:"not null" json:"longitude"`
	RadiusKm    float64     `gorm:"not null" json:"radius_km"`
	Description string      `gorm:"type:text" json:"description"` // clothing / appearance
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	ResolvedAt  *time.Time  `json:"resolved_at"`
}

// BeforeCreate hook assigns the alert ID and creation timestamp
func (a *MissingChildAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.Status == "" {
		a.Status = AlertStatusActive
	}
	return nil
}

// TableName specifies the table name for the MissingChildAlert model
func (MissingChildAlert) TableName() string {
	return "missing_child_alert"
}

// IsActive reports whether the alert is still broadcasting
func (a *MissingChildAlert) IsActive() bool {
	return a.Status == AlertStatusActive
}

// CreateAlertRequest represents the data needed to activate an alert
type CreateAlertRequest struct {
	MemberID    uint     `json:"member_id" binding:"required"`
	Latitude    *float64 `json:"latitude" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
	RadiusKm    float64  `json:"radius_km" binding:"required"`
	Description string   `json:"description" binding:"omitempty,max=2000"`
}
