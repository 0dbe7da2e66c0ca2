package models

import "time"

// Notification types
const (
	NotificationTypeAlarm         = "alarm"
	NotificationTypeAlertActive   = "alert_activated"
	NotificationTypeAlertResolved = "alert_resolved"
	NotificationTypeInvitation    = "invitation"
)

// Notification is an in-app notification addressed to one account
type Notification struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	RecipientUsername string    `gorm:"size:30;not null;index" json:"recipient_username"`
	Type              string    `gorm:"size:30;not null" json:"type"`
	Message           string    `gorm:"size:500;not null" json:"message"`
	ReferenceID       string    `gorm:"size:64" json:"reference_id"` // event id or alert id
	Read              bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt         time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notification"
}

// AlarmFired records a dispatched alarm notification. Written when a
// one-time event fires; kept as an audit trail and purged by the nightly
// maintenance job. The scanner deliberately does not consult it for
// recurring events (session-local dedupe only).
type AlarmFired struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	EventID  uint      `gorm:"not null;index" json:"event_id"`
	FireDate string    `gorm:"size:10;not null" json:"fire_date"` // "2006-01-02"
	FireTime string    `gorm:"size:5;not null" json:"fire_time"`  // "15:04"
	SentAt   time.Time `gorm:"not null" json:"sent_at"`
}

// TableName specifies the table name for the AlarmFired model
func (AlarmFired) TableName() string {
	return "alarm_fired"
}
