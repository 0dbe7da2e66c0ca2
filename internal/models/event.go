package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recurrence classifies a scheduled event as one-time, daily, or weekly
type Recurrence string

const (
	RecurrenceNone   Recurrence = "none"
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

// EventTimeLayout is the wall-clock layout stored in ScheduledEvent.EventTime
const EventTimeLayout = "15:04"

// EventDateLayout is the calendar-date layout used in requests and fired keys
const EventDateLayout = "2006-01-02"

// ScheduledEvent is a health event (medication, appointment, vaccine...)
// that the alarm scanner evaluates once per minute.
//
// A none-recurrence event fires its notification at most once (the
// NotificationSent flag persists across restarts); recurring events fire
// once per matching day, deduplicated per session by the scanner.
type ScheduledEvent struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	FamilyID         uint           `gorm:"not null;index" json:"family_id"`
	MemberID         *uint          `gorm:"index" json:"member_id"`
	Title            string         `gorm:"size:200;not null" json:"title"`
	Notes            string         `gorm:"type:text" json:"notes"`
	Category         string         `gorm:"size:30" json:"category"` // medication, appointment, vaccine, checkup, other
	EventDate        datatypes.Date `gorm:"not null" json:"event_date"`
	EventTime        string         `gorm:"size:5;not null" json:"event_time"` // "15:04"
	Recurrence       Recurrence     `gorm:"size:10;not null;default:none" json:"recurrence"`
	Active           bool           `gorm:"not null;default:true" json:"active"`
	NotificationSent bool           `gorm:"not null;default:false" json:"notification_sent"` // one-time events only
	CreatedBy        string         `gorm:"size:30;not null" json:"created_by"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ScheduledEvent model
func (ScheduledEvent) TableName() string {
	return "scheduled_event"
}

// DueAt reports whether the event should fire a notification at the given
// instant. The stored time-of-day must match now's hour:minute exactly;
// recurrence then decides eligibility:
//   - daily: always eligible on a time match
//   - weekly: the stored date's weekday must equal today's
//   - none: the stored date must equal today and the sent flag must be unset
func (e *ScheduledEvent) DueAt(now time.Time) bool {
	if e.EventTime != now.Format(EventTimeLayout) {
		return false
	}

	eventDate := time.Time(e.EventDate)
	switch e.Recurrence {
	case RecurrenceDaily:
		return true
	case RecurrenceWeekly:
		return eventDate.Weekday() == now.Weekday()
	default:
		if e.NotificationSent {
			return false
		}
		return eventDate.Format(EventDateLayout) == now.Format(EventDateLayout)
	}
}

// CreateEventRequest represents the data needed to schedule an event
type CreateEventRequest struct {
	MemberID   *uint  `json:"member_id"`
	Title      string `json:"title" binding:"required,max=200"`
	Notes      string `json:"notes" binding:"omitempty,max=2000"`
	Category   string `json:"category" binding:"omitempty,oneof=medication appointment vaccine checkup other"`
	EventDate  string `json:"event_date" binding:"required"` // "2006-01-02"
	EventTime  string `json:"event_time" binding:"required"` // "15:04"
	Recurrence string `json:"recurrence" binding:"omitempty,oneof=none daily weekly"`
}

// UpdateEventRequest represents editable event fields
type UpdateEventRequest struct {
	Title      string `json:"title" binding:"omitempty,max=200"`
	Notes      string `json:"notes" binding:"omitempty,max=2000"`
	Category   string `json:"category" binding:"omitempty,oneof=medication appointment vaccine checkup other"`
	EventDate  string `json:"event_date" binding:"omitempty"`
	EventTime  string `json:"event_time" binding:"omitempty"`
	Recurrence string `json:"recurrence" binding:"omitempty,oneof=none daily weekly"`
	Active     *bool  `json:"active"`
}
