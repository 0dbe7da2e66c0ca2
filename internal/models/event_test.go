package models

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestDueAt(t *testing.T) {
	t.Parallel()

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		event ScheduledEvent
		now   time.Time
		want  bool
	}{
		{
			name:  "one-time on its date and minute",
			event: ScheduledEvent{EventDate: datatypes.Date(monday), EventTime: "09:05", Recurrence: RecurrenceNone},
			now:   time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC),
			want:  true,
		},
		{
			name:  "seconds within the minute still match",
			event: ScheduledEvent{EventDate: datatypes.Date(monday), EventTime: "09:05", Recurrence: RecurrenceNone},
			now:   time.Date(2026, 3, 2, 9, 5, 59, 0, time.UTC),
			want:  true,
		},
		{
			name:  "wrong minute",
			event: ScheduledEvent{EventDate: datatypes.Date(monday), EventTime: "09:05", Recurrence: RecurrenceNone},
			now:   time.Date(2026, 3, 2, 9, 6, 0, 0, time.UTC),
			want:  false,
		},
		{
			name:  "one-time on a different day",
			event: ScheduledEvent{EventDate: datatypes.Date(monday), EventTime: "09:05", Recurrence: RecurrenceNone},
			now:   time.Date(2026, 3, 3, 9, 5, 0, 0, time.UTC),
			want:  false,
		},
		{
			name:  "one-time already sent",
			event: ScheduledEvent{EventDate: datatypes.Date(monday), EventTime: "09:05", Recurrence: RecurrenceNone, NotificationSent: true},
			now:   time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC),
			want:  false,
		},
		{
			name:  "daily fires any day at its minute",
			event: ScheduledEvent{EventDate: datatypes.Date(monday), EventTime: "09:05", Recurrence: RecurrenceDaily},
			now:   time.Date(2026, 4, 17, 9, 5, 0, 0, time.UTC),
			want:  true,
		},
		{
			name:  "daily ignores the sent flag",
			event: ScheduledEvent{EventDate: datatypes.Date(monday), EventTime: "09:05", Recurrence: RecurrenceDaily, NotificationSent: true},
			now:   time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC),
			want:  true,
		},
		{
			name:  "weekly on the stored weekday",
			event: ScheduledEvent{EventDate: datatypes.Date(monday), EventTime: "09:05", Recurrence: RecurrenceWeekly},
			now:   time.Date(2026, 3, 9, 9, 5, 0, 0, time.UTC),
			want:  true,
		},
		{
			name:  "weekly on another weekday",
			event: ScheduledEvent{EventDate: datatypes.Date(monday), EventTime: "09:05", Recurrence: RecurrenceWeekly},
			now:   time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC),
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.event.DueAt(tc.now); got != tc.want {
				t.Errorf("DueAt(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}
