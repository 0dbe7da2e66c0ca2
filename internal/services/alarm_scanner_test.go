package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"nido/internal/database"
	"nido/internal/models"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite memory: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeNotifier records every alarm it is asked to deliver
type fakeNotifier struct {
	mu    sync.Mutex
	fired []uint
	err   error
}

func (f *fakeNotifier) NotifyAlarm(event models.ScheduledEvent, firedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fired = append(f.fired, event.ID)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fired)
}

func newTestScanner(t *testing.T) (*AlarmScanner, *fakeNotifier) {
	t.Helper()
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	return NewAlarmScanner(db, notifier), notifier
}

func seedEvent(t *testing.T, db *gorm.DB, date time.Time, eventTime string, recurrence models.Recurrence) models.ScheduledEvent {
	t.Helper()
	event := models.ScheduledEvent{
		FamilyID:   1,
		Title:      "vitamin drops",
		Category:   "medication",
		EventDate:  datatypes.Date(date),
		EventTime:  eventTime,
		Recurrence: recurrence,
		Active:     true,
		CreatedBy:  "parent",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return event
}

func TestEvaluateTickSelectsOnlyDueEvents(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	events := []models.ScheduledEvent{
		{ID: 1, EventDate: datatypes.Date(day), EventTime: "09:30", Recurrence: models.RecurrenceNone},
		{ID: 2, EventDate: datatypes.Date(day), EventTime: "10:00", Recurrence: models.RecurrenceNone},
		{ID: 3, EventDate: datatypes.Date(day.AddDate(0, 0, -7)), EventTime: "09:30", Recurrence: models.RecurrenceWeekly},
		{ID: 4, EventDate: datatypes.Date(day.AddDate(0, 0, -1)), EventTime: "09:30", Recurrence: models.RecurrenceDaily},
		{ID: 5, EventDate: datatypes.Date(day), EventTime: "09:30", Recurrence: models.RecurrenceNone, NotificationSent: true},
	}

	due := EvaluateTick(now, events)
	if len(due) != 3 {
		t.Fatalf("expected 3 due events, got %d", len(due))
	}
	got := map[uint]bool{}
	for _, e := range due {
		got[e.ID] = true
	}
	for _, want := range []uint{1, 3, 4} {
		if !got[want] {
			t.Errorf("event %d should be due", want)
		}
	}
}

func TestOneTimeEventFiresExactlyOnce(t *testing.T) {
	t.Parallel()
	scanner, notifier := newTestScanner(t)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	event := seedEvent(t, scanner.db, day, "08:00", models.RecurrenceNone)

	scanner.Scan(now)
	scanner.Scan(now)
	if notifier.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", notifier.count())
	}

	// The sent flag persists so the event never fires again, even with a
	// fresh cache standing in for a process restart
	var reloaded models.ScheduledEvent
	if err := scanner.db.First(&reloaded, event.ID).Error; err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if !reloaded.NotificationSent {
		t.Fatal("notification_sent flag was not persisted")
	}

	scanner.fired = newFiredCache(4096, 48*time.Hour)
	scanner.Scan(now)
	if notifier.count() != 1 {
		t.Fatalf("one-time event re-fired after restart, got %d notifications", notifier.count())
	}

	var audit models.AlarmFired
	if err := scanner.db.Where("event_id = ?", event.ID).First(&audit).Error; err != nil {
		t.Fatalf("expected an alarm audit row: %v", err)
	}
	if audit.FireDate != "2026-03-02" || audit.FireTime != "08:00" {
		t.Errorf("audit row has wrong fire date/time: %s %s", audit.FireDate, audit.FireTime)
	}
}

func TestDailyEventRefiresAcrossDays(t *testing.T) {
	t.Parallel()
	scanner, notifier := newTestScanner(t)

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	event := seedEvent(t, scanner.db, day, "20:15", models.RecurrenceDaily)

	first := time.Date(2026, 3, 2, 20, 15, 0, 0, time.UTC)
	scanner.Scan(first)
	scanner.Scan(first) // same minute, suppressed
	scanner.Scan(first.AddDate(0, 0, 1))
	scanner.Scan(first.AddDate(0, 0, 2))

	if notifier.count() != 3 {
		t.Fatalf("expected 3 notifications across 3 days, got %d", notifier.count())
	}

	// Recurring events never set the one-time sent flag
	var reloaded models.ScheduledEvent
	if err := scanner.db.First(&reloaded, event.ID).Error; err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if reloaded.NotificationSent {
		t.Fatal("daily event must not set notification_sent")
	}
}

func TestWeeklyEventFiresOnMatchingWeekdayOnly(t *testing.T) {
	t.Parallel()
	scanner, notifier := newTestScanner(t)

	// Stored date is a Monday; only Mondays at the stored time should fire
	monday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	seedEvent(t, scanner.db, monday, "07:45", models.RecurrenceWeekly)

	nextMonday := time.Date(2026, 3, 2, 7, 45, 0, 0, time.UTC)
	tuesday := time.Date(2026, 3, 3, 7, 45, 0, 0, time.UTC)

	scanner.Scan(nextMonday)
	if notifier.count() != 1 {
		t.Fatalf("expected a fire on the matching weekday, got %d", notifier.count())
	}

	scanner.Scan(tuesday)
	if notifier.count() != 1 {
		t.Fatalf("weekly event fired on the wrong weekday, got %d notifications", notifier.count())
	}
}

func TestInactiveEventsAreSkipped(t *testing.T) {
	t.Parallel()
	scanner, notifier := newTestScanner(t)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	event := seedEvent(t, scanner.db, day, "12:00", models.RecurrenceDaily)
	if err := scanner.db.Model(&event).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate event: %v", err)
	}

	scanner.Scan(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	if notifier.count() != 0 {
		t.Fatalf("inactive event fired, got %d notifications", notifier.count())
	}
}

func TestNotifierFailureStillMarksFired(t *testing.T) {
	t.Parallel()
	scanner, notifier := newTestScanner(t)
	notifier.err = fmt.Errorf("smtp down")

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	seedEvent(t, scanner.db, day, "08:00", models.RecurrenceDaily)

	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	scanner.Scan(now)
	scanner.Scan(now)

	// At-least-once: the delivery attempt counts as fired for this session
	if notifier.count() != 1 {
		t.Fatalf("expected 1 delivery attempt, got %d", notifier.count())
	}
}

func TestFiredKey(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)
	if got := FiredKey(42, now); got != "42|2026-03-02|09:05" {
		t.Fatalf("FiredKey = %q", got)
	}
	if FiredKey(42, now) == FiredKey(43, now) {
		t.Fatal("keys for different events must differ")
	}
	if FiredKey(42, now) == FiredKey(42, now.AddDate(0, 0, 1)) {
		t.Fatal("keys for different days must differ")
	}
}

func TestFiredCacheSuppressesDuplicates(t *testing.T) {
	t.Parallel()

	cache := newFiredCache(4096, 48*time.Hour)
	now := time.Now()

	if !cache.MarkFired("a", now) {
		t.Fatal("first mark should succeed")
	}
	if cache.MarkFired("a", now) {
		t.Fatal("second mark of the same key should be suppressed")
	}
	if !cache.MarkFired("b", now) {
		t.Fatal("different key should not be suppressed")
	}
}

func TestFiredCacheEvictsStaleEntries(t *testing.T) {
	t.Parallel()

	cache := newFiredCache(2, time.Hour)
	base := time.Now()

	cache.MarkFired("old1", base.Add(-2*time.Hour))
	cache.MarkFired("old2", base.Add(-2*time.Hour))

	// The cache is at capacity; stale entries are dropped to make room
	if !cache.MarkFired("fresh", base) {
		t.Fatal("fresh mark should succeed")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected stale entries evicted, cache has %d", cache.Len())
	}
}
