package services

import (
	"context"
	"fmt"
	"log"
	"nido/internal/models"
	"sync"
	"time"

	"gorm.io/gorm"
)

// AlarmNotifier delivers a fired alarm to its recipients
type AlarmNotifier interface {
	NotifyAlarm(event models.ScheduledEvent, firedAt time.Time) error
}

// AlarmScanner polls active scheduled events once per minute and fires
// notifications for the ones due at the current wall-clock minute.
//
// Delivery is at-least-once: a per-session fired-key cache suppresses
// duplicates within one running process, and one-time events additionally
// persist a sent flag so they never re-fire after a restart. Recurring
// events rely on the cache alone and may re-fire if the process restarts
// within the same matching minute.
type AlarmScanner struct {
	db       *gorm.DB
	notifier AlarmNotifier
	interval time.Duration
	fired    *firedCache
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewAlarmScanner creates a scanner bound to the given database and notifier
func NewAlarmScanner(db *gorm.DB, notifier AlarmNotifier) *AlarmScanner {
	return &AlarmScanner{
		db:       db,
		notifier: notifier,
		interval: time.Minute,
		fired:    newFiredCache(4096, 48*time.Hour),
	}
}

// Start launches the scan loop. The first evaluation runs immediately
// rather than waiting a full interval.
func (s *AlarmScanner) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop cancels the scan loop and waits for it to exit, releasing the ticker
func (s *AlarmScanner) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *AlarmScanner) run(ctx context.Context) {
	defer s.wg.Done()

	s.Scan(time.Now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Scan(now)
		}
	}
}

// EvaluateTick selects the events due at the given instant. Events are
// evaluated independently; no ordering between them is guaranteed.
func EvaluateTick(now time.Time, events []models.ScheduledEvent) []models.ScheduledEvent {
	var due []models.ScheduledEvent
	for _, event := range events {
		if event.DueAt(now) {
			due = append(due, event)
		}
	}
	return due
}

// Scan runs one evaluation tick. Failures local to one event are logged
// and skipped; they never abort the rest of the tick.
func (s *AlarmScanner) Scan(now time.Time) {
	var events []models.ScheduledEvent
	if err := s.db.Where("active = ?", true).Find(&events).Error; err != nil {
		log.Printf("Error: alarm scan failed to load events: %v", err)
		return
	}

	for _, event := range EvaluateTick(now, events) {
		s.fire(event, now)
	}
}

// FiredKey derives the idempotency key for one logical notification:
// the (event, date, time-of-day) triple.
func FiredKey(eventID uint, now time.Time) string {
	return fmt.Sprintf("%d|%s|%s", eventID, now.Format(models.EventDateLayout), now.Format(models.EventTimeLayout))
}

func (s *AlarmScanner) fire(event models.ScheduledEvent, now time.Time) {
	// Concurrent overlapping ticks cannot double-fire: the first caller to
	// mark the key wins, everyone else skips.
	if !s.fired.MarkFired(FiredKey(event.ID, now), now) {
		return
	}

	if err := s.notifier.NotifyAlarm(event, now); err != nil {
		log.Printf("Warning: failed to dispatch alarm for event %d: %v", event.ID, err)
	}

	if event.Recurrence != models.RecurrenceNone && event.Recurrence != "" {
		return
	}

	// One-time events persist the sent flag so scans after a restart skip
	// them. A persistence failure must not crash the scan; the event may
	// fire again on a later tick.
	if err := s.db.Model(&models.ScheduledEvent{}).
		Where("id = ?", event.ID).
		Update("notification_sent", true).Error; err != nil {
		log.Printf("Warning: failed to persist sent flag for event %d: %v", event.ID, err)
		return
	}

	record := models.AlarmFired{
		EventID:  event.ID,
		FireDate: now.Format(models.EventDateLayout),
		FireTime: now.Format(models.EventTimeLayout),
		SentAt:   now,
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("Warning: failed to record fired alarm for event %d: %v", event.ID, err)
	}
}

// firedCache is a bounded set of fired idempotency keys with explicit
// eviction of stale entries.
type firedCache struct {
	mu         sync.Mutex
	entries    map[string]time.Time
	maxEntries int
	ttl        time.Duration
}

func newFiredCache(maxEntries int, ttl time.Duration) *firedCache {
	return &firedCache{
		entries:    make(map[string]time.Time),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

// MarkFired records the key and returns true if it was not already present
func (c *firedCache) MarkFired(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return false
	}

	if len(c.entries) >= c.maxEntries {
		c.evictStale(now)
	}

	c.entries[key] = now
	return true
}

// evictStale removes entries older than the TTL. Called with the lock held.
func (c *firedCache) evictStale(now time.Time) {
	cutoff := now.Add(-c.ttl)
	for key, firedAt := range c.entries {
		if firedAt.Before(cutoff) {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of cached keys
func (c *firedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
