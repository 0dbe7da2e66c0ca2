package services

import (
	"log"
	"nido/internal/models"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// retentionDays is how long notifications and alarm audit rows are kept
const retentionDays = 90

// MaintenanceWorker runs nightly cleanup of expired sessions, old
// notifications, and alarm audit rows.
type MaintenanceWorker struct {
	db   *gorm.DB
	cron *cron.Cron
}

func NewMaintenanceWorker(db *gorm.DB) *MaintenanceWorker {
	return &MaintenanceWorker{
		db:   db,
		cron: cron.New(),
	}
}

// Start registers the nightly job and starts the scheduler loop
func (w *MaintenanceWorker) Start() error {
	_, err := w.cron.AddFunc("0 3 * * *", w.RunCleanup)
	if err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Stop stops the scheduler gracefully
func (w *MaintenanceWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

// RunCleanup deletes expired sessions and stale notification/audit rows
func (w *MaintenanceWorker) RunCleanup() {
	now := time.Now()
	cutoff := now.AddDate(0, 0, -retentionDays)

	result := w.db.Where("expires_at < ?", now).Delete(&models.Session{})
	if result.Error != nil {
		log.Printf("Error: failed to purge expired sessions: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Purged %d expired sessions", result.RowsAffected)
	}

	result = w.db.Where("created_at < ?", cutoff).Delete(&models.Notification{})
	if result.Error != nil {
		log.Printf("Error: failed to purge old notifications: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Purged %d old notifications", result.RowsAffected)
	}

	result = w.db.Where("sent_at < ?", cutoff).Delete(&models.AlarmFired{})
	if result.Error != nil {
		log.Printf("Error: failed to purge alarm audit rows: %v", result.Error)
	} else if result.RowsAffected > 0 {
		log.Printf("Purged %d alarm audit rows", result.RowsAffected)
	}
}
