package services

import (
	"fmt"
	"log"
	"nido/internal/models"
	"time"

	"gorm.io/gorm"
)

// NotificationDispatcher fans alarms and alert state changes out to a
// family's accounts: in-app notification rows always, email and SMS
// best-effort. Recipients without a contact channel are silently skipped.
type NotificationDispatcher struct {
	db    *gorm.DB
	email *EmailService
	sms   *SMSService
}

// NewNotificationDispatcher creates a dispatcher. Email and SMS services
// may be nil; the corresponding channel is then skipped entirely.
func NewNotificationDispatcher(db *gorm.DB, email *EmailService, sms *SMSService) *NotificationDispatcher {
	return &NotificationDispatcher{db: db, email: email, sms: sms}
}

func (d *NotificationDispatcher) familyAccounts(familyID uint) ([]models.Account, error) {
	var accounts []models.Account
	if err := d.db.Where("family_id = ?", familyID).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to load family accounts: %w", err)
	}
	return accounts, nil
}

func (d *NotificationDispatcher) createNotification(recipient, notifType, message, referenceID string) {
	notif := models.Notification{
		RecipientUsername: recipient,
		Type:              notifType,
		Message:           message,
		ReferenceID:       referenceID,
		CreatedAt:         time.Now(),
		Read:              false,
	}
	if err := d.db.Create(&notif).Error; err != nil {
		log.Printf("Warning: failed to create notification for %s: %v", recipient, err)
	}
}

// NotifyAlarm implements AlarmNotifier: one in-app notification plus a
// best-effort email per family account.
func (d *NotificationDispatcher) NotifyAlarm(event models.ScheduledEvent, firedAt time.Time) error {
	accounts, err := d.familyAccounts(event.FamilyID)
	if err != nil {
		return err
	}

	body := event.Title
	if event.Notes != "" {
		body = fmt.Sprintf("%s (%s)", event.Title, event.Notes)
	}
	message := fmt.Sprintf("Reminder at %s: %s", event.EventTime, body)

	for _, account := range accounts {
		d.createNotification(account.Username, models.NotificationTypeAlarm, message, fmt.Sprintf("%d", event.ID))

		if d.email == nil || account.Email == "" {
			continue
		}
		if err := d.email.SendAlarmEmail(account.Email, account.Username, event.Title, message); err != nil {
			log.Printf("Warning: failed to email alarm to %s: %v", account.Username, err)
		}
	}

	return nil
}

// BroadcastAlertActivated implements AlertBroadcaster for new alerts
func (d *NotificationDispatcher) BroadcastAlertActivated(alert models.MissingChildAlert, member models.FamilyMember) {
	accounts, err := d.familyAccounts(alert.FamilyID)
	if err != nil {
		log.Printf("Error: alert broadcast failed: %v", err)
		return
	}

	message := fmt.Sprintf("ALERT: %s has been reported missing near (%.4f, %.4f), search radius %.0f km. %s",
		member.Name, alert.Latitude, alert.Longitude, alert.RadiusKm, alert.Description)

	for _, account := range accounts {
		d.createNotification(account.Username, models.NotificationTypeAlertActive, message, alert.ID)

		if d.email != nil && account.Email != "" {
			if err := d.email.SendAlertActivatedEmail(account.Email, account.Username, member.Name, message); err != nil {
				log.Printf("Warning: failed to email alert to %s: %v", account.Username, err)
			}
		}
		if d.sms != nil && d.sms.Enabled() && account.Phone != "" {
			if err := d.sms.Send(account.Phone, message); err != nil {
				log.Printf("Warning: failed to SMS alert to %s: %v", account.Username, err)
			}
		}
	}
}

// BroadcastAlertResolved implements AlertBroadcaster for resolved alerts
func (d *NotificationDispatcher) BroadcastAlertResolved(alert models.MissingChildAlert, member models.FamilyMember) {
	accounts, err := d.familyAccounts(alert.FamilyID)
	if err != nil {
		log.Printf("Error: alert broadcast failed: %v", err)
		return
	}

	message := fmt.Sprintf("%s has been found safe. The alert is now resolved.", member.Name)

	for _, account := range accounts {
		d.createNotification(account.Username, models.NotificationTypeAlertResolved, message, alert.ID)

		if d.email != nil && account.Email != "" {
			if err := d.email.SendAlertResolvedEmail(account.Email, account.Username, member.Name); err != nil {
				log.Printf("Warning: failed to email resolution to %s: %v", account.Username, err)
			}
		}
		if d.sms != nil && d.sms.Enabled() && account.Phone != "" {
			if err := d.sms.Send(account.Phone, message); err != nil {
				log.Printf("Warning: failed to SMS resolution to %s: %v", account.Username, err)
			}
		}
	}
}
