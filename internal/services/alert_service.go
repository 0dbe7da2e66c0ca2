package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"nido/internal/models"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotAuthorized      = errors.New("caller is not authorized for this family")
	ErrRadiusOutOfRange   = errors.New("search radius must be between 1 and 20 km")
	ErrInvalidCoordinates = errors.New("latitude must be in [-90, 90] and longitude in [-180, 180]")
	ErrMemberNotFound     = errors.New("family member not found")
	ErrAlertNotFound      = errors.New("alert not found")
)

// AlertBroadcaster fans an alert state change out to the family's contacts
type AlertBroadcaster interface {
	BroadcastAlertActivated(alert models.MissingChildAlert, member models.FamilyMember)
	BroadcastAlertResolved(alert models.MissingChildAlert, member models.FamilyMember)
}

// AlertService owns the missing-child alert lifecycle
type AlertService struct {
	db          *gorm.DB
	broadcaster AlertBroadcaster
}

// NewAlertService creates an alert service. The broadcaster may be nil,
// in which case state changes are not fanned out.
func NewAlertService(db *gorm.DB, broadcaster AlertBroadcaster) *AlertService {
	return &AlertService{db: db, broadcaster: broadcaster}
}

// Activate creates a new active alert for a child of the caller's family.
// Validation failures create no record.
func (s *AlertService) Activate(caller models.Account, req models.CreateAlertRequest) (*models.MissingChildAlert, error) {
	if !caller.HasFamily() {
		return nil, ErrNotAuthorized
	}
	if req.RadiusKm < models.MinAlertRadiusKm || req.RadiusKm > models.MaxAlertRadiusKm {
		return nil, ErrRadiusOutOfRange
	}
	if req.Latitude == nil || req.Longitude == nil || !validCoordinates(*req.Latitude, *req.Longitude) {
		return nil, ErrInvalidCoordinates
	}

	var member models.FamilyMember
	if err := s.db.Where("id = ? AND family_id = ?", req.MemberID, *caller.FamilyID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to load family member: %w", err)
	}

	alert := models.MissingChildAlert{
		FamilyID:    *caller.FamilyID,
		MemberID:    member.ID,
		CreatedBy:   caller.Username,
		Status:      models.AlertStatusActive,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		RadiusKm:    req.RadiusKm,
		Description: req.Description,
	}

	if err := s.db.Create(&alert).Error; err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastAlertActivated(alert, member)
	}

	return &alert, nil
}

// Resolve transitions an alert to resolved and stamps the resolution time.
// Resolving an already-resolved alert is a no-op success.
func (s *AlertService) Resolve(alertID string, caller models.Account) (*models.MissingChildAlert, error) {
	var alert models.MissingChildAlert
	if err := s.db.Where("id = ?", alertID).First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}

	if !caller.HasFamily() || *caller.FamilyID != alert.FamilyID {
		return nil, ErrNotAuthorized
	}

	if !alert.IsActive() {
		return &alert, nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      models.AlertStatusResolved,
		"resolved_at": now,
	}
	if err := s.db.Model(&alert).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}
	alert.Status = models.AlertStatusResolved
	alert.ResolvedAt = &now

	if s.broadcaster != nil {
		var member models.FamilyMember
		if err := s.db.Where("id = ?", alert.MemberID).First(&member).Error; err != nil {
			log.Printf("Warning: failed to load member for resolved alert %s: %v", alert.ID, err)
		} else {
			s.broadcaster.BroadcastAlertResolved(alert, member)
		}
	}

	return &alert, nil
}

// ActiveAlerts returns the family's currently broadcasting alerts
func (s *AlertService) ActiveAlerts(familyID uint) ([]models.MissingChildAlert, error) {
	var alerts []models.MissingChildAlert
	err := s.db.Where("family_id = ? AND status = ?", familyID, models.AlertStatusActive).
		Order("created_at DESC").
		Find(&alerts).Error
	return alerts, err
}

// DistanceKm computes the great-circle (haversine) distance in kilometres
// between two latitude/longitude pairs. Symmetric, non-negative, zero for
// identical points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(d float64) float64 { return d * (math.Pi / 180) }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := (math.Sin(dLat/2) * math.Sin(dLat/2)) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*(math.Sin(dLon/2)*math.Sin(dLon/2))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// WithinRadius reports whether a viewer position falls inside the alert's
// search radius.
func WithinRadius(alert models.MissingChildAlert, lat, lon float64) bool {
	return DistanceKm(alert.Latitude, alert.Longitude, lat, lon) <= alert.RadiusKm
}

func validCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
