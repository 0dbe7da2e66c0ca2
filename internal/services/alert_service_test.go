package services

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"nido/internal/models"

	"gorm.io/gorm"
)

// fakeBroadcaster records alert fan-out calls
type fakeBroadcaster struct {
	mu        sync.Mutex
	activated []string
	resolved  []string
}

func (f *fakeBroadcaster) BroadcastAlertActivated(alert models.MissingChildAlert, member models.FamilyMember) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, alert.ID)
}

func (f *fakeBroadcaster) BroadcastAlertResolved(alert models.MissingChildAlert, member models.FamilyMember) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, alert.ID)
}

func seedFamily(t *testing.T, db *gorm.DB) (models.Account, models.FamilyMember) {
	t.Helper()

	family := models.Family{Name: "The Riveras", CreatedBy: "ana", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := db.Create(&family).Error; err != nil {
		t.Fatalf("seed family: %v", err)
	}

	account := models.Account{
		Username: "ana",
		GoogleID: "google-ana",
		Email:    "ana@example.com",
		FullName: "Ana Rivera",
		FamilyID: &family.ID,
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}

	member := models.FamilyMember{
		FamilyID:     family.ID,
		Name:         "Lucia",
		BirthDate:    time.Date(2019, 6, 14, 0, 0, 0, 0, time.UTC),
		Relationship: "daughter",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}

	return account, member
}

func floatPtr(v float64) *float64 { return &v }

func validAlertRequest(memberID uint) models.CreateAlertRequest {
	return models.CreateAlertRequest{
		MemberID:    memberID,
		Latitude:    floatPtr(19.4326),
		Longitude:   floatPtr(-99.1332),
		RadiusKm:    5,
		Description: "blue jacket, last seen at the park",
	}
}

func TestActivateCreatesActiveAlert(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	account, member := seedFamily(t, db)
	broadcaster := &fakeBroadcaster{}
	service := NewAlertService(db, broadcaster)

	alert, err := service.Activate(account, validAlertRequest(member.ID))
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if alert.ID == "" {
		t.Fatal("alert was not assigned an ID")
	}
	if !alert.IsActive() {
		t.Fatalf("new alert status = %q, want active", alert.Status)
	}
	if alert.ResolvedAt != nil {
		t.Fatal("new alert must not have a resolution time")
	}
	if len(broadcaster.activated) != 1 || broadcaster.activated[0] != alert.ID {
		t.Fatalf("activation was not broadcast: %v", broadcaster.activated)
	}
}

func TestActivateRejectsBadRadius(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	account, member := seedFamily(t, db)
	service := NewAlertService(db, nil)

	for _, radius := range []float64{0, 0.5, 20.01, 100} {
		req := validAlertRequest(member.ID)
		req.RadiusKm = radius
		if _, err := service.Activate(account, req); !errors.Is(err, ErrRadiusOutOfRange) {
			t.Errorf("radius %v: err = %v, want ErrRadiusOutOfRange", radius, err)
		}
	}

	// Validation failures must not leave records behind
	var count int64
	db.Model(&models.MissingChildAlert{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected activations created %d records", count)
	}
}

func TestActivateRejectsBadCoordinates(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	account, member := seedFamily(t, db)
	service := NewAlertService(db, nil)

	cases := []struct{ lat, lon float64 }{
		{91, 0},
		{-91, 0},
		{0, 181},
		{0, -181},
	}
	for _, tc := range cases {
		req := validAlertRequest(member.ID)
		req.Latitude = floatPtr(tc.lat)
		req.Longitude = floatPtr(tc.lon)
		if _, err := service.Activate(account, req); !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("(%v, %v): err = %v, want ErrInvalidCoordinates", tc.lat, tc.lon, err)
		}
	}

	req := validAlertRequest(member.ID)
	req.Latitude = nil
	if _, err := service.Activate(account, req); !errors.Is(err, ErrInvalidCoordinates) {
		t.Errorf("missing latitude: err = %v, want ErrInvalidCoordinates", err)
	}
}

func TestActivateRejectsForeignMember(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	account, _ := seedFamily(t, db)
	service := NewAlertService(db, nil)

	other := models.Family{Name: "Other", CreatedBy: "bob", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed other family: %v", err)
	}
	stranger := models.FamilyMember{FamilyID: other.ID, Name: "Max", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := db.Create(&stranger).Error; err != nil {
		t.Fatalf("seed stranger: %v", err)
	}

	if _, err := service.Activate(account, validAlertRequest(stranger.ID)); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("err = %v, want ErrMemberNotFound", err)
	}
}

func TestActivateRequiresFamily(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	_, member := seedFamily(t, db)
	service := NewAlertService(db, nil)

	loner := models.Account{Username: "loner", GoogleID: "google-loner", Email: "loner@example.com"}
	if _, err := service.Activate(loner, validAlertRequest(member.ID)); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	account, member := seedFamily(t, db)
	broadcaster := &fakeBroadcaster{}
	service := NewAlertService(db, broadcaster)

	alert, err := service.Activate(account, validAlertRequest(member.ID))
	if err != nil {
		t.Fatalf("activate: %v", err)
	}

	resolved, err := service.Resolve(alert.ID, account)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.IsActive() {
		t.Fatal("alert still active after resolve")
	}
	if resolved.ResolvedAt == nil {
		t.Fatal("resolution time was not stamped")
	}
	firstResolvedAt := *resolved.ResolvedAt

	// Second resolve is a no-op success and keeps the original timestamp
	again, err := service.Resolve(alert.ID, account)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if again.ResolvedAt == nil || !again.ResolvedAt.Equal(firstResolvedAt) {
		t.Fatal("second resolve changed the resolution time")
	}
	if len(broadcaster.resolved) != 1 {
		t.Fatalf("resolution broadcast %d times, want 1", len(broadcaster.resolved))
	}
}

func TestResolveAuthorization(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	account, member := seedFamily(t, db)
	service := NewAlertService(db, nil)

	alert, err := service.Activate(account, validAlertRequest(member.ID))
	if err != nil {
		t.Fatalf("activate: %v", err)
	}

	otherFamilyID := uint(999)
	outsider := models.Account{Username: "outsider", GoogleID: "google-out", Email: "out@example.com", FamilyID: &otherFamilyID}
	if _, err := service.Resolve(alert.ID, outsider); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}

	if _, err := service.Resolve("no-such-alert", account); !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("err = %v, want ErrAlertNotFound", err)
	}
}

func TestActiveAlertsExcludesResolved(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	account, member := seedFamily(t, db)
	service := NewAlertService(db, nil)

	first, err := service.Activate(account, validAlertRequest(member.ID))
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	second, err := service.Activate(account, validAlertRequest(member.ID))
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := service.Resolve(first.ID, account); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	active, err := service.ActiveAlerts(*account.FamilyID)
	if err != nil {
		t.Fatalf("active alerts: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Fatalf("active alerts = %v, want only %s", active, second.ID)
	}
}

func TestDistanceKm(t *testing.T) {
	t.Parallel()

	if d := DistanceKm(19.4326, -99.1332, 19.4326, -99.1332); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}

	a := DistanceKm(19.4326, -99.1332, 40.4168, -3.7038)
	b := DistanceKm(40.4168, -3.7038, 19.4326, -99.1332)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance is not symmetric: %v vs %v", a, b)
	}

	// One degree of longitude at the equator is about 111.2 km
	if d := DistanceKm(0, 0, 0, 1); math.Abs(d-111.19) > 0.5 {
		t.Errorf("equator degree = %v km, want ~111.19", d)
	}

	// Roughly 5.6 km straight north in Mexico City
	if d := DistanceKm(19.0, -99.0, 19.05, -99.0); math.Abs(d-5.56) > 0.1 {
		t.Errorf("short hop = %v km, want ~5.56", d)
	}
}

func TestWithinRadius(t *testing.T) {
	t.Parallel()

	alert := models.MissingChildAlert{Latitude: 19.0, Longitude: -99.0, RadiusKm: 5}
	if !WithinRadius(alert, 19.0, -99.0) {
		t.Error("center point must be within radius")
	}
	if !WithinRadius(alert, 19.04, -99.0) {
		t.Error("~4.4 km away should be inside a 5 km radius")
	}
	if WithinRadius(alert, 19.06, -99.0) {
		t.Error("~6.7 km away should be outside a 5 km radius")
	}
}
