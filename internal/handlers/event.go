package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"nido/internal/database"
	"nido/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// parseEventDate parses the request's calendar date ("2006-01-02")
func parseEventDate(value string) (datatypes.Date, error) {
	parsed, err := time.Parse(models.EventDateLayout, value)
	if err != nil {
		return datatypes.Date{}, fmt.Errorf("event_date must be in %s format", models.EventDateLayout)
	}
	return datatypes.Date(parsed), nil
}

// validateEventTime checks the wall-clock time field ("15:04")
func validateEventTime(value string) error {
	if _, err := time.Parse(models.EventTimeLayout, value); err != nil {
		return fmt.Errorf("event_time must be in %s format", models.EventTimeLayout)
	}
	return nil
}

// CreateEvent schedules a new health event
func CreateEvent(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, fmt.Sprintf("Invalid input: %s", err.Error()), err)
		return
	}

	eventDate, err := parseEventDate(req.EventDate)
	if err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := validateEventTime(req.EventTime); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	db := database.GetDB()

	// An optional subject child must belong to the caller's family
	if req.MemberID != nil {
		var member models.FamilyMember
		if err := db.Where("id = ? AND family_id = ?", *req.MemberID, familyID).First(&member).Error; err != nil {
			handleError(c, http.StatusNotFound, "Family member not found", err)
			return
		}
	}

	recurrence := models.Recurrence(req.Recurrence)
	if recurrence == "" {
		recurrence = models.RecurrenceNone
	}

	event := models.ScheduledEvent{
		FamilyID:   familyID,
		MemberID:   req.MemberID,
		Title:      req.Title,
		Notes:      req.Notes,
		Category:   req.Category,
		EventDate:  eventDate,
		EventTime:  req.EventTime,
		Recurrence: recurrence,
		Active:     true,
		CreatedBy:  account.Username,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := db.Create(&event).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create event", err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// ListEvents handles listing the family's events with filtering, sorting, and pagination
func ListEvents(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}

	db := database.GetDB()
	query := db.Where("family_id = ?", familyID)

	// Filtering
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if recurrence := c.Query("recurrence"); recurrence != "" {
		query = query.Where("recurrence = ?", recurrence)
	}
	if memberID := c.Query("member_id"); memberID != "" {
		query = query.Where("member_id = ?", memberID)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}
	if dateFrom := c.Query("date_from"); dateFrom != "" {
		query = query.Where("event_date >= ?", dateFrom)
	}
	if dateTo := c.Query("date_to"); dateTo != "" {
		query = query.Where("event_date <= ?", dateTo)
	}

	// Sorting
	sortBy := c.DefaultQuery("sort_by", "event_date")
	switch sortBy {
	case "event_date", "event_time", "title", "created_at":
	default:
		sortBy = "event_date"
	}
	sortOrder := c.DefaultQuery("sort_order", "asc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "asc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	// Pagination with defaults
	limit, err1 := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err1 != nil || limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200 // max limit
	}
	offset, err2 := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err2 != nil || offset < 0 {
		offset = 0
	}
	query = query.Limit(limit).Offset(offset)

	var events []models.ScheduledEvent
	if err := query.Find(&events).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch events", err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// UpdateEvent edits a scheduled event. Changing the date or time resets the
// sent flag so a rescheduled one-time event can fire again.
func UpdateEvent(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}

	db := database.GetDB()

	var event models.ScheduledEvent
	if err := db.Where("id = ? AND family_id = ?", c.Param("id"), familyID).First(&event).Error; err != nil {
		handleError(c, http.StatusNotFound, "Event not found", err)
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.Recurrence != "" {
		updates["recurrence"] = req.Recurrence
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.EventDate != "" {
		eventDate, err := parseEventDate(req.EventDate)
		if err != nil {
			handleError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		updates["event_date"] = eventDate
		updates["notification_sent"] = false
	}
	if req.EventTime != "" {
		if err := validateEventTime(req.EventTime); err != nil {
			handleError(c, http.StatusBadRequest, err.Error(), err)
			return
		}
		updates["event_time"] = req.EventTime
		updates["notification_sent"] = false
	}

	if err := db.Model(&event).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update event", err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes a scheduled event (soft delete)
func DeleteEvent(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}

	db := database.GetDB()

	var event models.ScheduledEvent
	if err := db.Where("id = ? AND family_id = ?", c.Param("id"), familyID).First(&event).Error; err != nil {
		handleError(c, http.StatusNotFound, "Event not found", err)
		return
	}

	if err := db.Delete(&event).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete event", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "event removed"})
}
