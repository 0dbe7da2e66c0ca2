package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"nido/internal/database"
	"nido/internal/models"
	"nido/internal/services"
	"nido/internal/utils"

	"github.com/gin-gonic/gin"
)

// alertStatusCode maps service-level alert errors to HTTP statuses
func alertStatusCode(err error) int {
	switch {
	case errors.Is(err, services.ErrRadiusOutOfRange), errors.Is(err, services.ErrInvalidCoordinates):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrMemberNotFound), errors.Is(err, services.ErrAlertNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotAuthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ActivateAlert raises a missing child alert for the caller's family
func ActivateAlert(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	if _, ok := requireFamily(c, account); !ok {
		return
	}

	var req models.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	alert, err := alertService().Activate(*account, req)
	if err != nil {
		handleError(c, alertStatusCode(err), err.Error(), err)
		return
	}

	log.Printf("Alert %s activated by %s from %s", alert.ID, account.Username, utils.GetRealClientIP(c))
	c.JSON(http.StatusCreated, alert)
}

// ResolveAlert marks an alert resolved. Resolving twice is a no-op.
func ResolveAlert(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	if _, ok := requireFamily(c, account); !ok {
		return
	}

	alert, err := alertService().Resolve(c.Param("id"), *account)
	if err != nil {
		handleError(c, alertStatusCode(err), err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, alert)
}

// ListActiveAlerts returns the family's currently active alerts
func ListActiveAlerts(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}

	alerts, err := alertService().ActiveAlerts(familyID)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch alerts", err)
		return
	}

	c.JSON(http.StatusOK, alerts)
}

// AlertDistance reports how far a position is from an alert's last known
// location, and whether it falls inside the search radius.
func AlertDistance(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat query parameter is required"})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lng query parameter is required"})
		return
	}

	var alert models.MissingChildAlert
	if err := database.GetDB().Where("id = ? AND family_id = ?", c.Param("id"), familyID).First(&alert).Error; err != nil {
		handleError(c, http.StatusNotFound, "Alert not found", err)
		return
	}

	distance := services.DistanceKm(alert.Latitude, alert.Longitude, lat, lng)
	c.JSON(http.StatusOK, gin.H{
		"alert_id":      alert.ID,
		"distance_km":   distance,
		"within_radius": services.WithinRadius(alert, lat, lng),
	})
}
