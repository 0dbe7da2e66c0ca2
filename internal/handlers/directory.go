package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"nido/internal/services"

	"github.com/gin-gonic/gin"
)

// defaultSearchRadiusM is the fallback nearby-search radius in metres
const defaultSearchRadiusM = 2000

// NearbyServices searches for child-care related places around a position
func NearbyServices(c *gin.Context) {
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

	radius := uint(defaultSearchRadiusM)
	if raw := c.Query("radius"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || parsed == 0 || parsed > 50000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radius must be between 1 and 50000 metres"})
			return
		}
		radius = uint(parsed)
	}

	results, err := services.NearbyServices(lat, lng, radius, c.Query("type"), c.Query("keyword"))
	if err != nil {
		if errors.Is(err, services.ErrNoAPIKey) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Places search is not configured"})
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to search nearby services", err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ValidatePlace resolves a Google Place ID to a standardized location
func ValidatePlace(c *gin.Context) {
	placeID := c.Query("place_id")
	if placeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "place_id query parameter is required"})
		return
	}

	details, err := services.ValidateLocation(placeID)
	if err != nil {
		if errors.Is(err, services.ErrNoAPIKey) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Places search is not configured"})
			return
		}
		handleError(c, http.StatusBadRequest, "Failed to validate place", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"place_id":          details.PlaceID,
		"name":              details.Name,
		"formatted_address": details.FormattedAddress,
		"latitude":          details.Geometry.Location.Lat,
		"longitude":         details.Geometry.Location.Lng,
	})
}
