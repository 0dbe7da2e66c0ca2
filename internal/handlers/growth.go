package handlers

import (
	"net/http"
	"time"

	"nido/internal/database"
	"nido/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateGrowthRecord logs a height/weight measurement for a child
func CreateGrowthRecord(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}
	member, ok := findFamilyMember(c, familyID)
	if !ok {
		return
	}

	var req models.CreateGrowthRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if req.HeightCm == 0 && req.WeightKg == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one of height_cm or weight_kg is required"})
		return
	}

	record := models.GrowthRecord{
		MemberID:   member.ID,
		MeasuredAt: req.MeasuredAt,
		HeightCm:   req.HeightCm,
		WeightKg:   req.WeightKg,
		Note:       req.Note,
		RecordedBy: account.Username,
		CreatedAt:  time.Now(),
	}

	if err := database.GetDB().Create(&record).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to log measurement", err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ListGrowthRecords returns a child's measurements, oldest first for charting
func ListGrowthRecords(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}
	member, ok := findFamilyMember(c, familyID)
	if !ok {
		return
	}

	query := database.GetDB().Where("member_id = ?", member.ID)
	if from := c.Query("from"); from != "" {
		query = query.Where("measured_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("measured_at <= ?", to)
	}

	var records []models.GrowthRecord
	if err := query.Order("measured_at asc").Find(&records).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch measurements", err)
		return
	}

	c.JSON(http.StatusOK, records)
}
