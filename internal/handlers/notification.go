package handlers

import (
	"net/http"
	"strconv"

	"nido/internal/database"
	"nido/internal/models"

	"github.com/gin-gonic/gin"
)

// ListNotifications returns the caller's notifications, newest first
func ListNotifications(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	query := database.GetDB().Where("recipient_username = ?", account.Username)
	if unread := c.Query("unread"); unread == "true" {
		query = query.Where("read = ?", false)
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	var notifications []models.Notification
	if err := query.Order("created_at desc").Limit(limit).Find(&notifications).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch notifications", err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead marks one of the caller's notifications as read
func MarkNotificationRead(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	db := database.GetDB()

	var notification models.Notification
	if err := db.Where("id = ? AND recipient_username = ?", c.Param("id"), account.Username).
		First(&notification).Error; err != nil {
		handleError(c, http.StatusNotFound, "Notification not found", err)
		return
	}

	if err := db.Model(&notification).Update("read", true).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update notification", err)
		return
	}

	c.JSON(http.StatusOK, notification)
}

// MarkAllNotificationsRead marks every unread notification for the caller
func MarkAllNotificationsRead(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	result := database.GetDB().Model(&models.Notification{}).
		Where("recipient_username = ? AND read = ?", account.Username, false).
		Update("read", true)
	if result.Error != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update notifications", result.Error)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": result.RowsAffected})
}
