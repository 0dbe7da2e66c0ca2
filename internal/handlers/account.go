package handlers

import (
	"net/http"
	"strings"
	"time"

	"nido/internal/auth"
	"nido/internal/database"
	"nido/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateProfile finishes registration for an OAuth user: it replaces the
// temporary username assigned at callback time with a chosen one.
func CreateProfile(c *gin.Context) {
	var req models.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	googleID := c.GetString("sub")
	if googleID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	db := database.GetDB()

	var account models.Account
	if err := db.Where("google_id = ?", googleID).First(&account).Error; err != nil {
		handleError(c, http.StatusNotFound, "Account not found", err)
		return
	}

	if !strings.HasPrefix(account.Username, "temp-") {
		c.JSON(http.StatusConflict, gin.H{"error": "Profile already created"})
		return
	}

	updates := map[string]interface{}{
		"username":   req.Username,
		"phone":      req.Phone,
		"updated_at": time.Now(),
	}
	if err := db.Model(&models.Account{}).Where("google_id = ?", googleID).Updates(updates).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			handleError(c, http.StatusConflict, "Username already exists", err)
			return
		}
		handleError(c, http.StatusInternalServerError, "Failed to create profile", err)
		return
	}

	// Link the current session to the chosen username
	if sessionID := c.GetString("session_id"); sessionID != "" {
		if err := auth.LinkSessionToUser(sessionID, req.Username); err != nil {
			handleError(c, http.StatusInternalServerError, "Failed to update session", err)
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"username": req.Username})
}

// GetAccount returns a public view of an account
func GetAccount(c *gin.Context) {
	username := c.Param("username")

	var account models.Account
	if err := database.GetDB().Where("username = ?", username).First(&account).Error; err != nil {
		handleError(c, http.StatusNotFound, "Account not found", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":    account.Username,
		"full_name":   account.FullName,
		"avatar_url":  account.AvatarURL,
		"date_joined": account.DateJoined,
	})
}

// GetCurrentUser returns the authenticated account
func GetCurrentUser(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, account)
}

// UpdateAccount updates editable profile fields
func UpdateAccount(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	var req models.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}

	if err := database.GetDB().Model(account).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update account", err)
		return
	}

	c.JSON(http.StatusOK, account)
}
