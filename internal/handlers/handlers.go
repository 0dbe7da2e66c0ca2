package handlers

import (
	"log"
	"net/http"
	"nido/internal/auth"
	"nido/internal/database"
	"nido/internal/models"
	"nido/internal/services"

	"github.com/gin-gonic/gin"
)

// handleError provides a consistent way to handle and log errors
func handleError(c *gin.Context, status int, message string, err error) {
	log.Printf("Error: %v", err)
	c.JSON(status, gin.H{"error": message})
}

// alertService builds the alert service with its notification fan-out
func alertService() *services.AlertService {
	db := database.GetDB()
	dispatcher := services.NewNotificationDispatcher(db, services.NewEmailService(), services.NewSMSService())
	return services.NewAlertService(db, dispatcher)
}

// currentAccount loads the authenticated account or writes an error response
func currentAccount(c *gin.Context) (*models.Account, bool) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}

	var account models.Account
	if err := database.GetDB().Where("username = ?", username).First(&account).Error; err != nil {
		handleError(c, http.StatusNotFound, "Account not found", err)
		return nil, false
	}
	return &account, true
}

// requireFamily resolves the caller's family or writes a 403
func requireFamily(c *gin.Context, account *models.Account) (uint, bool) {
	if !account.HasFamily() {
		c.JSON(http.StatusForbidden, gin.H{"error": "You must belong to a family first"})
		return 0, false
	}
	return *account.FamilyID, true
}

// HomeHandler handles requests to the root path "/"
func HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to Nido!")
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// LoginHandler redirects to Google OAuth login
func LoginHandler(c *gin.Context) {
	url, err := auth.GetLoginURL(c)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to generate login URL", err)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallbackHandler processes the OAuth callback from Google
func GoogleCallbackHandler(c *gin.Context) {
	auth.HandleGoogleCallback(c)
}

// LogoutHandler handles user logout
func LogoutHandler(c *gin.Context) {
	auth.LogoutHandler(c)
}

// DashboardHandler serves the user dashboard page
func DashboardHandler(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.Redirect(http.StatusTemporaryRedirect, "/create-profile")
		return
	}
	c.String(http.StatusOK, "Welcome to your dashboard, %s!", username)
}
