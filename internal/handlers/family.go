package handlers

import (
	"net/http"
	"time"

	"nido/internal/database"
	"nido/internal/models"
	"nido/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// invitationTTL is how long a family invitation stays valid
const invitationTTL = time.Hour * 24 * 7

// CreateFamily creates a family and attaches the creator to it
func CreateFamily(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	if account.HasFamily() {
		c.JSON(http.StatusConflict, gin.H{"error": "You already belong to a family"})
		return
	}

	var req models.CreateFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	family := models.Family{
		Name:      req.Name,
		CreatedBy: account.Username,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if req.HomeLocation != nil {
		family.HomeLocation = *req.HomeLocation
	}

	db := database.GetDB()
	if err := db.Create(&family).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create family", err)
		return
	}

	if err := db.Model(account).Update("family_id", family.ID).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to join the new family", err)
		return
	}

	c.JSON(http.StatusCreated, family)
}

// GetMyFamily returns the caller's family with its registered members
func GetMyFamily(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}

	var family models.Family
	if err := database.GetDB().Preload("Members").Where("id = ?", familyID).First(&family).Error; err != nil {
		handleError(c, http.StatusNotFound, "Family not found", err)
		return
	}

	c.JSON(http.StatusOK, family)
}

// InviteMember emails a token-based invitation to join the caller's family
func InviteMember(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}

	var req models.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()

	var family models.Family
	if err := db.Where("id = ?", familyID).First(&family).Error; err != nil {
		handleError(c, http.StatusNotFound, "Family not found", err)
		return
	}

	invitation := models.FamilyInvitation{
		Token:     uuid.NewString(),
		FamilyID:  familyID,
		Email:     req.Email,
		InvitedBy: account.Username,
		ExpiresAt: time.Now().Add(invitationTTL),
		CreatedAt: time.Now(),
	}
	if err := db.Create(&invitation).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create invitation", err)
		return
	}

	emailService := services.NewEmailService()
	if err := emailService.SendInvitationEmail(req.Email, family.Name, account.Username, invitation.Token); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to send invitation email", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "invitation sent", "email": req.Email})
}

// AcceptInvitation attaches the caller to the invited family
func AcceptInvitation(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	if account.HasFamily() {
		c.JSON(http.StatusConflict, gin.H{"error": "You already belong to a family"})
		return
	}

	token := c.Param("token")
	db := database.GetDB()

	var invitation models.FamilyInvitation
	if err := db.Where("token = ?", token).First(&invitation).Error; err != nil {
		handleError(c, http.StatusNotFound, "Invitation not found", err)
		return
	}

	if invitation.Accepted {
		c.JSON(http.StatusConflict, gin.H{"error": "Invitation already used"})
		return
	}
	if invitation.IsExpired() {
		c.JSON(http.StatusGone, gin.H{"error": "Invitation has expired"})
		return
	}

	if err := db.Model(account).Update("family_id", invitation.FamilyID).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to join family", err)
		return
	}
	if err := db.Model(&invitation).Update("accepted", true).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to mark invitation accepted", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "welcome to the family", "family_id": invitation.FamilyID})
}
