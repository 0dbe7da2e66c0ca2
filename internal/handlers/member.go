package handlers

import (
	"net/http"
	"time"

	"nido/internal/database"
	"nido/internal/models"
	"nido/internal/services"

	"github.com/gin-gonic/gin"
)

// maxPhotoSize caps member photo uploads at 5 MB
const maxPhotoSize = 5 << 20

// findFamilyMember loads a member by path param scoped to the caller's family
func findFamilyMember(c *gin.Context, familyID uint) (*models.FamilyMember, bool) {
	var member models.FamilyMember
	if err := database.GetDB().
		Where("id = ? AND family_id = ?", c.Param("id"), familyID).
		First(&member).Error; err != nil {
		handleError(c, http.StatusNotFound, "Family member not found", err)
		return nil, false
	}
	return &member, true
}

// CreateMember registers a child in the caller's family
func CreateMember(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}

	var req models.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	member := models.FamilyMember{
		FamilyID:     familyID,
		Name:         req.Name,
		BirthDate:    req.BirthDate,
		Relationship: req.Relationship,
		Notes:        req.Notes,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := database.GetDB().Create(&member).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to register family member", err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// ListMembers returns the caller's registered children
func ListMembers(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	familyID, ok := requireFamily(c, account)
	if !ok {
		return
	}

	var members []models.FamilyMember
	if err := database.GetDB().Where("family_id = ?", familyID).Order("name asc").Find(&members).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch family members", err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// UpdateMember edits a registered child
func UpdateMember(c *gin.Context) {
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

	var req models.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Relationship != "" {
		updates["relationship"] = req.Relationship
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if err := database.GetDB().Model(member).Updates(updates).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update family member", err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// DeleteMember removes a registered child (soft delete)
func DeleteMember(c *gin.Context) {
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

	if err := database.GetDB().Delete(member).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete family member", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "family member removed"})
}

// UploadMemberPhoto uploads a child's photo to Cloudinary and stores the URL
func UploadMemberPhoto(c *gin.Context) {
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

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		handleError(c, http.StatusBadRequest, "photo file is required", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to read upload", err)
		return
	}
	defer file.Close()

	imageService, err := services.NewImageService()
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Image uploads are not configured", err)
		return
	}

	if err := imageService.ValidateImageFile(file, maxPhotoSize); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	url, err := imageService.UploadMemberPhoto(file, fileHeader.Filename, member.ID)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to upload photo", err)
		return
	}

	if err := database.GetDB().Model(member).Update("photo_url", url).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to save photo URL", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}
