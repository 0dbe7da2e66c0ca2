package auth

import (
	"context"
	"fmt"
	"nido/internal/models"
	"time"

	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// SaveRefreshTokenToAccount encrypts and saves a refresh token to the user's account
func SaveRefreshTokenToAccount(db *gorm.DB, googleID string, token *oauth2.Token) error {
	if token == nil || token.RefreshToken == "" {
		return nil // No refresh token to save
	}

	encryptedToken, err := EncryptRefreshToken(token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	updates := map[string]interface{}{
		"encrypted_refresh_token": encryptedToken,
		"token_expiry":            token.Expiry,
	}

	if err := db.Model(&models.Account{}).
		Where("google_id = ?", googleID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to save refresh token to account: %w", err)
	}

	return nil
}

// GetRefreshTokenFromAccount retrieves and decrypts a refresh token from an account
func GetRefreshTokenFromAccount(db *gorm.DB, googleID string) (string, time.Time, error) {
	var account models.Account

	if err := db.Select("encrypted_refresh_token, token_expiry").
		Where("google_id = ?", googleID).
		First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", time.Time{}, fmt.Errorf("account not found")
		}
		return "", time.Time{}, fmt.Errorf("failed to retrieve account: %w", err)
	}

	refreshToken, err := DecryptRefreshToken(account.EncryptedRefreshToken)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	return refreshToken, account.TokenExpiry, nil
}

// RefreshSessionToken refreshes the OAuth access token for a session when needed
func RefreshSessionToken(db *gorm.DB, session *models.Session) error {
	if !session.NeedsTokenRefresh() {
		return nil
	}

	refreshToken, _, err := GetRefreshTokenFromAccount(db, session.UserID)
	if err != nil {
		return err
	}
	if refreshToken == "" {
		return fmt.Errorf("no refresh token stored for account")
	}

	token := &oauth2.Token{RefreshToken: refreshToken}
	newToken, err := googleOAuthConfig.TokenSource(context.Background(), token).Token()
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	updates := map[string]interface{}{
		"access_token": newToken.AccessToken,
		"token_expiry": newToken.Expiry,
	}

	if err := db.Model(&models.Session{}).
		Where("id = ?", session.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if newToken.RefreshToken != "" {
		if err := SaveRefreshTokenToAccount(db, session.UserID, newToken); err != nil {
			return err
		}
	}

	return nil
}
