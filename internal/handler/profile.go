package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"studio-ledger/internal/models"
	"studio-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProfileHandler serves the current user's profile and avatar.
type ProfileHandler struct {
	DB        *gorm.DB
	UploadDir string
}

func NewProfileHandler(db *gorm.DB, uploadDir string) *ProfileHandler {
	return &ProfileHandler{DB: db, UploadDir: uploadDir}
}

func (h *ProfileHandler) loadProfile(userID uint) (*models.Profile, error) {
	var p models.Profile
	if err := h.DB.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetMe returns the current account with its authoritative profile.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	profile, err := h.loadProfile(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load profile")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":          user.ID,
			"email":       user.Email,
			"role":        user.Role,
			"name":        profile.Name,
			"phone":       profile.Phone,
			"occupation":  profile.Occupation,
			"avatar_url":  profile.AvatarURL,
			"language":    profile.Language,
			"currency":    profile.Currency,
			"pin_enabled": profile.PINHash != "",
			"created_at":  user.CreatedAt,
		},
	})
}

type updateProfileReq struct {
	Name       string `json:"name" binding:"max=64"`
	Phone      string `json:"phone" binding:"max=32"`
	Occupation string `json:"occupation" binding:"max=64"`
	Language   string `json:"language" binding:"max=8"`
	Currency   string `json:"currency" binding:"max=8"`
}

// UpdateProfile updates the display fields of the current user's profile.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	profile, err := h.loadProfile(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load profile")
		return
	}

	updates := map[string]interface{}{
		"name":       strings.TrimSpace(req.Name),
		"phone":      strings.TrimSpace(req.Phone),
		"occupation": strings.TrimSpace(req.Occupation),
	}
	if req.Language != "" {
		updates["language"] = req.Language
	}
	if req.Currency != "" {
		updates["currency"] = req.Currency
	}

	if err := h.DB.Model(profile).Updates(updates).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update profile")
		return
	}

	util.Success(c, util.Response{
		"message": "profile updated",
	})
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword changes the current user's password.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req changePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "current password is wrong")
		return
	}
	if !isStrongPassword(req.NewPassword) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "password must be 8-32 characters with upper, lower and digit")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	if err := h.DB.Model(user).Update("password_hash", string(hash)).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update password")
		return
	}

	util.Success(c, util.Response{
		"message": "password changed, sign in again with the new password",
	})
}

// UploadAvatar stores an avatar image under the owner's upload directory
// and records its public URL on the profile. File names carry a timestamp
// and a uuid so repeated uploads never collide.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "avatar file is required")
		return
	}
	if file.Size > 5<<20 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "avatar must be under 5 MB")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "avatar must be png, jpg or webp")
		return
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.New().String(), ext)
	rel := filepath.Join("avatars", fmt.Sprintf("%d", user.ID), name)
	dst := filepath.Join(h.UploadDir, rel)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to store avatar")
		return
	}

	url := "/uploads/" + filepath.ToSlash(rel)
	if err := h.DB.Model(&models.Profile{}).
		Where("user_id = ?", user.ID).
		Update("avatar_url", url).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update profile")
		return
	}

	util.Success(c, util.Response{
		"avatar_url": url,
	})
}
