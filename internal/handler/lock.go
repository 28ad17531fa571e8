package handler

import (
	"net/http"

	"studio-ledger/internal/models"
	"studio-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LockHandler manages the app-lock PIN stored on the profile. When a PIN is
// set, clients show a lock screen at startup and call Verify before showing
// any data.
type LockHandler struct {
	DB *gorm.DB
}

func NewLockHandler(db *gorm.DB) *LockHandler {
	return &LockHandler{DB: db}
}

// Status reports whether a PIN is set for the current user.
func (h *LockHandler) Status(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var profile models.Profile
	if err := h.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load profile")
		return
	}

	util.Success(c, util.Response{
		"pin_enabled": profile.PINHash != "",
	})
}

type setPINReq struct {
	PIN        string `json:"pin" binding:"required"`
	ConfirmPIN string `json:"confirm_pin" binding:"required"`
}

// SetPIN enables the app lock. The PIN is entered twice; a mismatch rejects
// the whole attempt so the client resets both fields.
func (h *LockHandler) SetPIN(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req setPINReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	if err := util.ValidatePIN(req.PIN); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "pin must be exactly 4 digits")
		return
	}
	if req.PIN != req.ConfirmPIN {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "pins do not match, enter both again")
		return
	}

	hash, err := util.HashPIN(req.PIN)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to store pin")
		return
	}

	if err := h.DB.Model(&models.Profile{}).
		Where("user_id = ?", user.ID).
		Update("pin_hash", hash).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to store pin")
		return
	}

	util.Success(c, util.Response{
		"message": "app lock enabled",
	})
}

type verifyPINReq struct {
	PIN string `json:"pin" binding:"required"`
}

// VerifyPIN checks an entered PIN against the stored hash.
func (h *LockHandler) VerifyPIN(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req verifyPINReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	var profile models.Profile
	if err := h.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load profile")
		return
	}
	if profile.PINHash == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "app lock is not enabled")
		return
	}

	if !util.CheckPIN(req.PIN, profile.PINHash) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "wrong pin")
		return
	}

	util.Success(c, util.Response{
		"message": "unlocked",
	})
}

// DisablePIN removes the app lock.
func (h *LockHandler) DisablePIN(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if err := h.DB.Model(&models.Profile{}).
		Where("user_id = ?", user.ID).
		Update("pin_hash", "").Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to disable app lock")
		return
	}

	util.Success(c, util.Response{
		"message": "app lock disabled",
	})
}
